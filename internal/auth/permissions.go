package auth

import "fleet-crm/internal/models"

// Permissions tells the UI which controls to show. The API does not check them.
type Permissions struct {
	EditRecords    bool `json:"edit_records"`
	DeleteRecords  bool `json:"delete_records"`
	RunMatching    bool `json:"run_matching"`
	ConfirmMatches bool `json:"confirm_matches"`
	ManageUsers    bool `json:"manage_users"`
	ViewAudit      bool `json:"view_audit"`
	UseAdvisor     bool `json:"use_advisor"`
}

func PermissionsFor(role models.Role) Permissions {
	switch role {
	case models.RoleAdmin:
		return Permissions{true, true, true, true, true, true, true}
	case models.RoleManager:
		return Permissions{EditRecords: true, DeleteRecords: true, RunMatching: true, ConfirmMatches: true, ViewAudit: true, UseAdvisor: true}
	case models.RoleOperator:
		return Permissions{EditRecords: true, RunMatching: true, ConfirmMatches: true, UseAdvisor: true}
	default:
		return Permissions{}
	}
}
