package domain

import (
	"context"

	"fleet-crm/internal/models"
)

// ListFilter narrows list queries. Zero Limit means no limit.
// Search is applied by the store (SQL LIKE or an in-memory spec); tier filters are
// applied by callers with specs because tiers are derived, not stored.
type ListFilter struct {
	Search string
	State  string
	Limit  int
	Offset int
}

// ContactRepository persists contacts as whole records.
type ContactRepository interface {
	SaveContactCtx(ctx context.Context, c *models.Contact) error
	GetContactCtx(ctx context.Context, id string) (*models.Contact, error)
	ListContactsCtx(ctx context.Context, f ListFilter) ([]models.Contact, int, error)
	DeleteContactCtx(ctx context.Context, id string) error
}

// CompanyRepository persists companies as whole records.
type CompanyRepository interface {
	SaveCompanyCtx(ctx context.Context, c *models.Company) error
	GetCompanyCtx(ctx context.Context, id string) (*models.Company, error)
	ListCompaniesCtx(ctx context.Context, f ListFilter) ([]models.Company, int, error)
	DeleteCompanyCtx(ctx context.Context, id string) error
}

// VehicleRepository persists vehicles; ListVehiclesByCompanyCtx feeds the fleet summary.
type VehicleRepository interface {
	SaveVehicleCtx(ctx context.Context, v *models.Vehicle) error
	GetVehicleCtx(ctx context.Context, id string) (*models.Vehicle, error)
	ListVehiclesCtx(ctx context.Context, f ListFilter) ([]models.Vehicle, int, error)
	ListVehiclesByCompanyCtx(ctx context.Context, companyID string) ([]models.Vehicle, error)
	DeleteVehicleCtx(ctx context.Context, id string) error
}

// MatchRepository stores matches a user confirmed. One confirmed company per contact.
type MatchRepository interface {
	SaveConfirmedMatchCtx(ctx context.Context, m *models.ConfirmedMatch) error
	GetConfirmedMatchCtx(ctx context.Context, contactID string) (*models.ConfirmedMatch, error)
	ListConfirmedMatchesCtx(ctx context.Context, limit, offset int) ([]models.ConfirmedMatch, int, error)
	DeleteConfirmedMatchCtx(ctx context.Context, contactID string) error
}

// UserRepository stores operator accounts.
type UserRepository interface {
	SaveUserCtx(ctx context.Context, u *models.User) error
	GetUserCtx(ctx context.Context, id string) (*models.User, error)
	ListUsersCtx(ctx context.Context) ([]models.User, error)
	DeleteUserCtx(ctx context.Context, id string) error
}

// Repository aggregates the repos commonly required by services.
type Repository interface {
	ContactRepository
	CompanyRepository
	VehicleRepository
	MatchRepository
	UserRepository
}
