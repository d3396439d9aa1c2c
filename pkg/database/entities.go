package database

import (
	"context"
	"strings"
	"time"

	"fleet-crm/internal/domain"
	"fleet-crm/internal/models"
	"fleet-crm/pkg/utils"
)

func (db *DB) SaveContactCtx(ctx context.Context, c *models.Contact) error {
	return db.upsertDoc(ctx, "SaveContactCtx", tableContacts, lookup{
		ID:        c.ID,
		Name:      strings.TrimSpace(c.FullName),
		TaxID:     utils.ExtractPhoneDigits(c.TaxID),
		State:     utils.NormalizeUF(c.Address.State),
		UpdatedAt: c.UpdatedAt,
	}, c)
}

func (db *DB) GetContactCtx(ctx context.Context, id string) (*models.Contact, error) {
	return getDoc[models.Contact](ctx, db, "GetContactCtx", tableContacts, "contact", id)
}

func (db *DB) ListContactsCtx(ctx context.Context, f domain.ListFilter) ([]models.Contact, int, error) {
	where, args := filterClause(f)
	return listDocs[models.Contact](ctx, db, "ListContactsCtx", tableContacts, where, args, f.Limit, f.Offset)
}

func (db *DB) DeleteContactCtx(ctx context.Context, id string) error {
	return db.deleteDoc(ctx, "DeleteContactCtx", tableContacts, "contact", id)
}

func (db *DB) SaveCompanyCtx(ctx context.Context, c *models.Company) error {
	return db.upsertDoc(ctx, "SaveCompanyCtx", tableCompanies, lookup{
		ID:        c.ID,
		Name:      strings.TrimSpace(c.DisplayName()),
		TaxID:     utils.ExtractPhoneDigits(c.CNPJ),
		State:     utils.NormalizeUF(c.Address.State),
		UpdatedAt: c.UpdatedAt,
	}, c)
}

func (db *DB) GetCompanyCtx(ctx context.Context, id string) (*models.Company, error) {
	return getDoc[models.Company](ctx, db, "GetCompanyCtx", tableCompanies, "company", id)
}

func (db *DB) ListCompaniesCtx(ctx context.Context, f domain.ListFilter) ([]models.Company, int, error) {
	where, args := filterClause(f)
	return listDocs[models.Company](ctx, db, "ListCompaniesCtx", tableCompanies, where, args, f.Limit, f.Offset)
}

func (db *DB) DeleteCompanyCtx(ctx context.Context, id string) error {
	return db.deleteDoc(ctx, "DeleteCompanyCtx", tableCompanies, "company", id)
}

func (db *DB) SaveVehicleCtx(ctx context.Context, v *models.Vehicle) error {
	return db.upsertDoc(ctx, "SaveVehicleCtx", tableVehicles, lookup{
		ID:        v.ID,
		CompanyID: v.CompanyID,
		Name:      strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(v.Plate), "-", "")),
		TaxID:     utils.ExtractPhoneDigits(v.Renavam),
		UpdatedAt: v.UpdatedAt,
	}, v)
}

func (db *DB) GetVehicleCtx(ctx context.Context, id string) (*models.Vehicle, error) {
	return getDoc[models.Vehicle](ctx, db, "GetVehicleCtx", tableVehicles, "vehicle", id)
}

func (db *DB) ListVehiclesCtx(ctx context.Context, f domain.ListFilter) ([]models.Vehicle, int, error) {
	where, args := filterClause(f)
	return listDocs[models.Vehicle](ctx, db, "ListVehiclesCtx", tableVehicles, where, args, f.Limit, f.Offset)
}

func (db *DB) ListVehiclesByCompanyCtx(ctx context.Context, companyID string) ([]models.Vehicle, error) {
	where, args := filterClause(domain.ListFilter{}, "company_id = ?")
	args = append(args, companyID)
	out, _, err := listDocs[models.Vehicle](ctx, db, "ListVehiclesByCompanyCtx", tableVehicles, where, args, 0, 0)
	return out, err
}

func (db *DB) DeleteVehicleCtx(ctx context.Context, id string) error {
	return db.deleteDoc(ctx, "DeleteVehicleCtx", tableVehicles, "vehicle", id)
}

// SaveConfirmedMatchCtx keys the row by contact: confirming again replaces the previous company.
func (db *DB) SaveConfirmedMatchCtx(ctx context.Context, m *models.ConfirmedMatch) error {
	if m.ConfirmedAt.IsZero() {
		m.ConfirmedAt = time.Now().UTC()
	}
	return db.upsertDoc(ctx, "SaveConfirmedMatchCtx", tableMatches, lookup{
		ID:        m.ContactID,
		CompanyID: m.CompanyID,
		UpdatedAt: m.ConfirmedAt,
	}, m)
}

func (db *DB) GetConfirmedMatchCtx(ctx context.Context, contactID string) (*models.ConfirmedMatch, error) {
	return getDoc[models.ConfirmedMatch](ctx, db, "GetConfirmedMatchCtx", tableMatches, "confirmed match", contactID)
}

func (db *DB) ListConfirmedMatchesCtx(ctx context.Context, limit, offset int) ([]models.ConfirmedMatch, int, error) {
	return listDocs[models.ConfirmedMatch](ctx, db, "ListConfirmedMatchesCtx", tableMatches, "", nil, limit, offset)
}

func (db *DB) DeleteConfirmedMatchCtx(ctx context.Context, contactID string) error {
	return db.deleteDoc(ctx, "DeleteConfirmedMatchCtx", tableMatches, "confirmed match", contactID)
}

func (db *DB) SaveUserCtx(ctx context.Context, u *models.User) error {
	return db.upsertDoc(ctx, "SaveUserCtx", tableUsers, lookup{
		ID:        u.ID,
		Name:      strings.ToLower(strings.TrimSpace(u.Email)),
		TaxID:     string(u.Role),
		UpdatedAt: u.UpdatedAt,
	}, u)
}

func (db *DB) GetUserCtx(ctx context.Context, id string) (*models.User, error) {
	return getDoc[models.User](ctx, db, "GetUserCtx", tableUsers, "user", id)
}

func (db *DB) ListUsersCtx(ctx context.Context) ([]models.User, error) {
	out, _, err := listDocs[models.User](ctx, db, "ListUsersCtx", tableUsers, "", nil, 0, 0)
	return out, err
}

func (db *DB) DeleteUserCtx(ctx context.Context, id string) error {
	return db.deleteDoc(ctx, "DeleteUserCtx", tableUsers, "user", id)
}

var _ domain.Repository = (*DB)(nil)
