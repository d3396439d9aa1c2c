package repository

import (
	"context"

	"fleet-crm/internal/domain"
	"fleet-crm/internal/models"
	"fleet-crm/pkg/database"
)

// SQLRepository is a thin adapter over pkg/database.DB to satisfy domain repositories.
// It assigns ids and timestamps before handing records to the SQL layer.
type SQLRepository struct {
	db    *database.DB
	clock clock
}

func NewSQLRepository(db *database.DB) *SQLRepository {
	return &SQLRepository{db: db, clock: systemClock}
}

// Ensure interface compliance at compile time
var _ domain.Repository = (*SQLRepository)(nil)

func (r *SQLRepository) SaveContactCtx(ctx context.Context, c *models.Contact) error {
	stampContact(c, r.clock())
	return r.db.SaveContactCtx(ctx, c)
}

func (r *SQLRepository) GetContactCtx(ctx context.Context, id string) (*models.Contact, error) {
	return r.db.GetContactCtx(ctx, id)
}

func (r *SQLRepository) ListContactsCtx(ctx context.Context, f domain.ListFilter) ([]models.Contact, int, error) {
	return r.db.ListContactsCtx(ctx, f)
}

func (r *SQLRepository) DeleteContactCtx(ctx context.Context, id string) error {
	return r.db.DeleteContactCtx(ctx, id)
}

func (r *SQLRepository) SaveCompanyCtx(ctx context.Context, c *models.Company) error {
	stampCompany(c, r.clock())
	return r.db.SaveCompanyCtx(ctx, c)
}

func (r *SQLRepository) GetCompanyCtx(ctx context.Context, id string) (*models.Company, error) {
	return r.db.GetCompanyCtx(ctx, id)
}

func (r *SQLRepository) ListCompaniesCtx(ctx context.Context, f domain.ListFilter) ([]models.Company, int, error) {
	return r.db.ListCompaniesCtx(ctx, f)
}

func (r *SQLRepository) DeleteCompanyCtx(ctx context.Context, id string) error {
	return r.db.DeleteCompanyCtx(ctx, id)
}

func (r *SQLRepository) SaveVehicleCtx(ctx context.Context, v *models.Vehicle) error {
	stampVehicle(v, r.clock())
	return r.db.SaveVehicleCtx(ctx, v)
}

func (r *SQLRepository) GetVehicleCtx(ctx context.Context, id string) (*models.Vehicle, error) {
	return r.db.GetVehicleCtx(ctx, id)
}

func (r *SQLRepository) ListVehiclesCtx(ctx context.Context, f domain.ListFilter) ([]models.Vehicle, int, error) {
	return r.db.ListVehiclesCtx(ctx, f)
}

func (r *SQLRepository) ListVehiclesByCompanyCtx(ctx context.Context, companyID string) ([]models.Vehicle, error) {
	return r.db.ListVehiclesByCompanyCtx(ctx, companyID)
}

func (r *SQLRepository) DeleteVehicleCtx(ctx context.Context, id string) error {
	return r.db.DeleteVehicleCtx(ctx, id)
}

func (r *SQLRepository) SaveConfirmedMatchCtx(ctx context.Context, m *models.ConfirmedMatch) error {
	if m.ConfirmedAt.IsZero() {
		m.ConfirmedAt = r.clock()
	}
	return r.db.SaveConfirmedMatchCtx(ctx, m)
}

func (r *SQLRepository) GetConfirmedMatchCtx(ctx context.Context, contactID string) (*models.ConfirmedMatch, error) {
	return r.db.GetConfirmedMatchCtx(ctx, contactID)
}

func (r *SQLRepository) ListConfirmedMatchesCtx(ctx context.Context, limit, offset int) ([]models.ConfirmedMatch, int, error) {
	return r.db.ListConfirmedMatchesCtx(ctx, limit, offset)
}

func (r *SQLRepository) DeleteConfirmedMatchCtx(ctx context.Context, contactID string) error {
	return r.db.DeleteConfirmedMatchCtx(ctx, contactID)
}

func (r *SQLRepository) SaveUserCtx(ctx context.Context, u *models.User) error {
	stampUser(u, r.clock())
	return r.db.SaveUserCtx(ctx, u)
}

func (r *SQLRepository) GetUserCtx(ctx context.Context, id string) (*models.User, error) {
	return r.db.GetUserCtx(ctx, id)
}

func (r *SQLRepository) ListUsersCtx(ctx context.Context) ([]models.User, error) {
	return r.db.ListUsersCtx(ctx)
}

func (r *SQLRepository) DeleteUserCtx(ctx context.Context, id string) error {
	return r.db.DeleteUserCtx(ctx, id)
}
