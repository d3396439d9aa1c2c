package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"fleet-crm/internal/domain"
	"fleet-crm/internal/domain/specs"
	"fleet-crm/internal/models"
	errs "fleet-crm/pkg/errors"
)

// MemoryRepository keeps everything in maps. Used when no DATABASE_URL is configured and in tests.
type MemoryRepository struct {
	mu        sync.RWMutex
	contacts  map[string]models.Contact
	companies map[string]models.Company
	vehicles  map[string]models.Vehicle
	matches   map[string]models.ConfirmedMatch
	users     map[string]models.User
	clock     clock
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		contacts:  make(map[string]models.Contact),
		companies: make(map[string]models.Company),
		vehicles:  make(map[string]models.Vehicle),
		matches:   make(map[string]models.ConfirmedMatch),
		users:     make(map[string]models.User),
		clock:     systemClock,
	}
}

var _ domain.Repository = (*MemoryRepository)(nil)

func (r *MemoryRepository) SaveContactCtx(_ context.Context, c *models.Contact) error {
	stampContact(c, r.clock())
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contacts[c.ID] = *c
	return nil
}

func (r *MemoryRepository) GetContactCtx(_ context.Context, id string) (*models.Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.contacts[id]
	if !ok {
		return nil, errs.NewNotFound("GetContactCtx", "contact", id)
	}
	return &c, nil
}

func (r *MemoryRepository) ListContactsCtx(ctx context.Context, f domain.ListFilter) ([]models.Contact, int, error) {
	r.mu.RLock()
	all := values(r.contacts)
	r.mu.RUnlock()

	var list []specs.Specification[models.Contact]
	if strings.TrimSpace(f.Search) != "" {
		list = append(list, specs.ContactMatches(f.Search))
	}
	if f.State != "" {
		list = append(list, specs.ContactInState(f.State))
	}
	out := specs.Filter(ctx, specs.All(list...), all)
	sortBy(out, func(c models.Contact) string { return strings.TrimSpace(c.FullName) }, func(c models.Contact) string { return c.ID })
	page, total := paginate(out, f.Limit, f.Offset)
	return page, total, nil
}

func (r *MemoryRepository) DeleteContactCtx(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.contacts[id]; !ok {
		return errs.NewNotFound("DeleteContactCtx", "contact", id)
	}
	delete(r.contacts, id)
	return nil
}

func (r *MemoryRepository) SaveCompanyCtx(_ context.Context, c *models.Company) error {
	stampCompany(c, r.clock())
	r.mu.Lock()
	defer r.mu.Unlock()
	r.companies[c.ID] = *c
	return nil
}

func (r *MemoryRepository) GetCompanyCtx(_ context.Context, id string) (*models.Company, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.companies[id]
	if !ok {
		return nil, errs.NewNotFound("GetCompanyCtx", "company", id)
	}
	return &c, nil
}

func (r *MemoryRepository) ListCompaniesCtx(ctx context.Context, f domain.ListFilter) ([]models.Company, int, error) {
	r.mu.RLock()
	all := values(r.companies)
	r.mu.RUnlock()

	var list []specs.Specification[models.Company]
	if strings.TrimSpace(f.Search) != "" {
		list = append(list, specs.CompanyMatches(f.Search))
	}
	if f.State != "" {
		list = append(list, specs.CompanyInState(f.State))
	}
	out := specs.Filter(ctx, specs.All(list...), all)
	sortBy(out, func(c models.Company) string { return strings.TrimSpace(c.DisplayName()) }, func(c models.Company) string { return c.ID })
	page, total := paginate(out, f.Limit, f.Offset)
	return page, total, nil
}

func (r *MemoryRepository) DeleteCompanyCtx(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.companies[id]; !ok {
		return errs.NewNotFound("DeleteCompanyCtx", "company", id)
	}
	delete(r.companies, id)
	return nil
}

func (r *MemoryRepository) SaveVehicleCtx(_ context.Context, v *models.Vehicle) error {
	stampVehicle(v, r.clock())
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vehicles[v.ID] = *v
	return nil
}

func (r *MemoryRepository) GetVehicleCtx(_ context.Context, id string) (*models.Vehicle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.vehicles[id]
	if !ok {
		return nil, errs.NewNotFound("GetVehicleCtx", "vehicle", id)
	}
	return &v, nil
}

func (r *MemoryRepository) ListVehiclesCtx(ctx context.Context, f domain.ListFilter) ([]models.Vehicle, int, error) {
	r.mu.RLock()
	all := values(r.vehicles)
	r.mu.RUnlock()

	spec := specs.Any[models.Vehicle]()
	if strings.TrimSpace(f.Search) != "" {
		spec = specs.VehicleMatches(f.Search)
	}
	out := specs.Filter(ctx, spec, all)
	sortBy(out, func(v models.Vehicle) string { return v.Plate }, func(v models.Vehicle) string { return v.ID })
	page, total := paginate(out, f.Limit, f.Offset)
	return page, total, nil
}

func (r *MemoryRepository) ListVehiclesByCompanyCtx(ctx context.Context, companyID string) ([]models.Vehicle, error) {
	r.mu.RLock()
	all := values(r.vehicles)
	r.mu.RUnlock()

	out := specs.Filter(ctx, specs.VehicleOfCompany(companyID), all)
	sortBy(out, func(v models.Vehicle) string { return v.Plate }, func(v models.Vehicle) string { return v.ID })
	return out, nil
}

func (r *MemoryRepository) DeleteVehicleCtx(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.vehicles[id]; !ok {
		return errs.NewNotFound("DeleteVehicleCtx", "vehicle", id)
	}
	delete(r.vehicles, id)
	return nil
}

func (r *MemoryRepository) SaveConfirmedMatchCtx(_ context.Context, m *models.ConfirmedMatch) error {
	if m.ConfirmedAt.IsZero() {
		m.ConfirmedAt = r.clock()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *m
	cp.Reasons = append([]string(nil), m.Reasons...)
	r.matches[m.ContactID] = cp
	return nil
}

func (r *MemoryRepository) GetConfirmedMatchCtx(_ context.Context, contactID string) (*models.ConfirmedMatch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.matches[contactID]
	if !ok {
		return nil, errs.NewNotFound("GetConfirmedMatchCtx", "confirmed match", contactID)
	}
	return &m, nil
}

func (r *MemoryRepository) ListConfirmedMatchesCtx(_ context.Context, limit, offset int) ([]models.ConfirmedMatch, int, error) {
	r.mu.RLock()
	all := values(r.matches)
	r.mu.RUnlock()

	sortBy(all, func(m models.ConfirmedMatch) string { return "" }, func(m models.ConfirmedMatch) string { return m.ContactID })
	page, total := paginate(all, limit, offset)
	return page, total, nil
}

func (r *MemoryRepository) DeleteConfirmedMatchCtx(_ context.Context, contactID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.matches[contactID]; !ok {
		return errs.NewNotFound("DeleteConfirmedMatchCtx", "confirmed match", contactID)
	}
	delete(r.matches, contactID)
	return nil
}

func (r *MemoryRepository) SaveUserCtx(_ context.Context, u *models.User) error {
	stampUser(u, r.clock())
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = *u
	return nil
}

func (r *MemoryRepository) GetUserCtx(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, errs.NewNotFound("GetUserCtx", "user", id)
	}
	return &u, nil
}

func (r *MemoryRepository) ListUsersCtx(_ context.Context) ([]models.User, error) {
	r.mu.RLock()
	all := values(r.users)
	r.mu.RUnlock()

	sortBy(all, func(u models.User) string { return strings.ToLower(u.Email) }, func(u models.User) string { return u.ID })
	return all, nil
}

func (r *MemoryRepository) DeleteUserCtx(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return errs.NewNotFound("DeleteUserCtx", "user", id)
	}
	delete(r.users, id)
	return nil
}

func values[T any](m map[string]T) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}

func sortBy[T any](items []T, primary, secondary func(T) string) {
	sort.Slice(items, func(i, j int) bool {
		pi, pj := primary(items[i]), primary(items[j])
		if pi != pj {
			return pi < pj
		}
		return secondary(items[i]) < secondary(items[j])
	})
}

func paginate[T any](items []T, limit, offset int) ([]T, int) {
	total := len(items)
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return []T{}, total
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items, total
}
