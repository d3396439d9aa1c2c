package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-crm/internal/domain"
	"fleet-crm/internal/models"
	testutil "fleet-crm/internal/testing"
	errs "fleet-crm/pkg/errors"
)

func exerciseRepository(t *testing.T, repo domain.Repository) {
	t.Helper()
	ctx := context.Background()

	for _, c := range testutil.Contacts() {
		c := c
		require.NoError(t, repo.SaveContactCtx(ctx, &c))
	}
	for _, c := range testutil.Companies() {
		c := c
		require.NoError(t, repo.SaveCompanyCtx(ctx, &c))
	}
	for _, v := range testutil.Vehicles() {
		v := v
		require.NoError(t, repo.SaveVehicleCtx(ctx, &v))
	}

	t.Run("contacts", func(t *testing.T) {
		got, err := repo.GetContactCtx(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, "Ana", got.FullName)
		assert.False(t, got.CreatedAt.IsZero())

		list, total, err := repo.ListContactsCtx(ctx, domain.ListFilter{})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		assert.Equal(t, []string{"c1", "c2", "c3"}, []string{list[0].ID, list[1].ID, list[2].ID})

		list, total, err = repo.ListContactsCtx(ctx, domain.ListFilter{Search: "bru", Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.Equal(t, "c2", list[0].ID)

		page, total, err := repo.ListContactsCtx(ctx, domain.ListFilter{Limit: 1, Offset: 1})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		require.Len(t, page, 1)
		assert.Equal(t, "c2", page[0].ID)
	})

	t.Run("whole record replace", func(t *testing.T) {
		c, err := repo.GetContactCtx(ctx, "c3")
		require.NoError(t, err)
		replacement := models.Contact{ID: "c3", FullName: "Caio Prado", CreatedAt: c.CreatedAt}
		require.NoError(t, repo.SaveContactCtx(ctx, &replacement))

		got, err := repo.GetContactCtx(ctx, "c3")
		require.NoError(t, err)
		assert.Equal(t, "Caio Prado", got.FullName)
		assert.Empty(t, got.Employer)
		assert.WithinDuration(t, c.CreatedAt, got.CreatedAt, time.Second)
	})

	t.Run("new records get ids", func(t *testing.T) {
		c := models.Contact{FullName: "Sem Id"}
		require.NoError(t, repo.SaveContactCtx(ctx, &c))
		assert.NotEmpty(t, c.ID)
		require.NoError(t, repo.DeleteContactCtx(ctx, c.ID))
	})

	t.Run("not found", func(t *testing.T) {
		_, err := repo.GetCompanyCtx(ctx, "missing")
		assert.True(t, errs.Is(err, errs.ErrNotFound))
		assert.True(t, errs.Is(repo.DeleteVehicleCtx(ctx, "missing"), errs.ErrNotFound))
	})

	t.Run("fleet", func(t *testing.T) {
		fleet, err := repo.ListVehiclesByCompanyCtx(ctx, "k2")
		require.NoError(t, err)
		assert.Len(t, fleet, 2)
		none, err := repo.ListVehiclesByCompanyCtx(ctx, "k1")
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("confirmed matches replace per contact", func(t *testing.T) {
		require.NoError(t, repo.SaveConfirmedMatchCtx(ctx, &models.ConfirmedMatch{ContactID: "c1", CompanyID: "k1", Score: 70}))
		require.NoError(t, repo.SaveConfirmedMatchCtx(ctx, &models.ConfirmedMatch{ContactID: "c1", CompanyID: "k3", Score: 70}))

		list, total, err := repo.ListConfirmedMatchesCtx(ctx, 10, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.Equal(t, "k3", list[0].CompanyID)
		assert.False(t, list[0].ConfirmedAt.IsZero())

		require.NoError(t, repo.DeleteConfirmedMatchCtx(ctx, "c1"))
		_, err = repo.GetConfirmedMatchCtx(ctx, "c1")
		assert.True(t, errs.Is(err, errs.ErrNotFound))
	})

	t.Run("users", func(t *testing.T) {
		u := models.User{Name: "Marta", Email: "marta@frota.com.br", Role: models.RoleManager, Active: true}
		require.NoError(t, repo.SaveUserCtx(ctx, &u))
		got, err := repo.GetUserCtx(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RoleManager, got.Role)

		users, err := repo.ListUsersCtx(ctx)
		require.NoError(t, err)
		assert.Len(t, users, 1)
		require.NoError(t, repo.DeleteUserCtx(ctx, u.ID))
	})
}

func TestMemoryRepository(t *testing.T) {
	exerciseRepository(t, NewMemoryRepository())
}

func TestMemoryRepository_StateFilter(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	require.NoError(t, repo.SaveCompanyCtx(ctx, &models.Company{ID: "a", LegalName: "A", Address: models.Address{State: "SP"}}))
	require.NoError(t, repo.SaveCompanyCtx(ctx, &models.Company{ID: "b", LegalName: "B", Address: models.Address{State: "RS"}}))

	list, total, err := repo.ListCompaniesCtx(ctx, domain.ListFilter{State: "rs"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "b", list[0].ID)
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	c := models.Contact{ID: "x", FullName: "Original"}
	require.NoError(t, repo.SaveContactCtx(ctx, &c))
	c.FullName = "Mutated"

	got, err := repo.GetContactCtx(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, "Original", got.FullName)
}

func TestSQLRepository(t *testing.T) {
	dbt := testutil.NewDBTest(t)
	exerciseRepository(t, NewSQLRepository(dbt.DB))
}

func BenchmarkMemoryListContacts(b *testing.B) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	contacts, _ := testutil.RandomDataset(1, 500, 0)
	for i := range contacts {
		_ = repo.SaveContactCtx(ctx, &contacts[i])
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = repo.ListContactsCtx(ctx, domain.ListFilter{Search: "contato 4", Limit: 20})
	}
}
