package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-crm/internal/models"
	errs "fleet-crm/pkg/errors"
)

func writeRoles(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roles.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRoleResolver(t *testing.T) {
	path := writeRoles(t, `
default_role: operator
users:
  u-1: admin
  Marta@Frota.com.br: MANAGER
  u-2: superuser
`)
	r := NewRoleResolver(path, nil)
	require.True(t, r.IsLoaded())

	tests := []struct {
		user   string
		role   models.Role
		listed bool
	}{
		{"u-1", models.RoleAdmin, true},
		{"marta@frota.com.br", models.RoleManager, true},
		{"u-2", models.RoleOperator, false},
		{"someone", models.RoleOperator, false},
	}
	for _, tt := range tests {
		t.Run(tt.user, func(t *testing.T) {
			role, listed := r.Resolve(tt.user)
			assert.Equal(t, tt.role, role)
			assert.Equal(t, tt.listed, listed)
		})
	}
}

func TestRoleResolver_MissingFile(t *testing.T) {
	r := NewRoleResolver(filepath.Join(t.TempDir(), "none.yaml"), nil)
	assert.False(t, r.IsLoaded())
	role, _ := r.Resolve("u-1")
	assert.Equal(t, models.RoleViewer, role)
}

func TestRoleResolver_Reload(t *testing.T) {
	path := writeRoles(t, "users:\n  u-1: viewer\n")
	r := NewRoleResolver(path, nil)
	role, _ := r.Resolve("u-1")
	assert.Equal(t, models.RoleViewer, role)

	require.NoError(t, os.WriteFile(path, []byte("users:\n  u-1: admin\n"), 0o644))
	require.NoError(t, r.Reload())
	role, _ = r.Resolve("u-1")
	assert.Equal(t, models.RoleAdmin, role)

	other := writeRoles(t, "users:\n  u-9: manager\n")
	require.NoError(t, r.SetPath(other))
	role, ok := r.Resolve("u-9")
	assert.True(t, ok)
	assert.Equal(t, models.RoleManager, role)
}

type stubUsers map[string]models.User

func (s stubUsers) GetUserCtx(_ context.Context, id string) (*models.User, error) {
	u, ok := s[id]
	if !ok {
		return nil, errs.NewNotFound("GetUserCtx", "user", id)
	}
	return &u, nil
}

func TestMiddleware(t *testing.T) {
	r := NewRoleResolver(writeRoles(t, "users:\n  u-1: operator\n  u-2: operator\n"), nil)
	users := stubUsers{
		"u-1": {ID: "u-1", Role: models.RoleAdmin, Active: true},
		"u-2": {ID: "u-2", Role: models.RoleAdmin, Active: false},
	}
	mw := NewMiddleware(r, users)

	var got Identity
	h := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		got = FromContext(req.Context())
	}))

	tests := []struct {
		header string
		xff    string
		role   models.Role
		ip     string
	}{
		{"u-1", "", models.RoleAdmin, "10.0.0.1"},
		{"u-2", "", models.RoleOperator, "10.0.0.1"},
		{"", "203.0.113.9, 10.0.0.2", models.RoleViewer, "203.0.113.9"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		req.Header.Set(UserHeader, tt.header)
		if tt.xff != "" {
			req.Header.Set("X-Forwarded-For", tt.xff)
		}
		h.ServeHTTP(httptest.NewRecorder(), req)
		assert.Equal(t, tt.header, got.UserID)
		assert.Equal(t, tt.role, got.Role)
		assert.Equal(t, tt.ip, got.ClientIP)
	}
}

func TestFromContextDefault(t *testing.T) {
	assert.Equal(t, models.RoleViewer, FromContext(context.Background()).Role)
}

func TestPermissionsFor(t *testing.T) {
	assert.True(t, PermissionsFor(models.RoleAdmin).ManageUsers)
	assert.False(t, PermissionsFor(models.RoleManager).ManageUsers)
	assert.True(t, PermissionsFor(models.RoleOperator).ConfirmMatches)
	assert.False(t, PermissionsFor(models.RoleOperator).DeleteRecords)
	assert.Equal(t, Permissions{}, PermissionsFor(models.RoleViewer))
}
