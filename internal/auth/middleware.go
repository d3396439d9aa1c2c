package auth

import (
	"context"
	"net/http"
	"strings"

	"fleet-crm/internal/models"
	"fleet-crm/pkg/logging"
)

// UserHeader carries the caller's user id, set by the fronting proxy or the UI.
const UserHeader = "X-User-ID"

type contextKey string

const identityKey contextKey = "identity"

// Identity is what the middleware learned about the caller.
type Identity struct {
	UserID   string      `json:"user_id"`
	Role     models.Role `json:"role"`
	ClientIP string      `json:"client_ip"`
}

// UserLookup finds stored users; a stored active user's role wins over the roles file.
type UserLookup interface {
	GetUserCtx(ctx context.Context, id string) (*models.User, error)
}

// Middleware resolves the caller's identity and role and stores them in the request context.
// Requests are never rejected.
type Middleware struct {
	resolver *RoleResolver
	users    UserLookup
}

func NewMiddleware(resolver *RoleResolver, users UserLookup) *Middleware {
	return &Middleware{resolver: resolver, users: users}
}

func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := Identity{
			UserID:   strings.TrimSpace(r.Header.Get(UserHeader)),
			ClientIP: extractClientIP(r),
		}
		id.Role = m.roleFor(r.Context(), id.UserID)

		ctx := context.WithValue(r.Context(), identityKey, id)
		if id.UserID != "" {
			ctx = logging.WithUserID(ctx, id.UserID)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Middleware) roleFor(ctx context.Context, userID string) models.Role {
	if userID == "" {
		return models.RoleViewer
	}
	if m.users != nil {
		if u, err := m.users.GetUserCtx(ctx, userID); err == nil && u.Active && u.Role.Valid() {
			return u.Role
		}
	}
	role, _ := m.resolver.Resolve(userID)
	return role
}

// FromContext returns the identity set by the middleware. Anonymous viewers otherwise.
func FromContext(ctx context.Context) Identity {
	if id, ok := ctx.Value(identityKey).(Identity); ok {
		return id
	}
	return Identity{Role: models.RoleViewer}
}

// WithIdentity is used by tests and background jobs.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}
