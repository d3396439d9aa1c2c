package auth

import (
	"net"
	"net/http"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"fleet-crm/internal/models"
	"fleet-crm/pkg/logging"
)

// rolesFile is the YAML layout of ROLES_FILE:
//
//	default_role: viewer
//	users:
//	  u-1: admin
//	  marta@frota.com.br: manager
type rolesFile struct {
	DefaultRole models.Role            `yaml:"default_role"`
	Users       map[string]models.Role `yaml:"users"`
}

// RoleResolver maps user ids to roles. Roles only drive UI hints; nothing is enforced.
type RoleResolver struct {
	mu          sync.RWMutex
	roles       map[string]models.Role
	defaultRole models.Role
	loaded      bool
	path        string
	log         *logging.ComponentLogger
}

// NewRoleResolver loads path when it is set. A missing or broken file leaves every user on
// the viewer role and is logged, not returned.
func NewRoleResolver(path string, logger *logging.Logger) *RoleResolver {
	if logger == nil {
		logger = logging.NewNop()
	}
	r := &RoleResolver{
		roles:       make(map[string]models.Role),
		defaultRole: models.RoleViewer,
		path:        path,
		log:         logger.WithComponent("auth"),
	}
	if path == "" {
		return r
	}
	if err := r.Reload(); err != nil {
		r.log.Warn("roles file not loaded", logging.String("path", path), logging.Error(err))
	} else {
		r.log.Info("roles loaded", logging.String("path", path), logging.Int("entries", len(r.roles)))
	}
	return r
}

// Reload re-reads the roles file. Unknown roles are skipped.
func (r *RoleResolver) Reload() error {
	r.mu.RLock()
	path := r.path
	r.mu.RUnlock()
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return r.load(data)
}

// SetPath switches to another roles file and loads it.
func (r *RoleResolver) SetPath(path string) error {
	r.mu.Lock()
	r.path = path
	r.mu.Unlock()
	return r.Reload()
}

func (r *RoleResolver) load(data []byte) error {
	var f rolesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return err
	}

	roles := make(map[string]models.Role, len(f.Users))
	for id, role := range f.Users {
		role = models.Role(strings.ToLower(string(role)))
		if !role.Valid() {
			r.log.Warn("ignoring unknown role", logging.String("user", id), logging.String("role", string(role)))
			continue
		}
		roles[strings.ToLower(strings.TrimSpace(id))] = role
	}
	def := models.Role(strings.ToLower(string(f.DefaultRole)))
	if !def.Valid() {
		def = models.RoleViewer
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.roles = roles
	r.defaultRole = def
	r.loaded = true
	return nil
}

func (r *RoleResolver) IsLoaded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loaded
}

// Resolve returns the role for userID and whether it was listed explicitly.
// Lookups ignore case so e-mail identities work.
func (r *RoleResolver) Resolve(userID string) (models.Role, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	role, ok := r.roles[strings.ToLower(strings.TrimSpace(userID))]
	if !ok {
		return r.defaultRole, false
	}
	return role, true
}

// extractClientIP handles X-Forwarded-For and X-Real-IP for reverse proxy setups.
func extractClientIP(req *http.Request) string {
	if xff := req.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := req.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	ip, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return req.RemoteAddr
	}
	return ip
}
