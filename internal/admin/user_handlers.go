package admin

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"fleet-crm/internal/models"
	errs "fleet-crm/pkg/errors"
	"fleet-crm/pkg/events"
	"fleet-crm/pkg/logging"
)

// ListUsersHandler handles GET /api/users
func (s *Server) ListUsersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := s.Repo.ListUsersCtx(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, listBody[models.User]{Items: nonNilSlice(users), Total: len(users)})
	}
}

// CreateUserHandler handles POST /api/users
func (s *Server) CreateUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var u models.User
		if err := decodeJSON(r, &u); err != nil {
			s.writeError(w, r, err)
			return
		}
		u.Email = strings.ToLower(strings.TrimSpace(u.Email))
		if fields := s.Validator.ValidateStructured(u); len(fields) > 0 {
			s.writeError(w, r, errs.NewFieldValidation("CreateUser", fields))
			return
		}
		if err := s.Repo.SaveUserCtx(r.Context(), &u); err != nil {
			s.writeError(w, r, err)
			return
		}
		s.log.WithContext(r.Context()).Info("user created",
			logging.String("user_id", u.ID), logging.String("role", string(u.Role)))
		writeJSON(w, http.StatusCreated, u)
	}
}

type userUpdate struct {
	Name   *string      `json:"name,omitempty"`
	Role   *models.Role `json:"role,omitempty"`
	Active *bool        `json:"active,omitempty"`
}

// UpdateUserHandler handles PUT /api/users/{id}: rename, change role or (de)activate.
func (s *Server) UpdateUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		u, err := s.Repo.GetUserCtx(ctx, mux.Vars(r)["id"])
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		var req userUpdate
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		if req.Name != nil {
			u.Name = *req.Name
		}
		if req.Role != nil {
			u.Role = *req.Role
		}
		if req.Active != nil {
			u.Active = *req.Active
		}
		if fields := s.Validator.ValidateStructured(*u); len(fields) > 0 {
			s.writeError(w, r, errs.NewFieldValidation("UpdateUser", fields))
			return
		}
		if err := s.Repo.SaveUserCtx(ctx, u); err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, u)
	}
}

// DeleteUserHandler handles DELETE /api/users/{id}
func (s *Server) DeleteUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Repo.DeleteUserCtx(r.Context(), mux.Vars(r)["id"]); err != nil {
			s.writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// RecentEventsHandler handles GET /api/audit?limit=N
func (s *Server) RecentEventsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := intParam(r.URL.Query().Get("limit"), 50)
		if err != nil {
			s.writeError(w, r, errs.NewValidation("RecentEvents", "invalid limit", err))
			return
		}
		list, err := s.Events.Recent(r.Context(), limit)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"events": nonNilSlice(list)})
	}
}

// SubjectEventsHandler handles GET /api/audit/{subject}: the history plus its replayed state.
func (s *Server) SubjectEventsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := s.Events.ListBySubject(r.Context(), mux.Vars(r)["subject"])
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"events": nonNilSlice(list),
			"state":  events.Replay(list),
		})
	}
}
