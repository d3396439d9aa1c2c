package admin

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"fleet-crm/internal/auth"
	"fleet-crm/internal/drafts"
	"fleet-crm/internal/validation"
	errs "fleet-crm/pkg/errors"
	"fleet-crm/pkg/logging"
)

type draftRequest struct {
	Step int            `json:"step"`
	Data map[string]any `json:"data"`
}

// draftOwner resolves the wizard and the caller. Drafts are per user, so anonymous callers get 401.
func (s *Server) draftOwner(w http.ResponseWriter, r *http.Request) (drafts.Wizard, string, bool) {
	wizard := drafts.Wizard(mux.Vars(r)["wizard"])
	if !wizard.Valid() {
		s.writeError(w, r, errs.NewNotFound("draft", "wizard", string(wizard)))
		return "", "", false
	}
	owner := auth.FromContext(r.Context()).UserID
	if owner == "" {
		writeJSON(w, http.StatusUnauthorized, errorBody{Message: auth.UserHeader + " header required"})
		return "", "", false
	}
	return wizard, owner, true
}

// SaveDraftHandler handles PUT /api/drafts/{wizard}.
// The body replaces the stored draft as a whole.
func (s *Server) SaveDraftHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		wizard, owner, ok := s.draftOwner(w, r)
		if !ok {
			return
		}

		var req draftRequest
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		if fields := validation.ValidateDraft(wizard, req.Data); len(fields) > 0 {
			s.writeError(w, r, errs.NewFieldValidation("SaveDraft", fields))
			return
		}

		d, err := s.Drafts.Save(ctx, drafts.Draft{Wizard: wizard, OwnerID: owner, Step: req.Step, Data: req.Data})
		if err != nil {
			s.writeError(w, r, errs.NewExternal("SaveDraft", "drafts", "failed to save draft", err))
			return
		}
		s.log.WithContext(ctx).Debug("draft saved",
			logging.String("wizard", string(wizard)), logging.Int("step", d.Step), logging.Int("fields", len(d.Data)))
		writeJSON(w, http.StatusOK, d)
	}
}

// GetDraftHandler handles GET /api/drafts/{wizard}
func (s *Server) GetDraftHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wizard, owner, ok := s.draftOwner(w, r)
		if !ok {
			return
		}
		d, err := s.Drafts.Get(r.Context(), wizard, owner)
		if errors.Is(err, drafts.ErrNotFound) {
			writeJSON(w, http.StatusOK, map[string]any{"has_draft": false})
			return
		}
		if err != nil {
			s.writeError(w, r, errs.NewExternal("GetDraft", "drafts", "failed to load draft", err))
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"has_draft": true, "draft": d})
	}
}

// ClearDraftHandler handles DELETE /api/drafts/{wizard}
func (s *Server) ClearDraftHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wizard, owner, ok := s.draftOwner(w, r)
		if !ok {
			return
		}
		if err := s.Drafts.Delete(r.Context(), wizard, owner); err != nil {
			s.writeError(w, r, errs.NewExternal("ClearDraft", "drafts", "failed to delete draft", err))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
