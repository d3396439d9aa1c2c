package admin

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"fleet-crm/internal/domain"
	"fleet-crm/internal/matching"
	"fleet-crm/internal/models"
	"fleet-crm/internal/processor"
	errs "fleet-crm/pkg/errors"
	"fleet-crm/pkg/events"
	"fleet-crm/pkg/logging"
)

type runRequest struct {
	MinScore *float64 `json:"min_score,omitempty"`
}

type runResponse struct {
	RunID     string               `json:"run_id"`
	MinScore  float64              `json:"min_score"`
	Contacts  int                  `json:"contacts"`
	Companies int                  `json:"companies"`
	Results   []models.MatchResult `json:"results"`
	ElapsedMs int64                `json:"elapsed_ms"`
}

type pairRequest struct {
	ContactID string `json:"contact_id"`
	CompanyID string `json:"company_id"`
}

// MatchRunHandler handles POST /api/matching/run.
// Scores every stored contact against every stored company and answers synchronously.
func (s *Server) MatchRunHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req runRequest
		if r.ContentLength > 0 {
			if err := decodeJSON(r, &req); err != nil {
				s.writeError(w, r, err)
				return
			}
		}
		m := s.Engine.Matcher()
		if req.MinScore != nil {
			if *req.MinScore < 0 || *req.MinScore > 100 {
				s.writeError(w, r, errs.NewValidation("MatchRun", "min_score must be between 0 and 100", nil))
				return
			}
			cfg := m.Config()
			cfg.MinScore = *req.MinScore
			m = matching.NewMatcher(cfg)
		}

		start := time.Now()
		contacts, companies, err := s.loadDataset(ctx)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		results, err := processor.MatchParallel(ctx, m, contacts, companies, s.Partitions)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		resp := runResponse{
			RunID:     uuid.NewString(),
			MinScore:  m.Config().MinScore,
			Contacts:  len(contacts),
			Companies: len(companies),
			Results:   results,
			ElapsedMs: time.Since(start).Milliseconds(),
		}
		s.emit(ctx, events.MatchRunCompleted{
			Base:      events.NewBase(resp.RunID, actor(ctx)),
			Contacts:  resp.Contacts,
			Companies: resp.Companies,
			Results:   len(results),
			ElapsedMs: resp.ElapsedMs,
		})
		s.log.WithContext(ctx).Info("match run completed",
			logging.Int("contacts", resp.Contacts), logging.Int("companies", resp.Companies),
			logging.Int("results", len(results)), logging.Int64("elapsed_ms", resp.ElapsedMs))
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) loadDataset(ctx context.Context) ([]models.Contact, []models.Company, error) {
	contacts, _, err := s.Repo.ListContactsCtx(ctx, domain.ListFilter{})
	if err != nil {
		return nil, nil, err
	}
	companies, _, err := s.Repo.ListCompaniesCtx(ctx, domain.ListFilter{})
	if err != nil {
		return nil, nil, err
	}
	return contacts, companies, nil
}

// SubmitRunHandler handles POST /api/matching/runs
func (s *Server) SubmitRunHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, err := s.Engine.Submit(actor(r.Context()))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		w.Header().Set("Location", "/api/matching/runs/"+run.ID)
		writeJSON(w, http.StatusAccepted, run)
	}
}

// ListRunsHandler handles GET /api/matching/runs
func (s *Server) ListRunsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"runs":  nonNilSlice(s.Engine.List()),
			"stats": s.Engine.GetStats(),
		})
	}
}

// GetRunHandler handles GET /api/matching/runs/{id}
func (s *Server) GetRunHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		run, ok := s.Engine.Get(id)
		if !ok {
			s.writeError(w, r, errs.NewNotFound("GetRun", "run", id))
			return
		}
		writeJSON(w, http.StatusOK, run)
	}
}

func (s *Server) loadPair(ctx context.Context, req pairRequest) (*models.Contact, *models.Company, error) {
	if req.ContactID == "" || req.CompanyID == "" {
		return nil, nil, errs.NewFieldValidation("pair", map[string]string{
			"contact_id": "obrigatório",
			"company_id": "obrigatório",
		})
	}
	contact, err := s.Repo.GetContactCtx(ctx, req.ContactID)
	if err != nil {
		return nil, nil, err
	}
	company, err := s.Repo.GetCompanyCtx(ctx, req.CompanyID)
	if err != nil {
		return nil, nil, err
	}
	return contact, company, nil
}

// ScorePairHandler handles POST /api/matching/score and explains one pair, without threshold.
func (s *Server) ScorePairHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req pairRequest
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		contact, company, err := s.loadPair(r.Context(), req)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		m := s.Engine.Matcher()
		sc := m.ScoreMatch(*contact, *company)
		writeJSON(w, http.StatusOK, map[string]any{
			"contact_id": contact.ID,
			"company_id": company.ID,
			"score":      sc.Score,
			"reasons":    nonNilSlice(sc.Reasons),
			"suggested":  sc.Score >= m.Config().MinScore,
		})
	}
}

// ConfirmMatchHandler handles POST /api/matching/confirmed.
// The pair is rescored; a pair below the current threshold cannot be confirmed.
// Confirming replaces any previous confirmation of the contact.
func (s *Server) ConfirmMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req pairRequest
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		contact, company, err := s.loadPair(ctx, req)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		m := s.Engine.Matcher()
		sc := m.ScoreMatch(*contact, *company)
		if sc.Score < m.Config().MinScore {
			s.writeError(w, r, errs.NewBiz("ConfirmMatch",
				"score "+strconv.FormatFloat(sc.Score, 'f', -1, 64)+" is below the match threshold", nil))
			return
		}

		cm := &models.ConfirmedMatch{
			ContactID:   contact.ID,
			CompanyID:   company.ID,
			Score:       sc.Score,
			Reasons:     nonNilSlice(sc.Reasons),
			ConfirmedBy: actor(ctx),
			ConfirmedAt: time.Now().UTC(),
		}
		if err := s.Repo.SaveConfirmedMatchCtx(ctx, cm); err != nil {
			s.writeError(w, r, err)
			return
		}
		s.emit(ctx, events.MatchConfirmed{
			Base:      events.NewBase(contact.ID, cm.ConfirmedBy),
			CompanyID: company.ID,
			Score:     sc.Score,
		})
		writeJSON(w, http.StatusCreated, cm)
	}
}

// ListConfirmedHandler handles GET /api/matching/confirmed
func (s *Server) ListConfirmedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := listFilter(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		items, total, err := s.Repo.ListConfirmedMatchesCtx(r.Context(), f.Limit, f.Offset)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, listBody[models.ConfirmedMatch]{Items: nonNilSlice(items), Total: total, Limit: f.Limit, Offset: f.Offset})
	}
}

// UnconfirmMatchHandler handles DELETE /api/matching/confirmed/{contactID}
func (s *Server) UnconfirmMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Repo.DeleteConfirmedMatchCtx(r.Context(), mux.Vars(r)["contactID"]); err != nil {
			s.writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
