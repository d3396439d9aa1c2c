package admin

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"fleet-crm/internal/advisor"
	"fleet-crm/internal/enrichment"
	"fleet-crm/internal/models"
	"fleet-crm/internal/validation"
	errs "fleet-crm/pkg/errors"
)

type validateRequest struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

type validateResponse struct {
	Kind      string `json:"kind"`
	Valid     bool   `json:"valid"`
	Formatted string `json:"formatted,omitempty"`
	Error     string `json:"error,omitempty"`
}

var formatters = map[string]func(string) string{
	"cpf":   validation.FormatCPF,
	"cnpj":  validation.FormatCNPJ,
	"cep":   validation.FormatCEP,
	"phone": validation.FormatPhone,
	"plate": validation.NormalizePlate,
}

// ValidateHandler handles POST /api/validate for a single document value.
func (s *Server) ValidateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req validateRequest
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		kind := strings.ToLower(strings.TrimSpace(req.Kind))
		resp := validateResponse{Kind: kind, Valid: true}
		if err := validation.ValidateDocument(kind, req.Value); err != nil {
			resp.Valid = false
			resp.Error = err.Error()
		} else if f, ok := formatters[kind]; ok {
			resp.Formatted = f(req.Value)
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// writeServiceError answers 503 for optional integrations that are switched off.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, enrichment.ErrDisabled), errors.Is(err, advisor.ErrDisabled):
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Message: err.Error()})
	case errors.Is(err, advisor.ErrBudgetExceeded):
		writeJSON(w, http.StatusTooManyRequests, errorBody{Message: err.Error()})
	default:
		s.writeError(w, r, err)
	}
}

// EnrichAddressHandler handles POST /api/enrich/address.
// Only blank fields are filled; the caller decides whether to keep the suggestion.
func (s *Server) EnrichAddressHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var addr models.Address
		if err := decodeJSON(r, &addr); err != nil {
			s.writeError(w, r, err)
			return
		}
		res, err := s.Enricher.EnrichAddress(r.Context(), addr)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// AdvisorKYCHandler handles POST /api/advisor/kyc/{kind}/{id}
func (s *Server) AdvisorKYCHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		vars := mux.Vars(r)

		var (
			name    string
			profile models.KYCProfile
		)
		switch models.SubjectKind(vars["kind"]) {
		case models.SubjectContact:
			c, err := s.Repo.GetContactCtx(ctx, vars["id"])
			if err != nil {
				s.writeError(w, r, err)
				return
			}
			name, profile = c.FullName, s.KYC.ContactProfile(*c)
		case models.SubjectCompany:
			c, err := s.Repo.GetCompanyCtx(ctx, vars["id"])
			if err != nil {
				s.writeError(w, r, err)
				return
			}
			name, profile = c.DisplayName(), s.KYC.CompanyProfile(*c)
		case models.SubjectVehicle:
			v, err := s.Repo.GetVehicleCtx(ctx, vars["id"])
			if err != nil {
				s.writeError(w, r, err)
				return
			}
			name, profile = strings.TrimSpace(v.Plate+" "+v.Brand+" "+v.Model), s.KYC.VehicleProfile(*v)
		default:
			s.writeError(w, r, errs.NewNotFound("AdvisorKYC", "kind", vars["kind"]))
			return
		}

		if s.Advisor == nil {
			s.writeServiceError(w, r, advisor.ErrDisabled)
			return
		}
		note, err := s.Advisor.KYCNote(ctx, name, profile)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"profile": profile, "note": note})
	}
}

// AdvisorMatchHandler handles POST /api/advisor/match
func (s *Server) AdvisorMatchHandler() http.HandlerFunc {
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
		if s.Advisor == nil {
			s.writeServiceError(w, r, advisor.ErrDisabled)
			return
		}
		sc := s.Engine.Matcher().ScoreMatch(*contact, *company)
		result := models.MatchResult{
			ContactID:   contact.ID,
			ContactName: contact.FullName,
			CompanyID:   company.ID,
			CompanyName: company.DisplayName(),
			Score:       sc.Score,
			Reasons:     nonNilSlice(sc.Reasons),
		}
		note, err := s.Advisor.MatchNote(ctx, result)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"match": result, "note": note})
	}
}
