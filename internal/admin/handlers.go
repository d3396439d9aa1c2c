// Package admin serves the CRM's JSON API: records, KYC, matching, drafts and users.
package admin

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"fleet-crm/internal/advisor"
	"fleet-crm/internal/auth"
	"fleet-crm/internal/domain"
	"fleet-crm/internal/drafts"
	"fleet-crm/internal/enrichment"
	"fleet-crm/internal/kyc"
	"fleet-crm/internal/models"
	"fleet-crm/internal/processor"
	"fleet-crm/internal/validation"
	"fleet-crm/pkg/events"
	"fleet-crm/pkg/logging"
)

// Deps are the collaborators of the API. Nil Enricher and Advisor are replaced by disabled ones.
type Deps struct {
	Repo       domain.Repository
	Drafts     drafts.Store
	Engine     processor.Engine
	Events     events.Store
	KYC        *kyc.Scorer
	Validator  *validation.Validator
	Enricher   *enrichment.Enricher
	Advisor    *advisor.Advisor
	Logger     *logging.Logger
	Partitions int // scoring goroutines for synchronous match runs
}

type Server struct {
	Deps
	log *logging.ComponentLogger
}

func NewServer(d Deps) *Server {
	if d.Logger == nil {
		d.Logger = logging.NewNop()
	}
	if d.KYC == nil {
		d.KYC = kyc.NewScorer()
	}
	if d.Validator == nil {
		d.Validator = validation.New()
	}
	if d.Events == nil {
		d.Events = events.NewMemoryStore()
	}
	if d.Enricher == nil {
		d.Enricher = enrichment.NewWithClient(nil, 0, d.Logger)
	}
	if d.Advisor == nil {
		// only fails when the embedded prompts do not parse
		d.Advisor, _ = advisor.NewWithClient(nil, advisor.DefaultConfig(), d.Logger)
	}
	return &Server{Deps: d, log: d.Logger.WithComponent("api")}
}

// Register mounts every API route under /api.
func (s *Server) Register(router *mux.Router) {
	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/me", s.MeHandler()).Methods(http.MethodGet)
	api.HandleFunc("/stats", s.StatsHandler()).Methods(http.MethodGet)

	api.HandleFunc("/contacts", s.ListContactsHandler()).Methods(http.MethodGet)
	api.HandleFunc("/contacts", s.CreateContactHandler()).Methods(http.MethodPost)
	api.HandleFunc("/contacts/{id}", s.GetContactHandler()).Methods(http.MethodGet)
	api.HandleFunc("/contacts/{id}", s.ReplaceContactHandler()).Methods(http.MethodPut)
	api.HandleFunc("/contacts/{id}", s.DeleteContactHandler()).Methods(http.MethodDelete)
	api.HandleFunc("/contacts/{id}/kyc", s.ContactKYCHandler()).Methods(http.MethodGet)

	api.HandleFunc("/companies", s.ListCompaniesHandler()).Methods(http.MethodGet)
	api.HandleFunc("/companies", s.CreateCompanyHandler()).Methods(http.MethodPost)
	api.HandleFunc("/companies/{id}", s.GetCompanyHandler()).Methods(http.MethodGet)
	api.HandleFunc("/companies/{id}", s.ReplaceCompanyHandler()).Methods(http.MethodPut)
	api.HandleFunc("/companies/{id}", s.DeleteCompanyHandler()).Methods(http.MethodDelete)
	api.HandleFunc("/companies/{id}/kyc", s.CompanyKYCHandler()).Methods(http.MethodGet)
	api.HandleFunc("/companies/{id}/vehicles", s.CompanyVehiclesHandler()).Methods(http.MethodGet)
	api.HandleFunc("/companies/{id}/fleet", s.FleetSummaryHandler()).Methods(http.MethodGet)

	api.HandleFunc("/vehicles", s.ListVehiclesHandler()).Methods(http.MethodGet)
	api.HandleFunc("/vehicles", s.CreateVehicleHandler()).Methods(http.MethodPost)
	api.HandleFunc("/vehicles/{id}", s.GetVehicleHandler()).Methods(http.MethodGet)
	api.HandleFunc("/vehicles/{id}", s.ReplaceVehicleHandler()).Methods(http.MethodPut)
	api.HandleFunc("/vehicles/{id}", s.DeleteVehicleHandler()).Methods(http.MethodDelete)
	api.HandleFunc("/vehicles/{id}/kyc", s.VehicleKYCHandler()).Methods(http.MethodGet)

	api.HandleFunc("/matching/run", s.MatchRunHandler()).Methods(http.MethodPost)
	api.HandleFunc("/matching/runs", s.SubmitRunHandler()).Methods(http.MethodPost)
	api.HandleFunc("/matching/runs", s.ListRunsHandler()).Methods(http.MethodGet)
	api.HandleFunc("/matching/runs/{id}", s.GetRunHandler()).Methods(http.MethodGet)
	api.HandleFunc("/matching/score", s.ScorePairHandler()).Methods(http.MethodPost)
	api.HandleFunc("/matching/confirmed", s.ConfirmMatchHandler()).Methods(http.MethodPost)
	api.HandleFunc("/matching/confirmed", s.ListConfirmedHandler()).Methods(http.MethodGet)
	api.HandleFunc("/matching/confirmed/{contactID}", s.UnconfirmMatchHandler()).Methods(http.MethodDelete)

	api.HandleFunc("/drafts/{wizard}", s.GetDraftHandler()).Methods(http.MethodGet)
	api.HandleFunc("/drafts/{wizard}", s.SaveDraftHandler()).Methods(http.MethodPut)
	api.HandleFunc("/drafts/{wizard}", s.ClearDraftHandler()).Methods(http.MethodDelete)

	api.HandleFunc("/validate", s.ValidateHandler()).Methods(http.MethodPost)
	api.HandleFunc("/enrich/address", s.EnrichAddressHandler()).Methods(http.MethodPost)
	api.HandleFunc("/advisor/kyc/{kind}/{id}", s.AdvisorKYCHandler()).Methods(http.MethodPost)
	api.HandleFunc("/advisor/match", s.AdvisorMatchHandler()).Methods(http.MethodPost)

	api.HandleFunc("/users", s.ListUsersHandler()).Methods(http.MethodGet)
	api.HandleFunc("/users", s.CreateUserHandler()).Methods(http.MethodPost)
	api.HandleFunc("/users/{id}", s.UpdateUserHandler()).Methods(http.MethodPut)
	api.HandleFunc("/users/{id}", s.DeleteUserHandler()).Methods(http.MethodDelete)

	api.HandleFunc("/audit", s.RecentEventsHandler()).Methods(http.MethodGet)
	api.HandleFunc("/audit/{subject}", s.SubjectEventsHandler()).Methods(http.MethodGet)
}

// MeHandler handles GET /api/me
func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := auth.FromContext(r.Context())
		writeJSON(w, http.StatusOK, map[string]any{
			"identity":    id,
			"permissions": auth.PermissionsFor(id.Role),
		})
	}
}

// StatsHandler handles GET /api/stats
func (s *Server) StatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{"engine": s.Engine.GetStats()}
		if n, err := s.Drafts.Count(r.Context()); err == nil {
			resp["drafts"] = n
		}
		if s.Advisor != nil && s.Advisor.Enabled() {
			resp["advisor_costs"] = s.Advisor.CostStats()
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// emit appends audit events; failures are logged and never fail the request.
func (s *Server) emit(ctx context.Context, ev ...events.Event) {
	if err := s.Events.Append(ctx, ev...); err != nil {
		s.log.WithContext(ctx).Warn("audit append failed", logging.Error(err))
	}
}

func actor(ctx context.Context) string {
	return auth.FromContext(ctx).UserID
}

func savedEvent(ctx context.Context, p models.KYCProfile) events.Event {
	return events.RecordSaved{
		Base:  events.NewBase(p.SubjectID, actor(ctx)),
		Kind:  p.Subject,
		Score: p.Score,
		Tier:  p.Tier,
	}
}
