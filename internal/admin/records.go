package admin

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"fleet-crm/internal/domain"
	"fleet-crm/internal/domain/specs"
	"fleet-crm/internal/kyc"
	"fleet-crm/internal/models"
	errs "fleet-crm/pkg/errors"
	"fleet-crm/pkg/events"
	"fleet-crm/pkg/logging"
)

// resource binds the generic CRUD handlers to one record type.
type resource[T any] struct {
	name    string
	get     func(context.Context, string) (*T, error)
	list    func(context.Context, domain.ListFilter) ([]T, int, error)
	save    func(context.Context, *T) error
	del     func(context.Context, string) error
	id      func(*T) *string
	created func(*T) *time.Time
	profile func(T) models.KYCProfile
	tierIs  func(models.RiskTier) specs.Specification[T]
	deleted func(context.Context, string)
}

type recordBody[T any] struct {
	Record T                 `json:"record"`
	KYC    models.KYCProfile `json:"kyc"`
}

type kycBody struct {
	models.KYCProfile
	NextReviewAt time.Time `json:"next_review_at"`
}

func (s *Server) contacts() resource[models.Contact] {
	return resource[models.Contact]{
		name:    "contact",
		get:     s.Repo.GetContactCtx,
		list:    s.Repo.ListContactsCtx,
		save:    s.Repo.SaveContactCtx,
		del:     s.Repo.DeleteContactCtx,
		id:      func(c *models.Contact) *string { return &c.ID },
		created: func(c *models.Contact) *time.Time { return &c.CreatedAt },
		profile: s.KYC.ContactProfile,
		tierIs:  specs.ContactTierIs,
		deleted: func(ctx context.Context, id string) {
			// a removed contact keeps no confirmed match
			if err := s.Repo.DeleteConfirmedMatchCtx(ctx, id); err != nil && !errs.Is(err, errs.ErrNotFound) {
				s.log.WithContext(ctx).Warn("confirmed match cleanup failed", logging.String("contact_id", id), logging.Error(err))
			}
		},
	}
}

func (s *Server) companies() resource[models.Company] {
	return resource[models.Company]{
		name:    "company",
		get:     s.Repo.GetCompanyCtx,
		list:    s.Repo.ListCompaniesCtx,
		save:    s.Repo.SaveCompanyCtx,
		del:     s.Repo.DeleteCompanyCtx,
		id:      func(c *models.Company) *string { return &c.ID },
		created: func(c *models.Company) *time.Time { return &c.CreatedAt },
		profile: s.KYC.CompanyProfile,
		tierIs:  specs.CompanyTierIs,
	}
}

func (s *Server) vehicles() resource[models.Vehicle] {
	return resource[models.Vehicle]{
		name:    "vehicle",
		get:     s.Repo.GetVehicleCtx,
		list:    s.Repo.ListVehiclesCtx,
		save:    s.Repo.SaveVehicleCtx,
		del:     s.Repo.DeleteVehicleCtx,
		id:      func(v *models.Vehicle) *string { return &v.ID },
		created: func(v *models.Vehicle) *time.Time { return &v.CreatedAt },
		profile: s.KYC.VehicleProfile,
		tierIs: func(tier models.RiskTier) specs.Specification[models.Vehicle] {
			return specs.New(func(_ context.Context, v models.Vehicle) bool {
				return kyc.Classify(kyc.ScoreVehicle(v)).Tier == tier
			})
		},
	}
}

func listHandler[T any](s *Server, res resource[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		f, err := listFilter(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		tier := models.RiskTier(r.URL.Query().Get("tier"))
		if tier == "" {
			items, total, err := res.list(ctx, f)
			if err != nil {
				s.writeError(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, listBody[T]{Items: nonNilSlice(items), Total: total, Limit: f.Limit, Offset: f.Offset})
			return
		}

		// tier is computed, so it is filtered after loading every row that matches q and state
		all, _, err := res.list(ctx, domain.ListFilter{Search: f.Search, State: f.State})
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		matched := specs.Filter(ctx, res.tierIs(tier), all)
		writeJSON(w, http.StatusOK, listBody[T]{
			Items:  nonNilSlice(page(matched, f.Limit, f.Offset)),
			Total:  len(matched),
			Limit:  f.Limit,
			Offset: f.Offset,
		})
	}
}

func getHandler[T any](s *Server, res resource[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := res.get(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, recordBody[T]{Record: *rec, KYC: res.profile(*rec)})
	}
}

func createHandler[T any](s *Server, res resource[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var rec T
		if err := decodeJSON(r, &rec); err != nil {
			s.writeError(w, r, err)
			return
		}
		*res.id(&rec) = ""
		if fields := s.Validator.ValidateStructured(rec); len(fields) > 0 {
			s.writeError(w, r, errs.NewFieldValidation("create "+res.name, fields))
			return
		}
		if err := res.save(ctx, &rec); err != nil {
			s.writeError(w, r, err)
			return
		}

		p := res.profile(rec)
		s.emit(ctx, savedEvent(ctx, p))
		s.log.WithContext(ctx).Info("record created",
			logging.String("kind", res.name), logging.String("id", *res.id(&rec)), logging.Int("kyc_score", p.Score))
		writeJSON(w, http.StatusCreated, recordBody[T]{Record: rec, KYC: p})
	}
}

// replaceHandler stores the request body as the whole new record. Fields left out are cleared.
func replaceHandler[T any](s *Server, res resource[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id := mux.Vars(r)["id"]
		existing, err := res.get(ctx, id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		var rec T
		if err := decodeJSON(r, &rec); err != nil {
			s.writeError(w, r, err)
			return
		}
		*res.id(&rec) = id
		*res.created(&rec) = *res.created(existing)
		if fields := s.Validator.ValidateStructured(rec); len(fields) > 0 {
			s.writeError(w, r, errs.NewFieldValidation("replace "+res.name, fields))
			return
		}
		if err := res.save(ctx, &rec); err != nil {
			s.writeError(w, r, err)
			return
		}

		p := res.profile(rec)
		s.emit(ctx, savedEvent(ctx, p))
		writeJSON(w, http.StatusOK, recordBody[T]{Record: rec, KYC: p})
	}
}

func deleteHandler[T any](s *Server, res resource[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id := mux.Vars(r)["id"]
		if err := res.del(ctx, id); err != nil {
			s.writeError(w, r, err)
			return
		}
		if res.deleted != nil {
			res.deleted(ctx, id)
		}
		s.log.WithContext(ctx).Info("record deleted", logging.String("kind", res.name), logging.String("id", id))
		w.WriteHeader(http.StatusNoContent)
	}
}

// kycHandler computes the profile on request and records the review.
func kycHandler[T any](s *Server, res resource[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		rec, err := res.get(ctx, mux.Vars(r)["id"])
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		p := res.profile(*rec)
		s.emit(ctx, events.KYCReviewed{
			Base:           events.NewBase(p.SubjectID, actor(ctx)),
			Kind:           p.Subject,
			Score:          p.Score,
			Tier:           p.Tier,
			NextReviewDays: p.NextReviewDays,
			Pendencies:     len(p.Pendencies),
		})
		writeJSON(w, http.StatusOK, kycBody{KYCProfile: p, NextReviewAt: kyc.NextReviewAt(p)})
	}
}

func (s *Server) ListContactsHandler() http.HandlerFunc   { return listHandler(s, s.contacts()) }
func (s *Server) GetContactHandler() http.HandlerFunc     { return getHandler(s, s.contacts()) }
func (s *Server) CreateContactHandler() http.HandlerFunc  { return createHandler(s, s.contacts()) }
func (s *Server) ReplaceContactHandler() http.HandlerFunc { return replaceHandler(s, s.contacts()) }
func (s *Server) DeleteContactHandler() http.HandlerFunc  { return deleteHandler(s, s.contacts()) }
func (s *Server) ContactKYCHandler() http.HandlerFunc     { return kycHandler(s, s.contacts()) }

func (s *Server) ListCompaniesHandler() http.HandlerFunc  { return listHandler(s, s.companies()) }
func (s *Server) GetCompanyHandler() http.HandlerFunc     { return getHandler(s, s.companies()) }
func (s *Server) CreateCompanyHandler() http.HandlerFunc  { return createHandler(s, s.companies()) }
func (s *Server) ReplaceCompanyHandler() http.HandlerFunc { return replaceHandler(s, s.companies()) }
func (s *Server) DeleteCompanyHandler() http.HandlerFunc  { return deleteHandler(s, s.companies()) }
func (s *Server) CompanyKYCHandler() http.HandlerFunc     { return kycHandler(s, s.companies()) }

func (s *Server) ListVehiclesHandler() http.HandlerFunc   { return listHandler(s, s.vehicles()) }
func (s *Server) GetVehicleHandler() http.HandlerFunc     { return getHandler(s, s.vehicles()) }
func (s *Server) CreateVehicleHandler() http.HandlerFunc  { return createHandler(s, s.vehicles()) }
func (s *Server) ReplaceVehicleHandler() http.HandlerFunc { return replaceHandler(s, s.vehicles()) }
func (s *Server) DeleteVehicleHandler() http.HandlerFunc  { return deleteHandler(s, s.vehicles()) }
func (s *Server) VehicleKYCHandler() http.HandlerFunc     { return kycHandler(s, s.vehicles()) }

// CompanyVehiclesHandler handles GET /api/companies/{id}/vehicles
func (s *Server) CompanyVehiclesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id := mux.Vars(r)["id"]
		if _, err := s.Repo.GetCompanyCtx(ctx, id); err != nil {
			s.writeError(w, r, err)
			return
		}
		list, err := s.Repo.ListVehiclesByCompanyCtx(ctx, id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, listBody[models.Vehicle]{Items: nonNilSlice(list), Total: len(list)})
	}
}

// FleetSummaryHandler handles GET /api/companies/{id}/fleet.
// The fleet is shown next to the company's own profile and never alters it.
func (s *Server) FleetSummaryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id := mux.Vars(r)["id"]
		company, err := s.Repo.GetCompanyCtx(ctx, id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		list, err := s.Repo.ListVehiclesByCompanyCtx(ctx, id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"company": s.KYC.CompanyProfile(*company),
			"fleet":   kyc.SummarizeFleet(id, list),
		})
	}
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
