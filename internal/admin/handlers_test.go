package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-crm/internal/auth"
	"fleet-crm/internal/drafts"
	"fleet-crm/internal/infrastructure/repository"
	"fleet-crm/internal/matching"
	"fleet-crm/internal/models"
	"fleet-crm/internal/processor"
	testutil "fleet-crm/internal/testing"
	"fleet-crm/pkg/events"
)

type testEnv struct {
	router *mux.Router
	repo   *repository.MemoryRepository
	engine *processor.ProcessingEngine
	events *events.MemoryStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	repo := repository.NewMemoryRepository()
	for _, c := range testutil.Contacts() {
		require.NoError(t, repo.SaveContactCtx(ctx, &c))
	}
	for _, c := range testutil.Companies() {
		require.NoError(t, repo.SaveCompanyCtx(ctx, &c))
	}
	for _, v := range testutil.Vehicles() {
		require.NoError(t, repo.SaveVehicleCtx(ctx, &v))
	}

	es := events.NewMemoryStore()
	eng := processor.NewProcessingEngine(repo, matching.NewDefault(), processor.ProcessingConfig{WorkerCount: 1, QueueSize: 4}, nil)
	eng.SetEventStore(es)

	srv := NewServer(Deps{
		Repo:       repo,
		Drafts:     drafts.NewMemoryStore(),
		Engine:     eng,
		Events:     es,
		Partitions: 2,
	})
	router := mux.NewRouter()
	router.Use(auth.NewMiddleware(auth.NewRoleResolver("", nil), repo).Handler)
	srv.Register(router)
	return &testEnv{router: router, repo: repo, engine: eng, events: es}
}

func (e *testEnv) do(t *testing.T, method, path, user string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set(auth.UserHeader, user)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestContactLifecycle(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/contacts", "op", map[string]any{
		"full_name": "Dora Lima",
		"tax_id":    "529.982.247-25",
		"employer":  "Frota Sul",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[recordBody[models.Contact]](t, rec)
	require.NotEmpty(t, created.Record.ID)
	assert.Equal(t, models.SubjectContact, created.KYC.Subject)
	assert.False(t, created.Record.CreatedAt.IsZero())

	path := "/api/contacts/" + created.Record.ID
	rec = env.do(t, http.MethodPut, path, "op", map[string]any{"full_name": "Dora L."})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[recordBody[models.Contact]](t, rec)
	assert.Equal(t, "Dora L.", got.Record.FullName)
	assert.Empty(t, got.Record.Employer, "replace must not merge old fields")
	assert.Empty(t, got.Record.TaxID)
	assert.True(t, created.Record.CreatedAt.Equal(got.Record.CreatedAt))

	history, err := env.events.ListBySubject(context.Background(), created.Record.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "op", history[0].ActorID)

	rec = env.do(t, http.MethodDelete, path, "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = env.do(t, http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestContactValidationErrors(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/contacts", "", map[string]any{"full_name": "X", "tax_id": "123"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[errorBody](t, rec)
	assert.Contains(t, body.Errors, "tax_id")

	rec = env.do(t, http.MethodPost, "/api/contacts", "", map[string]any{"full_name": "X", "nope": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/contacts/missing", "", map[string]any{"full_name": "X"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListContacts(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name     string
		query    string
		expected []string
		total    int
	}{
		{"all sorted by name", "", []string{"c1", "c2", "c3"}, 3},
		{"search", "?q=bru", []string{"c2"}, 1},
		{"paged", "?limit=1&offset=1", []string{"c2"}, 3},
		{"tier", "?tier=high_risk&limit=2", []string{"c1", "c2"}, 3},
		{"tier without hits", "?tier=ok", []string{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, "/api/contacts"+tt.query, "", nil)
			require.Equal(t, http.StatusOK, rec.Code)
			body := decode[listBody[models.Contact]](t, rec)
			ids := make([]string, 0, len(body.Items))
			for _, c := range body.Items {
				ids = append(ids, c.ID)
			}
			assert.Equal(t, tt.expected, ids)
			assert.Equal(t, tt.total, body.Total)
		})
	}

	rec := env.do(t, http.MethodGet, "/api/contacts?limit=-1", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestKYCAndFleet(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/vehicles/v1/kyc", "rev", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	p := decode[kycBody](t, rec)
	assert.Equal(t, 100, p.Score)
	assert.Equal(t, models.TierOK, p.Tier)
	assert.True(t, p.ComputedAt.AddDate(0, 0, 365).Equal(p.NextReviewAt))

	rec = env.do(t, http.MethodGet, "/api/companies/k2/fleet", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var fleet struct {
		Company models.KYCProfile   `json:"company"`
		Fleet   models.FleetSummary `json:"fleet"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fleet))
	assert.Equal(t, 2, fleet.Fleet.Vehicles)
	assert.Equal(t, models.SubjectCompany, fleet.Company.Subject)

	rec = env.do(t, http.MethodGet, "/api/companies/k2/vehicles", "", nil)
	assert.Equal(t, 2, decode[listBody[models.Vehicle]](t, rec).Total)

	history, err := env.events.ListBySubject(context.Background(), "v1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, events.TypeKYCReviewed, history[0].Type)
}

func TestMatchRunSynchronous(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/matching/run", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[runResponse](t, rec)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "c2", resp.Results[0].ContactID)
	assert.Equal(t, "k2", resp.Results[0].CompanyID)
	assert.Equal(t, "c1", resp.Results[1].ContactID)
	assert.Equal(t, "k1", resp.Results[1].CompanyID)
	assert.Equal(t, 3, resp.Contacts)

	rec = env.do(t, http.MethodPost, "/api/matching/run", "", map[string]any{"min_score": 90})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[runResponse](t, rec).Results, 1)

	rec = env.do(t, http.MethodPost, "/api/matching/run", "", map[string]any{"min_score": 101})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMatchRunAsync(t *testing.T) {
	env := newTestEnv(t)
	env.engine.Start()
	defer func() { _ = env.engine.Stop(time.Second) }()

	rec := env.do(t, http.MethodPost, "/api/matching/runs", "mgr", nil)
	require.Equal(t, http.StatusAccepted, rec.Code)
	run := decode[processor.Run](t, rec)
	assert.Equal(t, "mgr", run.RequestedBy)

	require.Eventually(t, func() bool {
		rec := env.do(t, http.MethodGet, "/api/matching/runs/"+run.ID, "", nil)
		return decode[processor.Run](t, rec).Status == processor.RunCompleted
	}, 2*time.Second, 10*time.Millisecond)

	rec = env.do(t, http.MethodGet, "/api/matching/runs/"+run.ID, "", nil)
	assert.Len(t, decode[processor.Run](t, rec).Results, 2)

	rec = env.do(t, http.MethodGet, "/api/matching/runs/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestConfirmMatch(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/matching/confirmed", "op", pairRequest{ContactID: "c2", CompanyID: "k2"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	cm := decode[models.ConfirmedMatch](t, rec)
	assert.Equal(t, "op", cm.ConfirmedBy)
	assert.InDelta(t, 95, cm.Score, 1e-9)

	rec = env.do(t, http.MethodPost, "/api/matching/confirmed", "op", pairRequest{ContactID: "c3", CompanyID: "k2"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/matching/confirmed", "op", pairRequest{ContactID: "c2"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/matching/confirmed", "", nil)
	assert.Equal(t, 1, decode[listBody[models.ConfirmedMatch]](t, rec).Total)

	rec = env.do(t, http.MethodGet, "/api/audit/c2", "", nil)
	var audit struct {
		State events.SubjectState `json:"state"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &audit))
	assert.Equal(t, "k2", audit.State.ConfirmedCompanyID)

	// deleting the contact drops its confirmation
	rec = env.do(t, http.MethodDelete, "/api/contacts/c2", "", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = env.do(t, http.MethodGet, "/api/matching/confirmed", "", nil)
	assert.Equal(t, 0, decode[listBody[models.ConfirmedMatch]](t, rec).Total)
}

func TestScorePair(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/matching/score", "", pairRequest{ContactID: "c1", CompanyID: "k3"})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.InDelta(t, 70, body["score"], 1e-9)
	assert.Equal(t, true, body["suggested"])
}

func TestDrafts(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/drafts/contact", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/drafts/boat", "u1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/drafts/contact", "u1", draftRequest{Step: 1, Data: map[string]any{"tax_id": "123"}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[errorBody](t, rec).Errors, "tax_id")

	rec = env.do(t, http.MethodPut, "/api/drafts/contact", "u1", draftRequest{Step: 2, Data: map[string]any{"full_name": "Ana", "tax_id": ""}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// a second save replaces the first as a whole
	rec = env.do(t, http.MethodPut, "/api/drafts/contact", "u1", draftRequest{Step: 3, Data: map[string]any{"email": "a@b.com"}})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/drafts/contact", "u1", nil)
	var got struct {
		HasDraft bool         `json:"has_draft"`
		Draft    drafts.Draft `json:"draft"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.HasDraft)
	assert.Equal(t, 3, got.Draft.Step)
	assert.Equal(t, map[string]any{"email": "a@b.com"}, got.Draft.Data)

	rec = env.do(t, http.MethodGet, "/api/drafts/contact", "u2", nil)
	assert.False(t, decode[map[string]any](t, rec)["has_draft"].(bool))

	rec = env.do(t, http.MethodDelete, "/api/drafts/contact", "u1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = env.do(t, http.MethodGet, "/api/drafts/contact", "u1", nil)
	assert.False(t, decode[map[string]any](t, rec)["has_draft"].(bool))
}

func TestValidateAndDisabledIntegrations(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		kind, value string
		valid       bool
		formatted   string
	}{
		{"cpf", "52998224725", true, "529.982.247-25"},
		{"cpf", "111.111.111-11", false, ""},
		{"cnpj", "11.222.333/0001-81", true, "11.222.333/0001-81"},
		{"cep", "01310100", true, "01310-100"},
		{"passport", "X", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.kind+"/"+tt.value, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/validate", "", validateRequest{Kind: tt.kind, Value: tt.value})
			require.Equal(t, http.StatusOK, rec.Code)
			resp := decode[validateResponse](t, rec)
			assert.Equal(t, tt.valid, resp.Valid, resp.Error)
			assert.Equal(t, tt.formatted, resp.Formatted)
		})
	}

	rec := env.do(t, http.MethodPost, "/api/enrich/address", "", models.Address{Zip: "01310-100"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/advisor/kyc/contact/c1", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/advisor/kyc/boat/c1", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUsersAndMe(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/me", "", nil)
	var me struct {
		Identity    auth.Identity    `json:"identity"`
		Permissions auth.Permissions `json:"permissions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, models.RoleViewer, me.Identity.Role)
	assert.False(t, me.Permissions.EditRecords)

	rec = env.do(t, http.MethodPost, "/api/users", "", map[string]any{
		"name": "Gestora", "email": " Gestora@Frota.com ", "role": "manager", "active": true,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	u := decode[models.User](t, rec)
	assert.Equal(t, "gestora@frota.com", u.Email)

	rec = env.do(t, http.MethodGet, "/api/me", u.ID, nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, models.RoleManager, me.Identity.Role)
	assert.True(t, me.Permissions.RunMatching)
	assert.False(t, me.Permissions.ManageUsers)

	rec = env.do(t, http.MethodPut, "/api/users/"+u.ID, "", map[string]any{"role": "root"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/users/"+u.ID, "", map[string]any{"active": false})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodGet, "/api/me", u.ID, nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, models.RoleViewer, me.Identity.Role, "inactive users fall back to the roles file")

	rec = env.do(t, http.MethodGet, "/api/users", "", nil)
	assert.Equal(t, 1, decode[listBody[models.User]](t, rec).Total)

	rec = env.do(t, http.MethodDelete, "/api/users/"+u.ID, "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
