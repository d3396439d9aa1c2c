package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-crm/pkg/metrics"
)

func TestSnapshotQuantiles(t *testing.T) {
	r := NewRequests(4, metrics.NewRegistry())
	assert.Zero(t, r.Snapshot().AvgMs)

	for _, ms := range []int{10, 20, 30} {
		r.Observe(http.StatusOK, time.Duration(ms)*time.Millisecond)
	}
	s := r.Snapshot()
	assert.EqualValues(t, 3, s.Count)
	assert.InDelta(t, 20.0, s.AvgMs, 1e-9)
	assert.InDelta(t, 20.0, s.P50Ms, 1e-9)

	// wraps around the ring
	r.Observe(http.StatusInternalServerError, 40*time.Millisecond)
	r.Observe(http.StatusNotFound, 50*time.Millisecond)
	s = r.Snapshot()
	assert.EqualValues(t, 5, s.Count)
	assert.InDelta(t, 35.0, s.AvgMs, 1e-9)
	assert.Equal(t, map[string]int64{"2xx": 3, "5xx": 1, "4xx": 1}, s.ByStatus)
}

func TestMiddlewareRecordsStatus(t *testing.T) {
	reg := metrics.NewRegistry()
	r := NewRequests(8, reg)
	router := mux.NewRouter()
	router.Use(Middleware(r))
	router.HandleFunc("/boom", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	router.Handle("/stats", StatsHandler(r))

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.EqualValues(t, 1, reg.Counter("http_requests_5xx_total", "").Get())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.EqualValues(t, 1, body["requests_total"])
	assert.Contains(t, body, "goroutines")
}
