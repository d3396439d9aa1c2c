package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryExposition(t *testing.T) {
	r := NewRegistry()
	r.Counter("match_runs_total", "Match runs").Inc(2)
	r.Gauge("match-queue-depth", "Queued runs").Set(3)
	h := r.Histogram("match_run_seconds", "Run duration", []float64{1, 0.1})
	h.Observe(0.05)
	h.Observe(0.5)
	h.Observe(5)

	assert.Same(t, r.Counter("match_runs_total", ""), r.Counter("match_runs_total", "ignored"))
	assert.Equal(t, uint64(3), h.Count())

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()

	for _, want := range []string{
		"# TYPE match_runs_total counter",
		"match_runs_total 2",
		"match_queue_depth 3",
		`match_run_seconds_bucket{le="0.1"} 1`,
		`match_run_seconds_bucket{le="1"} 2`,
		`match_run_seconds_bucket{le="+Inf"} 3`,
		"match_run_seconds_count 3",
	} {
		assert.True(t, strings.Contains(body, want), "missing %q in\n%s", want, body)
	}
}
