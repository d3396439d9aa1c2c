// Package monitoring records HTTP request latency and exposes runtime stats and pprof.
package monitoring

import (
	"encoding/json"
	"net/http"
	pp "net/http/pprof"
	"runtime"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"fleet-crm/pkg/metrics"
)

// Requests keeps the last N request durations for quantiles, plus totals per status class.
type Requests struct {
	mu        sync.Mutex
	durations []float64 // milliseconds, circular
	idx       int
	count     int64
	byClass   map[string]int64

	total   *metrics.Counter
	errors  *metrics.Counter
	latency *metrics.Histogram
}

func NewRequests(capacity int, reg *metrics.Registry) *Requests {
	if capacity <= 0 {
		capacity = 256
	}
	if reg == nil {
		reg = metrics.Default
	}
	return &Requests{
		durations: make([]float64, capacity),
		byClass:   make(map[string]int64),
		total:     reg.Counter("http_requests_total", "HTTP requests served"),
		errors:    reg.Counter("http_requests_5xx_total", "HTTP requests answered with a 5xx status"),
		latency:   reg.Histogram("http_request_duration_seconds", "HTTP request latency", []float64{0.005, 0.025, 0.1, 0.5, 1, 5}),
	}
}

// Observe adds one request.
func (r *Requests) Observe(status int, d time.Duration) {
	class := strconv.Itoa(status/100) + "xx"
	r.total.Inc(1)
	if status >= 500 {
		r.errors.Inc(1)
	}
	r.latency.Observe(d.Seconds())

	r.mu.Lock()
	r.durations[r.idx] = float64(d.Microseconds()) / 1000
	r.idx = (r.idx + 1) % len(r.durations)
	r.count++
	r.byClass[class]++
	r.mu.Unlock()
}

// Snapshot summarizes the recent samples.
type Snapshot struct {
	Count    int64            `json:"requests_total"`
	ByStatus map[string]int64 `json:"requests_by_status"`
	AvgMs    float64          `json:"duration_ms_avg"`
	P50Ms    float64          `json:"duration_ms_p50"`
	P95Ms    float64          `json:"duration_ms_p95"`
}

func (r *Requests) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Snapshot{Count: r.count, ByStatus: make(map[string]int64, len(r.byClass))}
	for k, v := range r.byClass {
		s.ByStatus[k] = v
	}
	n := len(r.durations)
	if r.count < int64(n) {
		n = r.idx
	}
	if n == 0 {
		return s
	}
	cp := make([]float64, n)
	copy(cp, r.durations[:n])
	sort.Float64s(cp)
	var sum float64
	for _, v := range cp {
		sum += v
	}
	s.AvgMs = sum / float64(n)
	s.P50Ms = cp[(n*50)/100]
	s.P95Ms = cp[(n*95)/100]
	return s
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

// Middleware measures every request passing through it.
func Middleware(r *Requests) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, req)
			r.Observe(sw.status, time.Since(start))
		})
	}
}

// StatsHandler exposes request and runtime stats as JSON.
func StatsHandler(r *Requests) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		resp := struct {
			Snapshot
			Time       string `json:"time"`
			Goroutines int    `json:"goroutines"`
			HeapInuse  uint64 `json:"heap_inuse_bytes"`
			Alloc      uint64 `json:"mem_alloc_bytes"`
			NumGC      uint32 `json:"gc_num"`
		}{
			Snapshot:   r.Snapshot(),
			Time:       time.Now().UTC().Format(time.RFC3339),
			Goroutines: runtime.NumGoroutine(),
			HeapInuse:  ms.HeapInuse,
			Alloc:      ms.Alloc,
			NumGC:      ms.NumGC,
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})
}

// RegisterPprof mounts the pprof handlers under /debug/pprof/ and turns on block and
// mutex sampling.
func RegisterPprof(router *mux.Router) {
	runtime.SetBlockProfileRate(1)
	runtime.SetMutexProfileFraction(5)

	sub := router.PathPrefix("/debug/pprof").Subrouter()
	sub.HandleFunc("/cmdline", pp.Cmdline)
	sub.HandleFunc("/profile", pp.Profile)
	sub.HandleFunc("/symbol", pp.Symbol)
	sub.HandleFunc("/trace", pp.Trace)
	sub.PathPrefix("/").HandlerFunc(pp.Index)
}
