package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"fleet-crm/pkg/logging"
)

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
	StatusUnknown   Status = "unknown"
)

// ComponentHealth is the result of one checker.
type ComponentHealth struct {
	Name        string         `json:"name"`
	Status      Status         `json:"status"`
	Message     string         `json:"message,omitempty"`
	Critical    bool           `json:"critical"`
	LastChecked time.Time      `json:"last_checked"`
	DurationMs  int64          `json:"duration_ms"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Error       string         `json:"error,omitempty"`
}

// SystemHealth aggregates all components.
type SystemHealth struct {
	Status     Status            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Version    string            `json:"version,omitempty"`
	UptimeSec  int64             `json:"uptime_sec"`
	Components []ComponentHealth `json:"components"`
}

// Checker is one health probe. Critical checkers turn the system unhealthy when they fail;
// the others only degrade it.
type Checker interface {
	Name() string
	Critical() bool
	Check(ctx context.Context) ComponentHealth
}

// Pinger is satisfied by the database and draft stores.
type Pinger interface {
	PingCtx(ctx context.Context) error
}

// PingFunc adapts a plain ping function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) PingCtx(ctx context.Context) error { return f(ctx) }

// PingChecker reports a component healthy when Ping succeeds.
type PingChecker struct {
	name     string
	critical bool
	pinger   Pinger
}

func NewPingChecker(name string, critical bool, p Pinger) *PingChecker {
	return &PingChecker{name: name, critical: critical, pinger: p}
}

func (c *PingChecker) Name() string   { return c.name }
func (c *PingChecker) Critical() bool { return c.critical }

func (c *PingChecker) Check(ctx context.Context) ComponentHealth {
	h := ComponentHealth{Name: c.name, Status: StatusHealthy, Message: "ok"}
	if err := c.pinger.PingCtx(ctx); err != nil {
		h.Status = StatusUnhealthy
		h.Message = "ping failed"
		h.Error = err.Error()
	}
	return h
}

// FuncChecker adapts a function, e.g. a snapshot of the match engine stats.
type FuncChecker struct {
	name     string
	critical bool
	fn       func(ctx context.Context) ComponentHealth
}

func NewFuncChecker(name string, critical bool, fn func(ctx context.Context) ComponentHealth) *FuncChecker {
	return &FuncChecker{name: name, critical: critical, fn: fn}
}

func (c *FuncChecker) Name() string                              { return c.name }
func (c *FuncChecker) Critical() bool                            { return c.critical }
func (c *FuncChecker) Check(ctx context.Context) ComponentHealth { return c.fn(ctx) }

// Manager runs the registered checkers concurrently.
type Manager struct {
	mu        sync.RWMutex
	checkers  map[string]Checker
	last      SystemHealth
	startTime time.Time
	version   string
	timeout   time.Duration
	log       *logging.ComponentLogger
}

func NewManager(version string, timeout time.Duration, logger *logging.Logger) *Manager {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		checkers:  make(map[string]Checker),
		startTime: time.Now(),
		version:   version,
		timeout:   timeout,
		log:       logger.WithComponent("health"),
	}
}

func (m *Manager) Register(c Checker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkers[c.Name()] = c
	m.log.Debug("registered health checker", logging.String("checker", c.Name()))
}

// CheckAll runs every checker with the manager timeout and caches the result.
func (m *Manager) CheckAll(ctx context.Context) SystemHealth {
	m.mu.RLock()
	list := make([]Checker, 0, len(m.checkers))
	for _, c := range m.checkers {
		list = append(list, c)
	}
	m.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	results := make([]ComponentHealth, len(list))
	var wg sync.WaitGroup
	for i, c := range list {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := time.Now()
			h := c.Check(ctx)
			h.Name = c.Name()
			h.Critical = c.Critical()
			h.LastChecked = start.UTC()
			h.DurationMs = time.Since(start).Milliseconds()
			if h.Status == "" {
				h.Status = StatusUnknown
			}
			results[i] = h
		}()
	}
	wg.Wait()
	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })

	sh := SystemHealth{
		Status:     overall(results),
		Timestamp:  time.Now().UTC(),
		Version:    m.version,
		UptimeSec:  int64(time.Since(m.startTime).Seconds()),
		Components: results,
	}
	if sh.Status != StatusHealthy {
		m.log.Warn("system not healthy", logging.String("status", string(sh.Status)))
	}

	m.mu.Lock()
	m.last = sh
	m.mu.Unlock()
	return sh
}

// Cached returns the result of the last CheckAll.
func (m *Manager) Cached() SystemHealth {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last
}

func overall(components []ComponentHealth) Status {
	st := StatusHealthy
	for _, c := range components {
		switch c.Status {
		case StatusHealthy:
		case StatusUnhealthy:
			if c.Critical {
				return StatusUnhealthy
			}
			st = StatusDegraded
		default:
			st = StatusDegraded
		}
	}
	return st
}

// Handler serves the full report; 503 when the system is unhealthy.
func (m *Manager) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sh := m.CheckAll(r.Context())
		code := http.StatusOK
		if sh.Status == StatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(sh)
	})
}

// LivenessHandler only reports that the process is serving.
func LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"alive"}`))
	})
}
