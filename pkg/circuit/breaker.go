// Package circuit protects calls to optional external services (geocoding, LLM notes)
// so an outage degrades to "feature unavailable" instead of slow requests.
package circuit

import (
	"context"
	"errors"
	"sync"
	"time"

	"fleet-crm/internal/constants"
	"fleet-crm/pkg/logging"
	"fleet-crm/pkg/metrics"
)

// State represents the circuit breaker state.
type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// Config tunes a circuit breaker instance.
type Config struct {
	Name string

	OperationTimeout  time.Duration // per-call timeout, zero disables
	OpenFor           time.Duration // how long to stay open before probing
	MaxConsecFailures int           // consecutive failures to open
	WindowSize        int           // recent calls considered for FailureRate
	FailureRate       float64       // 0..1 fraction in window to open, zero disables
	MinSamples        int           // calls required before FailureRate applies
}

// DefaultConfig suits slow third-party HTTP APIs.
func DefaultConfig(name string) Config {
	return Config{
		Name:              name,
		OperationTimeout:  constants.ExternalOperationTimeout,
		OpenFor:           constants.ExternalOpenFor,
		MaxConsecFailures: constants.CircuitMaxConsecFailures,
		WindowSize:        constants.CircuitWindowSize,
		FailureRate:       constants.CircuitFailureRate,
		MinSamples:        constants.CircuitMinSamples,
	}
}

// ErrOpen indicates the breaker is open and calls are short-circuited.
var ErrOpen = errors.New("circuit open")

type Breaker struct {
	cfg        Config
	mu         sync.Mutex
	st         State
	nextProbe  time.Time
	probing    bool
	consecFail int

	win  []bool // true = failure
	idx  int
	used int

	now func() time.Time
	log *logging.ComponentLogger

	mState   *metrics.Gauge
	mOpens   *metrics.Counter
	mFailure *metrics.Counter
	mLatency *metrics.Histogram
}

func New(cfg Config, log *logging.Logger) *Breaker {
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = 20
	}
	if log == nil {
		log = logging.NewNop()
	}
	prefix := "circuit_" + cfg.Name
	return &Breaker{
		cfg:      cfg,
		win:      make([]bool, cfg.WindowSize),
		now:      time.Now,
		log:      log.WithComponent("circuit"),
		mState:   metrics.Default.Gauge(prefix+"_state", "Circuit breaker state (0=closed,1=open,2=half-open)"),
		mOpens:   metrics.Default.Counter(prefix+"_opens_total", "Times the circuit opened"),
		mFailure: metrics.Default.Counter(prefix+"_failures_total", "Failed calls through the circuit"),
		mLatency: metrics.Default.Histogram(prefix+"_call_seconds", "Latency of protected calls", []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10}),
	}
}

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.st
}

func (b *Breaker) setStateLocked(st State) {
	if b.st == st {
		return
	}
	b.st = st
	b.mState.Set(float64(st))
	if st == Open {
		b.mOpens.Inc(1)
		b.nextProbe = b.now().Add(b.cfg.OpenFor)
	}
	b.log.Info("breaker state change", logging.String("name", b.cfg.Name), logging.String("state", st.String()))
}

// allow decides whether a call may proceed and claims the half-open probe slot.
func (b *Breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.st {
	case Open:
		if b.now().Before(b.nextProbe) {
			return false
		}
		b.setStateLocked(HalfOpen)
		b.probing = true
		return true
	case HalfOpen:
		if b.probing {
			return false
		}
		b.probing = true
		return true
	default:
		return true
	}
}

func (b *Breaker) record(failed bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.win[b.idx] = failed
	b.idx = (b.idx + 1) % len(b.win)
	if b.used < len(b.win) {
		b.used++
	}

	if b.st == HalfOpen {
		b.probing = false
		if failed {
			b.setStateLocked(Open)
		} else {
			b.consecFail = 0
			b.resetWindowLocked()
			b.setStateLocked(Closed)
		}
		return
	}

	if !failed {
		b.consecFail = 0
		return
	}
	b.consecFail++
	if b.cfg.MaxConsecFailures > 0 && b.consecFail >= b.cfg.MaxConsecFailures {
		b.setStateLocked(Open)
		return
	}
	if b.cfg.FailureRate > 0 && b.used >= b.cfg.MinSamples {
		n := 0
		for i := 0; i < b.used; i++ {
			if b.win[i] {
				n++
			}
		}
		if float64(n)/float64(b.used) >= b.cfg.FailureRate {
			b.setStateLocked(Open)
		}
	}
}

func (b *Breaker) resetWindowLocked() {
	for i := range b.win {
		b.win[i] = false
	}
	b.idx, b.used = 0, 0
}

// Do runs op under the breaker. When open it returns ErrOpen without calling op.
func (b *Breaker) Do(ctx context.Context, op func(ctx context.Context) error) error {
	if !b.allow() {
		return ErrOpen
	}

	if b.cfg.OperationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.cfg.OperationTimeout)
		defer cancel()
	}

	start := time.Now()
	err := op(ctx)
	b.mLatency.Since(start)

	// a cancelled caller says nothing about the remote service
	failed := err != nil && !errors.Is(err, context.Canceled)
	if failed {
		b.mFailure.Inc(1)
	}
	b.record(failed)
	return err
}
