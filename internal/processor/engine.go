package processor

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"fleet-crm/internal/domain"
	"fleet-crm/internal/matching"
	"fleet-crm/internal/models"
	errs "fleet-crm/pkg/errors"
	"fleet-crm/pkg/events"
	"fleet-crm/pkg/logging"
	"fleet-crm/pkg/metrics"
)

// RunStatus is the lifecycle state of an asynchronous match run.
type RunStatus string

const (
	RunQueued    RunStatus = "queued"
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
	RunCancelled RunStatus = "cancelled"
)

// Run is a snapshot of one match run. Results are only set once the run completed.
type Run struct {
	ID          string               `json:"id"`
	Status      RunStatus            `json:"status"`
	RequestedBy string               `json:"requested_by,omitempty"`
	MinScore    float64              `json:"min_score"`
	Contacts    int                  `json:"contacts"`
	Companies   int                  `json:"companies"`
	Results     []models.MatchResult `json:"results,omitempty"`
	Error       string               `json:"error,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	StartedAt   *time.Time           `json:"started_at,omitempty"`
	FinishedAt  *time.Time           `json:"finished_at,omitempty"`
	ElapsedMs   int64                `json:"elapsed_ms"`
}

// Source is the read side the engine loads a run's dataset from.
type Source interface {
	ListContactsCtx(ctx context.Context, f domain.ListFilter) ([]models.Contact, int, error)
	ListCompaniesCtx(ctx context.Context, f domain.ListFilter) ([]models.Company, int, error)
}

// ProcessingStats tracks processing statistics
type ProcessingStats struct {
	TotalRuns     int64     `json:"total_runs"`
	CompletedRuns int64     `json:"completed_runs"`
	FailedRuns    int64     `json:"failed_runs"`
	QueueSize     int64     `json:"queue_size"`
	WorkerCount   int       `json:"worker_count"`
	AverageTimeMs int64     `json:"average_time_ms"`
	StartTime     time.Time `json:"start_time"`
	LastActivity  time.Time `json:"last_activity"`
}

// ProcessingConfig holds configuration for the processing engine
type ProcessingConfig struct {
	WorkerCount int
	QueueSize   int
	RunTimeout  time.Duration
	Partitions  int // scoring goroutines per run; 0 = GOMAXPROCS
	RetainRuns  int // finished runs kept in memory
}

func DefaultProcessingConfig() ProcessingConfig {
	return ProcessingConfig{
		WorkerCount: 2,
		QueueSize:   32,
		RunTimeout:  2 * time.Minute,
		RetainRuns:  100,
	}
}

// ProcessingEngine executes match runs from a bounded queue on a fixed set of workers.
type ProcessingEngine struct {
	source  Source
	matcher atomic.Pointer[matching.Matcher]
	cfg     ProcessingConfig
	log     *logging.ComponentLogger
	events  events.Store

	jobQueue chan string
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	runsMu sync.RWMutex
	runs   map[string]*Run
	order  []string

	stats     ProcessingStats
	statsMu   sync.RWMutex
	totalTime int64

	runsTotal   *metrics.Counter
	runsFailed  *metrics.Counter
	queueGauge  *metrics.Gauge
	runDuration *metrics.Histogram

	started      atomic.Bool
	queueMu      sync.RWMutex // guards sends against close(jobQueue)
	shutdownOnce sync.Once
}

func NewProcessingEngine(source Source, m *matching.Matcher, cfg ProcessingConfig, logger *logging.Logger) *ProcessingEngine {
	def := DefaultProcessingConfig()
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = def.WorkerCount
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = def.RunTimeout
	}
	if cfg.RetainRuns <= 0 {
		cfg.RetainRuns = def.RetainRuns
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &ProcessingEngine{
		source:   source,
		cfg:      cfg,
		log:      logger.WithComponent("processor"),
		jobQueue: make(chan string, cfg.QueueSize),
		ctx:      ctx,
		cancel:   cancel,
		runs:     make(map[string]*Run),
		stats: ProcessingStats{
			StartTime:    time.Now(),
			LastActivity: time.Now(),
			WorkerCount:  cfg.WorkerCount,
		},
		runsTotal:   metrics.Default.Counter("match_runs_total", "Match runs finished"),
		runsFailed:  metrics.Default.Counter("match_runs_failed_total", "Match runs that failed or were cancelled"),
		queueGauge:  metrics.Default.Gauge("match_runs_queued", "Match runs waiting for a worker"),
		runDuration: metrics.Default.Histogram("match_run_seconds", "Match run duration", []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 30}),
	}
	e.matcher.Store(m)
	return e
}

// SetEventStore enables run.completed audit events.
func (e *ProcessingEngine) SetEventStore(es events.Store) { e.events = es }

// SetMatcher swaps the matcher used by runs that start afterwards (config hot reload).
func (e *ProcessingEngine) SetMatcher(m *matching.Matcher) { e.matcher.Store(m) }

func (e *ProcessingEngine) Matcher() *matching.Matcher { return e.matcher.Load() }

func (e *ProcessingEngine) Start() {
	if !e.started.CompareAndSwap(false, true) {
		return
	}
	e.log.Info("starting processing engine", logging.Int("workers", e.cfg.WorkerCount))
	for i := 0; i < e.cfg.WorkerCount; i++ {
		e.wg.Add(1)
		go e.worker(i)
	}
}

func (e *ProcessingEngine) Stop(timeout time.Duration) error {
	var err error
	e.shutdownOnce.Do(func() {
		e.log.Info("initiating graceful shutdown")
		e.cancel()
		e.queueMu.Lock()
		close(e.jobQueue)
		e.queueMu.Unlock()
		e.cancelQueued()

		done := make(chan struct{})
		go func() {
			e.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			e.log.Info("all workers shut down")
		case <-time.After(timeout):
			err = fmt.Errorf("shutdown timeout exceeded")
			e.log.Warn("shutdown timeout reached", logging.Duration("timeout", timeout))
		}
	})
	return err
}

// cancelQueued drains runs no worker picked up so they do not stay queued forever.
// Workers may still be receiving concurrently; each id is delivered once.
func (e *ProcessingEngine) cancelQueued() {
	n := 0
	for runID := range e.jobQueue {
		n++
		e.queueGauge.Add(-1)
		e.statsMu.Lock()
		e.stats.QueueSize--
		e.stats.FailedRuns++
		e.statsMu.Unlock()
		e.runsFailed.Inc(1)
		e.updateRun(runID, func(r *Run) {
			now := time.Now().UTC()
			r.Status = RunCancelled
			r.Error = "processing engine stopped before the run started"
			r.FinishedAt = &now
		})
	}
	if n > 0 {
		e.log.Warn("cancelled queued match runs", logging.Int("runs", n))
	}
}

// Submit queues a new run. It fails fast when the queue is full or the engine stopped.
func (e *ProcessingEngine) Submit(requestedBy string) (Run, error) {
	e.queueMu.RLock()
	defer e.queueMu.RUnlock()
	if e.ctx.Err() != nil {
		return Run{}, errs.NewBiz("processor.Submit", "processing engine is shutting down", nil)
	}

	run := &Run{
		ID:          uuid.NewString(),
		Status:      RunQueued,
		RequestedBy: requestedBy,
		MinScore:    e.Matcher().Config().MinScore,
		CreatedAt:   time.Now().UTC(),
	}
	snap := e.snapshot(run)
	e.storeRun(run)

	select {
	case e.jobQueue <- run.ID:
		e.queueGauge.Add(1)
		e.statsMu.Lock()
		e.stats.TotalRuns++
		e.stats.QueueSize++
		e.stats.LastActivity = time.Now()
		e.statsMu.Unlock()
		e.log.Info("match run queued", logging.String("run_id", run.ID), logging.String("requested_by", requestedBy))
		return snap, nil
	default:
		e.dropRun(run.ID)
		return Run{}, errs.NewBiz("processor.Submit", "job queue is full", nil)
	}
}

// Get returns a copy of the run with the given id.
func (e *ProcessingEngine) Get(id string) (Run, bool) {
	e.runsMu.RLock()
	defer e.runsMu.RUnlock()
	r, ok := e.runs[id]
	if !ok {
		return Run{}, false
	}
	return e.snapshot(r), true
}

// List returns runs newest first, without their results.
func (e *ProcessingEngine) List() []Run {
	e.runsMu.RLock()
	defer e.runsMu.RUnlock()
	out := make([]Run, 0, len(e.runs))
	for _, r := range e.runs {
		s := *r
		s.Results = nil
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (e *ProcessingEngine) GetStats() ProcessingStats {
	e.statsMu.RLock()
	defer e.statsMu.RUnlock()
	return e.stats
}

func (e *ProcessingEngine) worker(id int) {
	defer e.wg.Done()
	e.log.Debug("worker started", logging.Int("worker", id))
	defer e.log.Debug("worker stopped", logging.Int("worker", id))

	for {
		select {
		case runID, ok := <-e.jobQueue:
			if !ok {
				return
			}
			e.queueGauge.Add(-1)
			e.statsMu.Lock()
			e.stats.QueueSize--
			e.statsMu.Unlock()
			e.execute(runID)
		case <-e.ctx.Done():
			return
		}
	}
}

func (e *ProcessingEngine) execute(runID string) {
	start := time.Now()
	m := e.Matcher()
	e.updateRun(runID, func(r *Run) {
		now := start.UTC()
		r.Status = RunRunning
		r.StartedAt = &now
		r.MinScore = m.Config().MinScore
	})

	ctx, cancel := context.WithTimeout(e.ctx, e.cfg.RunTimeout)
	defer cancel()

	contacts, companies, results, err := e.runMatch(ctx, m)
	elapsed := time.Since(start)
	e.runDuration.Observe(elapsed.Seconds())
	e.runsTotal.Inc(1)

	e.updateRun(runID, func(r *Run) {
		now := time.Now().UTC()
		r.FinishedAt = &now
		r.ElapsedMs = elapsed.Milliseconds()
		r.Contacts = contacts
		r.Companies = companies
		switch {
		case err == nil:
			r.Status = RunCompleted
			r.Results = results
		case ctx.Err() != nil:
			r.Status = RunCancelled
			r.Error = err.Error()
		default:
			r.Status = RunFailed
			r.Error = err.Error()
		}
	})

	e.statsMu.Lock()
	if err == nil {
		e.stats.CompletedRuns++
		e.totalTime += elapsed.Milliseconds()
		e.stats.AverageTimeMs = e.totalTime / e.stats.CompletedRuns
	} else {
		e.stats.FailedRuns++
	}
	e.stats.LastActivity = time.Now()
	e.statsMu.Unlock()

	if err != nil {
		e.runsFailed.Inc(1)
		e.log.Error("match run failed", err, logging.String("run_id", runID))
		return
	}
	e.log.Info("match run completed",
		logging.String("run_id", runID),
		logging.Int("contacts", contacts),
		logging.Int("companies", companies),
		logging.Int("results", len(results)),
		logging.Duration("elapsed", elapsed))

	if e.events != nil {
		ev := events.MatchRunCompleted{
			Base:     events.NewBase(runID, ""),
			Contacts: contacts, Companies: companies, Results: len(results), ElapsedMs: elapsed.Milliseconds(),
		}
		if r, ok := e.Get(runID); ok {
			ev.ActorID = r.RequestedBy
		}
		if aerr := e.events.Append(context.Background(), ev); aerr != nil {
			e.log.Warn("failed to append run event", logging.Error(aerr))
		}
	}
}

func (e *ProcessingEngine) runMatch(ctx context.Context, m *matching.Matcher) (int, int, []models.MatchResult, error) {
	contacts, _, err := e.source.ListContactsCtx(ctx, domain.ListFilter{})
	if err != nil {
		return 0, 0, nil, err
	}
	companies, _, err := e.source.ListCompaniesCtx(ctx, domain.ListFilter{})
	if err != nil {
		return len(contacts), 0, nil, err
	}
	results, err := MatchParallel(ctx, m, contacts, companies, e.cfg.Partitions)
	return len(contacts), len(companies), results, err
}

func (e *ProcessingEngine) storeRun(r *Run) {
	e.runsMu.Lock()
	defer e.runsMu.Unlock()
	e.runs[r.ID] = r
	e.order = append(e.order, r.ID)
	for len(e.order) > e.cfg.RetainRuns {
		oldest := e.order[0]
		if st := e.runs[oldest].Status; st == RunQueued || st == RunRunning {
			break
		}
		delete(e.runs, oldest)
		e.order = e.order[1:]
	}
}

func (e *ProcessingEngine) dropRun(id string) {
	e.runsMu.Lock()
	defer e.runsMu.Unlock()
	delete(e.runs, id)
	for i, v := range e.order {
		if v == id {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
}

func (e *ProcessingEngine) updateRun(id string, fn func(*Run)) {
	e.runsMu.Lock()
	defer e.runsMu.Unlock()
	if r, ok := e.runs[id]; ok {
		fn(r)
	}
}

func (e *ProcessingEngine) snapshot(r *Run) Run {
	s := *r
	s.Results = append([]models.MatchResult(nil), r.Results...)
	return s
}
