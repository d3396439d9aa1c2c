package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"

	"fleet-crm/pkg/metrics"
)

// Change describes a configuration update event.
// Only a subset of fields may have changed; see Fields for the list of keys.
type Change struct {
	Old    *Config
	New    *Config
	Fields []string
	Err    error
}

// Subscriber channel buffer size; small to apply back-pressure if receivers are slow.
const subBuf = 4

// Watcher periodically reloads configuration from the environment.
// If CONFIG_FILE points to a .env file, it is re-read whenever its mtime changes.
type Watcher struct {
	mu        sync.RWMutex
	cur       *Config
	closed    bool
	intv      time.Duration
	subs      []chan Change
	cancel    context.CancelFunc
	filePath  string
	lastMTime time.Time
	load      func() *Config

	mReloads  *metrics.Counter
	mFailures *metrics.Counter
}

func NewWatcher(interval time.Duration) *Watcher {
	w := &Watcher{
		intv:      interval,
		filePath:  strings.TrimSpace(os.Getenv("CONFIG_FILE")),
		load:      Load,
		mReloads:  metrics.Default.Counter("config_reload_total", "Total number of applied config reloads"),
		mFailures: metrics.Default.Counter("config_reload_failures_total", "Total number of rejected config reloads"),
	}
	w.cur = w.load()
	return w
}

// Current returns the last accepted configuration.
func (w *Watcher) Current() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.cur
}

// Subscribe returns a channel to receive Change notifications.
// Caller should drain the channel until it is closed.
func (w *Watcher) Subscribe() <-chan Change {
	w.mu.Lock()
	defer w.mu.Unlock()
	ch := make(chan Change, subBuf)
	w.subs = append(w.subs, ch)
	return ch
}

// Close stops the watcher and closes subscriber channels.
func (w *Watcher) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	if w.cancel != nil {
		w.cancel()
	}
	for _, s := range w.subs {
		close(s)
	}
	w.subs = nil
}

// Start begins polling in a goroutine. It is safe to call once.
func (w *Watcher) Start() {
	w.mu.Lock()
	if w.cancel != nil || w.closed {
		w.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.mu.Unlock()

	go w.loop(ctx)
}

func (w *Watcher) loop(ctx context.Context) {
	t := time.NewTicker(w.intv)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			w.checkOnce()
		}
	}
}

func (w *Watcher) checkOnce() {
	if w.filePath != "" {
		if fi, err := os.Stat(w.filePath); err == nil && fi.ModTime().After(w.lastMTime) {
			_ = godotenv.Overload(w.filePath)
			w.lastMTime = fi.ModTime()
		}
	}

	newCfg := w.load()
	old := w.Current()
	if err := newCfg.Validate(); err != nil {
		w.mFailures.Inc(1)
		w.notify(Change{Old: old, New: newCfg, Err: fmt.Errorf("invalid config: %w", err)})
		return
	}

	fields := diffKeys(old, newCfg)
	if len(fields) == 0 {
		return
	}

	w.mReloads.Inc(1)
	w.mu.Lock()
	w.cur = newCfg
	w.mu.Unlock()
	w.notify(Change{Old: old, New: newCfg, Fields: fields})
}

func (w *Watcher) notify(chg Change) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, s := range w.subs {
		select {
		case s <- chg:
		default:
			// drop if slow
		}
	}
}

// diffKeys lists the hot-reloadable settings that changed.
func diffKeys(a, b *Config) []string {
	if a == nil || b == nil {
		return []string{"all"}
	}
	var f []string
	appendIf := func(cond bool, name string) {
		if cond {
			f = append(f, name)
		}
	}
	appendIf(a.MatchMinScore != b.MatchMinScore, "MatchMinScore")
	appendIf(a.StackNameRules != b.StackNameRules, "StackNameRules")
	appendIf(a.MatchWorkers != b.MatchWorkers, "MatchWorkers")
	appendIf(a.LogLevel != b.LogLevel, "LogLevel")
	appendIf(a.RolesFile != b.RolesFile, "RolesFile")
	return f
}
