package telemetry

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/danyQe/codedash/internal/id"
	"github.com/danyQe/codedash/pkg/logging"
	"github.com/danyQe/codedash/pkg/store"
)

// DefaultHistoryCap is the default retention bound for the call history.
const DefaultHistoryCap = 1000

// Config holds engine configuration.
type Config struct {
	// HistoryCap bounds retained history; the oldest entry is evicted
	// once the cap is exceeded. Zero or negative uses DefaultHistoryCap.
	HistoryCap int

	// Blocklist overrides the sanitization blocklist. Empty uses
	// DefaultBlocklist.
	Blocklist []string

	// RedactionMarker overrides the redaction placeholder. Empty uses
	// RedactionMarker.
	RedactionMarker string

	// Store, when non-nil, persists history and stats under the fixed
	// keys. Nil disables persistence.
	Store store.KV
}

// DefaultConfig returns the default engine configuration without
// persistence.
func DefaultConfig() Config {
	return Config{HistoryCap: DefaultHistoryCap}
}

type subscriber struct {
	id int
	fn func(Notification)
}

// Engine is the call-log telemetry engine.
type Engine struct {
	mu        sync.Mutex
	history   []*Entry // most-recent-first
	stats     *Stats
	cap       int
	sanitizer *Sanitizer
	kv        store.KV
	nextSubID int
	subs      []subscriber
	log       *slog.Logger
}

// New creates an engine from cfg.
func New(cfg Config) *Engine {
	if cfg.HistoryCap <= 0 {
		cfg.HistoryCap = DefaultHistoryCap
	}
	return &Engine{
		stats:     NewStats(),
		cap:       cfg.HistoryCap,
		sanitizer: NewSanitizer(cfg.Blocklist, cfg.RedactionMarker),
		kv:        cfg.Store,
		log:       logging.Nop(),
	}
}

// SetLogger sets the operational logger for the engine.
func (e *Engine) SetLogger(log *slog.Logger) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if log != nil {
		e.log = log
	} else {
		e.log = logging.Nop()
	}
}

// Log records one completed call: sanitizes the payloads, prepends the
// entry to history, evicts past the cap, folds the entry into the counters,
// persists, and notifies subscribers.
func (e *Engine) Log(call Call) *Entry {
	entry := &Entry{
		ID:           id.New(),
		Timestamp:    time.Now(),
		Route:        call.Route,
		Method:       call.Method,
		Request:      e.sanitizer.Sanitize(call.Request),
		Response:     e.sanitizer.Sanitize(call.Response),
		DurationMs:   call.DurationMs,
		Status:       call.Status,
		StatusCode:   call.StatusCode,
		ErrorMessage: call.ErrorMessage,
		UserAction:   call.UserAction,
		Context:      call.Context,
	}

	e.mu.Lock()
	e.history = append([]*Entry{entry}, e.history...)
	if len(e.history) > e.cap {
		e.history = e.history[:e.cap]
	}
	e.stats.add(entry)
	subs := e.snapshotSubsLocked()
	e.mu.Unlock()

	e.persist()
	e.notify(subs, Notification{Entry: entry})
	return entry
}

// History returns the entries matching filter, most-recent-first. The
// result is a pure function of the retained history and the filter. An
// invalid Where expression is reported as an error.
func (e *Engine) History(filter *Filter) ([]*Entry, error) {
	program, err := filter.compile()
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]*Entry, 0, len(e.history))
	for _, entry := range e.history {
		if filter.matches(entry) && whereMatches(program, entry) {
			out = append(out, entry)
		}
	}
	return out, nil
}

// Len returns the current history length.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.history)
}

// CalculateStats replays the retained history in order and returns the
// resulting counters. The result must equal the incrementally maintained
// counters; a divergence is logged because it indicates a bookkeeping bug.
func (e *Engine) CalculateStats() *Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	replayed := NewStats()
	for i := len(e.history) - 1; i >= 0; i-- {
		replayed.add(e.history[i])
	}
	if !replayed.equal(e.stats) {
		e.log.Error("telemetry counters diverged from history replay",
			"incrementalTotal", e.stats.TotalCalls,
			"replayedTotal", replayed.TotalCalls)
	}
	return replayed
}

// GetStats returns the read-time summary: raw counters plus derived average
// duration and success/error rates.
func (e *Engine) GetStats() Summary {
	e.mu.Lock()
	defer e.mu.Unlock()
	return summarize(e.stats)
}

// Clear destroys history and counters. It is gated on explicit
// confirmation: Clear(false) is a no-op. Returns whether the clear ran.
func (e *Engine) Clear(confirmed bool) bool {
	if !confirmed {
		return false
	}

	e.mu.Lock()
	e.history = nil
	e.stats = NewStats()
	subs := e.snapshotSubsLocked()
	e.mu.Unlock()

	e.persist()
	e.notify(subs, Notification{Cleared: true})
	return true
}

// Subscribe registers fn for every logged call and for clears, returning
// its unsubscribe function. Subscriber faults are isolated.
func (e *Engine) Subscribe(fn func(Notification)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextSubID++
	subID := e.nextSubID
	e.subs = append(e.subs, subscriber{id: subID, fn: fn})

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		for i, s := range e.subs {
			if s.id == subID {
				e.subs = append(e.subs[:i:i], e.subs[i+1:]...)
				return
			}
		}
	}
}

// persistedStats is the durable shape of the counters.
type persistedStats struct {
	TotalCalls      int                    `json:"totalCalls"`
	SuccessCount    int                    `json:"successCount"`
	ErrorCount      int                    `json:"errorCount"`
	TotalDurationMs int64                  `json:"totalDurationMs"`
	PerRoute        map[string]*RouteStats `json:"perRoute"`
}

// Persist writes history and counters through the store adapter. Failures
// are logged and swallowed.
func (e *Engine) Persist() {
	e.persist()
}

func (e *Engine) persist() {
	e.mu.Lock()
	kv := e.kv
	if kv == nil {
		e.mu.Unlock()
		return
	}
	history, herr := json.Marshal(e.history)
	stats, serr := json.Marshal(persistedStats{
		TotalCalls:      e.stats.TotalCalls,
		SuccessCount:    e.stats.SuccessCount,
		ErrorCount:      e.stats.ErrorCount,
		TotalDurationMs: e.stats.TotalDurationMs,
		PerRoute:        e.stats.PerRoute,
	})
	log := e.log
	e.mu.Unlock()

	if herr != nil || serr != nil {
		log.Warn("telemetry serialization failed", "historyErr", herr, "statsErr", serr)
		return
	}
	if err := kv.Set(store.KeyCallHistory, history); err != nil {
		log.Warn("telemetry history persist failed", "error", err)
	}
	if err := kv.Set(store.KeyCallStats, stats); err != nil {
		log.Warn("telemetry stats persist failed", "error", err)
	}
}

// LoadHistory restores history and counters from the store adapter. Any
// read or parse failure yields an empty history and zeroed counters. A
// readable history with unreadable counters is recovered by replay so the
// replay invariant holds after load.
func (e *Engine) LoadHistory() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.kv == nil {
		return
	}

	e.history = nil
	e.stats = NewStats()

	raw, ok := e.kv.Get(store.KeyCallHistory)
	if !ok {
		return
	}
	var history []*Entry
	if err := json.Unmarshal(raw, &history); err != nil {
		e.log.Warn("telemetry history unreadable, starting empty", "error", err)
		return
	}
	if len(history) > e.cap {
		history = history[:e.cap]
	}
	e.history = history

	loaded := false
	if rawStats, ok := e.kv.Get(store.KeyCallStats); ok {
		var ps persistedStats
		if err := json.Unmarshal(rawStats, &ps); err == nil {
			e.stats = &Stats{
				TotalCalls:      ps.TotalCalls,
				SuccessCount:    ps.SuccessCount,
				ErrorCount:      ps.ErrorCount,
				TotalDurationMs: ps.TotalDurationMs,
				PerRoute:        ps.PerRoute,
			}
			if e.stats.PerRoute == nil {
				e.stats.PerRoute = make(map[string]*RouteStats)
			}
			loaded = true
		} else {
			e.log.Warn("telemetry stats unreadable, recomputing", "error", err)
		}
	}
	if !loaded {
		for i := len(e.history) - 1; i >= 0; i-- {
			e.stats.add(e.history[i])
		}
	}
}

// snapshotSubsLocked copies the subscriber list; callers hold e.mu.
func (e *Engine) snapshotSubsLocked() []subscriber {
	subs := make([]subscriber, len(e.subs))
	copy(subs, e.subs)
	return subs
}

// notify delivers n to each subscriber with panic isolation.
func (e *Engine) notify(subs []subscriber, n Notification) {
	for _, s := range subs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					e.log.Error("telemetry subscriber panicked", "panic", r)
				}
			}()
			s.fn(n)
		}()
	}
}
