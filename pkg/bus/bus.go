package bus

import (
	"log/slog"
	"sync"

	"github.com/danyQe/codedash/pkg/logging"
)

// Well-known event names emitted by the runtime services.
const (
	EventSectionChanged      = "sectionChanged"
	EventSectionLoaded       = "sectionLoaded"
	EventComponentLoaded     = "componentLoaded"
	EventConnectivityChanged = "connectivityChanged"
	EventTelemetryCleared    = "telemetryCleared"
)

// Handler receives the arguments passed to Emit.
type Handler func(args ...any)

// handlerEntry pairs a handler with a registration id so unsubscribe can
// remove exactly one registration even when the same function is registered
// twice.
type handlerEntry struct {
	id int
	fn Handler
}

// Bus is a synchronous publish/subscribe dispatcher. The zero value is not
// usable; construct with New.
type Bus struct {
	mu       sync.Mutex
	nextID   int
	handlers map[string][]handlerEntry
	log      *slog.Logger
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{
		handlers: make(map[string][]handlerEntry),
		log:      logging.Nop(),
	}
}

// SetLogger sets the logger used for reporting handler faults.
func (b *Bus) SetLogger(log *slog.Logger) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if log != nil {
		b.log = log
	} else {
		b.log = logging.Nop()
	}
}

// On registers a handler for event and returns its unsubscribe function.
// Unsubscribing twice is harmless.
func (b *Bus) On(event string, fn Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.handlers[event] = append(b.handlers[event], handlerEntry{id: id, fn: fn})

	return func() { b.remove(event, id) }
}

// Once registers a handler that fires at most once. The registration is
// removed before the handler runs, so an Emit issued from inside the handler
// cannot trigger a second invocation.
func (b *Bus) Once(event string, fn Handler) func() {
	var once sync.Once
	var unsub func()
	unsub = b.On(event, func(args ...any) {
		once.Do(func() {
			unsub()
			fn(args...)
		})
	})
	return unsub
}

// Emit invokes all handlers currently registered for event, synchronously
// and in registration order. A panicking handler is logged and skipped.
func (b *Bus) Emit(event string, args ...any) {
	b.mu.Lock()
	entries := make([]handlerEntry, len(b.handlers[event]))
	copy(entries, b.handlers[event])
	log := b.log
	b.mu.Unlock()

	for _, entry := range entries {
		b.invoke(event, entry, log, args)
	}
}

// invoke runs one handler with panic isolation.
func (b *Bus) invoke(event string, entry handlerEntry, log *slog.Logger, args []any) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("event handler panicked", "event", event, "panic", r)
		}
	}()
	entry.fn(args...)
}

// Off removes all handlers for event.
func (b *Bus) Off(event string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.handlers, event)
}

// Clear removes every handler for every event. Used on full application
// reset.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = make(map[string][]handlerEntry)
}

// HandlerCount returns the number of handlers registered for event.
func (b *Bus) HandlerCount(event string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers[event])
}

// remove deletes the registration with the given id.
func (b *Bus) remove(event string, id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries := b.handlers[event]
	for i, entry := range entries {
		if entry.id == id {
			b.handlers[event] = append(entries[:i:i], entries[i+1:]...)
			return
		}
	}
}
