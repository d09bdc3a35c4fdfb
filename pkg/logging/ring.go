package logging

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// RingRecord is one captured log record.
type RingRecord struct {
	Time    time.Time         `json:"time"`
	Level   string            `json:"level"`
	Message string            `json:"message"`
	Attrs   map[string]string `json:"attrs,omitempty"`
}

// ringBuffer holds the shared record storage so handler clones produced by
// WithAttrs keep writing into the same ring.
type ringBuffer struct {
	mu      sync.Mutex
	records []RingRecord
	cap     int
}

// RingHandler is a slog.Handler that retains the most recent records in
// memory, newest first. The logs view reads them alongside the system logs
// fetched from the control plane.
type RingHandler struct {
	buf   *ringBuffer
	level slog.Level
	attrs []slog.Attr
}

// NewRingHandler creates a ring handler keeping at most capacity records.
// A capacity of zero or less defaults to 200.
func NewRingHandler(capacity int, level slog.Level) *RingHandler {
	if capacity <= 0 {
		capacity = 200
	}
	return &RingHandler{
		buf:   &ringBuffer{cap: capacity},
		level: level,
	}
}

// Enabled implements slog.Handler.
func (h *RingHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

// Handle implements slog.Handler.
func (h *RingHandler) Handle(_ context.Context, r slog.Record) error {
	rec := RingRecord{
		Time:    r.Time,
		Level:   r.Level.String(),
		Message: r.Message,
	}
	if n := r.NumAttrs() + len(h.attrs); n > 0 {
		rec.Attrs = make(map[string]string, n)
		for _, a := range h.attrs {
			rec.Attrs[a.Key] = a.Value.String()
		}
		r.Attrs(func(a slog.Attr) bool {
			rec.Attrs[a.Key] = a.Value.String()
			return true
		})
	}

	h.buf.mu.Lock()
	defer h.buf.mu.Unlock()
	h.buf.records = append([]RingRecord{rec}, h.buf.records...)
	if len(h.buf.records) > h.buf.cap {
		h.buf.records = h.buf.records[:h.buf.cap]
	}
	return nil
}

// WithAttrs implements slog.Handler. The returned handler shares the ring.
func (h *RingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &RingHandler{
		buf:   h.buf,
		level: h.level,
		attrs: append(h.attrs[:len(h.attrs):len(h.attrs)], attrs...),
	}
}

// WithGroup implements slog.Handler. Groups are flattened; the ring keeps
// attribute keys as written.
func (h *RingHandler) WithGroup(string) slog.Handler {
	return h
}

// Records returns a snapshot of the retained records, newest first.
func (h *RingHandler) Records() []RingRecord {
	h.buf.mu.Lock()
	defer h.buf.mu.Unlock()
	out := make([]RingRecord, len(h.buf.records))
	copy(out, h.buf.records)
	return out
}

// Clear drops all retained records.
func (h *RingHandler) Clear() {
	h.buf.mu.Lock()
	defer h.buf.mu.Unlock()
	h.buf.records = nil
}
