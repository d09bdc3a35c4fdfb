package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// RemoteHandler is a slog.Handler that ships warn and error records to the
// control-plane logs endpoint. Delivery is batched and best-effort: a full
// buffer drops the oldest records, and push failures are silent so the
// sink can never take the dashboard down with it.
//
// Derived handlers (WithAttrs) share the parent's batch and flush timer,
// so records logged through them are flushed on the same schedule and by
// Close on any handler in the family.
type RemoteHandler struct {
	level slog.Level
	attrs []slog.Attr
	buf   *remoteBatch
}

// remoteBatch is the buffer shared by a handler and all its clones.
type remoteBatch struct {
	url        string
	source     string
	client     *http.Client
	mu         sync.Mutex
	entries    []remoteEntry
	batchSize  int
	flushTimer *time.Timer
}

type remoteEntry struct {
	Time    time.Time      `json:"time"`
	Level   string         `json:"level"`
	Message string         `json:"message"`
	Fields  map[string]any `json:"fields,omitempty"`
}

type remotePush struct {
	Source  string        `json:"source"`
	Entries []remoteEntry `json:"entries"`
}

// RemoteOption configures a RemoteHandler.
type RemoteOption func(*RemoteHandler)

// WithRemoteLevel sets the minimum level shipped upstream.
func WithRemoteLevel(level slog.Level) RemoteOption {
	return func(h *RemoteHandler) {
		h.level = level
	}
}

// WithRemoteBatchSize sets the batch size before flushing.
func WithRemoteBatchSize(size int) RemoteOption {
	return func(h *RemoteHandler) {
		if size > 0 {
			h.buf.batchSize = size
		}
	}
}

// WithRemoteSource sets the source label attached to every push.
func WithRemoteSource(source string) RemoteOption {
	return func(h *RemoteHandler) {
		h.buf.source = source
	}
}

// NewRemoteHandler creates a handler pushing to the given logs endpoint,
// e.g. "http://localhost:8000/logs".
func NewRemoteHandler(url string, opts ...RemoteOption) *RemoteHandler {
	h := &RemoteHandler{
		level: slog.LevelWarn,
		buf: &remoteBatch{
			url:       url,
			source:    "codedash",
			client:    &http.Client{Timeout: 5 * time.Second},
			batchSize: 50,
		},
	}
	for _, opt := range opts {
		opt(h)
	}

	buf := h.buf
	buf.flushTimer = time.AfterFunc(5*time.Second, func() {
		_ = buf.flush()
		buf.flushTimer.Reset(5 * time.Second)
	})
	return h
}

// Enabled implements slog.Handler.
func (h *RemoteHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

// Handle implements slog.Handler.
func (h *RemoteHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make(map[string]any)
	for _, attr := range h.attrs {
		fields[attr.Key] = attr.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		fields[a.Key] = a.Value.Any()
		return true
	})
	if len(fields) == 0 {
		fields = nil
	}

	buf := h.buf
	buf.mu.Lock()
	buf.entries = append(buf.entries, remoteEntry{
		Time:    r.Time,
		Level:   r.Level.String(),
		Message: r.Message,
		Fields:  fields,
	})
	// Keep the buffer bounded even when the endpoint is unreachable.
	if len(buf.entries) > buf.batchSize*2 {
		buf.entries = buf.entries[len(buf.entries)-buf.batchSize:]
	}
	shouldFlush := len(buf.entries) >= buf.batchSize
	buf.mu.Unlock()

	if shouldFlush {
		go func() { _ = buf.flush() }()
	}
	return nil
}

// WithAttrs implements slog.Handler. The clone shares the batch and flush
// timer.
func (h *RemoteHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &RemoteHandler{
		level: h.level,
		attrs: append(h.attrs[:len(h.attrs):len(h.attrs)], attrs...),
		buf:   h.buf,
	}
}

// WithGroup implements slog.Handler. Groups are flattened; the remote
// schema is a flat field map.
func (h *RemoteHandler) WithGroup(string) slog.Handler {
	return h
}

// Flush pushes all buffered records, including those logged through
// derived handlers.
func (h *RemoteHandler) Flush() error {
	return h.buf.flush()
}

// Close flushes remaining records and stops the shared timer.
func (h *RemoteHandler) Close() error {
	h.buf.mu.Lock()
	timer := h.buf.flushTimer
	h.buf.mu.Unlock()
	if timer != nil {
		timer.Stop()
	}
	return h.buf.flush()
}

func (b *remoteBatch) flush() error {
	b.mu.Lock()
	if len(b.entries) == 0 {
		b.mu.Unlock()
		return nil
	}
	batch := b.entries
	b.entries = nil
	b.mu.Unlock()

	body, err := json.Marshal(remotePush{Source: b.source, Entries: batch})
	if err != nil {
		return fmt.Errorf("failed to encode log push: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, b.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create log push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to push logs: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("logs endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
