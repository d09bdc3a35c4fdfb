package telemetry

import "time"

// Status classifies a completed call.
type Status string

// Call outcomes.
const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Entry captures one completed control-plane call. Entries are immutable
// once created; history holds them most-recent-first.
type Entry struct {
	// ID is a time-sortable unique identifier.
	ID string `json:"id"`

	// Timestamp is when the call completed.
	Timestamp time.Time `json:"timestamp"`

	// Route is the control-plane path, e.g. "/search".
	Route string `json:"route"`

	// Method is the HTTP method.
	Method string `json:"method"`

	// Request is the sanitized request payload.
	Request any `json:"request,omitempty"`

	// Response is the sanitized response payload.
	Response any `json:"response,omitempty"`

	// DurationMs is the wall-clock call duration in milliseconds.
	DurationMs int64 `json:"durationMs"`

	// Status is success or error.
	Status Status `json:"status"`

	// StatusCode is the HTTP status code (0 for transport failures).
	StatusCode int `json:"statusCode"`

	// ErrorMessage holds the failure message for error entries.
	ErrorMessage string `json:"errorMessage,omitempty"`

	// UserAction labels the user-visible action that triggered the call.
	UserAction string `json:"userAction,omitempty"`

	// Context carries free-form metadata about the call site.
	Context map[string]any `json:"context,omitempty"`
}

// Call is the raw outcome handed to Engine.Log by the request pipeline.
// The engine assigns the ID and timestamp and sanitizes the payloads.
type Call struct {
	Route        string
	Method       string
	Request      any
	Response     any
	DurationMs   int64
	Status       Status
	StatusCode   int
	ErrorMessage string
	UserAction   string
	Context      map[string]any
}

// Notification is delivered to engine subscribers. Exactly one of Entry or
// Cleared is meaningful: a normal log carries the new entry, a confirmed
// clear carries Cleared=true and no entry.
type Notification struct {
	Entry   *Entry
	Cleared bool
}
