package client

import (
	"encoding/json"
	"net/url"
)

// RequestConfig is the canonical request shape threaded through the request
// interceptor chain. Interceptors receive a value and return the config the
// next interceptor (and finally the transport) will see.
type RequestConfig struct {
	// Method is the HTTP method.
	Method string

	// Path is the control-plane route, e.g. "/search". Telemetry records
	// this path, without query parameters.
	Path string

	// Query is appended to the path before dispatch.
	Query url.Values

	// Headers are sent with the request.
	Headers map[string]string

	// Body is JSON-serialized when non-nil.
	Body any

	// UserAction labels the user-visible action for telemetry.
	UserAction string

	// Context carries free-form call-site metadata for telemetry.
	Context map[string]any
}

// clone returns a copy whose maps are safe for an interceptor to modify.
func (rc RequestConfig) clone() RequestConfig {
	out := rc
	out.Headers = make(map[string]string, len(rc.Headers))
	for k, v := range rc.Headers {
		out.Headers[k] = v
	}
	out.Query = make(url.Values, len(rc.Query))
	for k, v := range rc.Query {
		out.Query[k] = append([]string(nil), v...)
	}
	return out
}

// Result is the uniform outcome of a pipeline call. Transport failures and
// non-2xx statuses both yield Success=false with a message; nothing is
// raised past the pipeline boundary.
type Result struct {
	// Success is true for 2xx responses.
	Success bool `json:"success"`

	// Status is the HTTP status code; 0 for transport-level failures.
	Status int `json:"status"`

	// Data is the decoded JSON response body, when the body parses.
	Data any `json:"data,omitempty"`

	// Raw is the response body as received.
	Raw []byte `json:"-"`

	// Error is the failure message for unsuccessful results.
	Error string `json:"error,omitempty"`

	// Route and Method identify the call that produced this result.
	Route  string `json:"route"`
	Method string `json:"method"`

	// DurationMs is the measured wall-clock duration of the network call.
	DurationMs int64 `json:"durationMs"`
}

// errorMessage extracts the server's error field from a failure body,
// falling back to the given default.
func errorMessage(raw []byte, fallback string) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		return body.Error
	}
	return fallback
}
