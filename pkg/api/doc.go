// Package api models the control-plane payload shapes consumed by the
// dashboard. The route set is closed: known routes decode into typed
// payloads, anything else falls back to an opaque value that callers can
// query by path.
package api
