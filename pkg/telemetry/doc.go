// Package telemetry records the outcome of every control-plane call made by
// the request pipeline. It maintains a bounded most-recent-first history,
// incrementally updated aggregate statistics, combinable history filters,
// JSON/CSV export, and persistence through the store adapter.
//
// Request and response payloads are sanitized before retention: any key
// containing a blocked substring, at any nesting depth, is replaced by a
// redaction marker. The caller's objects are never mutated.
package telemetry
