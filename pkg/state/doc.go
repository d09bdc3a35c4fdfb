// Package state implements the reactive state container backing the
// dashboard views. Values live in a single JSON document addressed by
// dotted paths ("services.gitManager"); writes materialize missing
// intermediate objects and notify per-path and wildcard subscribers in
// subscription order.
package state
