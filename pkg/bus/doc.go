// Package bus provides the process-wide publish/subscribe primitive that
// the router, state container, and request pipeline use to signal
// cross-cutting events such as section changes and connectivity flips.
//
// Handlers run synchronously in registration order. A handler that panics
// is recovered and logged; the remaining handlers still run.
package bus
