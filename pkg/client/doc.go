// Package client implements the instrumented request pipeline between the
// dashboard and the control-plane API. Every call runs through an ordered
// request/response interceptor chain, produces exactly one telemetry entry,
// and returns a uniform Result instead of surfacing transport errors.
//
// Two response interceptors are built in: one logs failed outcomes, the
// other maintains the process-wide connectivity flag, edge-triggered so the
// bus only signals on actual transitions.
package client
