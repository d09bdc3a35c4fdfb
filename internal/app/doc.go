// Package app assembles the dashboard runtime: store, event bus, state
// container, telemetry engine, request client, fragment loader and router.
// Every service receives its dependencies explicitly; nothing reaches for
// globals.
package app
