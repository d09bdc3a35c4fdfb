// Package logging provides structured logging configuration for codedash.
//
// This package wraps log/slog so every runtime service logs the same way.
// Services accept a *slog.Logger in their constructor or via a setter and
// default to logging.Nop() when none is provided.
//
// The ring handler keeps the most recent records in memory so the logs view
// can show client-side activity next to the control-plane's system logs.
package logging
