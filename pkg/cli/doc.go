// Package cli implements the codedash command-line interface: running the
// dashboard runtime against a control plane, inspecting call telemetry,
// and exporting the call log.
package cli
