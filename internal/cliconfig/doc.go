// Package cliconfig resolves dashboard CLI configuration from layered
// sources. Precedence: flags > environment > local config > global config
// > defaults. Each resolved value remembers which source set it so
// `--verbose` output can explain the effective configuration.
package cliconfig
