// Package store provides the durable key-value layer behind the dashboard
// runtime. The state container, telemetry engine, and preferences all
// persist through the KV interface under fixed keys.
//
// Directory layout follows the XDG Base Directory Specification:
// data lives under XDG_DATA_HOME/codedash (or the platform equivalent).
package store

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
)

// Fixed keys used by the runtime services.
const (
	KeyCallHistory = "callHistory"
	KeyCallStats   = "callStats"
	KeyPreferences = "preferences"
	KeyAppState    = "appState"
)

// ErrClosed is returned by writes against a closed store.
var ErrClosed = errors.New("store is closed")

// KV is the minimal durable key-value contract. Values are opaque byte
// blobs; callers own serialization. Implementations must be safe for
// concurrent use.
type KV interface {
	// Get returns the value for key and whether it exists.
	// A missing key is not an error.
	Get(key string) ([]byte, bool)

	// Set stores the value under key, replacing any previous value.
	Set(key string, value []byte) error

	// Delete removes key. Deleting a missing key is a no-op.
	Delete(key string) error

	// Keys returns all stored keys in unspecified order.
	Keys() []string

	// Close flushes and releases the store.
	Close() error
}

// Config holds store configuration.
type Config struct {
	// DataDir is the directory for persisted values.
	// Defaults to DefaultDataDir().
	DataDir string `json:"dataDir,omitempty" yaml:"dataDir,omitempty"`
}

// DefaultConfig returns the default store configuration.
func DefaultConfig() Config {
	return Config{DataDir: DefaultDataDir()}
}

// DefaultDataDir returns the default data directory following the XDG spec.
func DefaultDataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "codedash")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".codedash")
	}
	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Application Support", "codedash")
	}
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("LOCALAPPDATA"); appData != "" {
			return filepath.Join(appData, "codedash")
		}
		return filepath.Join(home, "AppData", "Local", "codedash")
	}
	return filepath.Join(home, ".local", "share", "codedash")
}
