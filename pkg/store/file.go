package store

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/danyQe/codedash/pkg/logging"
)

// FileStore implements KV with one file per key under a data directory.
// Writes go through a temp file and rename so a crash never leaves a
// half-written value behind.
type FileStore struct {
	dir    string
	mu     sync.RWMutex
	closed bool
	log    *slog.Logger
}

// NewFileStore creates a file-backed store rooted at cfg.DataDir,
// creating the directory if needed.
func NewFileStore(cfg Config) (*FileStore, error) {
	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir()
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{dir: cfg.DataDir, log: logging.Nop()}, nil
}

// SetLogger sets the operational logger for the store.
func (s *FileStore) SetLogger(log *slog.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if log != nil {
		s.log = log
	} else {
		s.log = logging.Nop()
	}
}

// Get returns the value for key and whether it exists. Read failures are
// logged and reported as absent, never surfaced as errors.
func (s *FileStore) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("store read failed", "key", key, "error", err)
		}
		return nil, false
	}
	return data, true
}

// Set stores the value under key.
func (s *FileStore) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	tmp := s.path(key) + ".tmp"
	if err := os.WriteFile(tmp, value, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path(key))
}

// Delete removes key. Deleting a missing key is a no-op.
func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	err := os.Remove(s.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Keys returns all stored keys.
func (s *FileStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.log.Warn("store list failed", "error", err)
		return nil
	}

	var keys []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, ".json"))
	}
	return keys
}

// Close marks the store closed. Subsequent writes return ErrClosed.
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// path maps a key to its backing file. Path separators are flattened so a
// key can never escape the data directory.
func (s *FileStore) path(key string) string {
	safe := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(key)
	return filepath.Join(s.dir, safe+".json")
}

// Ensure FileStore implements KV.
var _ KV = (*FileStore)(nil)
