// Package cache keeps small pieces of vmas state as JSON files in the state
// directory:
//
//	~/.local/state/vmas/
//	  trigger.json   last report trigger firing
//	  health.json    sampler liveness
//	  vmas.pid
//
// Writes are atomic (temp file + rename), so a reader never sees a partial
// document even while the sampler is running.
package cache

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Store is a directory of JSON documents addressed by key.
type Store struct {
	dir    string
	logger *slog.Logger
}

// Meta describes the documents currently in the store.
type Meta struct {
	LastUpdate map[string]time.Time `json:"last_update"`
	Sizes      map[string]int64     `json:"sizes"`
}

// NewStore creates a store at dir, creating it with 0700 permissions if
// needed. If logger is nil, a no-op logger is used.
func NewStore(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("cache: create directory %s: %w", dir, err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

// Dir returns the store directory.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) keyPath(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Get reads the document stored under key. A missing key returns nil, nil.
// A document that is not valid JSON is removed and treated as missing.
func (s *Store) Get(key string) (json.RawMessage, error) {
	path := s.keyPath(key)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache: read %s: %w", key, err)
	}

	if !json.Valid(data) {
		s.logger.Warn("cache: removing corrupted entry", "key", key)
		_ = os.Remove(path)
		return nil, nil
	}
	return json.RawMessage(data), nil
}

// Set writes v under key. The document is written to a temp file in the same
// directory and renamed into place.
func (s *Store) Set(key string, v any) error {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("cache: marshal %s: %w", key, err)
	}

	tmp, err := os.CreateTemp(s.dir, ".tmp-"+key+"-*.json")
	if err != nil {
		return fmt.Errorf("cache: create temp for %s: %w", key, err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpName)
		}
	}()

	if err := os.Chmod(tmpName, 0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("cache: chmod temp for %s: %w", key, err)
	}
	if _, err := tmp.Write(encoded); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("cache: write temp for %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("cache: close temp for %s: %w", key, err)
	}
	if err := os.Rename(tmpName, s.keyPath(key)); err != nil {
		return fmt.Errorf("cache: rename temp for %s: %w", key, err)
	}

	success = true
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(key string) error {
	if err := os.Remove(s.keyPath(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("cache: delete %s: %w", key, err)
	}
	return nil
}

// GetTyped reads and decodes the document under key. It returns nil when the
// key is missing. A document that does not decode into T is removed.
func GetTyped[T any](s *Store, key string) (*T, error) {
	raw, err := s.Get(key)
	if err != nil || raw == nil {
		return nil, err
	}

	var result T
	if err := json.Unmarshal(raw, &result); err != nil {
		s.logger.Warn("cache: removing entry with unmarshal error", "key", key, "error", err)
		_ = os.Remove(s.keyPath(key))
		return nil, nil
	}
	return &result, nil
}

// SetTyped stores v under key.
func SetTyped[T any](s *Store, key string, v *T) error {
	return s.Set(key, v)
}

// Age returns how long ago key was written, or 0 if it does not exist.
func (s *Store) Age(key string) time.Duration {
	info, err := os.Stat(s.keyPath(key))
	if err != nil {
		return 0
	}
	return time.Since(info.ModTime())
}

// Meta returns modification times and sizes for every stored key.
func (s *Store) Meta() (*Meta, error) {
	m := &Meta{
		LastUpdate: make(map[string]time.Time),
		Sizes:      make(map[string]int64),
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return nil, fmt.Errorf("cache: meta read dir: %w", err)
	}

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".tmp-") || !strings.HasSuffix(name, ".json") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		key := strings.TrimSuffix(name, ".json")
		m.LastUpdate[key] = info.ModTime()
		m.Sizes[key] = info.Size()
	}
	return m, nil
}
