package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sync"
)

// Store is a flat key/value preference file, the scopes' share of the
// editor's configuration. Values are kept as JSON scalars.
// It is safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	path   string
	values map[string]any
	dirty  bool
}

// NewStore returns an empty in-memory store. Save fails until a path is
// given through Open.
func NewStore() *Store {
	return &Store{values: make(map[string]any)}
}

// OpenStore loads the preference file at path. A missing file gives an
// empty store that Save will create.
func OpenStore(path string) (*Store, error) {
	s := &Store{path: path, values: make(map[string]any)}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &s.values); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if s.values == nil {
		s.values = make(map[string]any)
	}
	return s, nil
}

// Path returns the file the store saves to.
func (s *Store) Path() string {
	return s.path
}

// String returns the string at key, or def when unset or not a string.
func (s *Store) String(key, def string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.values[key].(string); ok {
		return v
	}
	return def
}

// Int returns the integer at key, or def when unset or not a whole number.
func (s *Store) Int(key string, def int) int {
	f, ok := s.number(key)
	if !ok || f != math.Trunc(f) {
		return def
	}
	return int(f)
}

// Float returns the number at key, or def.
func (s *Store) Float(key string, def float64) float64 {
	if f, ok := s.number(key); ok {
		return f
	}
	return def
}

func (s *Store) number(key string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch v := s.values[key].(type) {
	case float64:
		return v, !math.IsNaN(v) && !math.IsInf(v, 0)
	case int:
		return float64(v), true
	}
	return 0, false
}

func (s *Store) set(key string, v any) {
	s.mu.Lock()
	if s.values[key] != v {
		s.values[key] = v
		s.dirty = true
	}
	s.mu.Unlock()
}

// SetString stores a string value.
func (s *Store) SetString(key, v string) {
	s.set(key, v)
}

// SetInt stores an integer value.
func (s *Store) SetInt(key string, v int) {
	s.set(key, float64(v))
}

// SetFloat stores a number.
func (s *Store) SetFloat(key string, v float64) {
	s.set(key, v)
}

// Dirty reports whether values changed since the last load or save.
func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// Save writes the store back to its file through a temporary file.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.path == "" {
		return errors.New("config: save: store has no file")
	}
	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return fmt.Errorf("config: encode %s: %w", s.path, err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("config: save %s: %w", s.path, err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("config: save %s: %w", s.path, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("config: save %s: %w", s.path, err)
	}
	s.dirty = false
	return nil
}
