// Package settings persists exclusion sets into each workspace folder's editor
// settings.
package settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/CageChen/hideme/internal/exclude"
)

// Default location of the exclusions inside a workspace folder.
const (
	DefaultFile = ".vscode/settings.json"
	DefaultKey  = "files.exclude"
)

// Store reads and writes the exclusion set of a workspace folder. Write
// replaces the whole set.
type Store interface {
	Read(folder string) (exclude.Set, error)
	Write(folder string, set exclude.Set) error
}

// JSONStore keeps exclusions under Key in the JSON settings file at File,
// relative to each folder. Other keys in the file are preserved.
type JSONStore struct {
	File string
	Key  string
}

// NewJSONStore creates a JSONStore, falling back to the defaults for empty arguments.
func NewJSONStore(file, key string) *JSONStore {
	if file == "" {
		file = DefaultFile
	}
	if key == "" {
		key = DefaultKey
	}
	return &JSONStore{File: file, Key: key}
}

// Path returns the settings file path for folder.
func (s *JSONStore) Path(folder string) string {
	return filepath.Join(folder, filepath.FromSlash(s.File))
}

func (s *JSONStore) load(folder string) (map[string]json.RawMessage, error) {
	path := s.Path(folder)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]json.RawMessage{}, nil
		}
		return nil, err
	}
	doc := map[string]json.RawMessage{}
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

// Read returns the exclusions currently stored for folder. Entries whose value
// is not the literal true (for example conditional "when" clauses) are
// reported as not hidden.
func (s *JSONStore) Read(folder string) (exclude.Set, error) {
	doc, err := s.load(folder)
	if err != nil {
		return nil, err
	}
	set := exclude.Set{}
	raw, ok := doc[s.Key]
	if !ok {
		return set, nil
	}
	var values map[string]interface{}
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("parse %s in %s: %w", s.Key, s.Path(folder), err)
	}
	for name, v := range values {
		hidden, _ := v.(bool)
		set[name] = hidden
	}
	return set, nil
}

// Write replaces the exclusions stored for folder with set.
func (s *JSONStore) Write(folder string, set exclude.Set) error {
	doc, err := s.load(folder)
	if err != nil {
		return err
	}
	if set == nil {
		set = exclude.Set{}
	}
	raw, err := json.Marshal(set)
	if err != nil {
		return err
	}
	doc[s.Key] = raw

	data, err := json.MarshalIndent(doc, "", "\t")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	path := s.Path(folder)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".settings-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// MemoryStore is an in-memory Store.
type MemoryStore struct {
	mu     sync.RWMutex
	sets   map[string]exclude.Set
	writes int
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sets: make(map[string]exclude.Set)}
}

// Read returns a copy of the set stored for folder.
func (m *MemoryStore) Read(folder string) (exclude.Set, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copySet(m.sets[folder]), nil
}

// Write stores a copy of set for folder.
func (m *MemoryStore) Write(folder string, set exclude.Set) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets[folder] = copySet(set)
	m.writes++
	return nil
}

// Writes returns how many writes the store has received.
func (m *MemoryStore) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}

func copySet(set exclude.Set) exclude.Set {
	out := make(exclude.Set, len(set))
	for k, v := range set {
		out[k] = v
	}
	return out
}
