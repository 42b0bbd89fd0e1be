package marketplace

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/nova-cli/nova/internal/errs"
)

// StateStore reads and writes <data_root>/marketplaces/data.json, a JSON
// object keyed by marketplace name (spec.md §4.9). A missing file is an
// empty map, not an error; writes are atomic via temp-file-and-rename.
type StateStore struct {
	Path string
}

// NewStateStore builds a StateStore backed by path.
func NewStateStore(path string) *StateStore {
	return &StateStore{Path: path}
}

// Load reads the state file, returning an empty map if it does not exist.
// Malformed JSON or a non-object top-level value is a hard StateCorrupt
// error.
func (s *StateStore) Load() (map[string]State, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]State{}, nil
		}
		return nil, &errs.MarketplaceStateCorrupt{Path: s.Path, Detail: err.Error()}
	}
	var states map[string]State
	if err := json.Unmarshal(data, &states); err != nil {
		return nil, &errs.MarketplaceStateCorrupt{Path: s.Path, Detail: err.Error()}
	}
	if states == nil {
		return nil, &errs.MarketplaceStateCorrupt{Path: s.Path, Detail: "top-level value is not a JSON object"}
	}
	return states, nil
}

// Save writes states atomically: a sibling temp file is written and
// renamed over the target on the same filesystem.
func (s *StateStore) Save(states map[string]State) error {
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &errs.MarketplaceStateCorrupt{Path: s.Path, Detail: err.Error()}
	}

	data, err := json.MarshalIndent(states, "", "  ")
	if err != nil {
		return &errs.MarketplaceStateCorrupt{Path: s.Path, Detail: err.Error()}
	}

	tmp, err := os.CreateTemp(dir, ".nova-state-*.json.tmp")
	if err != nil {
		return &errs.MarketplaceStateCorrupt{Path: s.Path, Detail: err.Error()}
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return &errs.MarketplaceStateCorrupt{Path: s.Path, Detail: err.Error()}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return &errs.MarketplaceStateCorrupt{Path: s.Path, Detail: err.Error()}
	}
	if err := os.Rename(tmpPath, s.Path); err != nil {
		os.Remove(tmpPath)
		return &errs.MarketplaceStateCorrupt{Path: s.Path, Detail: err.Error()}
	}
	return nil
}

// Put inserts or replaces the entry for name and persists the result.
func (s *StateStore) Put(entry State) error {
	states, err := s.Load()
	if err != nil {
		return err
	}
	states[entry.Name] = entry
	return s.Save(states)
}

// Delete removes the entry for name, if present, and persists the result.
func (s *StateStore) Delete(name string) error {
	states, err := s.Load()
	if err != nil {
		return err
	}
	delete(states, name)
	return s.Save(states)
}
