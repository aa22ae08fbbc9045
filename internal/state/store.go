package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultStatePath is the state file location relative to the working
// directory when no override is configured.
const DefaultStatePath = ".papertok/state.json"

// ResolvePath determines the state file location.
//
// Resolution order:
//  1. PAPERTOK_STATE_PATH environment variable (used as-is if set)
//  2. Explicit statePath parameter (if non-empty)
//  3. DefaultStatePath under basePath
//
// The basePath is the project root directory. Pass empty string for cwd.
func ResolvePath(basePath, statePath string) string {
	if envPath := os.Getenv("PAPERTOK_STATE_PATH"); envPath != "" {
		return envPath
	}
	if statePath != "" {
		return statePath
	}
	return filepath.Join(basePath, DefaultStatePath)
}

// Store reads and writes the session record at a fixed path.
//
// Use [NewStore] with a resolved path. Saves are atomic (temp file + rename)
// so a reader never observes a partially written record under single-writer
// use; [Store.Lock] provides the single-writer discipline for a whole
// load→mutate→save turn.
type Store struct {
	path string
}

// NewStore creates a [Store] for the given state file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the resolved state file path.
func (st *Store) Path() string {
	return st.path
}

// Load reads the persisted session record.
//
// A missing file is not an error: it yields a fresh default session with a
// newly seeded session id. A corrupt or unreadable file is an error; losing
// an existing session silently is worse than failing the invocation.
func (st *Store) Load() (*State, error) {
	data, err := os.ReadFile(st.path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewSession(), nil
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	s := New()
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}
	if s.Data == nil {
		s.Data = map[string]any{}
	}
	if s.StepStatuses == nil {
		s.StepStatuses = map[string]Status{"1": StatusInProgress}
	}
	if s.CurrentStep < 1 {
		s.CurrentStep = 1
	}
	return s, nil
}

// Save persists the session record.
//
// Parent directories are created as needed. The record is written to a temp
// file and renamed into place so readers never observe a torn write.
func (st *Store) Save(s *State) error {
	if err := os.MkdirAll(filepath.Dir(st.path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	tmpPath := st.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmpPath, st.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write state file: %w", err)
	}
	return nil
}

// Reset deletes the persisted record, returning the session to its default.
// Resetting an absent record is a no-op.
func (st *Store) Reset() error {
	if err := os.Remove(st.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to reset state: %w", err)
	}
	return nil
}
