package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/trebuchet-org/treb-registry/internal/config"
	"github.com/trebuchet-org/treb-registry/internal/domain"
	"github.com/trebuchet-org/treb-registry/internal/usecase"
)

// StateStoreAdapter implements StateStore with a JSON file in the data directory
type StateStoreAdapter struct {
	statePath string
}

// NewStateStoreAdapter creates a new StateStoreAdapter
func NewStateStoreAdapter(cfg *config.RuntimeConfig) *StateStoreAdapter {
	return &StateStoreAdapter{
		statePath: cfg.StatePath(),
	}
}

// Load reads the registry state from disk. Returns domain.ErrNotFound if the file does not exist.
func (s *StateStoreAdapter) Load(_ context.Context) (*usecase.RegistryState, error) {
	data, err := os.ReadFile(s.statePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("registry state %s: %w", s.statePath, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read registry state file: %w", err)
	}

	var state usecase.RegistryState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse registry state file: %w", err)
	}
	return &state, nil
}

// Save writes the registry state to disk, creating the directory if needed.
// The file is replaced atomically so a crash never leaves a partial snapshot.
func (s *StateStoreAdapter) Save(_ context.Context, state *usecase.RegistryState) error {
	dir := filepath.Dir(s.statePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry state: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".registry-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write registry state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write registry state file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.statePath); err != nil {
		return fmt.Errorf("failed to replace registry state file: %w", err)
	}
	return nil
}

// Path returns the snapshot location
func (s *StateStoreAdapter) Path() string {
	return s.statePath
}

// Ensure StateStoreAdapter implements StateStore
var _ usecase.StateStore = (*StateStoreAdapter)(nil)
