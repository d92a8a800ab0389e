package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-registry/internal/config"
	"github.com/trebuchet-org/treb-registry/internal/domain"
	"github.com/trebuchet-org/treb-registry/internal/host"
	"github.com/trebuchet-org/treb-registry/internal/registry"
)

// stateVersion is bumped when the snapshot layout changes
const stateVersion = 1

// RegistrySession owns the live registry for one process. It loads the last
// saved state on first use and persists it on Commit.
type RegistrySession struct {
	cfg     *config.RuntimeConfig
	store   StateStore
	audit   AuditLog
	catalog ArtifactCatalog
	log     *slog.Logger

	mu  sync.Mutex
	reg *registry.Registry
}

// NewRegistrySession creates a new registry session
func NewRegistrySession(
	cfg *config.RuntimeConfig,
	store StateStore,
	audit AuditLog,
	catalog ArtifactCatalog,
	log *slog.Logger,
) *RegistrySession {
	return &RegistrySession{
		cfg:     cfg,
		store:   store,
		audit:   audit,
		catalog: catalog,
		log:     log,
	}
}

// Registry returns the live registry, loading or creating it on first call.
func (s *RegistrySession) Registry(ctx context.Context) (*registry.Registry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reg != nil {
		return s.reg, nil
	}

	last, err := s.audit.LastSeq(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}

	state, err := s.store.Load(ctx)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		s.log.Debug("no saved registry, creating one", "admin", s.cfg.Admin, "deployer", s.cfg.Deployer)
		h := host.New(s.log)
		if last > 0 {
			s.log.Warn("no saved registry but the audit log has events, continuing its sequence", "lastSeq", last)
			h.ResumeSequence(last)
		}
		reg, err := registry.New(ctx, h, s.cfg.Deployer, s.cfg.Admin, s.log)
		if err != nil {
			return nil, fmt.Errorf("failed to create registry: %w", err)
		}
		s.reg = reg
	case err != nil:
		return nil, fmt.Errorf("failed to load registry state: %w", err)
	default:
		reg, err := s.restore(state)
		if err != nil {
			return nil, err
		}
		if seq := reg.Host().Seq(); seq < last {
			return nil, fmt.Errorf("registry state is behind the audit log (seq %d < %d)", seq, last)
		}
		s.reg = reg
	}
	return s.reg, nil
}

func (s *RegistrySession) restore(state *RegistryState) (*registry.Registry, error) {
	if state.Version != stateVersion {
		return nil, fmt.Errorf("unsupported registry state version %d", state.Version)
	}
	if state.Registry == nil || state.Host == nil {
		return nil, fmt.Errorf("registry state is incomplete")
	}
	h := host.New(s.log)
	if err := h.Import(state.Host, s.catalog.Load); err != nil {
		return nil, fmt.Errorf("failed to import host state: %w", err)
	}
	reg, err := registry.Restore(h, state.Registry, s.log)
	if err != nil {
		return nil, fmt.Errorf("failed to restore registry: %w", err)
	}
	return reg, nil
}

// Refresh drops the loaded registry so the next call reads the saved state
// again. Long-running readers call it to pick up changes made by other runs.
func (s *RegistrySession) Refresh() {
	s.mu.Lock()
	s.reg = nil
	s.mu.Unlock()
}

// Commit saves the registry state and appends events the audit log has not seen yet.
func (s *RegistrySession) Commit(ctx context.Context) error {
	s.mu.Lock()
	reg := s.reg
	s.mu.Unlock()
	if reg == nil {
		return nil
	}

	snap, err := reg.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to snapshot registry: %w", err)
	}
	state := &RegistryState{
		Version:  stateVersion,
		Registry: snap,
		Host:     reg.Host().Export(),
		SavedAt:  reg.Host().Now(),
	}
	if err := s.store.Save(ctx, state); err != nil {
		return fmt.Errorf("failed to save registry state: %w", err)
	}

	last, err := s.audit.LastSeq(ctx)
	if err != nil {
		return fmt.Errorf("failed to read audit log: %w", err)
	}
	events, err := reg.Events(ctx, last)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}
	if err := s.audit.Append(ctx, events); err != nil {
		return fmt.Errorf("failed to append audit events: %w", err)
	}
	s.log.Debug("registry committed", "events", len(events))
	return nil
}

// From returns the identity mutating calls are sent from
func (s *RegistrySession) From() common.Address {
	return s.cfg.From
}

// Deployer returns the account implementations are deployed from
func (s *RegistrySession) Deployer() common.Address {
	return s.cfg.Deployer
}
