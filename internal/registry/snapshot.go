package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-registry/internal/domain"
	"github.com/trebuchet-org/treb-registry/internal/domain/models"
	"github.com/trebuchet-org/treb-registry/internal/host"
)

// Snapshot is the serializable registry state. Host accounts are exported separately.
type Snapshot struct {
	Address    common.Address                   `json:"address"`
	Components []*models.Component              `json:"components"`
	Roles      map[domain.Role][]common.Address `json:"roles"`
}

// Snapshot captures the registry tables.
func (r *Registry) Snapshot(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{Address: r.self, Roles: make(map[domain.Role][]common.Address)}
	err := r.host.View(ctx, func(*host.View) error {
		for _, comp := range r.components {
			snap.Components = append(snap.Components, comp.Clone())
		}
		for role := range r.roles {
			snap.Roles[role] = r.holders(role)
		}
		return nil
	})
	sort.Slice(snap.Components, func(i, j int) bool {
		return snap.Components[i].Name < snap.Components[j].Name
	})
	return snap, err
}

// Restore rebuilds a registry from snap on a host that already holds the
// matching imported state.
func Restore(h *host.Host, snap *Snapshot, log *slog.Logger) (*Registry, error) {
	if snap.Address == (common.Address{}) {
		return nil, fmt.Errorf("snapshot has no registry address")
	}
	r := newRegistry(h, log)
	r.self = snap.Address
	for _, comp := range snap.Components {
		if err := comp.Name.Validate(); err != nil {
			return nil, fmt.Errorf("invalid component in snapshot: %w", err)
		}
		r.components[comp.Name] = comp.Clone()
	}
	for role, holders := range snap.Roles {
		set := make(map[common.Address]struct{}, len(holders))
		for _, addr := range holders {
			set[addr] = struct{}{}
		}
		if len(set) > 0 {
			r.roles[role] = set
		}
	}
	return r, nil
}
