// Package registry binds logical component names to stable addresses,
// administers the proxies behind upgradeable components and drives
// dependency injection. Every mutating entry point requires REGISTRY_ADMIN.
package registry

import (
	"context"
	"log/slog"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-registry/internal/domain"
	"github.com/trebuchet-org/treb-registry/internal/domain/models"
	"github.com/trebuchet-org/treb-registry/internal/host"
	"github.com/trebuchet-org/treb-registry/internal/proxy"
)

// Registry is the single owner of the name table and the role ledger. Its
// maps are guarded by the host lock and only written at the end of a call,
// once nothing else can fail.
type Registry struct {
	host *host.Host
	self common.Address
	log  *slog.Logger

	components map[domain.Name]*models.Component
	roles      map[domain.Role]map[common.Address]struct{}
}

// New deploys a registry account from deployer and grants REGISTRY_ADMIN to admin.
func New(ctx context.Context, h *host.Host, deployer, admin common.Address, log *slog.Logger) (*Registry, error) {
	if admin == (common.Address{}) {
		return nil, domain.Revert("registry", domain.ErrZeroAddress, "initial admin is the zero address")
	}
	r := newRegistry(h, log)
	err := h.Execute(ctx, func(tx *host.Tx) error {
		r.self = tx.NewAccount(deployer)
		r.grant(tx, r.self, domain.RegistryAdminRole, admin)
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.log.Info("registry created", "address", r.self, "admin", admin)
	return r, nil
}

func newRegistry(h *host.Host, log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		host:       h,
		log:        log.With("component", "registry"),
		components: make(map[domain.Name]*models.Component),
		roles:      make(map[domain.Role]map[common.Address]struct{}),
	}
}

// Address returns the registry's own account, which administers every proxy it deploys
func (r *Registry) Address() common.Address {
	return r.self
}

// Host returns the execution environment the registry lives in
func (r *Registry) Host() *host.Host {
	return r.host
}

// RegisterDirect binds name to addr. An existing binding is overwritten.
func (r *Registry) RegisterDirect(ctx context.Context, from common.Address, name domain.Name, addr common.Address) error {
	err := r.host.Execute(ctx, func(tx *host.Tx) error {
		if err := r.onlyAdmin("registerDirect", from); err != nil {
			return err
		}
		if err := name.Validate(); err != nil {
			return err
		}
		if addr == (common.Address{}) {
			return domain.Revert("registerDirect", domain.ErrZeroAddress, "address for %s is the zero address", name)
		}

		tx.Emit(domain.AuditEvent{
			Type:    domain.EventTypeComponentAdded,
			Emitter: r.self,
			Sender:  from,
			Name:    name,
			Address: addr,
		})

		now := r.host.Now()
		r.components[name] = &models.Component{
			Name:         name,
			Address:      addr,
			Kind:         models.DirectComponent,
			RegisteredAt: now,
			UpdatedAt:    now,
		}
		return nil
	})
	if err != nil {
		return err
	}
	r.log.Info("component registered", "name", name, "address", addr, "kind", models.DirectComponent)
	return nil
}

// RegisterProxied deploys a fresh proxy in front of impl, administered by the
// registry, and binds name to the proxy address. A previous proxy bound to
// name is abandoned.
func (r *Registry) RegisterProxied(ctx context.Context, from common.Address, name domain.Name, impl common.Address) (common.Address, error) {
	var addr common.Address
	err := r.host.Execute(ctx, func(tx *host.Tx) error {
		if err := r.onlyAdmin("registerProxied", from); err != nil {
			return err
		}
		if err := name.Validate(); err != nil {
			return err
		}
		if impl == (common.Address{}) {
			return domain.Revert("registerProxied", domain.ErrZeroAddress, "implementation for %s is the zero address", name)
		}
		if _, ok := tx.Code(impl); !ok {
			return domain.Revert("registerProxied", domain.ErrNotContract, "implementation %s for %s is not a contract", impl.Hex(), name)
		}

		var err error
		addr, err = proxy.Deploy(tx, r.self, impl, r.self)
		if err != nil {
			return err
		}

		tx.Emit(domain.AuditEvent{
			Type:           domain.EventTypeComponentAdded,
			Emitter:        r.self,
			Sender:         from,
			Name:           name,
			Address:        addr,
			Implementation: impl,
			Proxied:        true,
		})

		now := r.host.Now()
		r.components[name] = &models.Component{
			Name:           name,
			Address:        addr,
			Kind:           models.ProxiedComponent,
			Implementation: impl,
			ProxyAdmin:     r.self,
			RegisteredAt:   now,
			UpdatedAt:      now,
		}
		return nil
	})
	if err != nil {
		return common.Address{}, err
	}
	r.log.Info("component registered", "name", name, "address", addr, "kind", models.ProxiedComponent, "implementation", impl)
	return addr, nil
}

// Resolve returns the stable address bound to name.
func (r *Registry) Resolve(ctx context.Context, name domain.Name) (common.Address, error) {
	var addr common.Address
	err := r.host.View(ctx, func(*host.View) error {
		comp, err := r.lookup("resolve", name)
		if err != nil {
			return err
		}
		addr = comp.Address
		return nil
	})
	return addr, err
}

// ResolveImplementation returns the logic currently active behind a proxied name.
func (r *Registry) ResolveImplementation(ctx context.Context, name domain.Name) (common.Address, error) {
	var impl common.Address
	err := r.host.View(ctx, func(v *host.View) error {
		comp, err := r.lookupProxied("resolveImplementation", name)
		if err != nil {
			return err
		}
		impl = proxy.Implementation(v.Storage(comp.Address))
		return nil
	})
	return impl, err
}

// Component returns a copy of the record for name with live proxy state.
func (r *Registry) Component(ctx context.Context, name domain.Name) (*models.Component, error) {
	var out *models.Component
	err := r.host.View(ctx, func(v *host.View) error {
		comp, err := r.lookup("component", name)
		if err != nil {
			return err
		}
		out = r.live(v, comp)
		return nil
	})
	return out, err
}

// Components returns copies of every record, ordered by name.
func (r *Registry) Components(ctx context.Context) ([]*models.Component, error) {
	var out []*models.Component
	err := r.host.View(ctx, func(v *host.View) error {
		out = make([]*models.Component, 0, len(r.components))
		for _, comp := range r.components {
			out = append(out, r.live(v, comp))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

// Events returns audit events with a sequence number greater than after.
func (r *Registry) Events(ctx context.Context, after uint64) ([]domain.AuditEvent, error) {
	var events []domain.AuditEvent
	err := r.host.View(ctx, func(v *host.View) error {
		events = v.Events(after)
		return nil
	})
	return events, err
}

func (r *Registry) live(v *host.View, comp *models.Component) *models.Component {
	out := comp.Clone()
	if out.IsProxied() {
		s := v.Storage(out.Address)
		out.Implementation = proxy.Implementation(s)
		out.ProxyAdmin = proxy.Admin(s)
	}
	return out
}

func (r *Registry) lookup(op string, name domain.Name) (*models.Component, error) {
	comp, ok := r.components[name]
	if !ok {
		return nil, domain.Revert(op, domain.ErrNotFound, "name %s is not registered", name)
	}
	return comp, nil
}

func (r *Registry) lookupProxied(op string, name domain.Name) (*models.Component, error) {
	comp, err := r.lookup(op, name)
	if err != nil {
		return nil, err
	}
	if !comp.IsProxied() {
		return nil, domain.Revert(op, domain.ErrWrongKind, "%s is registered directly, not behind a proxy", name)
	}
	return comp, nil
}
