package registry

import (
	"context"
	"errors"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-registry/internal/domain"
	"github.com/trebuchet-org/treb-registry/internal/host"
)

// MethodSetDependencies is the entry point a component exposes to receive its
// dependencies. The call input is a Resolver.
const MethodSetDependencies = "setDependencies"

// Resolver is the read-only registry handle passed to components during injection.
type Resolver interface {
	Resolve(ctx context.Context, name domain.Name) (common.Address, error)
}

// resolver reads the name table under the lock held by the running call, so
// it never enters the host again whatever ctx it is given.
type resolver struct {
	r *Registry
}

func (rs resolver) Resolve(ctx context.Context, name domain.Name) (common.Address, error) {
	if err := ctx.Err(); err != nil {
		return common.Address{}, err
	}
	comp, err := rs.r.lookup("resolve", name)
	if err != nil {
		return common.Address{}, err
	}
	return comp.Address, nil
}

// Inject asks the component bound to name to pull its dependencies. If the
// component fails to resolve any of them, none of its bindings change.
func (r *Registry) Inject(ctx context.Context, from common.Address, name domain.Name) error {
	var addr common.Address
	err := r.host.Execute(ctx, func(tx *host.Tx) error {
		if err := r.onlyAdmin("inject", from); err != nil {
			return err
		}
		comp, err := r.lookup("inject", name)
		if err != nil {
			return err
		}
		addr = comp.Address
		return r.inject(tx, from, name, addr)
	})
	if err != nil {
		return err
	}
	r.log.Info("dependencies injected", "name", name, "address", addr)
	return nil
}

// InjectAll injects every registered component exposing the entry point, in
// name order, as a single call. Components without the entry point are
// skipped; any other failure aborts the whole batch.
func (r *Registry) InjectAll(ctx context.Context, from common.Address) ([]domain.Name, error) {
	var injected []domain.Name
	err := r.host.Execute(ctx, func(tx *host.Tx) error {
		if err := r.onlyAdmin("injectAll", from); err != nil {
			return err
		}
		names := make([]domain.Name, 0, len(r.components))
		for name := range r.components {
			names = append(names, name)
		}
		sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

		for _, name := range names {
			err := r.inject(tx, from, name, r.components[name].Address)
			if errors.Is(err, domain.ErrNotInjectable) {
				continue
			}
			if err != nil {
				return err
			}
			injected = append(injected, name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.log.Info("dependencies injected", "count", len(injected))
	return injected, nil
}

func (r *Registry) inject(tx *host.Tx, from common.Address, name domain.Name, addr common.Address) error {
	_, err := tx.Call(r.self, addr, MethodSetDependencies, resolver{r})
	var inner *host.CallError
	switch {
	case err == nil:
	case !errors.As(err, &inner) && (errors.Is(err, domain.ErrUnknownMethod) || errors.Is(err, domain.ErrNotContract)):
		// only a miss on the component itself, not on anything it calls
		return domain.Revert("inject", domain.ErrNotInjectable, "%s does not accept dependencies", name)
	default:
		return &domain.RevertError{Op: "inject", Reason: name.String() + ": " + domain.ReasonOf(err), Err: err}
	}

	tx.Emit(domain.AuditEvent{
		Type:    domain.EventTypeDependenciesInjected,
		Emitter: r.self,
		Sender:  from,
		Name:    name,
		Address: addr,
	})
	return nil
}
