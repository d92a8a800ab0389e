package registry

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-registry/internal/domain"
	"github.com/trebuchet-org/treb-registry/internal/domain/models"
	"github.com/trebuchet-org/treb-registry/internal/host"
	"github.com/trebuchet-org/treb-registry/internal/proxy"
)

// Upgrade points the proxy bound to name at impl. The stable address stays the same.
func (r *Registry) Upgrade(ctx context.Context, from common.Address, name domain.Name, impl common.Address) error {
	return r.upgrade(ctx, "upgrade", from, name, impl, nil)
}

// UpgradeAndInitialize upgrades name and then runs init on the new
// implementation with the proxy's storage, as the registry. The proxy's own
// administrative methods are not reachable through init. If init fails, the
// upgrade is undone.
func (r *Registry) UpgradeAndInitialize(ctx context.Context, from common.Address, name domain.Name, impl common.Address, init host.Message) error {
	return r.upgrade(ctx, "upgradeAndInitialize", from, name, impl, &init)
}

func (r *Registry) upgrade(ctx context.Context, op string, from common.Address, name domain.Name, impl common.Address, init *host.Message) error {
	var prev common.Address
	err := r.host.Execute(ctx, func(tx *host.Tx) error {
		if err := r.onlyAdmin(op, from); err != nil {
			return err
		}
		comp, err := r.lookupProxied(op, name)
		if err != nil {
			return err
		}
		if impl == (common.Address{}) {
			return domain.Revert(op, domain.ErrZeroAddress, "new implementation for %s is the zero address", name)
		}
		prev = proxy.Implementation(tx.View().Storage(comp.Address))

		if _, err := tx.Call(r.self, comp.Address, proxy.MethodUpgradeTo, impl); err != nil {
			return err
		}

		if init != nil {
			call := &host.Call{Tx: tx, Self: comp.Address, Caller: r.self, Storage: tx.Storage(comp.Address)}
			if _, err := tx.DelegateCall(call, impl, init.Method, init.Input); err != nil {
				return &domain.RevertError{
					Op:     op,
					Reason: fmt.Sprintf("init call %s on %s reverted: %s", init.Method, name, domain.ReasonOf(err)),
					Err:    fmt.Errorf("%w: %w", domain.ErrInitCallFailed, err),
				}
			}
		}

		tx.Emit(domain.AuditEvent{
			Type:           domain.EventTypeComponentUpgraded,
			Emitter:        r.self,
			Sender:         from,
			Name:           name,
			Address:        comp.Address,
			Implementation: impl,
			Proxied:        true,
		})

		now := r.host.Now()
		comp.Implementation = impl
		comp.UpdatedAt = now
		comp.History = append(comp.History, models.Upgrade{
			From:        prev,
			To:          impl,
			Initialized: init != nil,
			UpgradedAt:  now,
		})
		return nil
	})
	if err != nil {
		return err
	}
	r.log.Info("component upgraded", "name", name, "from", prev, "to", impl, "initialized", init != nil)
	return nil
}

// TransferProxyAdmin hands upgrade authority over the proxy bound to name to
// newAdmin. The registry can no longer upgrade that component afterwards.
func (r *Registry) TransferProxyAdmin(ctx context.Context, from common.Address, name domain.Name, newAdmin common.Address) error {
	err := r.host.Execute(ctx, func(tx *host.Tx) error {
		if err := r.onlyAdmin("transferProxyAdmin", from); err != nil {
			return err
		}
		comp, err := r.lookupProxied("transferProxyAdmin", name)
		if err != nil {
			return err
		}
		if newAdmin == (common.Address{}) {
			return domain.Revert("transferProxyAdmin", domain.ErrZeroAddress, "new admin for %s is the zero address", name)
		}
		if _, err := tx.Call(r.self, comp.Address, proxy.MethodChangeAdmin, newAdmin); err != nil {
			return err
		}
		comp.ProxyAdmin = newAdmin
		comp.UpdatedAt = r.host.Now()
		return nil
	})
	if err != nil {
		return err
	}
	r.log.Info("proxy admin transferred", "name", name, "admin", newAdmin)
	return nil
}
