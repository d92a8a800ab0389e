package registry

import (
	"context"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-registry/internal/domain"
	"github.com/trebuchet-org/treb-registry/internal/host"
)

// HasRole reports whether account holds role
func (r *Registry) HasRole(ctx context.Context, role domain.Role, account common.Address) (bool, error) {
	var ok bool
	err := r.host.View(ctx, func(*host.View) error {
		ok = r.hasRole(role, account)
		return nil
	})
	return ok, err
}

// RoleHolders lists the accounts holding role
func (r *Registry) RoleHolders(ctx context.Context, role domain.Role) ([]common.Address, error) {
	var holders []common.Address
	err := r.host.View(ctx, func(*host.View) error {
		holders = r.holders(role)
		return nil
	})
	return holders, err
}

// GrantRole adds account to role. Only current holders of role may grant it.
// Granting to an existing holder changes nothing.
func (r *Registry) GrantRole(ctx context.Context, from common.Address, role domain.Role, account common.Address) error {
	granted := false
	err := r.host.Execute(ctx, func(tx *host.Tx) error {
		if !r.hasRole(role, from) {
			return domain.Revert("grantRole", domain.ErrUnauthorized, "%s is missing role %s", from.Hex(), role)
		}
		if account == (common.Address{}) {
			return domain.Revert("grantRole", domain.ErrZeroAddress, "cannot grant %s to the zero address", role)
		}
		granted = r.grant(tx, from, role, account)
		return nil
	})
	if err != nil {
		return err
	}
	if granted {
		r.log.Info("role granted", "role", role, "account", account, "sender", from)
	}
	return nil
}

// RenounceRole removes account from role. Accounts can only renounce for
// themselves. Renouncing the last REGISTRY_ADMIN freezes the registry.
func (r *Registry) RenounceRole(ctx context.Context, from common.Address, role domain.Role, account common.Address) error {
	frozen := false
	err := r.host.Execute(ctx, func(tx *host.Tx) error {
		if account != from {
			return domain.Revert("renounceRole", domain.ErrUnauthorized, "can only renounce roles for self")
		}
		if !r.hasRole(role, from) {
			return domain.Revert("renounceRole", domain.ErrUnauthorized, "%s is missing role %s", from.Hex(), role)
		}

		tx.Emit(domain.AuditEvent{
			Type:    domain.EventTypeRoleRenounced,
			Emitter: r.self,
			Sender:  from,
			Role:    role,
			Account: account,
		})

		holders := r.roles[role]
		delete(holders, account)
		if len(holders) == 0 {
			delete(r.roles, role)
			frozen = role == domain.RegistryAdminRole
		}
		return nil
	})
	if err != nil {
		return err
	}
	r.log.Info("role renounced", "role", role, "account", account)
	if frozen {
		r.log.Warn("last registry admin renounced, registry is now frozen")
	}
	return nil
}

func (r *Registry) grant(tx *host.Tx, from common.Address, role domain.Role, account common.Address) bool {
	if r.hasRole(role, account) {
		return false
	}
	tx.Emit(domain.AuditEvent{
		Type:    domain.EventTypeRoleGranted,
		Emitter: r.self,
		Sender:  from,
		Role:    role,
		Account: account,
	})
	holders, ok := r.roles[role]
	if !ok {
		holders = make(map[common.Address]struct{})
		r.roles[role] = holders
	}
	holders[account] = struct{}{}
	return true
}

func (r *Registry) hasRole(role domain.Role, account common.Address) bool {
	_, ok := r.roles[role][account]
	return ok
}

func (r *Registry) holders(role domain.Role) []common.Address {
	out := make([]common.Address, 0, len(r.roles[role]))
	for addr := range r.roles[role] {
		out = append(out, addr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Cmp(out[j]) < 0 })
	return out
}

func (r *Registry) onlyAdmin(op string, from common.Address) error {
	if !r.hasRole(domain.RegistryAdminRole, from) {
		return domain.Revert(op, domain.ErrUnauthorized, "%s is missing role %s", from.Hex(), domain.RegistryAdminRole)
	}
	return nil
}
