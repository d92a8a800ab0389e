package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-registry/internal/config"
	"github.com/trebuchet-org/treb-registry/internal/domain"
)

// ErrAborted is returned when the user declines a confirmation prompt
var ErrAborted = errors.New("aborted by user")

// RoleAction selects what ManageRoles does
type RoleAction string

const (
	RoleGrant    RoleAction = "grant"
	RoleRenounce RoleAction = "renounce"
	RoleCheck    RoleAction = "check"
	RoleList     RoleAction = "list"
)

// ManageRoles grants, renounces and inspects registry roles
type ManageRoles struct {
	session  *RegistrySession
	cfg      *config.RuntimeConfig
	selector InteractiveSelector
}

// NewManageRoles creates a new manage roles use case
func NewManageRoles(session *RegistrySession, cfg *config.RuntimeConfig, selector InteractiveSelector) *ManageRoles {
	return &ManageRoles{
		session:  session,
		cfg:      cfg,
		selector: selector,
	}
}

// ManageRolesParams contains parameters for a role operation
type ManageRolesParams struct {
	Action  RoleAction
	Role    domain.Role
	Account common.Address // defaults to the caller identity
	// Yes skips the confirmation asked before the last holder renounces
	Yes bool
}

// ManageRolesResult contains the outcome of a role operation
type ManageRolesResult struct {
	Action  RoleAction       `json:"action"`
	Role    domain.Role      `json:"role"`
	Account common.Address   `json:"account"`
	HasRole bool             `json:"hasRole"`
	Holders []common.Address `json:"holders"`
}

// Run executes the role operation, persisting state for grant and renounce
func (uc *ManageRoles) Run(ctx context.Context, params ManageRolesParams) (*ManageRolesResult, error) {
	if params.Role == "" {
		params.Role = domain.RegistryAdminRole
	}
	if params.Account == (common.Address{}) {
		params.Account = uc.session.From()
	}
	reg, err := uc.session.Registry(ctx)
	if err != nil {
		return nil, err
	}

	result := &ManageRolesResult{Action: params.Action, Role: params.Role, Account: params.Account}
	switch params.Action {
	case RoleGrant:
		if err := reg.GrantRole(ctx, uc.session.From(), params.Role, params.Account); err != nil {
			return nil, fmt.Errorf("failed to grant %s: %w", params.Role, err)
		}
	case RoleRenounce:
		holders, err := reg.RoleHolders(ctx, params.Role)
		if err != nil {
			return nil, err
		}
		if len(holders) == 1 && holders[0] == params.Account {
			if err := confirm(uc.cfg, uc.selector, params.Yes, fmt.Sprintf("%s is the last %s holder; renouncing freezes the registry. Continue", params.Account.Hex(), params.Role)); err != nil {
				return nil, err
			}
		}
		if err := reg.RenounceRole(ctx, uc.session.From(), params.Role, params.Account); err != nil {
			return nil, fmt.Errorf("failed to renounce %s: %w", params.Role, err)
		}
	case RoleCheck, RoleList:
	default:
		return nil, fmt.Errorf("unknown role action %q: %w", params.Action, domain.ErrInvalidArgument)
	}

	if params.Action == RoleGrant || params.Action == RoleRenounce {
		if err := uc.session.Commit(ctx); err != nil {
			return nil, err
		}
	}

	if result.HasRole, err = reg.HasRole(ctx, params.Role, params.Account); err != nil {
		return nil, err
	}
	if result.Holders, err = reg.RoleHolders(ctx, params.Role); err != nil {
		return nil, err
	}
	return result, nil
}

// confirm asks before irreversible operations. Non-interactive runs must pass --yes.
func confirm(cfg *config.RuntimeConfig, selector InteractiveSelector, yes bool, message string) error {
	if yes {
		return nil
	}
	if cfg.NonInteractive || selector == nil {
		return fmt.Errorf("%s: confirmation required, pass --yes: %w", message, ErrAborted)
	}
	ok, err := selector.Confirm(message)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAborted
	}
	return nil
}
