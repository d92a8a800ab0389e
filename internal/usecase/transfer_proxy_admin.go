package usecase

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-registry/internal/config"
	"github.com/trebuchet-org/treb-registry/internal/domain"
	"github.com/trebuchet-org/treb-registry/internal/domain/models"
)

// TransferProxyAdmin hands a proxy's upgrade authority to another account
type TransferProxyAdmin struct {
	session  *RegistrySession
	cfg      *config.RuntimeConfig
	selector InteractiveSelector
}

// NewTransferProxyAdmin creates a new transfer proxy admin use case
func NewTransferProxyAdmin(session *RegistrySession, cfg *config.RuntimeConfig, selector InteractiveSelector) *TransferProxyAdmin {
	return &TransferProxyAdmin{
		session:  session,
		cfg:      cfg,
		selector: selector,
	}
}

// TransferProxyAdminParams contains parameters for the transfer
type TransferProxyAdminParams struct {
	Name     domain.Name
	NewAdmin common.Address
	Yes      bool
}

// Run transfers the admin and persists the new state
func (uc *TransferProxyAdmin) Run(ctx context.Context, params TransferProxyAdminParams) (*models.Component, error) {
	reg, err := uc.session.Registry(ctx)
	if err != nil {
		return nil, err
	}
	comp, err := reg.Component(ctx, params.Name)
	if err != nil {
		return nil, err
	}
	if !comp.IsProxied() {
		return nil, fmt.Errorf("%s is a direct component: %w", params.Name, domain.ErrWrongKind)
	}

	msg := fmt.Sprintf("Transfer upgrade authority of %s to %s? The registry can no longer upgrade it", params.Name, params.NewAdmin.Hex())
	if err := confirm(uc.cfg, uc.selector, params.Yes, msg); err != nil {
		return nil, err
	}

	if err := reg.TransferProxyAdmin(ctx, uc.session.From(), params.Name, params.NewAdmin); err != nil {
		return nil, fmt.Errorf("failed to transfer proxy admin of %s: %w", params.Name, err)
	}
	if err := uc.session.Commit(ctx); err != nil {
		return nil, err
	}
	return reg.Component(ctx, params.Name)
}
