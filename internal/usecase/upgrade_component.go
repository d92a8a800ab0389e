package usecase

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-registry/internal/domain"
	"github.com/trebuchet-org/treb-registry/internal/domain/models"
	"github.com/trebuchet-org/treb-registry/internal/host"
)

// UpgradeComponent swaps the implementation behind a proxied name
type UpgradeComponent struct {
	session  *RegistrySession
	catalog  ArtifactCatalog
	progress ProgressSink
}

// NewUpgradeComponent creates a new upgrade component use case
func NewUpgradeComponent(session *RegistrySession, catalog ArtifactCatalog, progress ProgressSink) *UpgradeComponent {
	return &UpgradeComponent{
		session:  session,
		catalog:  catalog,
		progress: progress,
	}
}

// UpgradeComponentParams contains parameters for an upgrade.
// Exactly one of Implementation or Artifact is set.
type UpgradeComponentParams struct {
	Name           domain.Name
	Implementation common.Address
	// Artifact deploys a fresh implementation first
	Artifact string
	// Init runs on the new implementation with the proxy's storage after the swap (optional)
	Init *host.Message
}

// UpgradeComponentResult contains the upgraded record
type UpgradeComponentResult struct {
	Component *models.Component `json:"component"`
	Previous  common.Address    `json:"previous"`
	// Deployed is set when the implementation was deployed by this run
	Deployed bool `json:"deployed"`
}

// Run performs the upgrade and persists the new state
func (uc *UpgradeComponent) Run(ctx context.Context, params UpgradeComponentParams) (*UpgradeComponentResult, error) {
	if (params.Artifact == "") == (params.Implementation == common.Address{}) {
		return nil, fmt.Errorf("exactly one of implementation address or artifact is required: %w", domain.ErrInvalidArgument)
	}

	reg, err := uc.session.Registry(ctx)
	if err != nil {
		return nil, err
	}
	before, err := reg.Component(ctx, params.Name)
	if err != nil {
		return nil, err
	}

	impl := params.Implementation
	if params.Artifact != "" {
		code, err := uc.catalog.Load(params.Artifact)
		if err != nil {
			return nil, err
		}
		uc.progress.OnProgress(ctx, ProgressEvent{Stage: "deploy", Message: fmt.Sprintf("Deploying %s", params.Artifact), Spinner: true})
		if impl, err = deployAndInit(ctx, reg.Host(), uc.session.Deployer(), uc.session.From(), code, nil); err != nil {
			return nil, fmt.Errorf("failed to deploy %s: %w", params.Artifact, err)
		}
	}

	uc.progress.OnProgress(ctx, ProgressEvent{Stage: "upgrade", Message: fmt.Sprintf("Upgrading %s", params.Name), Spinner: true})
	if params.Init != nil {
		err = reg.UpgradeAndInitialize(ctx, uc.session.From(), params.Name, impl, *params.Init)
	} else {
		err = reg.Upgrade(ctx, uc.session.From(), params.Name, impl)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to upgrade %s: %w", params.Name, err)
	}
	if err := uc.session.Commit(ctx); err != nil {
		return nil, err
	}

	comp, err := reg.Component(ctx, params.Name)
	if err != nil {
		return nil, err
	}
	return &UpgradeComponentResult{
		Component: comp,
		Previous:  before.Implementation,
		Deployed:  params.Artifact != "",
	}, nil
}
