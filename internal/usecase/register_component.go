package usecase

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-registry/internal/domain"
	"github.com/trebuchet-org/treb-registry/internal/domain/models"
)

// RegisterComponent binds a name to an address, directly or behind a new proxy
type RegisterComponent struct {
	session  *RegistrySession
	progress ProgressSink
}

// NewRegisterComponent creates a new register component use case
func NewRegisterComponent(session *RegistrySession, progress ProgressSink) *RegisterComponent {
	return &RegisterComponent{
		session:  session,
		progress: progress,
	}
}

// RegisterComponentParams contains parameters for registering a component
type RegisterComponentParams struct {
	Name domain.Name
	// Address is the component address (direct) or the implementation (proxied)
	Address common.Address
	Proxied bool
}

// RegisterComponentResult contains the registered record
type RegisterComponentResult struct {
	Component *models.Component `json:"component"`
	// Replaced is the previous record for the name, if any
	Replaced *models.Component `json:"replaced,omitempty"`
}

// Run registers the component and persists the new state
func (r *RegisterComponent) Run(ctx context.Context, params RegisterComponentParams) (*RegisterComponentResult, error) {
	reg, err := r.session.Registry(ctx)
	if err != nil {
		return nil, err
	}

	previous, _ := reg.Component(ctx, params.Name)

	if params.Proxied {
		r.progress.OnProgress(ctx, ProgressEvent{Stage: "register", Message: fmt.Sprintf("Deploying proxy for %s", params.Name), Spinner: true})
		_, err = reg.RegisterProxied(ctx, r.session.From(), params.Name, params.Address)
	} else {
		err = reg.RegisterDirect(ctx, r.session.From(), params.Name, params.Address)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to register %s: %w", params.Name, err)
	}
	if err := r.session.Commit(ctx); err != nil {
		return nil, err
	}

	comp, err := reg.Component(ctx, params.Name)
	if err != nil {
		return nil, err
	}
	return &RegisterComponentResult{Component: comp, Replaced: previous}, nil
}
