package usecase

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-registry/internal/components"
	"github.com/trebuchet-org/treb-registry/internal/domain"
	"github.com/trebuchet-org/treb-registry/internal/domain/models"
	"github.com/trebuchet-org/treb-registry/internal/host"
	"github.com/trebuchet-org/treb-registry/internal/proxy"
)

// ResolveComponent looks up the address bound to a name
type ResolveComponent struct {
	session *RegistrySession
}

// NewResolveComponent creates a new resolve component use case
func NewResolveComponent(session *RegistrySession) *ResolveComponent {
	return &ResolveComponent{session: session}
}

// ResolveComponentParams contains parameters for resolving a name
type ResolveComponentParams struct {
	Name domain.Name
	// Implementation resolves the logic behind a proxied name instead
	Implementation bool
}

// ResolveComponentResult contains the resolved address
type ResolveComponentResult struct {
	Name    domain.Name    `json:"name"`
	Address common.Address `json:"address"`
}

// Run resolves the name. Nothing is persisted.
func (uc *ResolveComponent) Run(ctx context.Context, params ResolveComponentParams) (*ResolveComponentResult, error) {
	reg, err := uc.session.Registry(ctx)
	if err != nil {
		return nil, err
	}

	var addr common.Address
	if params.Implementation {
		addr, err = reg.ResolveImplementation(ctx, params.Name)
	} else {
		addr, err = reg.Resolve(ctx, params.Name)
	}
	if err != nil {
		return nil, err
	}
	return &ResolveComponentResult{Name: params.Name, Address: addr}, nil
}

// ShowComponent gathers everything known about one registered name
type ShowComponent struct {
	session *RegistrySession
	catalog ArtifactCatalog
}

// NewShowComponent creates a new show component use case
func NewShowComponent(session *RegistrySession, catalog ArtifactCatalog) *ShowComponent {
	return &ShowComponent{
		session: session,
		catalog: catalog,
	}
}

// ComponentDetails is the detailed view of a component
type ComponentDetails struct {
	Component *models.Component `json:"component"`
	// Artifact is the logic running at the address (the implementation for proxies)
	Artifact string `json:"artifact,omitempty"`
	// Injector is the first account that injected the component, zero if never injected
	Injector common.Address `json:"injector"`
	// Bindings holds the cached dependency addresses, keyed by name
	Bindings map[domain.Name]common.Address `json:"bindings,omitempty"`
	// Stale lists bindings that no longer match the registry
	Stale []domain.Name `json:"stale,omitempty"`
}

// Run loads the component details
func (uc *ShowComponent) Run(ctx context.Context, name domain.Name) (*ComponentDetails, error) {
	reg, err := uc.session.Registry(ctx)
	if err != nil {
		return nil, err
	}
	comp, err := reg.Component(ctx, name)
	if err != nil {
		return nil, err
	}

	details := &ComponentDetails{Component: comp}
	var needs []domain.Name
	err = reg.Host().View(ctx, func(v *host.View) error {
		logic := comp.Address
		if comp.IsProxied() {
			logic = proxy.Implementation(v.Storage(comp.Address))
		}
		code, ok := v.Code(logic)
		if !ok {
			return nil
		}
		details.Artifact = code.Artifact()

		deps, injectable := uc.catalog.Dependencies(details.Artifact)
		if !injectable {
			return nil
		}
		needs = deps
		storage := v.Storage(comp.Address)
		details.Injector = components.Injector(storage)
		details.Bindings = make(map[domain.Name]common.Address, len(deps))
		for _, dep := range deps {
			details.Bindings[dep] = components.Binding(storage, dep)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Resolve outside the view; registry reads take the host lock themselves.
	for _, dep := range needs {
		current, err := reg.Resolve(ctx, dep)
		if err != nil || current != details.Bindings[dep] {
			details.Stale = append(details.Stale, dep)
		}
	}
	return details, nil
}
