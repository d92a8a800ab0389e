package usecase

import (
	"context"

	"github.com/samber/lo"
	"github.com/trebuchet-org/treb-registry/internal/domain/models"
)

// ListComponents lists registered components with optional filtering
type ListComponents struct {
	session *RegistrySession
}

// NewListComponents creates a new list components use case
func NewListComponents(session *RegistrySession) *ListComponents {
	return &ListComponents{session: session}
}

// ListComponentsParams contains filter parameters
type ListComponentsParams struct {
	Kind models.ComponentKind // empty means all kinds
}

// ComponentListResult contains the components and a summary
type ComponentListResult struct {
	Components []*models.Component `json:"components"`
	Summary    ComponentSummary    `json:"summary"`
}

// ComponentSummary counts components by kind
type ComponentSummary struct {
	Total    int `json:"total"`
	Direct   int `json:"direct"`
	Proxied  int `json:"proxied"`
	Detached int `json:"detached"` // proxies whose admin is no longer the registry
}

// Run lists the components sorted by name
func (uc *ListComponents) Run(ctx context.Context, params ListComponentsParams) (*ComponentListResult, error) {
	reg, err := uc.session.Registry(ctx)
	if err != nil {
		return nil, err
	}
	all, err := reg.Components(ctx)
	if err != nil {
		return nil, err
	}

	comps := all
	if params.Kind != "" {
		comps = lo.Filter(all, func(c *models.Component, _ int) bool {
			return c.Kind == params.Kind
		})
	}

	registry := reg.Address()
	return &ComponentListResult{
		Components: comps,
		Summary: ComponentSummary{
			Total: len(comps),
			Direct: lo.CountBy(comps, func(c *models.Component) bool {
				return !c.IsProxied()
			}),
			Proxied: lo.CountBy(comps, func(c *models.Component) bool {
				return c.IsProxied()
			}),
			Detached: lo.CountBy(comps, func(c *models.Component) bool {
				return c.IsProxied() && c.ProxyAdmin != registry
			}),
		},
	}, nil
}
