package components

import (
	"fmt"
	"sort"

	"github.com/samber/lo"
	"github.com/trebuchet-org/treb-registry/internal/domain"
	"github.com/trebuchet-org/treb-registry/internal/host"
	"github.com/trebuchet-org/treb-registry/internal/proxy"
)

// Catalog maps artifact names to deployable logic.
type Catalog struct {
	artifacts map[string]host.Contract
}

// NewCatalog returns a catalog holding the proxy and every bundled component.
func NewCatalog() *Catalog {
	c := &Catalog{artifacts: make(map[string]host.Contract)}
	for _, code := range []host.Contract{
		proxy.Proxy{},
		Token{},
		RewardsGenerator{},
		BMICoverStaking{},
		StakingV1{},
		StakingV2{},
	} {
		c.Add(code)
	}
	return c
}

// Add registers code under its artifact name, replacing any previous entry
func (c *Catalog) Add(code host.Contract) {
	c.artifacts[code.Artifact()] = code
}

// Load returns the logic for artifact. It satisfies host.CodeLoader.
func (c *Catalog) Load(artifact string) (host.Contract, error) {
	code, ok := c.artifacts[artifact]
	if !ok {
		return nil, fmt.Errorf("artifact %q: %w", artifact, domain.ErrNotFound)
	}
	return code, nil
}

// Artifacts lists the deployable artifact names. The proxy is excluded
// because proxies are only created by the registry.
func (c *Catalog) Artifacts() []string {
	names := lo.Filter(lo.Keys(c.artifacts), func(name string, _ int) bool {
		return name != proxy.Artifact
	})
	sort.Strings(names)
	return names
}

// Dependencies returns the names an artifact pulls during injection, if it
// exposes the dependency entry point.
func (c *Catalog) Dependencies(artifact string) ([]domain.Name, bool) {
	deps, ok := dependants[artifact]
	if !ok {
		return nil, false
	}
	return append([]domain.Name(nil), deps.Needs...), true
}

var dependants = map[string]Dependant{
	RewardsGeneratorArtifact: rewardsDeps,
	BMICoverStakingArtifact:  coverStakingDeps,
	StakingV1Artifact:        stakingV1Deps,
	StakingV2Artifact:        stakingV2Deps,
}
