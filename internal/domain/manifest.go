package domain

import (
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"
)

// Manifest describes a full set of components to register and wire.
type Manifest struct {
	Components map[string]ManifestComponent `yaml:"components" toml:"components" json:"components"`
}

// ManifestComponent is one entry of a manifest. Exactly one of Artifact or
// Address must be set; Proxy requires Artifact.
type ManifestComponent struct {
	Artifact string        `yaml:"artifact,omitempty" toml:"artifact,omitempty" json:"artifact,omitempty"`
	Address  string        `yaml:"address,omitempty" toml:"address,omitempty" json:"address,omitempty"`
	Proxy    bool          `yaml:"proxy,omitempty" toml:"proxy,omitempty" json:"proxy,omitempty"`
	Init     *ManifestCall `yaml:"init,omitempty" toml:"init,omitempty" json:"init,omitempty"`
}

// ManifestCall is a call issued right after a component is registered
type ManifestCall struct {
	Method string `yaml:"method" toml:"method" json:"method"`
	Arg    string `yaml:"arg,omitempty" toml:"arg,omitempty" json:"arg,omitempty"`
}

// Names returns the component names in a stable order
func (m *Manifest) Names() []Name {
	names := make([]Name, 0, len(m.Components))
	for name := range m.Components {
		names = append(names, Name(name))
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Validate checks every entry of the manifest
func (m *Manifest) Validate() error {
	if len(m.Components) == 0 {
		return fmt.Errorf("manifest has no components")
	}
	for _, name := range m.Names() {
		if err := name.Validate(); err != nil {
			return err
		}
		c := m.Components[string(name)]
		switch {
		case c.Artifact == "" && c.Address == "":
			return fmt.Errorf("component %s: one of artifact or address is required", name)
		case c.Artifact != "" && c.Address != "":
			return fmt.Errorf("component %s: artifact and address are mutually exclusive", name)
		case c.Address != "" && !common.IsHexAddress(c.Address):
			return fmt.Errorf("component %s: invalid address %q", name, c.Address)
		case c.Proxy && c.Artifact == "":
			return fmt.Errorf("component %s: proxy requires an artifact", name)
		case c.Init != nil && c.Init.Method == "":
			return fmt.Errorf("component %s: init requires a method", name)
		}
	}
	return nil
}
