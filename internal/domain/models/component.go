package models

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-registry/internal/domain"
)

// ComponentKind tells how a name is bound to its address
type ComponentKind string

const (
	DirectComponent  ComponentKind = "DIRECT"
	ProxiedComponent ComponentKind = "PROXIED"
)

// Component is the registry record for one name
type Component struct {
	Name    domain.Name    `json:"name"`
	Address common.Address `json:"address"` // Stable address callers use
	Kind    ComponentKind  `json:"kind"`

	// Proxied only
	Implementation common.Address `json:"implementation,omitempty"`
	ProxyAdmin     common.Address `json:"proxyAdmin,omitempty"`
	History        []Upgrade      `json:"history,omitempty"`

	RegisteredAt time.Time `json:"registeredAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Upgrade records one implementation swap behind a proxy
type Upgrade struct {
	From        common.Address `json:"from"`
	To          common.Address `json:"to"`
	Initialized bool           `json:"initialized,omitempty"` // upgraded with an init call
	UpgradedAt  time.Time      `json:"upgradedAt"`
}

// IsProxied reports whether the record is backed by a proxy
func (c *Component) IsProxied() bool {
	return c.Kind == ProxiedComponent
}

// Clone returns a deep copy safe to hand out of the registry
func (c *Component) Clone() *Component {
	if c == nil {
		return nil
	}
	cp := *c
	if len(c.History) > 0 {
		cp.History = append([]Upgrade(nil), c.History...)
	}
	return &cp
}
