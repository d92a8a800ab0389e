package domain

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

type EventType string

const (
	// Registry events
	EventTypeComponentAdded       EventType = "ComponentAdded"
	EventTypeComponentUpgraded    EventType = "ComponentUpgraded"
	EventTypeDependenciesInjected EventType = "DependenciesInjected"
	EventTypeRoleGranted          EventType = "RoleGranted"
	EventTypeRoleRenounced        EventType = "RoleRenounced"

	// Proxy events
	EventTypeUpgraded     EventType = "Upgraded"
	EventTypeAdminChanged EventType = "AdminChanged"
)

// AuditEvent is one entry of the append-only audit log. Only the fields
// relevant to Type are set.
type AuditEvent struct {
	Seq     uint64         `json:"seq"`
	Type    EventType      `json:"type"`
	Emitter common.Address `json:"emitter"`
	Sender  common.Address `json:"sender"`

	Name           Name           `json:"name,omitempty"`
	Address        common.Address `json:"address,omitempty"`
	Implementation common.Address `json:"implementation,omitempty"`
	Proxied        bool           `json:"proxied,omitempty"`

	Role    Role           `json:"role,omitempty"`
	Account common.Address `json:"account,omitempty"`

	PreviousAdmin common.Address `json:"previousAdmin,omitempty"`
	NewAdmin      common.Address `json:"newAdmin,omitempty"`

	Time time.Time `json:"time"`
}

func (e *AuditEvent) String() string {
	switch e.Type {
	case EventTypeComponentAdded:
		kind := "direct"
		if e.Proxied {
			kind = "proxied"
		}
		return fmt.Sprintf("%s: name=%s, address=%s (%s)", e.Type, e.Name, short(e.Address), kind)
	case EventTypeComponentUpgraded:
		return fmt.Sprintf("%s: name=%s, impl=%s", e.Type, e.Name, short(e.Implementation))
	case EventTypeDependenciesInjected:
		return fmt.Sprintf("%s: name=%s, address=%s", e.Type, e.Name, short(e.Address))
	case EventTypeRoleGranted, EventTypeRoleRenounced:
		return fmt.Sprintf("%s: role=%s, account=%s", e.Type, e.Role, short(e.Account))
	case EventTypeUpgraded:
		return fmt.Sprintf("%s: proxy=%s, impl=%s", e.Type, short(e.Emitter), short(e.Implementation))
	case EventTypeAdminChanged:
		return fmt.Sprintf("%s: proxy=%s, old=%s, new=%s",
			e.Type, short(e.Emitter), short(e.PreviousAdmin), short(e.NewAdmin))
	default:
		return fmt.Sprintf("%s: %s", e.Type, short(e.Emitter))
	}
}

func short(addr common.Address) string {
	return addr.Hex()[:10] + "..."
}
