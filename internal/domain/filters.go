package domain

import "github.com/ethereum/go-ethereum/common"

// EventFilter defines filtering options for audit events
type EventFilter struct {
	Type    EventType
	Name    Name
	Account common.Address // matches Sender or Account
	After   uint64         // only events with a greater sequence number
	Limit   int            // 0 means no limit
}

// Matches reports whether ev passes the filter, ignoring After and Limit
func (f EventFilter) Matches(ev *AuditEvent) bool {
	if f.Type != "" && ev.Type != f.Type {
		return false
	}
	if f.Name != "" && ev.Name != f.Name {
		return false
	}
	if f.Account != (common.Address{}) && ev.Sender != f.Account && ev.Account != f.Account {
		return false
	}
	return true
}
