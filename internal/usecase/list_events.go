package usecase

import (
	"context"

	"github.com/trebuchet-org/treb-registry/internal/domain"
)

// ListEvents reads the persisted audit journal
type ListEvents struct {
	audit AuditLog
}

// NewListEvents creates a new list events use case
func NewListEvents(audit AuditLog) *ListEvents {
	return &ListEvents{audit: audit}
}

// Run returns the events matching filter, oldest first
func (uc *ListEvents) Run(ctx context.Context, filter domain.EventFilter) ([]domain.AuditEvent, error) {
	return uc.audit.List(ctx, filter)
}
