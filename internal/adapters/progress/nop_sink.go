package progress

import (
	"context"

	"github.com/trebuchet-org/treb-registry/internal/usecase"
)

// NopSink is a no-op implementation of ProgressSink, used for JSON output
// and non-interactive runs
type NopSink struct{}

// NewNopSink creates a new no-op progress sink
func NewNopSink() *NopSink {
	return &NopSink{}
}

func (n *NopSink) OnProgress(ctx context.Context, event usecase.ProgressEvent) {}

func (n *NopSink) Info(message string) {}

func (n *NopSink) Error(message string) {}

// Ensure NopSink implements ProgressSink
var _ usecase.ProgressSink = (*NopSink)(nil)
