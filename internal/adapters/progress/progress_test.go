package progress

import (
	"bytes"
	"context"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/trebuchet-org/treb-registry/internal/config"
	"github.com/trebuchet-org/treb-registry/internal/usecase"
)

func TestNewProgressSink(t *testing.T) {
	assert.IsType(t, &NopSink{}, NewProgressSink(&config.RuntimeConfig{JSON: true}))
	assert.IsType(t, &NopSink{}, NewProgressSink(&config.RuntimeConfig{NonInteractive: true}))
	assert.IsType(t, &SpinnerSink{}, NewProgressSink(&config.RuntimeConfig{}))
}

func TestSpinnerSink(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	sink := NewSpinnerSink(&buf)
	ctx := context.Background()

	sink.OnProgress(ctx, usecase.ProgressEvent{Stage: "register", Current: 1, Total: 3, Message: "Registering BMI", Spinner: true})
	// The spinner only animates on a terminal; a buffer keeps it idle
	assert.Equal(t, " [1/3] Registering BMI", sink.spinner.Suffix)

	sink.Info("Applied 3 components")
	assert.Contains(t, buf.String(), "Applied 3 components")

	sink.OnProgress(ctx, usecase.ProgressEvent{Stage: "done"})
	assert.False(t, sink.spinner.Active())
	assert.Equal(t, "done", sink.stage)

	sink.Error("boom")
	assert.Contains(t, buf.String(), "boom")
	assert.GreaterOrEqual(t, int64(sink.Stop()), int64(0))
}
