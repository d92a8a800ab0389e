package progress

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/trebuchet-org/treb-registry/internal/config"
	"github.com/trebuchet-org/treb-registry/internal/usecase"
)

// SpinnerSink shows registry operations with a terminal spinner
type SpinnerSink struct {
	mu      sync.Mutex
	spinner *spinner.Spinner
	out     io.Writer
	stage   string
	started time.Time
}

// NewSpinnerSink creates a spinner writing to out
func NewSpinnerSink(out io.Writer) *SpinnerSink {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(out))
	s.HideCursor = false
	return &SpinnerSink{spinner: s, out: out}
}

// NewProgressSink picks the sink for the run: a spinner on stderr for
// interactive text output, nothing otherwise.
func NewProgressSink(cfg *config.RuntimeConfig) usecase.ProgressSink {
	if cfg.JSON || cfg.NonInteractive {
		return NewNopSink()
	}
	return NewSpinnerSink(os.Stderr)
}

// OnProgress handles progress events
func (r *SpinnerSink) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if event.Stage != r.stage {
		r.stage = event.Stage
		r.started = time.Now()
	}
	if !event.Spinner {
		if r.spinner.Active() {
			r.spinner.Stop()
		}
		return
	}

	suffix := " " + event.Message
	if event.Total > 0 {
		suffix = fmt.Sprintf(" [%d/%d] %s", event.Current, event.Total, event.Message)
	}
	r.spinner.Suffix = suffix
	if !r.spinner.Active() {
		r.spinner.Start()
	}
}

// Info prints an info message
func (r *SpinnerSink) Info(message string) {
	r.print(color.New(color.FgCyan), message)
}

// Error prints an error message
func (r *SpinnerSink) Error(message string) {
	r.print(color.New(color.FgRed), message)
}

// print stops the spinner for the duration of the message
func (r *SpinnerSink) print(c *color.Color, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	wasActive := r.spinner.Active()
	if wasActive {
		r.spinner.Stop()
	}
	c.Fprintln(r.out, message)
	if wasActive {
		r.spinner.Start()
	}
}

// Stop clears the spinner, reporting how long the last stage took
func (r *SpinnerSink) Stop() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.spinner.Active() {
		r.spinner.Stop()
	}
	if r.started.IsZero() {
		return 0
	}
	return time.Since(r.started).Round(time.Millisecond)
}

// Ensure SpinnerSink implements ProgressSink
var _ usecase.ProgressSink = (*SpinnerSink)(nil)
