package render

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/trebuchet-org/treb-registry/internal/domain"
)

var (
	eventTypeStyle = color.New(color.FgYellow)
	timestampStyle = color.New(color.Faint)
)

// EventsRenderer renders audit events as a table
type EventsRenderer struct {
	out io.Writer
}

// NewEventsRenderer creates a new events renderer
func NewEventsRenderer(out io.Writer) *EventsRenderer {
	return &EventsRenderer{out: out}
}

var _ Renderer[[]domain.AuditEvent] = (*EventsRenderer)(nil)

// Render writes the events oldest first
func (r *EventsRenderer) Render(events []domain.AuditEvent) error {
	if len(events) == 0 {
		fmt.Fprintln(r.out, "No events found")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateColumns = false
	t.Style().Box.PaddingRight = "  "
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
	})

	t.AppendHeader(table.Row{"SEQ", "TYPE", "SENDER", "DETAILS", "TIME"})
	for i := range events {
		ev := &events[i]
		t.AppendRow(table.Row{
			ev.Seq,
			eventTypeStyle.Sprint(ev.Type),
			addressOrDash(ev.Sender),
			ev.String(),
			timestampStyle.Sprint(ev.Time.Format("2006-01-02 15:04:05")),
		})
	}
	t.Render()
	return nil
}
