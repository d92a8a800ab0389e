package render

import (
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/trebuchet-org/treb-registry/internal/domain/models"
	"github.com/trebuchet-org/treb-registry/internal/usecase"
)

var (
	proxiedStyle  = color.New(color.FgMagenta)
	directStyle   = color.New(color.FgBlue)
	detachedStyle = color.New(color.FgRed)
)

// ComponentsRenderer renders the component list as a table
type ComponentsRenderer struct {
	out      io.Writer
	registry common.Address
}

// NewComponentsRenderer creates a new components renderer. Proxies whose
// admin differs from registry are flagged as detached.
func NewComponentsRenderer(out io.Writer, registry common.Address) *ComponentsRenderer {
	return &ComponentsRenderer{out: out, registry: registry}
}

var _ Renderer[*usecase.ComponentListResult] = (*ComponentsRenderer)(nil)

// Render writes one row per component followed by the summary
func (r *ComponentsRenderer) Render(result *usecase.ComponentListResult) error {
	if len(result.Components) == 0 {
		fmt.Fprintln(r.out, "No components registered")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateColumns = false
	t.Style().Options.SeparateRows = false
	t.Style().Box.PaddingRight = "  "
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft},
	})

	t.AppendHeader(table.Row{"NAME", "KIND", "ADDRESS", "IMPLEMENTATION", "PROXY ADMIN"})
	for _, c := range result.Components {
		t.AppendRow(table.Row{
			nameStyle.Sprint(c.Name),
			r.kind(c),
			c.Address.Hex(),
			addressOrDash(c.Implementation),
			addressOrDash(c.ProxyAdmin),
		})
	}
	t.Render()

	s := result.Summary
	fmt.Fprintln(r.out)
	fmt.Fprintf(r.out, "%d components (%d direct, %d proxied", s.Total, s.Direct, s.Proxied)
	if s.Detached > 0 {
		fmt.Fprintf(r.out, ", %s", detachedStyle.Sprintf("%d detached", s.Detached))
	}
	fmt.Fprintln(r.out, ")")
	return nil
}

func (r *ComponentsRenderer) kind(c *models.Component) string {
	if !c.IsProxied() {
		return directStyle.Sprint("direct")
	}
	if c.ProxyAdmin != r.registry {
		return detachedStyle.Sprint("proxied*")
	}
	return proxiedStyle.Sprint("proxied")
}
