package render

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/trebuchet-org/treb-registry/internal/domain"
	"github.com/trebuchet-org/treb-registry/internal/usecase"
)

// ComponentRenderer renders detailed information about a single component
type ComponentRenderer struct {
	out io.Writer
}

// NewComponentRenderer creates a new component renderer
func NewComponentRenderer(out io.Writer) *ComponentRenderer {
	return &ComponentRenderer{out: out}
}

var _ Renderer[*usecase.ComponentDetails] = (*ComponentRenderer)(nil)

// Render writes the record, its proxy data and its cached dependencies
func (r *ComponentRenderer) Render(d *usecase.ComponentDetails) error {
	c := d.Component

	color.New(color.FgCyan, color.Bold).Fprintf(r.out, "Component: %s\n", c.Name)
	fmt.Fprintln(r.out, strings.Repeat("=", 80))

	fmt.Fprintln(r.out, "\nBasic Information:")
	fmt.Fprintf(r.out, "  Address: %s\n", c.Address.Hex())
	fmt.Fprintf(r.out, "  Kind: %s\n", c.Kind)
	if d.Artifact != "" {
		fmt.Fprintf(r.out, "  Artifact: %s\n", color.New(color.FgYellow).Sprint(d.Artifact))
	}
	fmt.Fprintf(r.out, "  Registered: %s\n", c.RegisteredAt.Format("2006-01-02 15:04:05"))

	if c.IsProxied() {
		fmt.Fprintln(r.out, "\nProxy Information:")
		fmt.Fprintf(r.out, "  Implementation: %s\n", c.Implementation.Hex())
		fmt.Fprintf(r.out, "  Admin: %s\n", c.ProxyAdmin.Hex())
		if len(c.History) > 0 {
			fmt.Fprintln(r.out, "  Upgrade History:")
			for i, u := range c.History {
				suffix := ""
				if u.Initialized {
					suffix = " with init call"
				}
				fmt.Fprintf(r.out, "    %d. %s -> %s (upgraded at %s%s)\n",
					i+1,
					u.From.Hex(),
					u.To.Hex(),
					u.UpgradedAt.Format("2006-01-02 15:04:05"),
					suffix,
				)
			}
		}
	}

	if len(d.Bindings) > 0 || d.Injector != zeroAddress {
		fmt.Fprintln(r.out, "\nDependencies:")
		fmt.Fprintf(r.out, "  Injector: %s\n", addressOrDash(d.Injector))

		names := make([]domain.Name, 0, len(d.Bindings))
		for name := range d.Bindings {
			names = append(names, name)
		}
		sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

		stale := make(map[domain.Name]bool, len(d.Stale))
		for _, name := range d.Stale {
			stale[name] = true
		}
		for _, name := range names {
			line := fmt.Sprintf("  %s %s %s", name, labelStyle.Sprint("->"), addressOrDash(d.Bindings[name]))
			if stale[name] {
				line += " " + FormatWarning("stale, run `treg inject "+string(c.Name)+"`")
			}
			fmt.Fprintln(r.out, line)
		}
	}

	return nil
}
