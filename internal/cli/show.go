package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-registry/internal/cli/render"
)

// NewShowCmd creates the show command
func NewShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [name]",
		Short: "Show detailed component information",
		Long: `Show the registry record of a component: its address, kind, proxy
implementation and admin, upgrade history and, for components that pull
dependencies, the cached address of every dependency. Cached addresses
that no longer match the registry are marked stale.

Without a name an interactive picker lists the registered components.

Examples:
  treg show REWARDS_GENERATOR
  treg show bmi_staking --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			name, err := nameArg(cmd, app, args, "Select a component")
			if err != nil {
				return err
			}

			details, err := app.ShowComponent.Run(cmd.Context(), name)
			if err != nil {
				return fmt.Errorf("failed to show component: %w", withSuggestions(cmd.Context(), app, name, err))
			}

			if app.Config.JSON {
				return printJSON(cmd, details)
			}
			return render.NewComponentRenderer(cmd.OutOrStdout()).Render(details)
		},
	}
}
