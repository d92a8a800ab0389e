package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-registry/internal/cli/render"
	"github.com/trebuchet-org/treb-registry/internal/domain"
	"github.com/trebuchet-org/treb-registry/internal/usecase"
)

// NewInjectCmd creates the inject command
func NewInjectCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "inject [name]",
		Short: "Refresh the dependencies a component caches",
		Long: `Make a component pull its dependencies from the registry again. Run this
after registering or re-registering anything a component depends on.

With --all every injectable component is refreshed in name order. Either
all succeed or none are recorded.

Examples:
  treg inject REWARDS_GENERATOR
  treg inject --all`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			params := usecase.InjectDependenciesParams{All: all}
			switch {
			case all && len(args) > 0:
				return fmt.Errorf("a name and --all are mutually exclusive: %w", domain.ErrInvalidArgument)
			case !all:
				if params.Name, err = nameArg(cmd, app, args, "Select a component to inject"); err != nil {
					return err
				}
			}

			result, err := app.InjectDependencies.Run(cmd.Context(), params)
			if err != nil {
				return fmt.Errorf("failed to inject dependencies: %w", withSuggestions(cmd.Context(), app, params.Name, err))
			}

			if app.Config.JSON {
				return printJSON(cmd, result)
			}
			return render.NewResultRenderer(cmd.OutOrStdout()).RenderInject(result)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Inject every component that declares dependencies")

	return cmd
}
