package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-registry/internal/cli/render"
	"github.com/trebuchet-org/treb-registry/internal/usecase"
)

// NewDeployCmd creates the deploy command
func NewDeployCmd() *cobra.Command {
	var initMethod, initArg string

	cmd := &cobra.Command{
		Use:   "deploy <artifact>",
		Short: "Deploy an implementation from the artifact catalog",
		Long: `Deploy a new instance of a bundled artifact from the deployer account and
print its address. The address can then be registered directly or used as
the implementation of a proxied component.

An optional init call runs on the new instance right after deployment.

Examples:
  treg deploy RewardsGenerator
  treg deploy Token --init-method initialize --init-arg BMI
  treg artifacts`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.DeployArtifact.Run(cmd.Context(), usecase.DeployArtifactParams{
				Artifact: args[0],
				Init:     usecase.NewMessage(initMethod, initArg),
			})
			if err != nil {
				if hint := render.FormatSuggestions(render.Suggest(args[0], app.Catalog.Artifacts())); hint != "" {
					return fmt.Errorf("failed to deploy %s: %w. %s", args[0], err, hint)
				}
				return fmt.Errorf("failed to deploy %s: %w", args[0], err)
			}

			if app.Config.JSON {
				return printJSON(cmd, result)
			}
			return render.NewResultRenderer(cmd.OutOrStdout()).RenderDeploy(result)
		},
	}

	cmd.Flags().StringVar(&initMethod, "init-method", "", "Method called on the new instance after deployment")
	cmd.Flags().StringVar(&initArg, "init-arg", "", "Argument for the init call (address, number or string)")

	return cmd
}
