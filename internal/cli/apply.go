package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-registry/internal/cli/render"
	"github.com/trebuchet-org/treb-registry/internal/usecase"
)

// NewApplyCmd creates the apply command
func NewApplyCmd() *cobra.Command {
	var skipInject bool

	cmd := &cobra.Command{
		Use:   "apply <manifest>",
		Short: "Deploy, register and wire the components of a manifest",
		Long: `Apply a YAML or TOML manifest in two phases. First every component is
deployed from its artifact (or taken at its address) and registered,
directly or behind a proxy. Then every component that pulls dependencies
is injected. Nothing is saved unless every step succeeds.

Example manifest:

  components:
    BMI:
      artifact: Token
      init: { method: initialize, arg: BMI }
    REWARDS_GENERATOR:
      artifact: RewardsGenerator
      proxy: true
    BMI_COVER_STAKING:
      artifact: BMICoverStaking
      proxy: true

Examples:
  treg apply registry.yaml
  treg apply registry.toml --skip-inject`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.ApplyManifest.Run(cmd.Context(), usecase.ApplyManifestParams{
				Path:       args[0],
				SkipInject: skipInject,
			})
			if err != nil {
				return fmt.Errorf("failed to apply %s: %w", args[0], err)
			}

			if app.Config.JSON {
				return printJSON(cmd, result)
			}
			return render.NewResultRenderer(cmd.OutOrStdout()).RenderApply(result)
		},
	}

	cmd.Flags().BoolVar(&skipInject, "skip-inject", false, "Register only, without the injection phase")

	return cmd
}
