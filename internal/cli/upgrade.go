package cli

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-registry/internal/cli/render"
	"github.com/trebuchet-org/treb-registry/internal/usecase"
)

// NewUpgradeCmd creates the upgrade command
func NewUpgradeCmd() *cobra.Command {
	var artifact, initMethod, initArg string

	cmd := &cobra.Command{
		Use:   "upgrade <name> [implementation]",
		Short: "Point a proxied component at a new implementation",
		Long: `Upgrade the proxy behind a component. The new implementation is either
given as an address or deployed from the artifact catalog with --artifact.
The proxy address and its storage stay the same.

With --init-method the new implementation is initialized in the same step. If the
call fails the upgrade is rolled back.

Examples:
  treg upgrade BMI_STAKING 0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512
  treg upgrade BMI_STAKING --artifact BMIStakingV2 --init-method migrate`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			name, err := parseName(args[0])
			if err != nil {
				return err
			}

			var impl common.Address
			if len(args) == 2 {
				if impl, err = parseAddress("implementation", args[1]); err != nil {
					return err
				}
			}

			result, err := app.UpgradeComponent.Run(cmd.Context(), usecase.UpgradeComponentParams{
				Name:           name,
				Implementation: impl,
				Artifact:       artifact,
				Init:           usecase.NewMessage(initMethod, initArg),
			})
			if err != nil {
				return fmt.Errorf("failed to upgrade %s: %w", name, withSuggestions(cmd.Context(), app, name, err))
			}

			if app.Config.JSON {
				return printJSON(cmd, result)
			}
			return render.NewResultRenderer(cmd.OutOrStdout()).RenderUpgrade(result)
		},
	}

	cmd.Flags().StringVar(&artifact, "artifact", "", "Deploy the new implementation from this artifact")
	cmd.Flags().StringVar(&initMethod, "init-method", "", "Method run on the new implementation after the upgrade")
	cmd.Flags().StringVar(&initArg, "init-arg", "", "Argument for the init call (address, number or string)")

	return cmd
}
