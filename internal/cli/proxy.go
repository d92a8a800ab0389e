package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-registry/internal/cli/render"
	"github.com/trebuchet-org/treb-registry/internal/usecase"
)

// NewProxyCmd creates the proxy command group
func NewProxyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proxy",
		Short: "Administer the proxies behind components",
	}

	cmd.AddCommand(newTransferAdminCmd())

	return cmd
}

func newTransferAdminCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "transfer-admin <name> <new-admin>",
		Short: "Hand the proxy admin right of a component to another account",
		Long: `Transfer the admin right of the proxy behind a component. Afterwards the
registry can no longer upgrade the component. The record is kept and
marked as detached in listings.

Examples:
  treg proxy transfer-admin BMI_STAKING 0x90F79bf6EB2c4f870365E785982E1f101E93b906 --yes`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			name, err := parseName(args[0])
			if err != nil {
				return err
			}
			newAdmin, err := parseAddress("admin", args[1])
			if err != nil {
				return err
			}

			component, err := app.TransferProxyAdmin.Run(cmd.Context(), usecase.TransferProxyAdminParams{
				Name:     name,
				NewAdmin: newAdmin,
				Yes:      yes,
			})
			if err != nil {
				return fmt.Errorf("failed to transfer proxy admin: %w", withSuggestions(cmd.Context(), app, name, err))
			}

			if app.Config.JSON {
				return printJSON(cmd, component)
			}
			return render.NewResultRenderer(cmd.OutOrStdout()).RenderTransfer(component)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}
