package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-registry/internal/cli/render"
	"github.com/trebuchet-org/treb-registry/internal/usecase"
)

// NewRegisterCmd creates the register command group
func NewRegisterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a component under a name",
		Long: `Register a component either directly at an address or behind a new
upgradeable proxy the registry administers. Registering an existing name
replaces its record. Components that cached the old address keep using it
until dependencies are injected again.`,
	}

	cmd.AddCommand(newRegisterSubCmd(false))
	cmd.AddCommand(newRegisterSubCmd(true))

	return cmd
}

func newRegisterSubCmd(proxied bool) *cobra.Command {
	use, short, what := "direct <name> <address>", "Bind a name directly to an address", "component"
	example := "  treg register direct USDT 0xdAC17F958D2ee523a2206206994597C13D831ec7"
	if proxied {
		use, short, what = "proxy <name> <implementation>", "Create a proxy for an implementation and bind the name to it", "implementation"
		example = "  treg register proxy REWARDS_GENERATOR 0x5FbDB2315678afecb367f032d93F642f64180aa3"
	}

	return &cobra.Command{
		Use:     use,
		Short:   short,
		Example: example,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			name, err := parseName(args[0])
			if err != nil {
				return err
			}
			addr, err := parseAddress(what, args[1])
			if err != nil {
				return err
			}

			result, err := app.RegisterComponent.Run(cmd.Context(), usecase.RegisterComponentParams{
				Name:    name,
				Address: addr,
				Proxied: proxied,
			})
			if err != nil {
				return fmt.Errorf("failed to register %s: %w", name, err)
			}

			if app.Config.JSON {
				return printJSON(cmd, result)
			}
			return render.NewResultRenderer(cmd.OutOrStdout()).RenderRegister(result)
		},
	}
}
