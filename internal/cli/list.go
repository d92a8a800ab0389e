package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-registry/internal/cli/render"
	"github.com/trebuchet-org/treb-registry/internal/domain"
	"github.com/trebuchet-org/treb-registry/internal/domain/models"
	"github.com/trebuchet-org/treb-registry/internal/usecase"
)

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List registered components",
		Long: `List every registered component with its address. Proxied components
also show their current implementation and proxy admin. Proxies whose
admin is no longer the registry are marked as detached.

Examples:
  treg list
  treg list --kind proxied
  treg list --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			params := usecase.ListComponentsParams{}
			switch strings.ToLower(kind) {
			case "":
			case "direct":
				params.Kind = models.DirectComponent
			case "proxied", "proxy":
				params.Kind = models.ProxiedComponent
			default:
				return fmt.Errorf("unknown kind %q, expected direct or proxied: %w", kind, domain.ErrInvalidArgument)
			}

			result, err := app.ListComponents.Run(cmd.Context(), params)
			if err != nil {
				return fmt.Errorf("failed to list components: %w", err)
			}

			if app.Config.JSON {
				return printJSON(cmd, result)
			}

			reg, err := app.Session.Registry(cmd.Context())
			if err != nil {
				return err
			}
			return render.NewComponentsRenderer(cmd.OutOrStdout(), reg.Address()).Render(result)
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "Only list direct or proxied components")

	return cmd
}
