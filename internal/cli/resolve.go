package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-registry/internal/usecase"
)

// NewResolveCmd creates the resolve command
func NewResolveCmd() *cobra.Command {
	var implementation bool

	cmd := &cobra.Command{
		Use:   "resolve <name>",
		Short: "Print the address registered under a name",
		Long: `Print the address callers should use for a component. With
--implementation the logic address behind a proxied component is printed
instead.

Examples:
  treg resolve BMI
  treg resolve REWARDS_GENERATOR --implementation`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			name, err := parseName(args[0])
			if err != nil {
				return err
			}

			result, err := app.ResolveComponent.Run(cmd.Context(), usecase.ResolveComponentParams{
				Name:           name,
				Implementation: implementation,
			})
			if err != nil {
				return fmt.Errorf("failed to resolve %s: %w", name, withSuggestions(cmd.Context(), app, name, err))
			}

			if app.Config.JSON {
				return printJSON(cmd, result)
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Address.Hex())
			return nil
		},
	}

	cmd.Flags().BoolVar(&implementation, "implementation", false, "Print the implementation behind a proxied component")

	return cmd
}
