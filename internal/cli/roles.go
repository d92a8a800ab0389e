package cli

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-registry/internal/cli/render"
	"github.com/trebuchet-org/treb-registry/internal/domain"
	"github.com/trebuchet-org/treb-registry/internal/usecase"
)

// NewRolesCmd creates the roles command group
func NewRolesCmd() *cobra.Command {
	var role string
	var yes bool

	cmd := &cobra.Command{
		Use:   "roles",
		Short: "Manage registry roles",
		Long: `Grant, renounce and inspect registry roles. REGISTRY_ADMIN gates every
mutating registry operation. Holders may grant the role to others and
renounce it for themselves. Renouncing the last holder leaves the registry
without an administrator and asks for confirmation.`,
	}

	cmd.PersistentFlags().StringVar(&role, "role", string(domain.RegistryAdminRole), "Role to manage")

	run := func(action usecase.RoleAction, accountRequired bool) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			var account common.Address
			switch {
			case len(args) > 0:
				if account, err = parseAddress("account", args[0]); err != nil {
					return err
				}
			case accountRequired:
				return fmt.Errorf("account is required: %w", domain.ErrInvalidArgument)
			}

			result, err := app.ManageRoles.Run(cmd.Context(), usecase.ManageRolesParams{
				Action:  action,
				Role:    domain.Role(strings.ToUpper(role)),
				Account: account,
				Yes:     yes,
			})
			if err != nil {
				return fmt.Errorf("failed to %s role: %w", action, err)
			}

			if app.Config.JSON {
				return printJSON(cmd, result)
			}
			return render.NewResultRenderer(cmd.OutOrStdout()).RenderRoles(result)
		}
	}

	grantCmd := &cobra.Command{
		Use:     "grant <account>",
		Short:   "Grant a role to an account",
		Example: "  treg roles grant 0x70997970C51812dc3A010C7d01b50e0d17dc79C8",
		Args:    cobra.ExactArgs(1),
		RunE:    run(usecase.RoleGrant, true),
	}

	renounceCmd := &cobra.Command{
		Use:   "renounce [account]",
		Short: "Renounce a role held by the caller",
		Long: `Renounce a role. The account must be the caller (--from), which is also
the default.`,
		Args: cobra.MaximumNArgs(1),
		RunE: run(usecase.RoleRenounce, false),
	}
	renounceCmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation for the last holder")

	checkCmd := &cobra.Command{
		Use:   "check [account]",
		Short: "Check whether an account holds a role",
		Args:  cobra.MaximumNArgs(1),
		RunE:  run(usecase.RoleCheck, false),
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the holders of a role",
		Args:  cobra.NoArgs,
		RunE:  run(usecase.RoleList, false),
	}

	cmd.AddCommand(grantCmd, renounceCmd, checkCmd, listCmd)
	return cmd
}
