package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-registry/internal/cli/render"
	"github.com/trebuchet-org/treb-registry/internal/domain"
)

// NewEventsCmd creates the events command
func NewEventsCmd() *cobra.Command {
	var (
		eventType string
		name      string
		account   string
		after     uint64
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List the audit journal",
		Long: `List the events recorded by registry operations, oldest first.

Examples:
  treg events
  treg events --type ComponentUpgraded --name BMI_STAKING
  treg events --account 0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266 --limit 20`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			if limit < 0 {
				return fmt.Errorf("invalid limit %d: %w", limit, domain.ErrInvalidArgument)
			}
			filter := domain.EventFilter{
				Type:  domain.EventType(eventType),
				After: after,
				Limit: limit,
			}
			if name != "" {
				if filter.Name, err = parseName(name); err != nil {
					return err
				}
			}
			if account != "" {
				if filter.Account, err = parseAddress("account", account); err != nil {
					return err
				}
			}

			events, err := app.ListEvents.Run(cmd.Context(), filter)
			if err != nil {
				return fmt.Errorf("failed to list events: %w", err)
			}

			if app.Config.JSON {
				if events == nil {
					events = []domain.AuditEvent{}
				}
				return printJSON(cmd, events)
			}
			return render.NewEventsRenderer(cmd.OutOrStdout()).Render(events)
		},
	}

	cmd.Flags().StringVar(&eventType, "type", "", "Only events of this type")
	cmd.Flags().StringVar(&name, "name", "", "Only events about this component")
	cmd.Flags().StringVar(&account, "account", "", "Only events sent by or about this account")
	cmd.Flags().Uint64Var(&after, "after", 0, "Only events after this sequence number")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of events (0 for all)")

	return cmd
}
