package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// NewServeCmd creates the serve command
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the read-only registry API over HTTP",
		Long: `Serve the registry over HTTP until interrupted. Every API request reads
the latest saved state, so changes made by other treg commands show up
without a restart.

Endpoints:
  GET /api/components[?kind=DIRECT|PROXIED]
  GET /api/components/{name}
  GET /api/components/{name}/implementation
  GET /api/roles/{role}/{account}
  GET /api/events[?type=&name=&account=&after=&limit=]
  GET /livez, /readyz, /drain, /undrain`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return app.Server.Run(ctx)
		},
	}

	cmd.Flags().String("listen-addr", "", "Address to listen on (default 127.0.0.1:8080)")

	return cmd
}
