package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-registry/internal/adapters/progress"
	"github.com/trebuchet-org/treb-registry/internal/app"
	"github.com/trebuchet-org/treb-registry/internal/config"
)

// contextKey is the type for context keys
type contextKey string

const (
	// appKey is the context key for the app instance
	appKey contextKey = "app"
	// releaseKey holds the func that closes the app and cancels the timeout
	releaseKey contextKey = "release"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "treg",
		Short: "Name-based registry for modular contract systems",
		Long: `treg keeps a registry of named components, each bound either directly
to an address or to an upgradeable proxy the registry administers.
Components pull their dependencies from the registry by name and cache
them until dependencies are injected again.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip for help/version commands
			if cmd.Name() == "version" || cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}

			projectRoot, err := config.FindProjectRoot()
			if err != nil {
				return err
			}

			// Set up viper, binding every flag of the command
			v := config.SetupViper(projectRoot, cmd)

			appInstance, cleanup, err := app.InitApp(v)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}

			ctx := context.WithValue(cmd.Context(), appKey, appInstance)

			// serve runs until interrupted, so the timeout does not apply to it
			cancel := context.CancelFunc(func() {})
			if appInstance.Config.Timeout > 0 && cmd.Name() != "serve" {
				ctx, cancel = context.WithTimeout(ctx, appInstance.Config.Timeout)
			}
			ctx = context.WithValue(ctx, releaseKey, func() {
				if sink, ok := appInstance.Progress.(*progress.SpinnerSink); ok {
					appInstance.Log.Debug("command finished", "lastStage", sink.Stop())
				}
				cancel()
				cleanup()
			})

			cmd.SetContext(ctx)
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug output")
	rootCmd.PersistentFlags().Bool("non-interactive", false, "Disable interactive prompts")
	rootCmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	rootCmd.PersistentFlags().String("data-dir", "", "Directory holding registry.json and audit.db (default <project>/.treg)")
	rootCmd.PersistentFlags().String("from", "", "Caller address for mutating commands (defaults to --admin)")
	rootCmd.PersistentFlags().String("admin", "", "Initial REGISTRY_ADMIN when the registry is first created")
	rootCmd.PersistentFlags().String("deployer", "", "Account that deploys the registry, proxies and implementations")
	rootCmd.PersistentFlags().Duration("timeout", 0, "Timeout for a single command (default 1m)")
	rootCmd.PersistentFlags().Bool("log-uid", false, "Tag log lines with a per-process uid")

	// Add command groups
	rootCmd.AddGroup(&cobra.Group{
		ID:    "main",
		Title: "Main Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands",
	})

	for _, cmd := range []*cobra.Command{
		NewListCmd(),
		NewShowCmd(),
		NewResolveCmd(),
		NewDeployCmd(),
		NewRegisterCmd(),
		NewUpgradeCmd(),
		NewInjectCmd(),
		NewApplyCmd(),
	} {
		cmd.GroupID = "main"
		rootCmd.AddCommand(cmd)
	}

	for _, cmd := range []*cobra.Command{
		NewRolesCmd(),
		NewProxyCmd(),
		NewArtifactsCmd(),
		NewEventsCmd(),
		NewServeCmd(),
	} {
		cmd.GroupID = "management"
		rootCmd.AddCommand(cmd)
	}

	// Version command
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// Execute runs the CLI and releases the app once the command returns
func Execute() error {
	return execute(NewRootCmd())
}

func execute(rootCmd *cobra.Command) error {
	cmd, err := rootCmd.ExecuteC()
	if cmd != nil && cmd.Context() != nil {
		if release, ok := cmd.Context().Value(releaseKey).(func()); ok {
			release()
		}
	}
	return err
}

// getApp retrieves the app instance from the command context
func getApp(cmd *cobra.Command) (*app.App, error) {
	appInstance := cmd.Context().Value(appKey)
	if appInstance == nil {
		return nil, fmt.Errorf("app not initialized")
	}

	app, ok := appInstance.(*app.App)
	if !ok {
		return nil, fmt.Errorf("invalid app instance")
	}

	return app, nil
}
