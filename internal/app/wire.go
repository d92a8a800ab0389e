//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/treb-registry/internal/adapters"
	"github.com/trebuchet-org/treb-registry/internal/config"
	"github.com/trebuchet-org/treb-registry/internal/logging"
	"github.com/trebuchet-org/treb-registry/internal/usecase"
)

// InitApp creates a fully wired App instance. The cleanup closes the audit
// journal.
func InitApp(v *viper.Viper) (*App, func(), error) {
	wire.Build(
		// Configuration
		config.Provider,
		logging.LoggingSet,

		// Adapters
		adapters.AllAdapters,

		// Use cases
		usecase.NewRegistrySession,
		usecase.NewDeployArtifact,
		usecase.NewRegisterComponent,
		usecase.NewResolveComponent,
		usecase.NewShowComponent,
		usecase.NewListComponents,
		usecase.NewUpgradeComponent,
		usecase.NewInjectDependencies,
		usecase.NewManageRoles,
		usecase.NewTransferProxyAdmin,
		usecase.NewApplyManifest,
		usecase.NewListEvents,

		// App
		NewApp,
	)
	return nil, nil, nil
}
