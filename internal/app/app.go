package app

import (
	"log/slog"

	"github.com/trebuchet-org/treb-registry/internal/adapters/httpapi"
	"github.com/trebuchet-org/treb-registry/internal/config"
	"github.com/trebuchet-org/treb-registry/internal/usecase"
)

// App is the main application container that holds all use cases
type App struct {
	// Configuration
	Config *config.RuntimeConfig
	Log    *slog.Logger

	// Shared dependencies
	Session  *usecase.RegistrySession
	Catalog  usecase.ArtifactCatalog
	Selector usecase.InteractiveSelector
	Progress usecase.ProgressSink

	// Use cases
	DeployArtifact     *usecase.DeployArtifact
	RegisterComponent  *usecase.RegisterComponent
	ResolveComponent   *usecase.ResolveComponent
	ShowComponent      *usecase.ShowComponent
	ListComponents     *usecase.ListComponents
	UpgradeComponent   *usecase.UpgradeComponent
	InjectDependencies *usecase.InjectDependencies
	ManageRoles        *usecase.ManageRoles
	TransferProxyAdmin *usecase.TransferProxyAdmin
	ApplyManifest      *usecase.ApplyManifest
	ListEvents         *usecase.ListEvents

	// Read API, only started by `treg serve`
	Server *httpapi.Server
}

// NewApp creates a new application instance with all use cases
func NewApp(
	cfg *config.RuntimeConfig,
	log *slog.Logger,
	session *usecase.RegistrySession,
	catalog usecase.ArtifactCatalog,
	selector usecase.InteractiveSelector,
	progress usecase.ProgressSink,
	deployArtifact *usecase.DeployArtifact,
	registerComponent *usecase.RegisterComponent,
	resolveComponent *usecase.ResolveComponent,
	showComponent *usecase.ShowComponent,
	listComponents *usecase.ListComponents,
	upgradeComponent *usecase.UpgradeComponent,
	injectDependencies *usecase.InjectDependencies,
	manageRoles *usecase.ManageRoles,
	transferProxyAdmin *usecase.TransferProxyAdmin,
	applyManifest *usecase.ApplyManifest,
	listEvents *usecase.ListEvents,
	server *httpapi.Server,
) (*App, error) {
	return &App{
		Config:             cfg,
		Log:                log,
		Session:            session,
		Catalog:            catalog,
		Selector:           selector,
		Progress:           progress,
		DeployArtifact:     deployArtifact,
		RegisterComponent:  registerComponent,
		ResolveComponent:   resolveComponent,
		ShowComponent:      showComponent,
		ListComponents:     listComponents,
		UpgradeComponent:   upgradeComponent,
		InjectDependencies: injectDependencies,
		ManageRoles:        manageRoles,
		TransferProxyAdmin: transferProxyAdmin,
		ApplyManifest:      applyManifest,
		ListEvents:         listEvents,
		Server:             server,
	}, nil
}
