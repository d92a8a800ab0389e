package adapters

import (
	"log/slog"
	"time"

	"github.com/google/wire"
	"github.com/trebuchet-org/treb-registry/internal/adapters/fs"
	"github.com/trebuchet-org/treb-registry/internal/adapters/httpapi"
	"github.com/trebuchet-org/treb-registry/internal/adapters/interactive"
	"github.com/trebuchet-org/treb-registry/internal/adapters/manifest"
	"github.com/trebuchet-org/treb-registry/internal/adapters/progress"
	"github.com/trebuchet-org/treb-registry/internal/adapters/sqlite"
	"github.com/trebuchet-org/treb-registry/internal/components"
	"github.com/trebuchet-org/treb-registry/internal/config"
	"github.com/trebuchet-org/treb-registry/internal/usecase"
)

// ProvideServerConfig provides the HTTP listener settings from RuntimeConfig
func ProvideServerConfig(cfg *config.RuntimeConfig, log *slog.Logger) *httpapi.ServerConfig {
	return &httpapi.ServerConfig{
		ListenAddr:               cfg.ListenAddr,
		Log:                      log,
		GracefulShutdownDuration: 30 * time.Second,
		ReadTimeout:              60 * time.Second,
		WriteTimeout:             30 * time.Second,
	}
}

// FSSet provides filesystem-based implementations
var FSSet = wire.NewSet(
	fs.NewStateStoreAdapter,
	wire.Bind(new(usecase.StateStore), new(*fs.StateStoreAdapter)),
)

// SQLiteSet provides the audit journal
var SQLiteSet = wire.NewSet(
	sqlite.NewAuditStore,
	wire.Bind(new(usecase.AuditLog), new(*sqlite.Store)),
)

// ManifestSet provides manifest parsing
var ManifestSet = wire.NewSet(
	manifest.NewParserAdapter,
	wire.Bind(new(usecase.ManifestParser), new(*manifest.ParserAdapter)),
)

// CatalogSet provides the bundled artifact catalog
var CatalogSet = wire.NewSet(
	components.NewCatalog,
	wire.Bind(new(usecase.ArtifactCatalog), new(*components.Catalog)),
)

// InteractiveSet provides interactive implementations
var InteractiveSet = wire.NewSet(
	interactive.NewSelectorAdapter,
	wire.Bind(new(usecase.InteractiveSelector), new(*interactive.SelectorAdapter)),
)

// ProgressSet provides the progress sink for the current output mode
var ProgressSet = wire.NewSet(
	progress.NewProgressSink,
)

// HTTPSet provides the read API server
var HTTPSet = wire.NewSet(
	ProvideServerConfig,
	httpapi.NewHandler,
	httpapi.New,
)

// AllAdapters includes all adapter sets
var AllAdapters = wire.NewSet(
	FSSet,
	SQLiteSet,
	ManifestSet,
	CatalogSet,
	InteractiveSet,
	ProgressSet,
	HTTPSet,
)
