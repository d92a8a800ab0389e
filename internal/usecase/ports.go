package usecase

import (
	"context"
	"time"

	"github.com/trebuchet-org/treb-registry/internal/domain"
	"github.com/trebuchet-org/treb-registry/internal/host"
	"github.com/trebuchet-org/treb-registry/internal/registry"
)

// RegistryState is everything persisted between runs
type RegistryState struct {
	Version  int                `json:"version"`
	Registry *registry.Snapshot `json:"registry"`
	Host     *host.State        `json:"host"`
	SavedAt  time.Time          `json:"savedAt"`
}

// StateStore handles persistence of the registry snapshot.
// Load returns domain.ErrNotFound when nothing has been saved yet.
type StateStore interface {
	Load(ctx context.Context) (*RegistryState, error)
	Save(ctx context.Context, state *RegistryState) error
}

// AuditLog is the durable, append-only journal of audit events
type AuditLog interface {
	Append(ctx context.Context, events []domain.AuditEvent) error
	LastSeq(ctx context.Context) (uint64, error)
	List(ctx context.Context, filter domain.EventFilter) ([]domain.AuditEvent, error)
}

// ArtifactCatalog resolves artifact names to deployable logic
type ArtifactCatalog interface {
	Load(artifact string) (host.Contract, error)
	Artifacts() []string
	Dependencies(artifact string) ([]domain.Name, bool)
}

// ManifestParser reads component manifests (YAML or TOML)
type ManifestParser interface {
	ParseFile(path string) (*domain.Manifest, error)
}

// InteractiveSelector asks the user for decisions
type InteractiveSelector interface {
	Confirm(message string) (bool, error)
	SelectName(prompt string, names []domain.Name) (domain.Name, error)
}

// Progress tracking interfaces

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Stage   string
	Current int
	Total   int
	Message string
	Spinner bool
}

// ProgressSink receives progress events
type ProgressSink interface {
	OnProgress(ctx context.Context, event ProgressEvent)
	Info(message string)
	Error(message string)
}

// NopProgress is a no-op implementation of ProgressSink
type NopProgress struct{}

func (NopProgress) OnProgress(context.Context, ProgressEvent) {}
func (NopProgress) Info(string)                               {}
func (NopProgress) Error(string)                              {}
