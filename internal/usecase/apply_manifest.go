package usecase

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-registry/internal/domain"
	"github.com/trebuchet-org/treb-registry/internal/domain/models"
	"github.com/trebuchet-org/treb-registry/internal/host"
)

// ApplyManifest brings the registry in line with a manifest in two phases:
// every component is deployed and registered first, then all of them are
// injected. State is persisted only when every step succeeds.
type ApplyManifest struct {
	session  *RegistrySession
	parser   ManifestParser
	catalog  ArtifactCatalog
	progress ProgressSink
}

// NewApplyManifest creates a new apply manifest use case
func NewApplyManifest(session *RegistrySession, parser ManifestParser, catalog ArtifactCatalog, progress ProgressSink) *ApplyManifest {
	return &ApplyManifest{
		session:  session,
		parser:   parser,
		catalog:  catalog,
		progress: progress,
	}
}

// ApplyManifestParams contains parameters for applying a manifest
type ApplyManifestParams struct {
	Path string
	// Manifest is used instead of Path when set
	Manifest *domain.Manifest
	// SkipInject stops after registration
	SkipInject bool
}

// ApplyManifestResult describes what was changed
type ApplyManifestResult struct {
	Deployed   map[domain.Name]common.Address `json:"deployed"`
	Registered []*models.Component            `json:"registered"`
	Injected   []domain.Name                  `json:"injected"`
}

// Run applies the manifest
func (uc *ApplyManifest) Run(ctx context.Context, params ApplyManifestParams) (*ApplyManifestResult, error) {
	manifest := params.Manifest
	if manifest == nil {
		var err error
		if manifest, err = uc.parser.ParseFile(params.Path); err != nil {
			return nil, fmt.Errorf("failed to parse manifest: %w", err)
		}
	}
	if err := manifest.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}

	// Fail on unknown artifacts before touching any state
	for _, name := range manifest.Names() {
		if spec := manifest.Components[string(name)]; spec.Artifact != "" {
			if _, err := uc.catalog.Load(spec.Artifact); err != nil {
				return nil, fmt.Errorf("component %s: %w", name, err)
			}
		}
	}

	reg, err := uc.session.Registry(ctx)
	if err != nil {
		return nil, err
	}
	h := reg.Host()
	from := uc.session.From()
	names := manifest.Names()
	result := &ApplyManifestResult{Deployed: make(map[domain.Name]common.Address)}

	for i, name := range names {
		spec := manifest.Components[string(name)]
		uc.progress.OnProgress(ctx, ProgressEvent{
			Stage:   "register",
			Current: i + 1,
			Total:   len(names),
			Message: fmt.Sprintf("Registering %s", name),
			Spinner: true,
		})

		addr := common.HexToAddress(spec.Address)
		if spec.Artifact != "" {
			code, _ := uc.catalog.Load(spec.Artifact)
			// Direct components are initialized in place; proxied ones through the proxy below
			var init *host.Message
			if !spec.Proxy {
				init = manifestMessage(spec.Init)
			}
			if addr, err = deployAndInit(ctx, h, uc.session.Deployer(), from, code, init); err != nil {
				return nil, fmt.Errorf("failed to deploy %s for %s: %w", spec.Artifact, name, err)
			}
			result.Deployed[name] = addr
		}

		if spec.Proxy {
			stable, err := reg.RegisterProxied(ctx, from, name, addr)
			if err != nil {
				return nil, fmt.Errorf("failed to register %s: %w", name, err)
			}
			if init := manifestMessage(spec.Init); init != nil {
				if err := callOnce(ctx, h, from, stable, init); err != nil {
					return nil, fmt.Errorf("failed to initialize %s: %w", name, err)
				}
			}
		} else if err := reg.RegisterDirect(ctx, from, name, addr); err != nil {
			return nil, fmt.Errorf("failed to register %s: %w", name, err)
		}

		comp, err := reg.Component(ctx, name)
		if err != nil {
			return nil, err
		}
		result.Registered = append(result.Registered, comp)
	}

	if !params.SkipInject {
		uc.progress.OnProgress(ctx, ProgressEvent{Stage: "inject", Message: "Injecting dependencies", Spinner: true})
		if result.Injected, err = reg.InjectAll(ctx, from); err != nil {
			return nil, fmt.Errorf("failed to inject dependencies: %w", err)
		}
	}

	if err := uc.session.Commit(ctx); err != nil {
		return nil, err
	}
	uc.progress.Info(fmt.Sprintf("Applied %d components", len(result.Registered)))
	return result, nil
}

func manifestMessage(call *domain.ManifestCall) *host.Message {
	if call == nil {
		return nil
	}
	return NewMessage(call.Method, call.Arg)
}

func callOnce(ctx context.Context, h *host.Host, from, to common.Address, msg *host.Message) error {
	return h.Execute(ctx, func(tx *host.Tx) error {
		_, err := tx.Call(from, to, msg.Method, msg.Input)
		return err
	})
}
