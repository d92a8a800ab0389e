package usecase

import (
	"context"
	"fmt"

	"github.com/trebuchet-org/treb-registry/internal/domain"
)

// InjectDependencies triggers dependency injection for one name or all of them
type InjectDependencies struct {
	session  *RegistrySession
	progress ProgressSink
}

// NewInjectDependencies creates a new inject dependencies use case
func NewInjectDependencies(session *RegistrySession, progress ProgressSink) *InjectDependencies {
	return &InjectDependencies{
		session:  session,
		progress: progress,
	}
}

// InjectDependenciesParams contains parameters for injection
type InjectDependenciesParams struct {
	Name domain.Name // ignored when All is set
	All  bool
}

// InjectDependenciesResult lists the names that were injected
type InjectDependenciesResult struct {
	Injected []domain.Name `json:"injected"`
}

// Run injects and persists the new state
func (uc *InjectDependencies) Run(ctx context.Context, params InjectDependenciesParams) (*InjectDependenciesResult, error) {
	if !params.All && params.Name == "" {
		return nil, fmt.Errorf("a name or --all is required: %w", domain.ErrInvalidArgument)
	}
	reg, err := uc.session.Registry(ctx)
	if err != nil {
		return nil, err
	}

	var injected []domain.Name
	if params.All {
		uc.progress.OnProgress(ctx, ProgressEvent{Stage: "inject", Message: "Injecting all components", Spinner: true})
		if injected, err = reg.InjectAll(ctx, uc.session.From()); err != nil {
			return nil, fmt.Errorf("failed to inject dependencies: %w", err)
		}
	} else {
		uc.progress.OnProgress(ctx, ProgressEvent{Stage: "inject", Message: fmt.Sprintf("Injecting %s", params.Name), Spinner: true})
		if err := reg.Inject(ctx, uc.session.From(), params.Name); err != nil {
			return nil, fmt.Errorf("failed to inject %s: %w", params.Name, err)
		}
		injected = []domain.Name{params.Name}
	}

	if err := uc.session.Commit(ctx); err != nil {
		return nil, err
	}
	return &InjectDependenciesResult{Injected: injected}, nil
}
