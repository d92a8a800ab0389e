package usecase

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-registry/internal/host"
)

// DeployArtifact deploys logic from the artifact catalog
type DeployArtifact struct {
	session  *RegistrySession
	catalog  ArtifactCatalog
	progress ProgressSink
}

// NewDeployArtifact creates a new deploy artifact use case
func NewDeployArtifact(session *RegistrySession, catalog ArtifactCatalog, progress ProgressSink) *DeployArtifact {
	return &DeployArtifact{
		session:  session,
		catalog:  catalog,
		progress: progress,
	}
}

// DeployArtifactParams contains parameters for deploying an artifact
type DeployArtifactParams struct {
	Artifact string
	// Init is sent to the new account right after deployment (optional)
	Init *host.Message
}

// DeployArtifactResult contains the deployed address
type DeployArtifactResult struct {
	Artifact string         `json:"artifact"`
	Address  common.Address `json:"address"`
	Deployer common.Address `json:"deployer"`
}

// Run deploys the artifact and persists the new state
func (d *DeployArtifact) Run(ctx context.Context, params DeployArtifactParams) (*DeployArtifactResult, error) {
	code, err := d.catalog.Load(params.Artifact)
	if err != nil {
		return nil, err
	}
	reg, err := d.session.Registry(ctx)
	if err != nil {
		return nil, err
	}

	d.progress.OnProgress(ctx, ProgressEvent{Stage: "deploy", Message: fmt.Sprintf("Deploying %s", params.Artifact), Spinner: true})

	addr, err := deployAndInit(ctx, reg.Host(), d.session.Deployer(), d.session.From(), code, params.Init)
	if err != nil {
		return nil, fmt.Errorf("failed to deploy %s: %w", params.Artifact, err)
	}
	if err := d.session.Commit(ctx); err != nil {
		return nil, err
	}

	d.progress.Info(fmt.Sprintf("Deployed %s at %s", params.Artifact, addr.Hex()))
	return &DeployArtifactResult{
		Artifact: params.Artifact,
		Address:  addr,
		Deployer: d.session.Deployer(),
	}, nil
}

func deployAndInit(ctx context.Context, h *host.Host, deployer, from common.Address, code host.Contract, init *host.Message) (common.Address, error) {
	var addr common.Address
	err := h.Execute(ctx, func(tx *host.Tx) error {
		var err error
		if addr, err = tx.Deploy(deployer, code); err != nil {
			return err
		}
		if init != nil {
			if _, err := tx.Call(from, addr, init.Method, init.Input); err != nil {
				return fmt.Errorf("init call %s failed: %w", init.Method, err)
			}
		}
		return nil
	})
	return addr, err
}

// ParseCallArg converts a command line argument into a call input: an
// address, a non-negative integer, or the string itself. Empty means no input.
func ParseCallArg(arg string) any {
	arg = strings.TrimSpace(arg)
	switch {
	case arg == "":
		return nil
	case common.IsHexAddress(arg):
		return common.HexToAddress(arg)
	}
	if n, ok := new(big.Int).SetString(arg, 10); ok && n.Sign() >= 0 {
		return n
	}
	return arg
}

// NewMessage builds a call message from a method and a raw argument
func NewMessage(method, arg string) *host.Message {
	if method == "" {
		return nil
	}
	return &host.Message{Method: method, Input: ParseCallArg(arg)}
}
