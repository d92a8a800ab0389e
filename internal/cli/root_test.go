package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-registry/internal/config"
	"github.com/trebuchet-org/treb-registry/internal/domain"
	"github.com/trebuchet-org/treb-registry/internal/domain/models"
	"github.com/trebuchet-org/treb-registry/internal/usecase"
)

const manifestYAML = `
components:
  BMI:
    artifact: Token
    init:
      method: initialize
      arg: BMI
  REWARDS_GENERATOR:
    artifact: RewardsGenerator
    proxy: true
  BMI_COVER_STAKING:
    artifact: BMICoverStaking
    proxy: true
  BMI_STAKING:
    artifact: BMIStakingV1
    proxy: true
`

var bob = common.HexToAddress("0x90f79bf6eb2c4f870365e785982e1f101e93b906")

// run executes one treg invocation against dataDir in JSON mode
func run(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--data-dir", dataDir, "--non-interactive", "--json"))
	err := execute(root)
	return out.String(), err
}

func runJSON(t *testing.T, dataDir string, out any, args ...string) {
	t.Helper()
	stdout, err := run(t, dataDir, args...)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(stdout), out), stdout)
}

func setup(t *testing.T) string {
	t.Helper()
	dataDir := t.TempDir()
	manifest := filepath.Join(dataDir, "registry.yaml")
	require.NoError(t, os.WriteFile(manifest, []byte(manifestYAML), 0644))

	var res usecase.ApplyManifestResult
	runJSON(t, dataDir, &res, "apply", manifest)
	require.Len(t, res.Registered, 4)
	require.Equal(t, []domain.Name{domain.BMICoverStaking, domain.BMIStaking, domain.RewardsGenerator}, res.Injected)
	return dataDir
}

func TestVersion(t *testing.T) {
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	require.NoError(t, execute(root))
	assert.Equal(t, "treg version dev\n", out.String())
}

func TestApplyListResolve(t *testing.T) {
	dataDir := setup(t)

	assert.FileExists(t, filepath.Join(dataDir, config.StateFileName))
	assert.FileExists(t, filepath.Join(dataDir, config.AuditFileName))

	var list usecase.ComponentListResult
	runJSON(t, dataDir, &list, "list")
	assert.Equal(t, usecase.ComponentSummary{Total: 4, Direct: 1, Proxied: 3}, list.Summary)

	runJSON(t, dataDir, &list, "list", "--kind", "direct")
	require.Len(t, list.Components, 1)
	assert.Equal(t, domain.BMI, list.Components[0].Name)

	_, err := run(t, dataDir, "list", "--kind", "other")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	var resolved usecase.ResolveComponentResult
	runJSON(t, dataDir, &resolved, "resolve", "bmi")
	assert.Equal(t, list.Components[0].Address, resolved.Address)

	runJSON(t, dataDir, &resolved, "resolve", "BMI_STAKING", "--implementation")
	assert.NotEqual(t, common.Address{}, resolved.Address)

	_, err = run(t, dataDir, "resolve", "BMI_STAKIN")
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), "Did you mean")
	assert.Contains(t, err.Error(), string(domain.BMIStaking))

	var details usecase.ComponentDetails
	runJSON(t, dataDir, &details, "show", "REWARDS_GENERATOR")
	assert.Equal(t, "RewardsGenerator", details.Artifact)
	assert.Empty(t, details.Stale)

	_, err = run(t, dataDir, "show")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestUpgradeAndReinject(t *testing.T) {
	dataDir := setup(t)

	var res usecase.UpgradeComponentResult
	runJSON(t, dataDir, &res, "upgrade", "BMI_STAKING", "--artifact", "BMIStakingV2", "--init-method", "migrate")
	assert.True(t, res.Deployed)
	assert.NotEqual(t, res.Previous, res.Component.Implementation)

	_, err := run(t, dataDir, "upgrade", "BMI", "--artifact", "BMIStakingV2")
	assert.ErrorIs(t, err, domain.ErrWrongKind)

	var details usecase.ComponentDetails
	runJSON(t, dataDir, &details, "show", "BMI_STAKING")
	require.Len(t, details.Component.History, 1)
	assert.True(t, details.Component.History[0].Initialized)

	var injected usecase.InjectDependenciesResult
	runJSON(t, dataDir, &injected, "inject", "--all")
	assert.Len(t, injected.Injected, 3)

	_, err = run(t, dataDir, "inject", "BMI", "--all")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestRolesAndTransfer(t *testing.T) {
	dataDir := setup(t)

	var role usecase.ManageRolesResult
	runJSON(t, dataDir, &role, "roles", "check", bob.Hex())
	assert.False(t, role.HasRole)

	runJSON(t, dataDir, &role, "roles", "grant", bob.Hex())
	assert.True(t, role.HasRole)
	assert.Len(t, role.Holders, 2)

	runJSON(t, dataDir, &role, "roles", "list")
	assert.Contains(t, role.Holders, bob)

	// renouncing as bob needs no confirmation while another holder remains
	runJSON(t, dataDir, &role, "roles", "renounce", "--from", bob.Hex())
	assert.False(t, role.HasRole)
	assert.Len(t, role.Holders, 1)

	// last holder must confirm
	_, err := run(t, dataDir, "roles", "renounce")
	assert.ErrorIs(t, err, usecase.ErrAborted)

	_, err = run(t, dataDir, "proxy", "transfer-admin", "BMI_STAKING", bob.Hex())
	assert.ErrorIs(t, err, usecase.ErrAborted)

	var comp models.Component
	runJSON(t, dataDir, &comp, "proxy", "transfer-admin", "BMI_STAKING", bob.Hex(), "--yes")
	assert.Equal(t, bob, comp.ProxyAdmin)

	var list usecase.ComponentListResult
	runJSON(t, dataDir, &list, "list")
	assert.Equal(t, 1, list.Summary.Detached)
}

func TestEventsAndArtifacts(t *testing.T) {
	dataDir := setup(t)

	var events []domain.AuditEvent
	runJSON(t, dataDir, &events, "events", "--type", string(domain.EventTypeComponentAdded))
	assert.Len(t, events, 4)

	runJSON(t, dataDir, &events, "events", "--name", "bmi_staking", "--limit", "1")
	require.Len(t, events, 1)
	assert.Equal(t, domain.BMIStaking, events[0].Name)

	runJSON(t, dataDir, &events, "events", "--after", "100000")
	assert.Empty(t, events)

	var artifacts []artifactInfo
	runJSON(t, dataDir, &artifacts, "artifacts")
	require.NotEmpty(t, artifacts)
	for _, a := range artifacts {
		if a.Artifact == "RewardsGenerator" {
			assert.True(t, a.Injectable)
			assert.Equal(t, []domain.Name{domain.BMICoverStaking}, a.Dependencies)
		}
	}
}
