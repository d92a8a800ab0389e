package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-registry/internal/config"
	"github.com/trebuchet-org/treb-registry/internal/domain"
	"github.com/trebuchet-org/treb-registry/internal/domain/models"
	"github.com/trebuchet-org/treb-registry/internal/host"
	"github.com/trebuchet-org/treb-registry/internal/registry"
	"github.com/trebuchet-org/treb-registry/internal/usecase"
)

func newTestStateStore(t *testing.T) *StateStoreAdapter {
	t.Helper()
	return NewStateStoreAdapter(&config.RuntimeConfig{DataDir: t.TempDir()})
}

func TestStateStore_LoadEmpty(t *testing.T) {
	store := newTestStateStore(t)

	state, err := store.Load(context.Background())
	assert.Nil(t, state)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStateStore_SaveAndLoad(t *testing.T) {
	store := newTestStateStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	regAddr := common.HexToAddress("0x5fbdb2315678afecb367f032d93f642f64180aa3")
	proxyAddr := common.HexToAddress("0xe7f1725e7734ce288f8367e1bb143e90bb3f0512")
	slot := host.Slot("rewards", "totalStake")

	state := &usecase.RegistryState{
		Version: 1,
		Registry: &registry.Snapshot{
			Address: regAddr,
			Components: []*models.Component{{
				Name:           domain.RewardsGenerator,
				Address:        proxyAddr,
				Kind:           models.ProxiedComponent,
				Implementation: common.HexToAddress("0x01"),
				ProxyAdmin:     regAddr,
				RegisteredAt:   now,
				UpdatedAt:      now,
			}},
			Roles: map[domain.Role][]common.Address{
				domain.RegistryAdminRole: {common.HexToAddress("0xa1")},
			},
		},
		Host: &host.State{
			Accounts: []host.AccountState{{
				Address:  proxyAddr,
				Artifact: "TransparentUpgradeableProxy",
				Storage:  map[common.Hash]common.Hash{slot: common.BigToHash(common.Big1)},
			}},
			Events: []domain.AuditEvent{{Seq: 1, Type: domain.EventTypeRoleGranted, Role: domain.RegistryAdminRole, Time: now}},
			Seq:    1,
		},
		SavedAt: now,
	}

	require.NoError(t, store.Save(ctx, state))
	assert.FileExists(t, store.Path())

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, state, loaded)

	// No temp files are left behind
	entries, err := os.ReadDir(filepath.Dir(store.Path()))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestStateStore_Corrupt(t *testing.T) {
	store := newTestStateStore(t)
	require.NoError(t, store.Save(context.Background(), &usecase.RegistryState{Version: 1}))
	require.NoError(t, os.WriteFile(store.Path(), []byte("{not json"), 0644))

	_, err := store.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse registry state file")
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}
