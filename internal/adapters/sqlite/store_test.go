package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-registry/internal/domain"
)

var (
	registryAddr = common.HexToAddress("0x5fbdb2315678afecb367f032d93f642f64180aa3")
	admin        = common.HexToAddress("0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266")
	bob          = common.HexToAddress("0x70997970c51812dc3a010c7d01b50e0d17dc79c8")
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testEvents(now time.Time) []domain.AuditEvent {
	return []domain.AuditEvent{
		{Seq: 1, Type: domain.EventTypeRoleGranted, Emitter: registryAddr, Sender: registryAddr, Role: domain.RegistryAdminRole, Account: admin, Time: now},
		{Seq: 2, Type: domain.EventTypeComponentAdded, Emitter: registryAddr, Sender: admin, Name: domain.BMI, Address: common.HexToAddress("0x01"), Time: now},
		{Seq: 3, Type: domain.EventTypeUpgraded, Emitter: common.HexToAddress("0x02"), Sender: registryAddr, Implementation: common.HexToAddress("0x03"), Time: now},
		{Seq: 4, Type: domain.EventTypeAdminChanged, Emitter: common.HexToAddress("0x02"), Sender: registryAddr, NewAdmin: registryAddr, Time: now},
		{Seq: 5, Type: domain.EventTypeComponentAdded, Emitter: registryAddr, Sender: admin, Name: domain.BMIStaking, Address: common.HexToAddress("0x02"), Implementation: common.HexToAddress("0x03"), Proxied: true, Time: now},
		{Seq: 6, Type: domain.EventTypeRoleGranted, Emitter: registryAddr, Sender: admin, Role: domain.RegistryAdminRole, Account: bob, Time: now},
	}
}

func TestAppendAndList(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	now := time.Date(2026, 2, 21, 23, 30, 0, 0, time.UTC)

	last, err := store.LastSeq(ctx)
	require.NoError(t, err)
	assert.Zero(t, last)

	events := testEvents(now)
	require.NoError(t, store.Append(ctx, events))

	last, err = store.LastSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(6), last)

	all, err := store.List(ctx, domain.EventFilter{})
	require.NoError(t, err)
	assert.Equal(t, events, all)

	tests := []struct {
		name   string
		filter domain.EventFilter
		want   []uint64
	}{
		{"by type", domain.EventFilter{Type: domain.EventTypeComponentAdded}, []uint64{2, 5}},
		{"by name", domain.EventFilter{Name: domain.BMIStaking}, []uint64{5}},
		{"by sender or account", domain.EventFilter{Account: bob}, []uint64{6}},
		{"by sender", domain.EventFilter{Account: admin}, []uint64{1, 2, 5, 6}},
		{"after", domain.EventFilter{After: 4}, []uint64{5, 6}},
		{"limit", domain.EventFilter{Limit: 2}, []uint64{1, 2}},
		{"combined", domain.EventFilter{Type: domain.EventTypeRoleGranted, After: 1}, []uint64{6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.List(ctx, tt.filter)
			require.NoError(t, err)
			seqs := make([]uint64, 0, len(got))
			for _, ev := range got {
				seqs = append(seqs, ev.Seq)
				assert.True(t, tt.filter.Matches(&ev))
			}
			assert.Equal(t, tt.want, seqs)
		})
	}
}

func TestAppendRejectsDuplicates(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	events := testEvents(time.Unix(0, 0).UTC())

	require.NoError(t, store.Append(ctx, events[:3]))
	// The batch overlaps seq 3 and is rolled back as a whole
	assert.Error(t, store.Append(ctx, events[2:]))

	last, err := store.LastSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), last)

	assert.Error(t, store.Append(ctx, []domain.AuditEvent{{Type: domain.EventTypeUpgraded}}))
	assert.NoError(t, store.Append(ctx, nil))
}

func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "audit.db")
	ctx := context.Background()

	store, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, store.Append(ctx, testEvents(time.Unix(0, 0).UTC())[:2]))
	require.NoError(t, store.Close())

	// Migrations are applied once; data survives
	store, err = Open(ctx, path)
	require.NoError(t, err)
	defer store.Close()

	last, err := store.LastSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), last)

	_, err = Open(ctx, "  ")
	assert.Error(t, err)
}

func TestExtractUpMigration(t *testing.T) {
	assert.Equal(t, "\nCREATE TABLE a;\n", extractUpMigration("-- +migrate Up\nCREATE TABLE a;\n-- +migrate Down\nDROP TABLE a;"))
	assert.Equal(t, "\nCREATE TABLE a;", extractUpMigration("-- +migrate Up\nCREATE TABLE a;"))
	assert.Equal(t, "CREATE TABLE a;", extractUpMigration("CREATE TABLE a;"))
}
