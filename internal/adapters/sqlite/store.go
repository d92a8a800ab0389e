package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-registry/internal/adapters/sqlite/migrations"
	"github.com/trebuchet-org/treb-registry/internal/config"
	"github.com/trebuchet-org/treb-registry/internal/domain"
	"github.com/trebuchet-org/treb-registry/internal/usecase"
	_ "modernc.org/sqlite"
)

// Store provides the SQLite-backed audit journal.
type Store struct {
	sqlDB *sql.DB
}

// NewAuditStore opens the audit journal at the configured data directory.
// The returned cleanup closes the database.
func NewAuditStore(cfg *config.RuntimeConfig) (*Store, func(), error) {
	store, err := Open(context.Background(), cfg.AuditPath())
	if err != nil {
		return nil, nil, err
	}
	return store, func() { _ = store.Close() }, nil
}

// Open opens an audit SQLite store and applies migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if err := applyMigrations(ctx, sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close releases the SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Append stores events in one transaction. Sequence numbers must be new.
func (s *Store) Append(ctx context.Context, events []domain.AuditEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO audit_events (
	seq,
	type,
	emitter,
	sender,
	name,
	address,
	implementation,
	proxied,
	role,
	account,
	previous_admin,
	new_admin,
	created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return fmt.Errorf("prepare append: %w", err)
	}
	defer stmt.Close()

	for _, ev := range events {
		if ev.Seq == 0 {
			return fmt.Errorf("event %s has no sequence number", ev.Type)
		}
		if _, err := stmt.ExecContext(ctx,
			ev.Seq,
			string(ev.Type),
			addressText(ev.Emitter),
			addressText(ev.Sender),
			string(ev.Name),
			addressText(ev.Address),
			addressText(ev.Implementation),
			ev.Proxied,
			string(ev.Role),
			addressText(ev.Account),
			addressText(ev.PreviousAdmin),
			addressText(ev.NewAdmin),
			ev.Time.UTC().UnixMilli(),
		); err != nil {
			return fmt.Errorf("append event %d: %w", ev.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append: %w", err)
	}
	return nil
}

// LastSeq returns the highest stored sequence number, 0 when empty.
func (s *Store) LastSeq(ctx context.Context) (uint64, error) {
	var seq sql.NullInt64
	if err := s.sqlDB.QueryRowContext(ctx, `SELECT MAX(seq) FROM audit_events`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("read last seq: %w", err)
	}
	return uint64(seq.Int64), nil
}

// List returns matching events oldest first.
func (s *Store) List(ctx context.Context, filter domain.EventFilter) ([]domain.AuditEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		where []string
		args  []any
	)
	where = append(where, "seq > ?")
	args = append(args, filter.After)
	if filter.Type != "" {
		where = append(where, "type = ?")
		args = append(args, string(filter.Type))
	}
	if filter.Name != "" {
		where = append(where, "name = ?")
		args = append(args, string(filter.Name))
	}
	if filter.Account != (common.Address{}) {
		where = append(where, "(sender = ? OR account = ?)")
		args = append(args, filter.Account.Hex(), filter.Account.Hex())
	}

	query := `
SELECT
	seq,
	type,
	emitter,
	sender,
	name,
	address,
	implementation,
	proxied,
	role,
	account,
	previous_admin,
	new_admin,
	created_at
FROM audit_events
WHERE ` + strings.Join(where, " AND ") + `
ORDER BY seq ASC`
	if filter.Limit > 0 {
		query += "\nLIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []domain.AuditEvent
	for rows.Next() {
		var (
			ev                                      domain.AuditEvent
			evType, name, role                      string
			emitter, sender, address, impl, account string
			previousAdmin, newAdmin                 string
			createdAt                               int64
		)
		if err := rows.Scan(
			&ev.Seq,
			&evType,
			&emitter,
			&sender,
			&name,
			&address,
			&impl,
			&ev.Proxied,
			&role,
			&account,
			&previousAdmin,
			&newAdmin,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Type = domain.EventType(evType)
		ev.Name = domain.Name(name)
		ev.Role = domain.Role(role)
		ev.Emitter = common.HexToAddress(emitter)
		ev.Sender = common.HexToAddress(sender)
		ev.Address = common.HexToAddress(address)
		ev.Implementation = common.HexToAddress(impl)
		ev.Account = common.HexToAddress(account)
		ev.PreviousAdmin = common.HexToAddress(previousAdmin)
		ev.NewAdmin = common.HexToAddress(newAdmin)
		ev.Time = time.UnixMilli(createdAt).UTC()
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// addressText stores the zero address as an empty string
func addressText(addr common.Address) string {
	if addr == (common.Address{}) {
		return ""
	}
	return addr.Hex()
}

// Ensure Store implements AuditLog
var _ usecase.AuditLog = (*Store)(nil)
