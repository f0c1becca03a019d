package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/promptdeck/promptdeck/internal/errors"
)

// sqliteSchema is the versioned document collection. The CREATE statements
// are idempotent, which is the whole upgrade path: opening an existing
// database with a missing table creates it.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS schema_meta (
	version INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS documents (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at INTEGER NOT NULL
);
`

const sqliteSchemaVersion = 1

// SQLiteBackend stores documents as rows in a single versioned collection.
type SQLiteBackend struct {
	db    *sql.DB
	quota int64
}

// NewSQLiteBackend opens (or creates) the database at path, configures WAL
// mode and pragmas, and runs the schema migration.
func NewSQLiteBackend(path string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_meta").Scan(&count); err != nil {
		db.Close()
		return nil, fmt.Errorf("read schema version: %w", err)
	}
	if count == 0 {
		if _, err := db.Exec("INSERT INTO schema_meta (version) VALUES (?)", sqliteSchemaVersion); err != nil {
			db.Close()
			return nil, fmt.Errorf("write schema version: %w", err)
		}
	}

	return &SQLiteBackend{db: db, quota: DefaultQuota}, nil
}

// Name implements Backend.
func (b *SQLiteBackend) Name() string { return "sqlite" }

// Get implements Backend.
func (b *SQLiteBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := b.db.QueryRowContext(ctx, "SELECT value FROM documents WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.StorageIOf("read document %q", key).WithCause(err)
	}
	return value, true, nil
}

// Set implements Backend. Writes exceeding the quota are rejected with
// ErrQuotaExceeded before touching the row.
func (b *SQLiteBackend) Set(ctx context.Context, key string, value []byte) error {
	used, _, err := b.Usage(ctx)
	if err != nil {
		return err
	}
	var existing int64
	if err := b.db.QueryRowContext(ctx, "SELECT COALESCE(LENGTH(value), 0) FROM documents WHERE key = ?", key).Scan(&existing); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return errors.StorageIOf("measure document %q", key).WithCause(err)
	}
	if used-existing+int64(len(value)) > b.quota {
		return errors.QuotaExceeded("storage quota exceeded").WithCause(fmt.Errorf("writing %d bytes to %q over %d byte quota", len(value), key, b.quota))
	}

	_, err = b.db.ExecContext(ctx, `
		INSERT INTO documents (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UnixMilli())
	if err != nil {
		return errors.StorageIOf("write document %q", key).WithCause(err)
	}
	return nil
}

// Usage implements Backend.
func (b *SQLiteBackend) Usage(ctx context.Context) (int64, int64, error) {
	var used int64
	err := b.db.QueryRowContext(ctx, "SELECT COALESCE(SUM(LENGTH(value)), 0) FROM documents").Scan(&used)
	if err != nil {
		return 0, 0, errors.StorageIO("measure documents").WithCause(err)
	}
	return used, b.quota, nil
}

// Close implements Backend.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
