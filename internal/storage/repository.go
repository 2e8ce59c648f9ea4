package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// DSN builds the connection string used for every pool connection: foreign
// keys on (the cascade-delete invariant depends on it), writers queue on the
// database lock instead of failing with SQLITE_BUSY, and transactions take
// the write lock up front.
func DSN(dbPath string) string {
	params := []string{
		"_pragma=foreign_keys(1)",
		"_pragma=busy_timeout(5000)",
		"_pragma=journal_mode(WAL)",
		"_txlock=immediate",
	}
	return "file:" + dbPath + "?" + strings.Join(params, "&")
}

// SQLiteRepository is the persistence gateway: a pooled handle for single
// statements plus scoped transactional handles for multi-statement work.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", DSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("SQLite repository ready", "path", dbPath, "schema_version", version)

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

// Queries returns the pool-backed query set for reads and single-statement
// writes.
func (r *SQLiteRepository) Queries() *Queries {
	return r.queries
}

// DB exposes the underlying pool for health checks and tests.
func (r *SQLiteRepository) DB() *sql.DB {
	return r.db
}

// InTx runs fn inside one database transaction on a dedicated connection. The
// transaction commits only when fn returns nil; on any error or panic it is
// rolled back, and the connection goes back to the pool on every path.
func (r *SQLiteRepository) InTx(ctx context.Context, fn func(tx *Tx) error) error {
	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = sqlTx.Rollback()
	}()

	if err := fn(&Tx{Queries: r.queries.WithTx(sqlTx)}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Ping verifies the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}
