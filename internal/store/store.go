// Package store opens the SQLite database shared by the record provider and
// the navigation-state store, and applies per-component schema migrations.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"sync"

	_ "modernc.org/sqlite" // SQLite driver
)

// Migration is one schema step of a component. Versions are applied in
// ascending order and recorded in the shared _migrations table.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

// SQLiteStore wraps a SQLite database opened via modernc.org/sqlite.
type SQLiteStore struct {
	db   *sql.DB
	path string

	mu          sync.Mutex // serializes migrations
	tableExists bool
}

// New opens (or creates) the SQLite database at path. Use ":memory:" for a
// throwaway database.
func New(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}

	// One connection: SQLite has a single writer, and an in-memory database
	// exists only on the connection that created it.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite %q: %w", path, err)
	}

	// modernc.org/sqlite requires SQL statements, not DSN params.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA cache_size=-20000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec %q: %w", p, err)
		}
	}

	return &SQLiteStore{db: db, path: path}, nil
}

// DB returns the underlying *sql.DB for direct queries.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// Path returns the path the store was opened with.
func (s *SQLiteStore) Path() string { return s.path }

// Tx executes fn within a database transaction. The transaction is
// committed if fn returns nil, rolled back otherwise.
func (s *SQLiteStore) Tx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original: %w)", rbErr, err)
		}
		return err
	}

	return tx.Commit()
}

// Migrate applies the pending migrations of component in version order.
// Migrations already recorded are skipped; duplicate versions are rejected
// before anything runs.
func (s *SQLiteStore) Migrate(ctx context.Context, component string, migrations []Migration) error {
	ordered := slices.Clone(migrations)
	slices.SortStableFunc(ordered, func(a, b Migration) int { return a.Version - b.Version })
	for i := 1; i < len(ordered); i++ {
		if ordered[i].Version == ordered[i-1].Version {
			return fmt.Errorf("migration %s/%d: duplicate version", component, ordered[i].Version)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureMigrationsTable(ctx); err != nil {
		return err
	}

	current, err := s.version(ctx, component)
	if err != nil {
		return err
	}
	for _, m := range ordered {
		if m.Version <= current {
			continue
		}
		if err := s.applyMigration(ctx, component, m); err != nil {
			return fmt.Errorf("migration %s/%d (%s): %w", component, m.Version, m.Description, err)
		}
	}
	return nil
}

// Version returns the highest applied migration version of component, or 0.
func (s *SQLiteStore) Version(ctx context.Context, component string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureMigrationsTable(ctx); err != nil {
		return 0, err
	}
	return s.version(ctx, component)
}

// SnapshotTo writes a consistent copy of the database to path, which must not
// exist yet. The store stays usable while the copy is taken.
func (s *SQLiteStore) SnapshotTo(ctx context.Context, path string) error {
	if _, err := s.db.ExecContext(ctx, "VACUUM INTO ?", path); err != nil {
		return fmt.Errorf("snapshot sqlite to %q: %w", path, err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ensureMigrationsTable(ctx context.Context) error {
	if s.tableExists {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS _migrations (
			component   TEXT     NOT NULL,
			version     INTEGER  NOT NULL,
			description TEXT     NOT NULL,
			applied_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (component, version)
		)
	`)
	if err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}
	s.tableExists = true
	return nil
}

func (s *SQLiteStore) version(ctx context.Context, component string) (int, error) {
	var v int
	err := s.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(version), 0) FROM _migrations WHERE component = ?",
		component,
	).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("read migration version of %s: %w", component, err)
	}
	return v, nil
}

func (s *SQLiteStore) applyMigration(ctx context.Context, component string, m Migration) error {
	return s.Tx(ctx, func(tx *sql.Tx) error {
		if err := m.Up(tx); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx,
			"INSERT INTO _migrations (component, version, description) VALUES (?, ?, ?)",
			component, m.Version, m.Description,
		)
		return err
	})
}
