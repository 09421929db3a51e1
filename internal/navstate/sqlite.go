package navstate

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/HerbHall/adminlist/internal/dataprovider"
	"github.com/HerbHall/adminlist/internal/listparams"
	"github.com/HerbHall/adminlist/internal/store"
)

// Compile-time interface guard.
var _ Store = (*SQLite)(nil)

// SQLite stores navigation state in the nav_state table.
type SQLite struct {
	db *sql.DB
}

// NewSQLite creates a SQLite store and runs the nav_state migration.
func NewSQLite(ctx context.Context, s *store.SQLiteStore) (*SQLite, error) {
	if err := s.Migrate(ctx, "navstate", navMigrations); err != nil {
		return nil, fmt.Errorf("navstate migrations: %w", err)
	}
	return &SQLite{db: s.DB()}, nil
}

func (r *SQLite) Snapshot(ctx context.Context, resource string) (ListState, error) {
	var (
		idsJSON    string
		total      sql.NullInt64
		paramsJSON sql.NullString
		st         ListState
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT ids, total, params, updated_at FROM nav_state WHERE resource = ?`, resource,
	).Scan(&idsJSON, &total, &paramsJSON, &st.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ListState{}, ErrNotFound
		}
		return ListState{}, fmt.Errorf("get nav state %q: %w", resource, err)
	}

	if err := json.Unmarshal([]byte(idsJSON), &st.IDs); err != nil {
		return ListState{}, fmt.Errorf("decode nav state ids %q: %w", resource, err)
	}
	if total.Valid {
		st.Total = dataprovider.IntPtr(int(total.Int64))
	}
	if paramsJSON.Valid && paramsJSON.String != "" {
		var p listparams.Params
		if err := json.Unmarshal([]byte(paramsJSON.String), &p); err != nil {
			return ListState{}, fmt.Errorf("decode nav state params %q: %w", resource, err)
		}
		st.Params = &p
	}
	return st, nil
}

func (r *SQLite) SaveList(ctx context.Context, resource string, ids []dataprovider.Identifier, total *int) error {
	if ids == nil {
		ids = []dataprovider.Identifier{}
	}
	idsJSON, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encode nav state ids %q: %w", resource, err)
	}
	var t sql.NullInt64
	if total != nil {
		t = sql.NullInt64{Int64: int64(*total), Valid: true}
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO nav_state (resource, ids, total, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (resource) DO UPDATE SET
			ids = excluded.ids, total = excluded.total, updated_at = excluded.updated_at`,
		resource, string(idsJSON), t, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save nav state list %q: %w", resource, err)
	}
	return nil
}

func (r *SQLite) SaveParams(ctx context.Context, resource string, p listparams.Params) error {
	paramsJSON, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode nav state params %q: %w", resource, err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO nav_state (resource, params, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (resource) DO UPDATE SET
			params = excluded.params, updated_at = excluded.updated_at`,
		resource, string(paramsJSON), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save nav state params %q: %w", resource, err)
	}
	return nil
}

func (r *SQLite) LoadParams(ctx context.Context, resource string) (listparams.Params, bool, error) {
	return loadParams(ctx, r, resource)
}

var navMigrations = []store.Migration{
	{
		Version:     1,
		Description: "create nav_state table",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE TABLE nav_state (
					resource   TEXT PRIMARY KEY,
					ids        TEXT NOT NULL DEFAULT '[]',
					total      INTEGER,
					params     TEXT,
					updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
				)`)
			return err
		},
	},
}
