package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

type sqliteStore struct {
	sqlStore
}

// NewSQLite opens a sqlite-backed store. An empty DSN uses a local file
// with a busy timeout suitable for the single-process deployment.
func NewSQLite(dsn string) (Store, error) {
	if strings.TrimSpace(dsn) == "" {
		dsn = "file:meditrace.db?_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite store: %w", err)
	}
	return &sqliteStore{sqlStore{db: db, rebind: rebindIdentity}}, nil
}

func (s *sqliteStore) Init(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS units (
			unique_id TEXT PRIMARY KEY,
			batch_id TEXT NOT NULL,
			drug_name TEXT NOT NULL,
			generic_name TEXT NOT NULL,
			manufacturer TEXT NOT NULL,
			license_no TEXT NOT NULL,
			mrp REAL NOT NULL,
			mfg_date TEXT NOT NULL,
			exp_date TEXT NOT NULL,
			issued_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_units_batch ON units(batch_id)`,
		`CREATE TABLE IF NOT EXISTS checkpoints (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			unit_id TEXT NOT NULL,
			location TEXT NOT NULL,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			event_type TEXT NOT NULL,
			ts TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_checkpoints_unit_ts ON checkpoints(unit_id, ts)`,
		`CREATE TABLE IF NOT EXISTS failed_attempts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			scanned_id TEXT NOT NULL,
			attempt_type TEXT NOT NULL,
			reason TEXT NOT NULL,
			ts TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_failed_attempts_scanned ON failed_attempts(scanned_id)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("initializing sqlite schema: %w", err)
		}
	}
	return nil
}
