package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type postgresStore struct {
	sqlStore
}

// NewPostgres opens a postgres-backed store via the pgx stdlib driver.
func NewPostgres(dsn string) (Store, error) {
	if strings.TrimSpace(dsn) == "" {
		dsn = "postgres://localhost:5432/meditrace?sslmode=disable"
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres store: %w", err)
	}
	return &postgresStore{sqlStore{db: db, rebind: rebindDollar}}, nil
}

func (s *postgresStore) Init(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS units (
			unique_id TEXT PRIMARY KEY,
			batch_id TEXT NOT NULL,
			drug_name TEXT NOT NULL,
			generic_name TEXT NOT NULL,
			manufacturer TEXT NOT NULL,
			license_no TEXT NOT NULL,
			mrp DOUBLE PRECISION NOT NULL,
			mfg_date TEXT NOT NULL,
			exp_date TEXT NOT NULL,
			issued_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_units_batch ON units(batch_id)`,
		`CREATE TABLE IF NOT EXISTS checkpoints (
			id BIGSERIAL PRIMARY KEY,
			unit_id TEXT NOT NULL,
			location TEXT NOT NULL,
			latitude DOUBLE PRECISION NOT NULL,
			longitude DOUBLE PRECISION NOT NULL,
			event_type TEXT NOT NULL,
			ts TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_checkpoints_unit_ts ON checkpoints(unit_id, ts)`,
		`CREATE TABLE IF NOT EXISTS failed_attempts (
			id BIGSERIAL PRIMARY KEY,
			scanned_id TEXT NOT NULL,
			attempt_type TEXT NOT NULL,
			reason TEXT NOT NULL,
			ts TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_failed_attempts_scanned ON failed_attempts(scanned_id)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("initializing postgres schema: %w", err)
		}
	}
	return nil
}
