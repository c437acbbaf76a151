package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"meditrace/internal/domain/model"
	"meditrace/pkg/metrics"
)

// timeLayout is a fixed-width UTC encoding so lexicographic comparison in
// SQL matches chronological order on both backends.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func encodeTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func decodeTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// sqlStore implements Store on database/sql. The two SQL backends share all
// DML; only schema creation and parameter placeholders differ, the latter
// handled by rebind.
type sqlStore struct {
	db     *sql.DB
	rebind func(string) string
}

func (s *sqlStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *sqlStore) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	res, err := s.db.ExecContext(ctx, s.rebind(query), args...)
	metrics.RecordStoreWriteLatency(float64(time.Since(start).Milliseconds()))
	return res, err
}

func (s *sqlStore) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := s.db.QueryRowContext(ctx, s.rebind(query), args...)
	metrics.RecordStoreReadLatency(float64(time.Since(start).Milliseconds()))
	return row
}

func (s *sqlStore) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	metrics.RecordStoreReadLatency(float64(time.Since(start).Milliseconds()))
	return rows, err
}

func (s *sqlStore) CreateUnit(ctx context.Context, unit model.TrackedUnit) error {
	var exists int
	err := s.queryRow(ctx, `SELECT COUNT(1) FROM units WHERE unique_id = ?`, unit.UniqueID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking unit existence: %w", err)
	}
	if exists > 0 {
		return ErrAlreadyExists
	}

	_, err = s.exec(ctx,
		`INSERT INTO units (unique_id, batch_id, drug_name, generic_name, manufacturer, license_no, mrp, mfg_date, exp_date, issued_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		unit.UniqueID, unit.BatchID, unit.DrugName, unit.GenericName, unit.Manufacturer,
		unit.LicenseNo, unit.MRP, encodeTime(unit.MfgDate), encodeTime(unit.ExpDate), encodeTime(unit.IssuedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting unit: %w", err)
	}
	return nil
}

const unitColumns = `unique_id, batch_id, drug_name, generic_name, manufacturer, license_no, mrp, mfg_date, exp_date, issued_at`

func scanUnit(row interface{ Scan(...any) error }) (model.TrackedUnit, error) {
	var unit model.TrackedUnit
	var mfg, exp, issued string
	err := row.Scan(&unit.UniqueID, &unit.BatchID, &unit.DrugName, &unit.GenericName,
		&unit.Manufacturer, &unit.LicenseNo, &unit.MRP, &mfg, &exp, &issued)
	if err != nil {
		return model.TrackedUnit{}, err
	}
	unit.MfgDate = decodeTime(mfg)
	unit.ExpDate = decodeTime(exp)
	unit.IssuedAt = decodeTime(issued)
	return unit, nil
}

func (s *sqlStore) Unit(ctx context.Context, uniqueID string) (model.TrackedUnit, error) {
	row := s.queryRow(ctx, `SELECT `+unitColumns+` FROM units WHERE unique_id = ?`, uniqueID)
	unit, err := scanUnit(row)
	if err == sql.ErrNoRows {
		return model.TrackedUnit{}, ErrNotFound
	}
	if err != nil {
		return model.TrackedUnit{}, fmt.Errorf("fetching unit: %w", err)
	}
	return unit, nil
}

func (s *sqlStore) UnitsInBatch(ctx context.Context, batchID string) ([]model.TrackedUnit, error) {
	rows, err := s.query(ctx, `SELECT `+unitColumns+` FROM units WHERE batch_id = ? ORDER BY unique_id`, batchID)
	if err != nil {
		return nil, fmt.Errorf("listing batch units: %w", err)
	}
	defer rows.Close()

	var out []model.TrackedUnit
	for rows.Next() {
		unit, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, unit)
	}
	return out, rows.Err()
}

func (s *sqlStore) CountUnits(ctx context.Context) (int, error) {
	var n int
	err := s.queryRow(ctx, `SELECT COUNT(1) FROM units`).Scan(&n)
	return n, err
}

func (s *sqlStore) AppendCheckpoint(ctx context.Context, cp model.Checkpoint) error {
	_, err := s.exec(ctx,
		`INSERT INTO checkpoints (unit_id, location, latitude, longitude, event_type, ts)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		cp.UnitID, cp.Location, cp.Latitude, cp.Longitude, cp.EventType, encodeTime(cp.Timestamp),
	)
	if err != nil {
		return fmt.Errorf("appending checkpoint: %w", err)
	}
	return nil
}

func (s *sqlStore) Checkpoints(ctx context.Context, unitID string) ([]model.Checkpoint, error) {
	rows, err := s.query(ctx,
		`SELECT unit_id, location, latitude, longitude, event_type, ts
		 FROM checkpoints WHERE unit_id = ? ORDER BY id`, unitID)
	if err != nil {
		return nil, fmt.Errorf("listing checkpoints: %w", err)
	}
	defer rows.Close()

	var out []model.Checkpoint
	for rows.Next() {
		var cp model.Checkpoint
		var ts string
		if err := rows.Scan(&cp.UnitID, &cp.Location, &cp.Latitude, &cp.Longitude, &cp.EventType, &ts); err != nil {
			return nil, err
		}
		cp.Timestamp = decodeTime(ts)
		out = append(out, cp)
	}
	return out, rows.Err()
}

func (s *sqlStore) CountCheckpointsSince(ctx context.Context, unitID string, since time.Time) (int, error) {
	var n int
	err := s.queryRow(ctx,
		`SELECT COUNT(1) FROM checkpoints WHERE unit_id = ? AND ts >= ?`,
		unitID, encodeTime(since)).Scan(&n)
	return n, err
}

func (s *sqlStore) AppendFailedAttempt(ctx context.Context, attempt model.FailedAttempt) error {
	_, err := s.exec(ctx,
		`INSERT INTO failed_attempts (scanned_id, attempt_type, reason, ts)
		 VALUES (?, ?, ?, ?)`,
		attempt.ScannedID, string(attempt.AttemptType), attempt.Reason, encodeTime(attempt.Timestamp),
	)
	if err != nil {
		return fmt.Errorf("appending failed attempt: %w", err)
	}
	return nil
}

func (s *sqlStore) HasFailedAttempt(ctx context.Context, scannedID string) (bool, error) {
	var n int
	err := s.queryRow(ctx, `SELECT COUNT(1) FROM failed_attempts WHERE scanned_id = ?`, scannedID).Scan(&n)
	return n > 0, err
}

func (s *sqlStore) CountFailedAttempts(ctx context.Context) (int, error) {
	var n int
	err := s.queryRow(ctx, `SELECT COUNT(1) FROM failed_attempts`).Scan(&n)
	return n, err
}

func (s *sqlStore) CountFailedAttemptsSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := s.queryRow(ctx,
		`SELECT COUNT(1) FROM failed_attempts WHERE ts >= ?`, encodeTime(since)).Scan(&n)
	return n, err
}

// rebindIdentity leaves ? placeholders alone for backends that accept them.
func rebindIdentity(query string) string { return query }

// rebindDollar rewrites ? placeholders to $1..$n for postgres.
func rebindDollar(query string) string {
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
