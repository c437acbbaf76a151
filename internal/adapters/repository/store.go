// Package repository provides persistence for tracked units, checkpoint
// logs, and failed verification attempts.
package repository

import (
	"context"
	"strings"
	"time"

	"meditrace/internal/domain/model"
)

// Store provides read/append access to the supply-chain state. Checkpoint
// and failed-attempt writes are append-only; unit rows are immutable once
// created.
type Store interface {
	// Init creates schema objects where the backend needs them.
	Init(ctx context.Context) error
	Close() error

	// CreateUnit inserts a new tracked unit.
	// Returns ErrAlreadyExists when the unique id is taken.
	CreateUnit(ctx context.Context, unit model.TrackedUnit) error

	// Unit fetches a tracked unit by its unique id.
	// Returns ErrNotFound for unknown ids.
	Unit(ctx context.Context, uniqueID string) (model.TrackedUnit, error)

	// UnitsInBatch lists every unit sharing a batch id.
	UnitsInBatch(ctx context.Context, batchID string) ([]model.TrackedUnit, error)

	// CountUnits returns the number of tracked units.
	CountUnits(ctx context.Context) (int, error)

	// AppendCheckpoint adds one scan to a unit's history.
	AppendCheckpoint(ctx context.Context, cp model.Checkpoint) error

	// Checkpoints returns a unit's full history in insertion order.
	Checkpoints(ctx context.Context, unitID string) ([]model.Checkpoint, error)

	// CountCheckpointsSince counts a unit's scans at or after since.
	CountCheckpointsSince(ctx context.Context, unitID string, since time.Time) (int, error)

	// AppendFailedAttempt records one failed verification.
	AppendFailedAttempt(ctx context.Context, attempt model.FailedAttempt) error

	// HasFailedAttempt reports whether any failed attempt exists for an id.
	HasFailedAttempt(ctx context.Context, scannedID string) (bool, error)

	// CountFailedAttempts returns the total number of failed attempts.
	CountFailedAttempts(ctx context.Context) (int, error)

	// CountFailedAttemptsSince counts failed attempts at or after since.
	CountFailedAttemptsSince(ctx context.Context, since time.Time) (int, error)
}

// NewStore opens a store for the configured driver.
func NewStore(driver, dsn string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "memory":
		return NewMemStore(), nil
	case "sqlite":
		return NewSQLite(dsn)
	case "postgres", "postgresql":
		return NewPostgres(dsn)
	default:
		return nil, ErrUnknownDriver
	}
}
