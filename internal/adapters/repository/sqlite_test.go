package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"meditrace/internal/domain/model"
)

func newTestSQLite(t *testing.T) Store {
	t.Helper()
	s, err := NewSQLite("file:" + t.Name() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, s.Init(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteUnitRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	unit := unitFixture("MED-1", "B1")
	unit.MfgDate = time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	unit.ExpDate = time.Date(2027, 1, 10, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.CreateUnit(ctx, unit))

	got, err := s.Unit(ctx, "MED-1")
	require.NoError(t, err)
	require.Equal(t, unit.DrugName, got.DrugName)
	require.Equal(t, unit.LicenseNo, got.LicenseNo)
	require.True(t, got.MfgDate.Equal(unit.MfgDate))
	require.True(t, got.ExpDate.Equal(unit.ExpDate))

	require.ErrorIs(t, s.CreateUnit(ctx, unit), ErrAlreadyExists)

	_, err = s.Unit(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteBatchListing(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	require.NoError(t, s.CreateUnit(ctx, unitFixture("MED-1", "B1")))
	require.NoError(t, s.CreateUnit(ctx, unitFixture("MED-2", "B1")))
	require.NoError(t, s.CreateUnit(ctx, unitFixture("MED-3", "B2")))

	units, err := s.UnitsInBatch(ctx, "B1")
	require.NoError(t, err)
	require.Len(t, units, 2)

	n, err := s.CountUnits(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, n)
}

func TestSQLiteCheckpointWindow(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 12; i++ {
		require.NoError(t, s.AppendCheckpoint(ctx, model.Checkpoint{
			UnitID:    "MED-1",
			Location:  "Mumbai Retail",
			Latitude:  19.0760,
			Longitude: 72.8777,
			EventType: model.EventConsumerScan,
			Timestamp: base.Add(time.Duration(i) * 5 * time.Minute),
		}))
	}

	cps, err := s.Checkpoints(ctx, "MED-1")
	require.NoError(t, err)
	require.Len(t, cps, 12)
	require.True(t, cps[0].Timestamp.Equal(base))

	n, err := s.CountCheckpointsSince(ctx, "MED-1", base.Add(30*time.Minute))
	require.NoError(t, err)
	require.Equal(t, 6, n)
}

func TestSQLiteFailedAttempts(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	now := time.Now()
	require.NoError(t, s.AppendFailedAttempt(ctx, model.FailedAttempt{
		ScannedID:   "MED-9",
		AttemptType: model.AttemptInvalidID,
		Reason:      "no such unit",
		Timestamp:   now,
	}))
	require.NoError(t, s.AppendFailedAttempt(ctx, model.FailedAttempt{
		ScannedID:   "MED-9",
		AttemptType: model.AttemptSuspiciousFrequency,
		Reason:      "scan rate exceeded the allowed window",
		Timestamp:   now.Add(-48 * time.Hour),
	}))

	has, err := s.HasFailedAttempt(ctx, "MED-9")
	require.NoError(t, err)
	require.True(t, has)

	n, err := s.CountFailedAttempts(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	n, err = s.CountFailedAttemptsSince(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	require.Equal(t, 1, n)
}
