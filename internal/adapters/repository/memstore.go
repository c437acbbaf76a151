package repository

import (
	"context"
	"sync"
	"time"

	"meditrace/internal/domain/model"
	"meditrace/pkg/metrics"
)

// MemStore is the in-memory Store used by default and in tests. All methods
// are safe for concurrent use; reads see every previously completed write.
type MemStore struct {
	mu          sync.RWMutex
	units       map[string]model.TrackedUnit
	batches     map[string][]string
	checkpoints map[string][]model.Checkpoint
	attempts    map[string][]model.FailedAttempt
	attemptN    int
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		units:       make(map[string]model.TrackedUnit),
		batches:     make(map[string][]string),
		checkpoints: make(map[string][]model.Checkpoint),
		attempts:    make(map[string][]model.FailedAttempt),
	}
}

// Init is a no-op for the in-memory backend.
func (s *MemStore) Init(ctx context.Context) error { return nil }

// Close is a no-op for the in-memory backend.
func (s *MemStore) Close() error { return nil }

func (s *MemStore) CreateUnit(ctx context.Context, unit model.TrackedUnit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.units[unit.UniqueID]; exists {
		return ErrAlreadyExists
	}
	s.units[unit.UniqueID] = unit
	if unit.BatchID != "" {
		s.batches[unit.BatchID] = append(s.batches[unit.BatchID], unit.UniqueID)
	}
	metrics.UpdateUnitsTotal(len(s.units))
	return nil
}

func (s *MemStore) Unit(ctx context.Context, uniqueID string) (model.TrackedUnit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	unit, ok := s.units[uniqueID]
	if !ok {
		return model.TrackedUnit{}, ErrNotFound
	}
	return unit, nil
}

func (s *MemStore) UnitsInBatch(ctx context.Context, batchID string) ([]model.TrackedUnit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.batches[batchID]
	out := make([]model.TrackedUnit, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.units[id])
	}
	return out, nil
}

func (s *MemStore) CountUnits(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.units), nil
}

func (s *MemStore) AppendCheckpoint(ctx context.Context, cp model.Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkpoints[cp.UnitID] = append(s.checkpoints[cp.UnitID], cp)
	return nil
}

func (s *MemStore) Checkpoints(ctx context.Context, unitID string) ([]model.Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	src := s.checkpoints[unitID]
	out := make([]model.Checkpoint, len(src))
	copy(out, src)
	return out, nil
}

func (s *MemStore) CountCheckpointsSince(ctx context.Context, unitID string, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, cp := range s.checkpoints[unitID] {
		if !cp.Timestamp.Before(since) {
			count++
		}
	}
	return count, nil
}

func (s *MemStore) AppendFailedAttempt(ctx context.Context, attempt model.FailedAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[attempt.ScannedID] = append(s.attempts[attempt.ScannedID], attempt)
	s.attemptN++
	return nil
}

func (s *MemStore) HasFailedAttempt(ctx context.Context, scannedID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.attempts[scannedID]) > 0, nil
}

func (s *MemStore) CountFailedAttempts(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.attemptN, nil
}

func (s *MemStore) CountFailedAttemptsSince(ctx context.Context, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, attempts := range s.attempts {
		for _, a := range attempts {
			if !a.Timestamp.Before(since) {
				count++
			}
		}
	}
	return count, nil
}

// FailedAttempts returns every recorded attempt for one scanned id.
func (s *MemStore) FailedAttempts(ctx context.Context, scannedID string) ([]model.FailedAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.FailedAttempt, len(s.attempts[scannedID]))
	copy(out, s.attempts[scannedID])
	return out, nil
}
