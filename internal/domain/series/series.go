// Package series orders checkpoint histories for transition analysis.
package series

import (
	"sort"

	"meditrace/internal/domain/model"
)

// Series is a checkpoint history in ascending timestamp order. Build one
// with New; detectors and feature scorers rely on the ordering invariant.
type Series struct {
	points []model.Checkpoint
}

// Transition is one adjacent pair in a series, From preceding To.
type Transition struct {
	From model.Checkpoint
	To   model.Checkpoint
}

// New copies the checkpoints and sorts them by timestamp. Ties keep their
// input order so repeated scans at the same instant stay stable.
func New(points []model.Checkpoint) Series {
	cp := make([]model.Checkpoint, len(points))
	copy(cp, points)
	sort.SliceStable(cp, func(i, j int) bool {
		return cp[i].Timestamp.Before(cp[j].Timestamp)
	})
	return Series{points: cp}
}

// Len returns the number of checkpoints.
func (s Series) Len() int { return len(s.points) }

// Points returns the ordered checkpoints. Callers must not mutate.
func (s Series) Points() []model.Checkpoint { return s.points }

// First returns the earliest checkpoint; ok is false for an empty series.
func (s Series) First() (model.Checkpoint, bool) {
	if len(s.points) == 0 {
		return model.Checkpoint{}, false
	}
	return s.points[0], true
}

// Last returns the latest checkpoint; ok is false for an empty series.
func (s Series) Last() (model.Checkpoint, bool) {
	if len(s.points) == 0 {
		return model.Checkpoint{}, false
	}
	return s.points[len(s.points)-1], true
}

// Transitions returns every adjacent pair in order. A series with fewer
// than two checkpoints has none.
func (s Series) Transitions() []Transition {
	if len(s.points) < 2 {
		return nil
	}
	out := make([]Transition, 0, len(s.points)-1)
	for i := 1; i < len(s.points); i++ {
		out = append(out, Transition{From: s.points[i-1], To: s.points[i]})
	}
	return out
}

// SpanHours returns the elapsed hours between the first and last checkpoint.
func (s Series) SpanHours() float64 {
	if len(s.points) < 2 {
		return 0
	}
	return s.points[len(s.points)-1].Timestamp.Sub(s.points[0].Timestamp).Hours()
}
