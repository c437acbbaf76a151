package detect

import (
	"context"
	"time"

	"meditrace/internal/domain/model"
)

// Frequency guard defaults. More than maxScansPerWindow scans of one
// identifier inside the window suggests a photocopied code being verified
// repeatedly.
const (
	DefaultFrequencyWindow  = time.Hour
	DefaultFrequencyMaxScan = 10
)

// ScanCounter counts persisted checkpoints for a unit since a point in time.
// The checkpoint log is append-only, so counts are monotonic within a window.
type ScanCounter interface {
	CountCheckpointsSince(ctx context.Context, unitID string, since time.Time) (int, error)
}

// FrequencyAlertName is the alert tag carried by a fired guard.
const FrequencyAlertName = "SUSPICIOUS_SCAN_FREQUENCY"

// FrequencyGuard flags units scanned implausibly often.
type FrequencyGuard struct {
	counter   ScanCounter
	window    time.Duration
	threshold int
}

// FrequencyOption configures a FrequencyGuard.
type FrequencyOption func(*FrequencyGuard)

// WithWindow overrides the trailing window length.
func WithWindow(w time.Duration) FrequencyOption {
	return func(g *FrequencyGuard) {
		if w > 0 {
			g.window = w
		}
	}
}

// WithThreshold overrides the scan-count threshold.
func WithThreshold(n int) FrequencyOption {
	return func(g *FrequencyGuard) {
		if n > 0 {
			g.threshold = n
		}
	}
}

// NewFrequencyGuard creates a guard over the given counter.
func NewFrequencyGuard(counter ScanCounter, opts ...FrequencyOption) *FrequencyGuard {
	g := &FrequencyGuard{
		counter:   counter,
		window:    DefaultFrequencyWindow,
		threshold: DefaultFrequencyMaxScan,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Check counts scans for the unit in the trailing window ending at now and
// returns an alert when the count exceeds the threshold, nil otherwise.
func (g *FrequencyGuard) Check(ctx context.Context, unitID string, now time.Time) (*model.FrequencyAlert, error) {
	count, err := g.counter.CountCheckpointsSince(ctx, unitID, now.Add(-g.window))
	if err != nil {
		return nil, err
	}
	if count <= g.threshold {
		return nil, nil
	}
	return &model.FrequencyAlert{
		Alert:          FrequencyAlertName,
		Severity:       model.SeverityHigh,
		ScanCount:      count,
		Window:         g.window,
		WindowHours:    g.window.Hours(),
		Recommendation: "possible replay of a photocopied code; verify the physical item and its packaging",
	}, nil
}
