// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	scanqueue "meditrace/internal/adapters/mq/queue"
	workerpool "meditrace/internal/adapters/mq/worker"
	"meditrace/internal/adapters/repository"
	"meditrace/internal/domain/classify"
	"meditrace/internal/domain/dedupe"
	"meditrace/internal/domain/detect"
	"meditrace/internal/domain/features"
	"meditrace/internal/domain/model"
	"meditrace/pkg/logger"
	"meditrace/pkg/metrics"
)

// Service wires the queue, store, detectors, and classifier into the
// verification system exposed over HTTP.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      repository.Store
	deduper    dedupe.Deduper
	scanQueue  scanqueue.Queue
	workerPool *workerpool.Pool
	extractor  *features.Extractor
	classifier classify.Classifier
	freqGuard  *detect.FrequencyGuard

	// Configuration
	workerCount int
	queueSize   int
	dedupeSize  int
	storeDriver string
	storeDSN    string
	strategy    string
	freqWindow  time.Duration
	freqMax     int

	// now is swappable for tests.
	now func() time.Time

	// State
	started bool
	stopCh  chan struct{}

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the scan event queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithStore selects the persistence backend.
func WithStore(driver, dsn string) Option {
	return func(s *Service) {
		s.storeDriver = driver
		s.storeDSN = dsn
	}
}

// WithClassifierStrategy selects the risk classifier implementation.
func WithClassifierStrategy(strategy string) Option {
	return func(s *Service) {
		s.strategy = strategy
	}
}

// WithFrequencyGuard configures the scan-frequency guard.
func WithFrequencyGuard(window time.Duration, maxScans int) Option {
	return func(s *Service) {
		if window > 0 {
			s.freqWindow = window
		}
		if maxScans > 0 {
			s.freqMax = maxScans
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU() * 2,
		queueSize:   100000,
		dedupeSize:  50000,
		storeDriver: "memory",
		strategy:    "rules",
		freqWindow:  detect.DefaultFrequencyWindow,
		freqMax:     detect.DefaultFrequencyMaxScan,
		now:         time.Now,
		stopCh:      make(chan struct{}),
		logger:      nil, // Will be replaced when service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting verification service...")

	store, err := repository.NewStore(s.storeDriver, s.storeDSN)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	if err := store.Init(ctx); err != nil {
		return fmt.Errorf("initializing store: %w", err)
	}
	s.store = store
	s.logger.Info(ctx, "store ready", logger.String("driver", s.storeDriver))

	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.scanQueue = scanqueue.NewInMemoryQueue(
		scanqueue.WithCapacity(s.queueSize),
		scanqueue.WithBufferSize(s.queueSize),
	)
	s.extractor = features.NewExtractor(nil)
	s.classifier = classify.New(s.strategy)
	if s.strategy != "" && s.classifier.Name() != s.strategy {
		metrics.RecordClassifierError()
		s.logger.Warn(ctx, "unknown classifier strategy, using rules",
			logger.String("strategy", s.strategy))
	}
	s.freqGuard = detect.NewFrequencyGuard(s.store,
		detect.WithWindow(s.freqWindow),
		detect.WithThreshold(s.freqMax),
	)

	s.workerPool = workerpool.NewPool(s.workerCount, s.scanQueue, s.store)
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "verification service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.String("classifier", s.classifier.Name()),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping verification service...")

	if s.workerPool != nil {
		_ = s.workerPool.Shutdown(ctx)
	}

	if s.store != nil {
		_ = s.store.Close()
	}

	select {
	case <-s.stopCh:
		// Channel already closed
	default:
		close(s.stopCh)
	}

	s.started = false
	s.logger.Info(ctx, "verification service stopped")
}

// SeenAndRecord atomically checks if a scan id was seen and records it if
// not. Returns true if the scan was already seen.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordScanDuplicate()
	}
	return seen
}

// Unrecord removes a scan id from the seen list, allowing it to be retried.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Enqueue submits a scan event for asynchronous checkpoint recording.
// Idempotency is the caller's concern via SeenAndRecord. Returns false when
// the queue rejects the event.
func (s *Service) Enqueue(ctx context.Context, e model.ScanEvent) bool {
	if e.Timestamp.IsZero() {
		e.Timestamp = s.now()
	}
	e.ScanID = e.IdempotencyKey()

	if !s.scanQueue.Enqueue(ctx, e) {
		return false
	}
	metrics.UpdateQueueSize(s.scanQueue.Len(ctx))
	return true
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}

	if s.started {
		queueLen := s.scanQueue.Len(ctx)
		stats["queueLength"] = queueLen
		metrics.UpdateQueueSize(queueLen)

		if totalUnits, err := s.store.CountUnits(ctx); err == nil {
			stats["totalUnits"] = totalUnits
			metrics.UpdateUnitsTotal(totalUnits)
		}
		if failed, err := s.store.CountFailedAttempts(ctx); err == nil {
			stats["failedAttempts"] = failed
		}
		if recent, err := s.store.CountFailedAttemptsSince(ctx, s.now().Add(-24*time.Hour)); err == nil {
			stats["recentFailedAttempts"] = recent
		}
		stats["classifier"] = s.classifier.Name()
	}

	return stats
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}
