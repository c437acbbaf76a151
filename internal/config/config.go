// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - Provide New(...) initializer to build a Config with defaults.
// - All future functions must accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory scan event queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of checkpoint workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the scan-id deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// StoreDriver selects the persistence backend: memory, sqlite, postgres.
	StoreDriver string `koanf:"store_driver"`

	// StoreDSN is the backend connection string; ignored by the memory driver.
	StoreDSN string `koanf:"store_dsn"`

	// ClassifierStrategy selects the risk classifier implementation.
	ClassifierStrategy string `koanf:"classifier_strategy"`

	// FrequencyWindowMinutes is the scan-frequency guard's trailing window.
	FrequencyWindowMinutes int `koanf:"frequency_window_minutes"`

	// FrequencyMaxScans is the scan count above which the guard fires.
	FrequencyMaxScans int `koanf:"frequency_max_scans"`
}

// New creates a Config with service defaults. Context is accepted first to
// satisfy the project-wide convention; it is reserved for future use.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:               "info",
		Addr:                   ":9080",
		QueueSize:              100_000,
		WorkerCount:            runtime.NumCPU() * 4,
		DedupeSize:             500_000,
		StoreDriver:            "memory",
		StoreDSN:               "",
		ClassifierStrategy:     "rules",
		FrequencyWindowMinutes: 60,
		FrequencyMaxScans:      10,
	}
}
