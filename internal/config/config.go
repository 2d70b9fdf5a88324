// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - Provide New(...Option) initializer to build a Config with defaults.
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

	// JobQueueSize bounds the in-memory job queue.
	JobQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of anonymization workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the job deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxRecordDepth bounds nesting during record traversal.
	MaxRecordDepth int `koanf:"max_record_depth"`

	// MaxExpiringLimit caps GET /expiring?limit.
	MaxExpiringLimit int `koanf:"max_expiring_limit"`

	// JanitorIntervalSeconds sets how often expired results are purged.
	// Zero or negative disables the janitor.
	JanitorIntervalSeconds int `koanf:"janitor_interval_seconds"`

	// DefaultLevel is applied when a request omits the anonymization level:
	// low, medium, high.
	DefaultLevel string `koanf:"default_level"`

	// RetentionOverrides maps record categories to retention seconds,
	// overriding the built-in policy table.
	RetentionOverrides map[string]int64 `koanf:"retention_overrides"`
}

// New creates a Config using provided options. Context is accepted first to
// satisfy the project-wide convention; it is reserved for future use (e.g.,
// loading from env/files) and is currently unused.
func New(_ context.Context) *Config {
	c := &Config{
		LogLevel:               "info",
		Addr:                   ":8080",
		JobQueueSize:           100_000,
		WorkerCount:            runtime.NumCPU() * 4,
		DedupeSize:             50_000,
		MaxRecordDepth:         64,
		MaxExpiringLimit:       100,
		JanitorIntervalSeconds: 60,
		DefaultLevel:           "high",
		RetentionOverrides:     map[string]int64{},
	}
	return c
}
