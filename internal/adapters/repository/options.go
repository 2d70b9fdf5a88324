// Package repository defines the anonymized-result archive interface
// and errors.
package repository

import "time"

// Option applies a configuration option to the TreapArchive.
type Option func(*TreapArchive)

// WithJanitorInterval sets the interval between expiry sweeps. An
// interval <= 0 disables the background janitor; callers may still
// purge explicitly.
func WithJanitorInterval(interval time.Duration) Option {
	return func(a *TreapArchive) {
		a.janitorInterval = interval
	}
}

// WithMetricsUpdateInterval sets the interval for background metrics updates.
func WithMetricsUpdateInterval(interval time.Duration) Option {
	return func(a *TreapArchive) {
		if interval > 0 {
			a.metricsUpdateInterval = interval
		}
	}
}

// WithClock replaces the wall clock used by the janitor.
func WithClock(now func() time.Time) Option {
	return func(a *TreapArchive) {
		if now != nil {
			a.now = now
		}
	}
}
