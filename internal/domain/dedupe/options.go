// Package dedupe tracks submitted job IDs so that retried batch
// submissions are anonymized at most once.
package dedupe

// Option applies a configuration option to the in-memory deduper.
type Option func(*inMemoryDeduper)

// WithMaxSize sets the maximum number of job IDs kept in memory.
// maxSize > 0 enables bounded mode with LIFO eviction; maxSize <= 0
// disables eviction.
func WithMaxSize(maxSize int) Option {
	return func(d *inMemoryDeduper) {
		d.maxSize = maxSize
	}
}
