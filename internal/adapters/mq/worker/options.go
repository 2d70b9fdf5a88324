// Package worker defines worker contracts for asynchronous record
// anonymization and archiving.
package worker

import (
	"sync/atomic"

	"github.com/coachcore/privacyd/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithProcessedCounter wires the worker to a shared counter that is
// incremented for every successfully processed job.
func WithProcessedCounter(counter *atomic.Int64) Option {
	return func(w *InMemoryWorker) {
		if counter != nil {
			w.processed = counter
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(logger logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if logger != nil {
			w.logger = logger
		}
	}
}
