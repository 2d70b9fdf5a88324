// Package worker defines worker contracts for asynchronous record
// anonymization and archiving.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/coachcore/privacyd/internal/domain/model"
	"github.com/coachcore/privacyd/pkg/logger"
	"github.com/coachcore/privacyd/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 4 // multiplier for runtime.NumCPU()
	metricsUpdateInterval   = 5 * time.Second
	workerShutdownTimeout   = 5 * time.Second
	poolShutdownTimeout     = 30 * time.Second
)

// Job is what workers read off the queue.
type Job = model.Job

// Anonymizer transforms a raw record into its privacy-compliant derivative.
type Anonymizer interface {
	Anonymize(ctx context.Context, record model.Record, category model.Category, level model.Level) (model.AnonymizedResult, error)
}

// Archiver persists anonymized results until their expiry.
type Archiver interface {
	Put(ctx context.Context, res model.AnonymizedResult) error
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Worker processes jobs and writes results using the provided interfaces.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker, processing any remaining
	// jobs first.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for processing anonymization jobs.
type InMemoryWorker struct {
	queue      Queue
	anonymizer Anonymizer
	archiver   Archiver
	name       string

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	// Pool-owned throughput counter, nil for standalone workers
	processed *atomic.Int64

	// Logging
	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, anonymizer Anonymizer, archiver Archiver, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:      queue,
		anonymizer: anonymizer,
		archiver:   archiver,
		name:       "worker",
		shutdown:   make(chan struct{}),
		done:       make(chan struct{}),
		logger:     logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer func() {
		close(w.done)
	}()

	jobChan := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobChan:
			if !ok {
				// Channel closed, worker should stop
				return
			}

			if err := w.processJob(ctx, job); err != nil {
				w.logger.Error(ctx, "error processing job", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processJob anonymizes and archives a single job.
func (w *InMemoryWorker) processJob(ctx context.Context, job Job) error {
	start := time.Now()
	defer func() {
		latency := time.Since(start).Milliseconds()
		metrics.RecordWorkerProcessingLatency(float64(latency))
	}()

	transformStart := time.Now()
	res, err := w.anonymizer.Anonymize(ctx, job.Record, job.Category, job.Level)
	metrics.RecordAnonymizeLatency(float64(time.Since(transformStart).Milliseconds()))

	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "anonymize_error")
		metrics.RecordErrorByType("anonymize_error", "high")
		w.logger.Error(ctx, "anonymization failed for job",
			logger.String("jobID", job.JobID),
			logger.Error(err),
		)
		return fmt.Errorf("failed to anonymize job %s: %w", job.JobID, err)
	}

	if err := w.archiver.Put(ctx, res); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "archive_error")
		metrics.RecordErrorByType("archive_error", "high")
		w.logger.Error(ctx, "archiving failed for job",
			logger.String("jobID", job.JobID),
			logger.String("resultID", res.ID),
			logger.Error(err),
		)
		return fmt.Errorf("archive put failed: %w", err)
	}

	metrics.RecordAnonymized(string(res.OriginalDataType), string(res.AnonymizationLevel))
	metrics.RecordPIIFieldsRemoved(len(res.Metadata.PIIFieldsRemoved))
	metrics.RecordSensitiveFieldsMasked(len(res.Metadata.SensitiveFieldsMasked))
	metrics.RecordPayloadSizes(res.Metadata.OriginalDataSize, res.Metadata.AnonymizedDataSize)

	if w.processed != nil {
		w.processed.Add(1)
	}

	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers    []*InMemoryWorker
	queue      Queue
	anonymizer Anonymizer
	archiver   Archiver

	// Shutdown control
	shutdown chan struct{}

	// Throughput tracking
	processed  atomic.Int64
	lastSample time.Time

	// Logging
	logger logger.Logger
}

// NewPool creates a new worker pool.
func NewPool(workerCount int, queue Queue, anonymizer Anonymizer, archiver Archiver) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers:    make([]*InMemoryWorker, workerCount),
		queue:      queue,
		anonymizer: anonymizer,
		archiver:   archiver,
		shutdown:   make(chan struct{}),
		lastSample: time.Now(),
		logger:     logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(
			queue,
			anonymizer,
			archiver,
			WithName("worker-"+strconv.Itoa(i)),
			WithProcessedCounter(&pool.processed),
		)
	}

	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(0)
	metrics.UpdateWorkerIdleCount(workerCount)
	metrics.UpdateWorkerJobsPerSecond(0.0)

	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}

	// Start throughput updater
	go p.startMetricsUpdater(ctx)
}

// startMetricsUpdater starts a background goroutine that refreshes worker metrics.
func (p *Pool) startMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metricsUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.shutdown:
			return
		case <-ticker.C:
			p.updateMetrics()
		}
	}
}

// updateMetrics publishes the jobs-per-second rate since the last sample.
func (p *Pool) updateMetrics() {
	now := time.Now()
	elapsed := now.Sub(p.lastSample).Seconds()
	if elapsed > 0 {
		jobsPerSecond := float64(p.processed.Swap(0)) / elapsed
		metrics.UpdateWorkerJobsPerSecond(jobsPerSecond)
	}
	p.lastSample = now
}

// Stop gracefully stops all workers.
func (p *Pool) Stop() {
	close(p.shutdown)

	for _, w := range p.workers {
		select {
		case <-w.done:
			// Worker finished
		case <-time.After(workerShutdownTimeout):
			// Worker timeout
		}
	}
}

// Shutdown gracefully shuts down the entire worker pool.
func (p *Pool) Shutdown(ctx context.Context) error {
	// Close the queue first so workers drain any remaining jobs
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	close(p.shutdown)

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}

	return nil
}

// Size returns the number of workers in the pool.
func (p *Pool) Size() int {
	return len(p.workers)
}
