// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"runtime"
	"sync"
	"time"

	jobqueue "github.com/coachcore/privacyd/internal/adapters/mq/queue"
	workerpool "github.com/coachcore/privacyd/internal/adapters/mq/worker"
	repository "github.com/coachcore/privacyd/internal/adapters/repository"
	"github.com/coachcore/privacyd/internal/domain/anonymize"
	"github.com/coachcore/privacyd/internal/domain/dedupe"
	"github.com/coachcore/privacyd/internal/domain/model"
	"github.com/coachcore/privacyd/internal/domain/retention"
	"github.com/coachcore/privacyd/internal/domain/types"
	"github.com/coachcore/privacyd/pkg/logger"
	"github.com/coachcore/privacyd/pkg/metrics"
)

// Service wires the anonymization engine, job pipeline and archive, and
// implements the API dependencies.
type Service struct {
	mu sync.RWMutex

	// Core components
	engine     *anonymize.Engine
	archive    *repository.TreapArchive
	deduper    dedupe.Deduper
	jobQueue   jobqueue.Queue
	workerPool *workerpool.Pool

	// Configuration
	workerCount     int
	queueSize       int
	dedupeSize      int
	maxRecordDepth  int
	janitorInterval time.Duration
	retentionTable  *retention.Table

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

// WithQueueSize sets the maximum size of the job queue.
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

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMaxRecordDepth bounds nesting during record traversal.
func WithMaxRecordDepth(depth int) Option {
	return func(s *Service) {
		if depth > 0 {
			s.maxRecordDepth = depth
		}
	}
}

// WithJanitorInterval sets how often expired results are purged from
// the archive. Zero or negative disables the janitor.
func WithJanitorInterval(interval time.Duration) Option {
	return func(s *Service) {
		s.janitorInterval = interval
	}
}

// WithRetentionTable replaces the retention policy table used by the
// engine, typically built from config overrides.
func WithRetentionTable(t *retention.Table) Option {
	return func(s *Service) {
		if t != nil {
			s.retentionTable = t
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:     runtime.NumCPU() * 4,
		queueSize:       100000,
		dedupeSize:      50000,
		maxRecordDepth:  0, // engine default applies
		janitorInterval: time.Minute,
		retentionTable:  nil, // engine default applies
		stopCh:          make(chan struct{}),
		logger:          nil, // Will be replaced when service starts
	}

	// Apply all options
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

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting anonymization service...")

	// Initialize components
	engineOpts := []anonymize.Option{}
	if s.maxRecordDepth > 0 {
		engineOpts = append(engineOpts, anonymize.WithMaxDepth(s.maxRecordDepth))
	}
	if s.retentionTable != nil {
		engineOpts = append(engineOpts, anonymize.WithRetentionTable(s.retentionTable))
	}
	s.engine = anonymize.New(engineOpts...)

	if overlap := s.engine.Registry().Overlap(); len(overlap) > 0 {
		s.logger.Info(ctx, "fields classified as both identifying and sensitive; removal wins",
			logger.Any("fields", overlap),
		)
	}

	s.archive = repository.NewTreapArchive(ctx,
		repository.WithJanitorInterval(s.janitorInterval),
	)
	s.logger.Info(ctx, "using treap archive")
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.jobQueue = jobqueue.NewInMemoryQueue(
		jobqueue.WithCapacity(s.queueSize),
		jobqueue.WithBufferSize(s.queueSize),
	)

	// Create and start worker pool
	s.workerPool = workerpool.NewPool(s.workerCount, s.jobQueue, s.engine, s.archive)
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "anonymization service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
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

	s.logger.Info(context.Background(), "stopping anonymization service...")

	// Stop worker pool
	if s.workerPool != nil {
		s.workerPool.Stop()
	}

	// Close archive (stops its janitor)
	if s.archive != nil {
		_ = s.archive.Close()
	}

	// Close queue
	if q, ok := s.jobQueue.(*jobqueue.InMemoryQueue); ok {
		_ = q.Close()
	}

	// Signal cleanup loop to stop
	select {
	case <-s.stopCh:
		// Channel already closed
	default:
		close(s.stopCh)
	}

	s.started = false
	s.logger.Info(context.Background(), "anonymization service stopped")
}

// Anonymize transforms a single record synchronously.
func (s *Service) Anonymize(ctx context.Context, record model.Record, category model.Category, level model.Level) (model.AnonymizedResult, error) {
	start := time.Now()
	res, err := s.engine.Anonymize(ctx, record, category, level)
	metrics.RecordAnonymizeLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		return model.AnonymizedResult{}, err
	}

	if putErr := s.archive.Put(ctx, res); putErr != nil {
		return model.AnonymizedResult{}, putErr
	}

	metrics.RecordAnonymized(string(res.OriginalDataType), string(res.AnonymizationLevel))
	metrics.RecordPIIFieldsRemoved(len(res.Metadata.PIIFieldsRemoved))
	metrics.RecordSensitiveFieldsMasked(len(res.Metadata.SensitiveFieldsMasked))
	metrics.RecordPayloadSizes(res.Metadata.OriginalDataSize, res.Metadata.AnonymizedDataSize)

	return res, nil
}

// SeenAndRecord atomically checks if a job id was seen and records it if not.
// Returns true if the job was already seen, false if it was newly recorded.
// This is the ONLY method for deduplication - thread-safe and atomic.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordJobDuplicate()
	}
	return seen
}

// Unrecord removes a job ID from the seen list, allowing it to be retried.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Enqueue submits a job for asynchronous processing.
func (s *Service) Enqueue(ctx context.Context, j model.Job) bool {
	s.logger.Debug(ctx, "enqueueing job",
		logger.String("jobID", j.JobID),
		logger.String("category", string(j.Category)),
		logger.String("level", string(j.Level)),
	)

	success := s.jobQueue.Enqueue(ctx, j)
	if success {
		metrics.UpdateQueueSize(s.jobQueue.Len(ctx))
	}
	return success
}

// Result returns the archived result with the given id.
func (s *Service) Result(ctx context.Context, id string) (model.AnonymizedResult, error) {
	return s.archive.Get(ctx, id)
}

// NextExpiring returns up to n archived result summaries ordered by
// expiry, soonest first.
func (s *Service) NextExpiring(ctx context.Context, n int) ([]types.Summary, error) {
	return s.archive.NextExpiring(ctx, n)
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
		queueLen := s.jobQueue.Len(ctx)
		archived := s.archive.Count(ctx)

		stats["queueLength"] = queueLen
		stats["archivedResults"] = archived

		// Update metrics
		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateArchiveRecords(archived)
		metrics.UpdateWorkerCount(s.workerCount)
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
