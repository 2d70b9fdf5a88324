// Package anonymize is the public entry point of the privacy engine. It
// drives classifier, traversal, level strategy and retention in sequence
// and emits a structured result with audit metadata.
//
// The engine is stateless and side-effect-free beyond timestamp and ID
// generation, so concurrent invocations over distinct records need no
// synchronization.
package anonymize

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/coachcore/privacyd/internal/domain/classify"
	"github.com/coachcore/privacyd/internal/domain/model"
	"github.com/coachcore/privacyd/internal/domain/redact"
	"github.com/coachcore/privacyd/internal/domain/retention"
	"github.com/coachcore/privacyd/internal/domain/strategy"
)

// Version of the anonymization scheme recorded in result metadata.
const anonymizationVersion = "1.0"

// idSuffixLength is the number of random characters after the epoch in
// a generated result ID.
const idSuffixLength = 9

// complianceStandards the scheme is designed against. Audit metadata
// only.
var complianceStandards = []string{"GDPR", "FERPA", "COPPA"}

// Engine composes the anonymization pipeline. Construct with New; the
// zero value is not usable.
type Engine struct {
	registry *classify.Registry
	table    *retention.Table
	redactor *redact.Redactor
	maxDepth int

	// now and newID are injectable for deterministic tests.
	now   func() time.Time
	newID func(now time.Time) string
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithRegistry replaces the field classification registry.
func WithRegistry(r *classify.Registry) Option {
	return func(e *Engine) {
		if r != nil {
			e.registry = r
		}
	}
}

// WithRetentionTable replaces the retention policy table.
func WithRetentionTable(t *retention.Table) Option {
	return func(e *Engine) {
		if t != nil {
			e.table = t
		}
	}
}

// WithMaxDepth overrides the record nesting depth bound.
func WithMaxDepth(depth int) Option {
	return func(e *Engine) {
		if depth >= 1 {
			e.maxDepth = depth
		}
	}
}

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithIDGenerator replaces the result ID generator.
func WithIDGenerator(gen func(now time.Time) string) Option {
	return func(e *Engine) {
		if gen != nil {
			e.newID = gen
		}
	}
}

// New creates an Engine with the default registry and retention policy,
// then applies opts.
func New(opts ...Option) *Engine {
	e := &Engine{
		registry: classify.NewRegistry(),
		table:    retention.New(),
		now:      time.Now,
		newID:    generateID,
	}

	for _, opt := range opts {
		opt(e)
	}

	redactOpts := []redact.Option{}
	if e.maxDepth >= 1 {
		redactOpts = append(redactOpts, redact.WithMaxDepth(e.maxDepth))
	}
	e.redactor = redact.New(e.registry, redactOpts...)

	return e
}

// Registry exposes the classification registry for startup logging.
func (e *Engine) Registry() *classify.Registry { return e.registry }

// Anonymize transforms record into its privacy-compliant derivative.
// Steps are strictly ordered and non-retryable: deep copy, identifying
// removal, sensitive masking, level transform, metadata assembly,
// retention computation. Either a complete result is produced or no
// partial state is observable; the caller's record is never mutated.
//
// The only failure modes are ErrInvalidInput (record is not a
// traversable tree) and retention.ErrUnknownCategory. Both are
// deterministic and non-transient. An unknown level has already been
// coerced to high by model.ParseLevel; Anonymize treats any value other
// than low or medium the same way.
func (e *Engine) Anonymize(_ context.Context, record model.Record, category model.Category, level model.Level) (model.AnonymizedResult, error) {
	if record == nil {
		return model.AnonymizedResult{}, fmt.Errorf("%w: nil record", ErrInvalidInput)
	}

	originalSize, err := serializedSize(record)
	if err != nil {
		return model.AnonymizedResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	tree, err := e.redactor.Copy(record)
	if err != nil {
		return model.AnonymizedResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	removed := e.redactor.RemoveIdentifying(tree)
	masked := e.redactor.MaskSensitive(tree)
	data := strategy.Apply(tree, level)

	anonymizedSize, err := serializedSize(data)
	if err != nil {
		return model.AnonymizedResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	retentionSecs, err := e.table.Seconds(category)
	if err != nil {
		return model.AnonymizedResult{}, err
	}

	createdAt := e.now()
	return model.AnonymizedResult{
		ID:                  e.newID(createdAt),
		OriginalDataType:    category,
		AnonymizedData:      data,
		AnonymizationLevel:  level,
		AnonymizationMethod: level.Method(),
		RetentionPeriod:     retention.Format(retentionSecs),
		CreatedAt:           createdAt,
		ExpiresAt:           createdAt.Add(time.Duration(retentionSecs) * time.Second),
		Metadata: model.Metadata{
			OriginalDataSize:      originalSize,
			AnonymizedDataSize:    anonymizedSize,
			PIIFieldsRemoved:      removed,
			SensitiveFieldsMasked: masked,
			AnonymizationVersion:  anonymizationVersion,
			ComplianceStandards:   complianceStandards,
		},
	}, nil
}

// serializedSize measures the JSON encoding of a tree. Sizes in result
// metadata are always computed from the serialized payload, never
// estimated.
func serializedSize(tree model.Record) (int, error) {
	b, err := json.Marshal(tree)
	if err != nil {
		return 0, fmt.Errorf("serialize record: %w", err)
	}
	return len(b), nil
}

// generateID builds an opaque tracking token of the form
// anon_<epoch-millis>_<9-character suffix>. Consumers must never parse
// it for semantics.
func generateID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:idSuffixLength]
	return fmt.Sprintf("anon_%d_%s", now.UnixMilli(), suffix)
}
