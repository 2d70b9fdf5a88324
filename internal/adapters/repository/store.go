// Package repository defines the anonymized-result archive interface
// and errors. The archive is the storage collaborator of the privacy
// engine: it retains results until their expiry instant and is the
// component that actually deletes them.
package repository

import (
	"context"
	"time"

	"github.com/coachcore/privacyd/internal/domain/model"
	"github.com/coachcore/privacyd/internal/domain/types"
)

// Archive provides read/write access to retained anonymized results.
type Archive interface {
	// Put stores a result, replacing any previous result with the same ID.
	Put(ctx context.Context, res model.AnonymizedResult) error

	// Get returns the result with the given ID.
	// Returns ErrNotFound if the ID is unknown or already purged.
	Get(ctx context.Context, id string) (model.AnonymizedResult, error)

	// NextExpiring returns up to n result summaries ordered by expiry,
	// soonest first.
	NextExpiring(ctx context.Context, n int) ([]types.Summary, error)

	// PurgeExpired deletes every result whose expiry is at or before now
	// and returns the number deleted.
	PurgeExpired(ctx context.Context, now time.Time) (int, error)

	// Count returns the number of retained results.
	Count(ctx context.Context) int
}
