// Package repository defines the anonymized-result archive interface
// and errors.
package repository

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/coachcore/privacyd/internal/domain/model"
	"github.com/coachcore/privacyd/internal/domain/types"
	"github.com/coachcore/privacyd/pkg/metrics"
)

// Treap-based, in-memory Archive implementation.
//
// Ordering: expiry ASC, then result ID ASC (deterministic). In-order
// traversal yields results from soonest-expiring to longest-retained,
// which makes both NextExpiring and PurgeExpired walks of a prefix.

// Default intervals for background loops.
const (
	defaultJanitorInterval = time.Minute
	defaultMetricsInterval = 10 * time.Second
)

// node is a treap node keyed on (expiry, id).
type node struct {
	id     string
	expiry int64 // unix nanoseconds
	prio   uint64
	left   *node
	right  *node
	size   int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less returns true if (aExpiry, aID) ranks before (bExpiry, bID):
// earlier expiry first, ties broken by id ascending.
func less(aExpiry int64, aID string, bExpiry int64, bID string) bool {
	if aExpiry != bExpiry {
		return aExpiry < bExpiry
	}
	return aID < bID
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

// idToPriority derives a deterministic heap priority from the result ID
// so the treap shape is reproducible for a given set of IDs.
func idToPriority(id string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	return h.Sum64()
}

func insert(n *node, id string, expiry int64) *node {
	if n == nil {
		return &node{id: id, expiry: expiry, prio: idToPriority(id), size: 1}
	}
	if less(expiry, id, n.expiry, n.id) {
		n.left = insert(n.left, id, expiry)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, expiry)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, id string, expiry int64) *node {
	if n == nil {
		return nil
	}
	switch {
	case id == n.id && expiry == n.expiry:
		// Rotate the node down until it is a leaf, then drop it.
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, expiry)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, expiry)
		}
	case less(expiry, id, n.expiry, n.id):
		n.left = deleteNode(n.left, id, expiry)
	default:
		n.right = deleteNode(n.right, id, expiry)
	}
	fix(n)
	return n
}

// collectFirstN appends up to limit in-order entries to out.
func collectFirstN(n *node, limit int, out *[]*node) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectFirstN(n.left, limit, out)
	if len(*out) < limit {
		*out = append(*out, n)
	}
	collectFirstN(n.right, limit, out)
}

// leftmost returns the in-order minimum.
func leftmost(n *node) *node {
	if n == nil {
		return nil
	}
	for n.left != nil {
		n = n.left
	}
	return n
}

// TreapArchive implements Archive with a treap ordered by expiry plus a
// map for O(1) lookup by ID.
type TreapArchive struct {
	mu   sync.RWMutex
	root *node
	byID map[string]model.AnonymizedResult

	janitorInterval       time.Duration
	metricsUpdateInterval time.Duration
	now                   func() time.Time

	stopCh    chan struct{}
	closeOnce sync.Once
}

// NewTreapArchive creates an archive and starts its background janitor
// and metrics loops. ctx bounds the lifetime of both loops.
func NewTreapArchive(ctx context.Context, opts ...Option) *TreapArchive {
	a := &TreapArchive{
		byID:                  make(map[string]model.AnonymizedResult),
		janitorInterval:       defaultJanitorInterval,
		metricsUpdateInterval: defaultMetricsInterval,
		now:                   time.Now,
		stopCh:                make(chan struct{}),
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.janitorInterval > 0 {
		go a.startJanitor(ctx)
	}
	go a.startMetricsUpdater(ctx)

	return a
}

// Close stops the background loops. Retained results stay readable.
func (a *TreapArchive) Close() error {
	a.closeOnce.Do(func() {
		close(a.stopCh)
	})
	return nil
}

// Put stores a result, replacing any previous result with the same ID.
func (a *TreapArchive) Put(ctx context.Context, res model.AnonymizedResult) error {
	start := time.Now()
	defer func() {
		metrics.RecordArchivePutLatency(float64(time.Since(start).Milliseconds()))
	}()

	a.mu.Lock()
	defer a.mu.Unlock()

	if old, exists := a.byID[res.ID]; exists {
		a.root = deleteNode(a.root, old.ID, old.ExpiresAt.UnixNano())
	}
	a.root = insert(a.root, res.ID, res.ExpiresAt.UnixNano())
	a.byID[res.ID] = res

	metrics.UpdateArchiveRecords(len(a.byID))
	a.updateNextExpiryLocked()
	return nil
}

// Get returns the result with the given ID.
func (a *TreapArchive) Get(ctx context.Context, id string) (model.AnonymizedResult, error) {
	start := time.Now()
	defer func() {
		metrics.RecordArchiveQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	a.mu.RLock()
	defer a.mu.RUnlock()

	res, ok := a.byID[id]
	if !ok {
		return model.AnonymizedResult{}, ErrNotFound
	}
	return res, nil
}

// NextExpiring returns up to n result summaries ordered by expiry,
// soonest first.
func (a *TreapArchive) NextExpiring(ctx context.Context, n int) ([]types.Summary, error) {
	start := time.Now()
	defer func() {
		metrics.RecordArchiveQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	if n < 1 {
		return nil, ErrInvalidLimit
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	nodes := make([]*node, 0, n)
	collectFirstN(a.root, n, &nodes)

	out := make([]types.Summary, 0, len(nodes))
	for _, nd := range nodes {
		res, ok := a.byID[nd.id]
		if !ok {
			continue
		}
		out = append(out, summarize(res))
	}
	return out, nil
}

// PurgeExpired deletes every result whose expiry is at or before now.
func (a *TreapArchive) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	cutoff := now.UnixNano()
	purged := 0
	for {
		min := leftmost(a.root)
		if min == nil || min.expiry > cutoff {
			break
		}
		a.root = deleteNode(a.root, min.id, min.expiry)
		delete(a.byID, min.id)
		purged++
	}

	if purged > 0 {
		metrics.RecordArchivePurged(purged)
		metrics.UpdateArchiveRecords(len(a.byID))
		a.updateNextExpiryLocked()
	}
	return purged, nil
}

// Count returns the number of retained results.
func (a *TreapArchive) Count(ctx context.Context) int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.byID)
}

// startJanitor periodically deletes past-expiry results. The archive is
// the sole component that executes deletion; the engine only computes
// when deletion should occur.
func (a *TreapArchive) startJanitor(ctx context.Context) {
	ticker := time.NewTicker(a.janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-a.stopCh:
			return
		case <-ticker.C:
			_, _ = a.PurgeExpired(ctx, a.now())
		}
	}
}

// startMetricsUpdater refreshes archive gauges on an interval.
func (a *TreapArchive) startMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(a.metricsUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-a.stopCh:
			return
		case <-ticker.C:
			a.mu.RLock()
			metrics.UpdateArchiveRecords(len(a.byID))
			a.updateNextExpiryLocked()
			a.mu.RUnlock()
		}
	}
}

// updateNextExpiryLocked publishes the soonest expiry gauge. Caller
// holds a.mu (read or write).
func (a *TreapArchive) updateNextExpiryLocked() {
	min := leftmost(a.root)
	if min == nil {
		metrics.UpdateArchiveNextExpiry(0)
		return
	}
	metrics.UpdateArchiveNextExpiry(min.expiry / int64(time.Second))
}

// summarize projects a result onto its listing shape.
func summarize(res model.AnonymizedResult) types.Summary {
	return types.Summary{
		ID:         res.ID,
		Category:   string(res.OriginalDataType),
		Level:      string(res.AnonymizationLevel),
		CreatedAt:  res.CreatedAt,
		ExpiresAt:  res.ExpiresAt,
		SizeBytes:  res.Metadata.AnonymizedDataSize,
		PIIRemoved: len(res.Metadata.PIIFieldsRemoved),
	}
}
