// Package dedupe tracks submitted job IDs so that retried batch
// submissions are anonymized at most once.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Deduper records seen job IDs to ensure at-most-once anonymization.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	// This is the ONLY method for deduplication - thread-safe and atomic.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord removes an ID from the seen list, allowing it to be retried.
	// Used when a job was marked as seen but could not be enqueued
	// (queue backpressure).
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// entry is a single node in the eviction list.
type entry struct {
	id   string
	next *entry
}

func (e *entry) reset() {
	e.id = ""
	e.next = nil
}

// inMemoryDeduper implements Deduper with a map plus a linked list for
// LIFO eviction in bounded mode. Unbounded mode (maxSize <= 0) skips
// the list entirely and keeps a plain map.
type inMemoryDeduper struct {
	mu        sync.RWMutex
	seen      map[string]*entry // id -> list node in bounded mode, nil in unbounded
	head      *entry            // most recently recorded id
	maxSize   int               // 0 or negative means unbounded
	size      atomic.Int64
	entryPool sync.Pool
}

// defaultMaxSize bounds the tracked ID set when no option overrides it.
const defaultMaxSize = 50000

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: defaultMaxSize,
	}

	for _, opt := range opts {
		opt(d)
	}

	d.seen = make(map[string]*entry)

	if d.maxSize > 0 {
		d.entryPool = sync.Pool{
			New: func() interface{} {
				return &entry{}
			},
		}
	}

	return d
}

// SeenAndRecord atomically checks if id was seen and records it if not.
func (d *inMemoryDeduper) SeenAndRecord(ctx context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[id]; exists {
		return true
	}

	if d.maxSize > 0 {
		if len(d.seen) >= d.maxSize {
			d.evict()
		}

		e := d.entryPool.Get().(*entry)
		e.id = id
		e.next = d.head

		d.head = e
		d.seen[id] = e
	} else {
		d.seen[id] = nil
	}
	d.size.Add(1)
	return false
}

// Unrecord removes an ID from the seen list, allowing it to be retried.
func (d *inMemoryDeduper) Unrecord(ctx context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, exists := d.seen[id]
	if !exists {
		return
	}
	delete(d.seen, id)
	d.size.Add(-1)

	if d.maxSize <= 0 {
		return
	}

	// Unlink from the eviction list.
	if d.head == e {
		d.head = e.next
	} else {
		cur := d.head
		for cur != nil && cur.next != e {
			cur = cur.next
		}
		if cur != nil {
			cur.next = e.next
		}
	}

	e.reset()
	d.entryPool.Put(e)
}

// evict drops the oldest recorded id (list tail). Caller holds d.mu.
func (d *inMemoryDeduper) evict() {
	if len(d.seen) == 0 || d.head == nil {
		return
	}

	// Single element: drop the head.
	if d.head.next == nil {
		delete(d.seen, d.head.id)
		d.head.reset()
		d.entryPool.Put(d.head)
		d.head = nil
		d.size.Add(-1)
		return
	}

	var prev *entry
	cur := d.head
	for cur.next != nil {
		prev = cur
		cur = cur.next
	}

	prev.next = nil
	delete(d.seen, cur.id)
	cur.reset()
	d.entryPool.Put(cur)
	d.size.Add(-1)
}

// Size returns the current number of tracked job IDs.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
