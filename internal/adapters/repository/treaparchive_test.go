package repository

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/coachcore/privacyd/internal/domain/model"
)

func testResult(id string, expiresAt time.Time) model.AnonymizedResult {
	return model.AnonymizedResult{
		ID:                 id,
		OriginalDataType:   model.CategoryPlayerRecord,
		AnonymizedData:     model.Record{"sport": "soccer"},
		AnonymizationLevel: model.LevelMedium,
		RetentionPeriod:    "1_year",
		CreatedAt:          expiresAt.Add(-time.Hour),
		ExpiresAt:          expiresAt,
		Metadata: model.Metadata{
			AnonymizedDataSize: 20,
			PIIFieldsRemoved:   []string{"firstName"},
		},
	}
}

func TestTreapArchive_BasicOperations(t *testing.T) {
	ctx := context.Background()
	archive := NewTreapArchive(ctx, WithJanitorInterval(0))
	defer func() { _ = archive.Close() }()

	// Test empty archive
	if count := archive.Count(ctx); count != 0 {
		t.Errorf("expected count 0, got %d", count)
	}
	if _, err := archive.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	// Test storing a result
	expiry := time.Now().Add(time.Hour)
	if err := archive.Put(ctx, testResult("anon-1", expiry)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count := archive.Count(ctx); count != 1 {
		t.Errorf("expected count 1, got %d", count)
	}

	// Test retrieval by ID
	res, err := archive.Get(ctx, "anon-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ID != "anon-1" {
		t.Errorf("expected anon-1, got %s", res.ID)
	}
	if !res.ExpiresAt.Equal(expiry) {
		t.Errorf("expected expiry %v, got %v", expiry, res.ExpiresAt)
	}

	// Test listing
	summaries, err := archive.NextExpiring(ctx, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(summaries))
	}
	if summaries[0].ID != "anon-1" {
		t.Errorf("expected anon-1, got %s", summaries[0].ID)
	}
	if summaries[0].Category != "player_record" {
		t.Errorf("expected player_record, got %s", summaries[0].Category)
	}
	if summaries[0].PIIRemoved != 1 {
		t.Errorf("expected 1 removed field, got %d", summaries[0].PIIRemoved)
	}
}

func TestTreapArchive_PutReplacesSameID(t *testing.T) {
	ctx := context.Background()
	archive := NewTreapArchive(ctx, WithJanitorInterval(0))
	defer func() { _ = archive.Close() }()

	first := testResult("anon-1", time.Now().Add(time.Hour))
	second := testResult("anon-1", time.Now().Add(48*time.Hour))
	second.AnonymizationLevel = model.LevelHigh

	if err := archive.Put(ctx, first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := archive.Put(ctx, second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if count := archive.Count(ctx); count != 1 {
		t.Errorf("expected count 1 after replacement, got %d", count)
	}

	res, err := archive.Get(ctx, "anon-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.AnonymizationLevel != model.LevelHigh {
		t.Errorf("expected replacement to win, got level %s", res.AnonymizationLevel)
	}
	if !res.ExpiresAt.Equal(second.ExpiresAt) {
		t.Errorf("expected expiry %v, got %v", second.ExpiresAt, res.ExpiresAt)
	}

	// The treap must hold a single node for the ID
	summaries, err := archive.NextExpiring(ctx, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(summaries) != 1 {
		t.Errorf("expected 1 summary after replacement, got %d", len(summaries))
	}
}

func TestTreapArchive_ExpiryOrdering(t *testing.T) {
	ctx := context.Background()
	archive := NewTreapArchive(ctx, WithJanitorInterval(0))
	defer func() { _ = archive.Close() }()

	now := time.Now()

	// Insert out of expiry order
	inserts := []struct {
		id     string
		expiry time.Time
	}{
		{"anon-c", now.Add(3 * time.Hour)},
		{"anon-a", now.Add(1 * time.Hour)},
		{"anon-d", now.Add(4 * time.Hour)},
		{"anon-b", now.Add(2 * time.Hour)},
	}
	for _, in := range inserts {
		if err := archive.Put(ctx, testResult(in.id, in.expiry)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	summaries, err := archive.NextExpiring(ctx, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"anon-a", "anon-b", "anon-c", "anon-d"}
	if len(summaries) != len(want) {
		t.Fatalf("expected %d summaries, got %d", len(want), len(summaries))
	}
	for i, id := range want {
		if summaries[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, summaries[i].ID)
		}
	}

	// Limit smaller than the archive returns a prefix
	top2, err := archive.NextExpiring(ctx, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(top2) != 2 || top2[0].ID != "anon-a" || top2[1].ID != "anon-b" {
		t.Errorf("expected [anon-a anon-b], got %v", top2)
	}
}

func TestTreapArchive_ExpiryTieBreaksByID(t *testing.T) {
	ctx := context.Background()
	archive := NewTreapArchive(ctx, WithJanitorInterval(0))
	defer func() { _ = archive.Close() }()

	expiry := time.Now().Add(time.Hour)
	for _, id := range []string{"anon-b", "anon-c", "anon-a"} {
		if err := archive.Put(ctx, testResult(id, expiry)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	summaries, err := archive.NextExpiring(ctx, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"anon-a", "anon-b", "anon-c"}
	for i, id := range want {
		if summaries[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, summaries[i].ID)
		}
	}
}

func TestTreapArchive_InvalidLimit(t *testing.T) {
	ctx := context.Background()
	archive := NewTreapArchive(ctx, WithJanitorInterval(0))
	defer func() { _ = archive.Close() }()

	if _, err := archive.NextExpiring(ctx, 0); !errors.Is(err, ErrInvalidLimit) {
		t.Errorf("expected ErrInvalidLimit for 0, got %v", err)
	}
	if _, err := archive.NextExpiring(ctx, -5); !errors.Is(err, ErrInvalidLimit) {
		t.Errorf("expected ErrInvalidLimit for -5, got %v", err)
	}
}

func TestTreapArchive_PurgeExpired(t *testing.T) {
	ctx := context.Background()
	archive := NewTreapArchive(ctx, WithJanitorInterval(0))
	defer func() { _ = archive.Close() }()

	now := time.Now()
	if err := archive.Put(ctx, testResult("anon-old", now.Add(-time.Hour))); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := archive.Put(ctx, testResult("anon-edge", now)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := archive.Put(ctx, testResult("anon-live", now.Add(time.Hour))); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Expiry at or before the cutoff is purged
	purged, err := archive.PurgeExpired(ctx, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if purged != 2 {
		t.Errorf("expected 2 purged, got %d", purged)
	}
	if count := archive.Count(ctx); count != 1 {
		t.Errorf("expected count 1, got %d", count)
	}

	if _, err := archive.Get(ctx, "anon-old"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for purged result, got %v", err)
	}
	if _, err := archive.Get(ctx, "anon-live"); err != nil {
		t.Errorf("expected live result to survive, got %v", err)
	}

	// Purging again is a no-op
	purged, err = archive.PurgeExpired(ctx, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if purged != 0 {
		t.Errorf("expected 0 purged on second pass, got %d", purged)
	}
}

func TestTreapArchive_Janitor(t *testing.T) {
	ctx := context.Background()

	var mu sync.Mutex
	now := time.Now()
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}

	archive := NewTreapArchive(ctx,
		WithJanitorInterval(10*time.Millisecond),
		WithClock(clock),
	)
	defer func() { _ = archive.Close() }()

	if err := archive.Put(ctx, testResult("anon-1", now.Add(50*time.Millisecond))); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := archive.Put(ctx, testResult("anon-2", now.Add(time.Hour))); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Advance the clock past the first expiry and let the janitor run
	mu.Lock()
	now = now.Add(time.Minute)
	mu.Unlock()

	deadline := time.After(time.Second)
	for archive.Count(ctx) > 1 {
		select {
		case <-deadline:
			t.Fatal("janitor did not purge expired result within timeout")
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}

	if _, err := archive.Get(ctx, "anon-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected anon-1 to be purged, got %v", err)
	}
	if _, err := archive.Get(ctx, "anon-2"); err != nil {
		t.Errorf("expected anon-2 to survive, got %v", err)
	}
}

func TestTreapArchive_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	archive := NewTreapArchive(ctx, WithJanitorInterval(0))
	defer func() { _ = archive.Close() }()

	const numGoroutines = 8
	const resultsPerGoroutine = 200

	var wg sync.WaitGroup
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(writerID int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(int64(writerID)))
			for j := 0; j < resultsPerGoroutine; j++ {
				id := fmt.Sprintf("anon-%d-%d", writerID, j)
				expiry := time.Now().Add(time.Duration(r.Intn(3600)) * time.Second)
				if err := archive.Put(ctx, testResult(id, expiry)); err != nil {
					t.Errorf("put failed: %v", err)
					return
				}
				if _, err := archive.Get(ctx, id); err != nil {
					t.Errorf("get after put failed: %v", err)
					return
				}
			}
		}(i)
	}

	// Concurrent readers
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if _, err := archive.NextExpiring(ctx, 50); err != nil {
					t.Errorf("listing failed: %v", err)
					return
				}
				archive.Count(ctx)
			}
		}()
	}

	wg.Wait()

	if count := archive.Count(ctx); count != numGoroutines*resultsPerGoroutine {
		t.Errorf("expected %d results, got %d", numGoroutines*resultsPerGoroutine, count)
	}

	// The listing must still be ordered after concurrent churn
	summaries, err := archive.NextExpiring(ctx, numGoroutines*resultsPerGoroutine)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < len(summaries); i++ {
		if summaries[i].ExpiresAt.Before(summaries[i-1].ExpiresAt) {
			t.Fatalf("listing out of order at position %d", i)
		}
	}
}

func TestTreapArchive_CloseStopsLoops(t *testing.T) {
	ctx := context.Background()
	archive := NewTreapArchive(ctx, WithJanitorInterval(time.Millisecond))

	if err := archive.Put(ctx, testResult("anon-1", time.Now().Add(time.Hour))); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := archive.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Close is idempotent
	if err := archive.Close(); err != nil {
		t.Fatalf("unexpected error on second close: %v", err)
	}

	// Retained results stay readable after close
	if _, err := archive.Get(ctx, "anon-1"); err != nil {
		t.Errorf("expected result to stay readable, got %v", err)
	}
}
