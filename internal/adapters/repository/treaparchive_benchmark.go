package repository

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/coachcore/privacyd/internal/domain/model"
)

func benchResult(id string, expiry time.Time) model.AnonymizedResult {
	return model.AnonymizedResult{
		ID:                 id,
		OriginalDataType:   model.CategoryAnalyticsEvent,
		AnonymizedData:     model.Record{"sport": "soccer"},
		AnonymizationLevel: model.LevelMedium,
		CreatedAt:          expiry.Add(-time.Hour),
		ExpiresAt:          expiry,
	}
}

func BenchmarkTreapArchive_Put(b *testing.B) {
	ctx := context.Background()
	archive := NewTreapArchive(ctx, WithJanitorInterval(0))
	defer func() { _ = archive.Close() }()

	r := rand.New(rand.NewSource(42))
	now := time.Now()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		id := fmt.Sprintf("anon-%d", i)
		expiry := now.Add(time.Duration(r.Intn(86400)) * time.Second)
		_ = archive.Put(ctx, benchResult(id, expiry))
	}
}

func BenchmarkTreapArchive_Get(b *testing.B) {
	ctx := context.Background()
	archive := NewTreapArchive(ctx, WithJanitorInterval(0))
	defer func() { _ = archive.Close() }()

	const size = 100000
	now := time.Now()
	for i := 0; i < size; i++ {
		_ = archive.Put(ctx, benchResult(fmt.Sprintf("anon-%d", i), now.Add(time.Hour)))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = archive.Get(ctx, fmt.Sprintf("anon-%d", i%size))
	}
}

func BenchmarkTreapArchive_NextExpiring(b *testing.B) {
	ctx := context.Background()
	archive := NewTreapArchive(ctx, WithJanitorInterval(0))
	defer func() { _ = archive.Close() }()

	const size = 100000
	r := rand.New(rand.NewSource(42))
	now := time.Now()
	for i := 0; i < size; i++ {
		expiry := now.Add(time.Duration(r.Intn(86400)) * time.Second)
		_ = archive.Put(ctx, benchResult(fmt.Sprintf("anon-%d", i), expiry))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = archive.NextExpiring(ctx, 100)
	}
}

func BenchmarkTreapArchive_PurgeExpired(b *testing.B) {
	ctx := context.Background()
	now := time.Now()

	b.StopTimer()
	for i := 0; i < b.N; i++ {
		archive := NewTreapArchive(ctx, WithJanitorInterval(0))
		for j := 0; j < 1000; j++ {
			_ = archive.Put(ctx, benchResult(fmt.Sprintf("anon-%d", j), now.Add(-time.Hour)))
		}
		b.StartTimer()
		_, _ = archive.PurgeExpired(ctx, now)
		b.StopTimer()
		_ = archive.Close()
	}
}
