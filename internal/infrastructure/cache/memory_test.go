package cache

import (
	"context"
	"testing"
	"time"

	"github.com/healthpal/backend/internal/domain"
)

func TestSnapshotCache_SetAndGet(t *testing.T) {
	cache := NewSnapshotCache(1 * time.Minute)
	ctx := context.Background()

	day := time.Date(2025, 8, 25, 14, 30, 0, 0, time.Local)
	snapshot := domain.MetricsSnapshot{
		Date:         day,
		Steps:        8200,
		HeartRate:    71.5,
		ActiveEnergy: 430,
	}

	if err := cache.Set(ctx, snapshot); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	// Any time on the same local day resolves to the same entry.
	lookup := time.Date(2025, 8, 25, 7, 0, 0, 0, time.Local)
	got, err := cache.Get(ctx, lookup)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Steps != 8200 || got.HeartRate != 71.5 || got.ActiveEnergy != 430 {
		t.Errorf("Get() = %+v, want stored snapshot", got)
	}
}

func TestSnapshotCache_MissOnDifferentDay(t *testing.T) {
	cache := NewSnapshotCache(1 * time.Minute)
	ctx := context.Background()

	day := time.Date(2025, 8, 25, 12, 0, 0, 0, time.Local)
	if err := cache.Set(ctx, domain.MetricsSnapshot{Date: day, Steps: 100}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	_, err := cache.Get(ctx, day.AddDate(0, 0, 1))
	if err != domain.ErrCacheMiss {
		t.Errorf("Get() error = %v, want ErrCacheMiss", err)
	}
}

func TestSnapshotCache_Expiration(t *testing.T) {
	cache := NewSnapshotCache(1 * time.Millisecond)
	ctx := context.Background()

	day := time.Now()
	if err := cache.Set(ctx, domain.MetricsSnapshot{Date: day, Steps: 50}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	_, err := cache.Get(ctx, day)
	if err != domain.ErrCacheMiss {
		t.Errorf("Get() after expiry error = %v, want ErrCacheMiss", err)
	}
}

func TestSnapshotCache_OverwriteSameDay(t *testing.T) {
	cache := NewSnapshotCache(1 * time.Minute)
	ctx := context.Background()

	day := time.Now()
	_ = cache.Set(ctx, domain.MetricsSnapshot{Date: day, Steps: 100})
	_ = cache.Set(ctx, domain.MetricsSnapshot{Date: day, Steps: 250})

	got, err := cache.Get(ctx, day)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Steps != 250 {
		t.Errorf("Steps = %v, want 250 (latest write wins)", got.Steps)
	}
	if cache.Size() != 1 {
		t.Errorf("Size() = %d, want 1", cache.Size())
	}
}

func TestSnapshotCache_Clear(t *testing.T) {
	cache := NewSnapshotCache(1 * time.Minute)
	ctx := context.Background()

	_ = cache.Set(ctx, domain.MetricsSnapshot{Date: time.Now(), Steps: 1})
	cache.Clear()

	if cache.Size() != 0 {
		t.Errorf("Size() after Clear = %d, want 0", cache.Size())
	}
}
