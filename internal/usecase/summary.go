package usecase

import (
	"context"
	"errors"
	"log"
	"math"
	"time"

	"github.com/healthpal/backend/internal/domain"
)

// EntrySource supplies the food log entries for one calendar day.
type EntrySource interface {
	EntriesForDay(date time.Time) []domain.FoodLog
}

// effectiveMetric applies the live-or-cached fallback for one quantity: a
// zero live value means "no data", so the cached counterpart substitutes.
// Each quantity falls back independently.
func effectiveMetric(live, cached float64) float64 {
	if live > 0 {
		return live
	}
	return cached
}

// EffectiveSnapshot merges a live snapshot with a cached one, applying the
// fallback rule per quantity.
func EffectiveSnapshot(live, cached domain.MetricsSnapshot) domain.MetricsSnapshot {
	return domain.MetricsSnapshot{
		Date:         live.Date,
		Steps:        effectiveMetric(live.Steps, cached.Steps),
		HeartRate:    effectiveMetric(live.HeartRate, cached.HeartRate),
		ActiveEnergy: effectiveMetric(live.ActiveEnergy, cached.ActiveEnergy),
	}
}

// ComputeDailySummary combines one day's food log entries with that day's
// metrics into the intake/spent/net/status tuple. Pure function.
//
// Net of exactly zero counts as a deficit; the tie breaks toward deficit.
func ComputeDailySummary(date time.Time, entries []domain.FoodLog, live, cached domain.MetricsSnapshot) domain.DailySummary {
	effective := EffectiveSnapshot(live, cached)
	effective.Date = date

	intake := 0
	for _, entry := range entries {
		intake += entry.Calories
	}

	spent := int(math.Round(effective.ActiveEnergy))
	net := intake - spent

	status := domain.StatusSurplus
	if net <= 0 {
		status = domain.StatusDeficit
	}

	return domain.DailySummary{
		Date:    date,
		Intake:  intake,
		Spent:   spent,
		Net:     net,
		Status:  status,
		Metrics: effective,
	}
}

// SummaryService derives the per-day summary from live metrics, cached
// fallbacks, and the day's food log entries.
type SummaryService struct {
	metrics domain.MetricsProvider
	cache   domain.SnapshotCache
	entries EntrySource
}

// NewSummaryService creates a summary service with its dependencies.
func NewSummaryService(metrics domain.MetricsProvider, cache domain.SnapshotCache, entries EntrySource) *SummaryService {
	return &SummaryService{
		metrics: metrics,
		cache:   cache,
		entries: entries,
	}
}

// DailySummary fetches the day's metrics (the provider joins its three
// quantities before returning), applies the cached fallback per quantity,
// and folds in the day's entries. The effective snapshot is written back to
// the cache whenever it carries any data, so a later failed fetch still has
// something to fall back on.
func (s *SummaryService) DailySummary(ctx context.Context, date time.Time) (domain.DailySummary, error) {
	if err := ctx.Err(); err != nil {
		return domain.DailySummary{}, err
	}

	live := s.metrics.Fetch(ctx, date)

	cached, err := s.cache.Get(ctx, date)
	if err != nil && !errors.Is(err, domain.ErrCacheMiss) {
		log.Printf("[Summary] Cache read failed: %v", err)
	}

	summary := ComputeDailySummary(date, s.entries.EntriesForDay(date), live, cached)

	if !summary.Metrics.IsZero() {
		if err := s.cache.Set(ctx, summary.Metrics); err != nil {
			log.Printf("[Summary] Cache write failed: %v", err)
		}
	}

	return summary, nil
}
