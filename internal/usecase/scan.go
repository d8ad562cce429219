package usecase

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/healthpal/backend/internal/domain"
	"github.com/healthpal/backend/internal/keystore"
)

// EntrySink persists food log entries produced by a successful scan.
type EntrySink interface {
	Add(entry domain.FoodLog)
}

// ScanOutcome is what a completed scan produced. When the model could not
// identify the food, Usable is false and Entry is empty; that is a normal
// outcome, not an error.
type ScanOutcome struct {
	Usable bool
	Entry  domain.FoodLog
}

// ScanService orchestrates a food scan: pick the active credential, call
// the analysis client, and persist the resulting entry. At most one scan
// runs at a time; a second initiation while one is outstanding is rejected.
type ScanService struct {
	keys    *keystore.Store
	client  domain.AnalysisClient
	entries EntrySink
	inUse   sync.Mutex
}

// NewScanService creates a scan service with its dependencies.
func NewScanService(keys *keystore.Store, client domain.AnalysisClient, entries EntrySink) *ScanService {
	return &ScanService{
		keys:    keys,
		client:  client,
		entries: entries,
	}
}

// ScanFood analyzes the image and, on a usable result, logs it for the
// given date. The credential check happens before any network call.
func (s *ScanService) ScanFood(ctx context.Context, image []byte, date time.Time) (ScanOutcome, error) {
	if !s.inUse.TryLock() {
		return ScanOutcome{}, domain.ErrScanInProgress
	}
	defer s.inUse.Unlock()

	provider, apiKey, ok := s.keys.FirstConfigured()
	if !ok {
		return ScanOutcome{}, domain.ErrNoCredentialConfigured
	}
	log.Printf("[Scan] Using %s credential", provider)

	result, err := s.client.Analyze(ctx, image, apiKey)
	if err != nil {
		return ScanOutcome{}, fmt.Errorf("scan failed: %w", err)
	}

	if !result.Usable {
		return ScanOutcome{Usable: false}, nil
	}

	entry := domain.FoodLog{
		ID:       uuid.NewString(),
		Date:     domain.DayStart(date),
		Title:    result.Label,
		Calories: result.Calories,
		Notes:    result.Label,
	}
	s.entries.Add(entry)

	return ScanOutcome{Usable: true, Entry: entry}, nil
}
