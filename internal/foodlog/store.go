package foodlog

import (
	"encoding/json"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/healthpal/backend/internal/domain"
)

// storageKey is the fixed blob key the whole collection persists under.
const storageKey = "food_logs_v1"

// Store owns the ordered collection of food log entries. New entries go to
// the head; every mutation re-encodes and overwrites the whole collection.
// Persistence failures are logged and swallowed, never surfaced to callers:
// losing a write beats failing the whole request.
type Store struct {
	blobs domain.BlobStore
	mutex sync.RWMutex
	logs  []domain.FoodLog
}

// NewStore loads the persisted collection. A decode failure starts the
// store empty rather than failing.
func NewStore(blobs domain.BlobStore) *Store {
	s := &Store{blobs: blobs}

	raw, ok := blobs.Get(storageKey)
	if !ok {
		return s
	}
	if err := json.Unmarshal(raw, &s.logs); err != nil {
		log.Printf("[FoodLog] Failed decoding saved logs, starting empty: %v", err)
		s.logs = nil
	}
	return s
}

// Add inserts the entry at the head of the collection and persists.
func (s *Store) Add(entry domain.FoodLog) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.logs = append([]domain.FoodLog{entry}, s.logs...)
	s.persistLocked()
}

// Update replaces the entry with a matching ID wholesale. Unknown IDs are a
// no-op, not an error.
func (s *Store) Update(entry domain.FoodLog) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for i := range s.logs {
		if s.logs[i].ID == entry.ID {
			s.logs[i] = entry
			s.persistLocked()
			return
		}
	}
}

// Delete removes all entries with the given ID. Absent IDs are a no-op.
func (s *Store) Delete(id string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	kept := s.logs[:0]
	removed := false
	for _, entry := range s.logs {
		if entry.ID == id {
			removed = true
			continue
		}
		kept = append(kept, entry)
	}
	s.logs = kept
	if removed {
		s.persistLocked()
	}
}

// Get returns the entry with the given ID.
func (s *Store) Get(id string) (domain.FoodLog, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	for _, entry := range s.logs {
		if entry.ID == id {
			return entry, true
		}
	}
	return domain.FoodLog{}, false
}

// All returns a copy of the full collection in stored order.
func (s *Store) All() []domain.FoodLog {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make([]domain.FoodLog, len(s.logs))
	copy(out, s.logs)
	return out
}

// EntriesForDay returns the entries falling on the same local calendar day
// as date, sorted by ID descending. Clients depend on this ordering being
// stable across reloads.
func (s *Store) EntriesForDay(date time.Time) []domain.FoodLog {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var out []domain.FoodLog
	for _, entry := range s.logs {
		if entry.SameDay(date) {
			out = append(out, entry)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID > out[j].ID
	})
	return out
}

// persistLocked re-encodes and overwrites the whole collection. Caller
// holds the write lock. Failures are logged and absorbed.
func (s *Store) persistLocked() {
	encoded, err := json.Marshal(s.logs)
	if err != nil {
		log.Printf("[FoodLog] Failed encoding logs: %v", err)
		return
	}
	if err := s.blobs.Set(storageKey, encoded); err != nil {
		log.Printf("[FoodLog] Failed saving logs: %v", err)
	}
}
