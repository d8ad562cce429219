package keystore

import (
	"encoding/json"
	"log"
	"strings"
	"sync"

	"github.com/healthpal/backend/internal/domain"
)

// Provider identifies a credential slot for an external AI service.
type Provider string

const (
	ProviderGemini  Provider = "gemini"
	ProviderChatGPT Provider = "chatgpt"
)

// Providers lists all known provider slots in stable order. FirstConfigured
// walks this order, so gemini wins when both slots are filled.
var Providers = []Provider{ProviderGemini, ProviderChatGPT}

// IsKnown reports whether p names a recognized provider slot.
func (p Provider) IsKnown() bool {
	for _, known := range Providers {
		if p == known {
			return true
		}
	}
	return false
}

// storageKey is the fixed blob key the whole mapping persists under.
const storageKey = "ai_keys_v1"

// Observer receives a copy of the full mapping after every mutation.
type Observer func(keys map[Provider]string)

// Store holds provider API keys. Secrets are stored verbatim; reads apply
// the trim-on-read rule, so a whitespace-only secret counts as absent.
// Every mutation persists the entire mapping synchronously before
// observers are notified.
type Store struct {
	blobs     domain.BlobStore
	mutex     sync.RWMutex
	keys      map[Provider]string
	observers []Observer
}

// NewStore loads the persisted mapping. A decode failure means "no
// credentials configured": the store starts empty rather than failing.
func NewStore(blobs domain.BlobStore) *Store {
	s := &Store{
		blobs: blobs,
		keys:  make(map[Provider]string),
	}

	raw, ok := blobs.Get(storageKey)
	if !ok {
		return s
	}
	if err := json.Unmarshal(raw, &s.keys); err != nil {
		log.Printf("[KeyStore] Failed decoding saved keys, starting empty: %v", err)
		s.keys = make(map[Provider]string)
	}
	return s
}

// Get returns the trimmed secret for a provider. ok is false when the slot
// is missing or trims to empty.
func (s *Store) Get(provider Provider) (string, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	secret := strings.TrimSpace(s.keys[provider])
	if secret == "" {
		return "", false
	}
	return secret, true
}

// Set stores the secret verbatim, persists the full mapping, then notifies
// observers.
func (s *Store) Set(provider Provider, secret string) error {
	s.mutex.Lock()
	s.keys[provider] = secret
	if err := s.persistLocked(); err != nil {
		s.mutex.Unlock()
		return err
	}
	observers := make([]Observer, len(s.observers))
	copy(observers, s.observers)
	snapshot := s.snapshotLocked()
	s.mutex.Unlock()

	for _, observer := range observers {
		observer(snapshot)
	}
	return nil
}

// Clear removes a provider's secret. Equivalent to Set(provider, "").
func (s *Store) Clear(provider Provider) error {
	return s.Set(provider, "")
}

// HasAnyConfigured reports whether at least one slot holds a non-empty
// secret after trimming.
func (s *Store) HasAnyConfigured() bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	for _, secret := range s.keys {
		if strings.TrimSpace(secret) != "" {
			return true
		}
	}
	return false
}

// FirstConfigured returns the first provider (in stable slot order) with a
// configured secret. Used by the scan path to pick the active credential.
func (s *Store) FirstConfigured() (Provider, string, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	for _, provider := range Providers {
		secret := strings.TrimSpace(s.keys[provider])
		if secret != "" {
			return provider, secret, true
		}
	}
	return "", "", false
}

// Subscribe registers an observer for mapping changes. Observers are called
// after the mutation has been persisted.
func (s *Store) Subscribe(observer Observer) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.observers = append(s.observers, observer)
}

// persistLocked writes the whole mapping under the fixed blob key. Caller
// holds the write lock.
func (s *Store) persistLocked() error {
	encoded, err := json.Marshal(s.keys)
	if err != nil {
		return err
	}
	return s.blobs.Set(storageKey, encoded)
}

// snapshotLocked copies the mapping for observer delivery. Caller holds a
// lock.
func (s *Store) snapshotLocked() map[Provider]string {
	snapshot := make(map[Provider]string, len(s.keys))
	for provider, secret := range s.keys {
		snapshot[provider] = secret
	}
	return snapshot
}
