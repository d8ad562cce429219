package kvstore

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// FileStore is a file-backed key-value store for opaque JSON blobs. The
// whole map is kept in memory and flushed to a single JSON document on
// every mutation, via write-temp-then-rename so a crash never leaves a
// torn file behind.
type FileStore struct {
	path  string
	mutex sync.Mutex
	data  map[string]json.RawMessage
}

// NewFileStore opens (or creates) a store at path. A missing file starts
// the store empty; an unreadable or corrupt file is logged and also starts
// the store empty rather than failing.
func NewFileStore(path string) *FileStore {
	s := &FileStore{
		path: path,
		data: make(map[string]json.RawMessage),
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[KVStore] Failed reading %s, starting empty: %v", path, err)
		}
		return s
	}

	if err := json.Unmarshal(raw, &s.data); err != nil {
		log.Printf("[KVStore] Failed decoding %s, starting empty: %v", path, err)
		s.data = make(map[string]json.RawMessage)
	}
	return s
}

// Get returns the blob stored under key.
func (s *FileStore) Get(key string) ([]byte, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	value, ok := s.data[key]
	if !ok {
		return nil, false
	}
	return value, true
}

// Set overwrites the blob under key and persists the whole store before
// returning.
func (s *FileStore) Set(key string, value []byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.data[key] = json.RawMessage(value)
	return s.flush()
}

// Delete removes the blob under key and persists. Removing an absent key
// still rewrites the file.
func (s *FileStore) Delete(key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.data, key)
	return s.flush()
}

// flush writes the full map to disk atomically. Caller holds the mutex.
func (s *FileStore) flush() error {
	encoded, err := json.Marshal(s.data)
	if err != nil {
		return fmt.Errorf("failed to encode store: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".kvstore-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(encoded); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close store file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace store file: %w", err)
	}
	return nil
}
