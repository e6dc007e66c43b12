package cache

import (
	"sync"

	"github.com/seo-tools/searchledger/pkg/models/store"
)

// memoryStore keeps entries in a map, for callers that gain nothing from
// persisting across processes.
type memoryStore struct {
	mu      sync.RWMutex
	entries map[string]store.CacheEntry
}

func NewMemoryStore() Store {
	return &memoryStore{entries: make(map[string]store.CacheEntry)}
}

func (s *memoryStore) Get(id string) (*store.CacheEntry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[id]
	if !ok {
		return nil, false, nil
	}
	return &entry, true, nil
}

func (s *memoryStore) Put(entry *store.CacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[entry.Key] = *entry
	return nil
}

func (s *memoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, id)
	return nil
}

func (s *memoryStore) List() ([]*store.CacheEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]*store.CacheEntry, 0, len(s.entries))
	for id := range s.entries {
		entry := s.entries[id]
		entries = append(entries, &entry)
	}
	return entries, nil
}

func (s *memoryStore) Clear() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := len(s.entries)
	s.entries = make(map[string]store.CacheEntry)
	return removed, nil
}
