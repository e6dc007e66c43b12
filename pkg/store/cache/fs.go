package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/seo-tools/searchledger/pkg/models/store"
)

// fsStore persists entries as one JSON document per key under
// <root>/<source>/<digest>.json, so a namespace can be inspected or wiped
// with nothing but shell tools.
type fsStore struct {
	root string
	mu   sync.Mutex
}

func NewFSStore(root string) (Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir %s: %w", root, err)
	}
	return &fsStore{root: root}, nil
}

func (s *fsStore) path(id string) string {
	return filepath.Join(s.root, filepath.FromSlash(id)+".json")
}

func (s *fsStore) Get(id string) (*store.CacheEntry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var entry store.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		// A torn or hand-edited file counts as absent; the next fetch
		// overwrites it.
		return nil, false, nil
	}
	return &entry, true, nil
}

func (s *fsStore) Put(entry *store.CacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cache entry %s: %w", entry.Key, err)
	}

	path := s.path(entry.Key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *fsStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (s *fsStore) List() ([]*store.CacheEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var entries []*store.CacheEntry
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		var entry store.CacheEntry
		if err := json.Unmarshal(data, &entry); err != nil {
			return nil
		}
		entries = append(entries, &entry)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *fsStore) Clear() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}
		if err := os.Remove(path); err != nil {
			return err
		}
		removed++
		return nil
	})
	if err != nil {
		return removed, err
	}
	return removed, nil
}
