package store

import (
	"encoding/json"
	"time"
)

// CacheEntry is one stored source response together with the metadata
// needed to expire and account for it.
type CacheEntry struct {
	Key        string          `json:"key"`
	Source     string          `json:"source"`
	WindowDays int             `json:"window_days"`
	Params     string          `json:"params,omitempty"`
	Payload    json.RawMessage `json:"payload"`
	FetchedAt  time.Time       `json:"fetched_at"`
	TTLSeconds int64           `json:"ttl_seconds"`
}

// Expired reports whether the entry has outlived its TTL at the given time.
func (e *CacheEntry) Expired(now time.Time) bool {
	return now.Sub(e.FetchedAt) > time.Duration(e.TTLSeconds)*time.Second
}

// CacheNamespaceStats describes one source namespace inside the cache.
type CacheNamespaceStats struct {
	Source       string `json:"source"`
	TotalEntries int    `json:"total_entries"`
	ValidEntries int    `json:"valid_entries"`
	SizeBytes    int64  `json:"size_bytes"`
}
