// Package cache implements a TTL cache for upstream source responses. It
// exists to keep interactive report runs fast and to stay polite to rate
// limited upstream APIs: every fetch goes through GetOrFetch so repeated
// report calls within a TTL window never touch the network.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/seo-tools/searchledger/pkg/metrics"
	"github.com/seo-tools/searchledger/pkg/models/store"
)

const DefaultTTL = 15 * time.Minute

// Key identifies one cacheable source call. Params carries any call
// arguments beyond the window (row limits and the like) in a canonical
// "k=v" form chosen by the caller.
type Key struct {
	Source     string
	WindowDays int
	Params     string
}

// ID returns the storage identifier for the key: the source namespace plus
// a digest of the canonical key string. Hashing keeps identifiers filename
// safe regardless of what ends up in Params.
func (k Key) ID() string {
	canonical := fmt.Sprintf("%s|days=%d|%s", k.Source, k.WindowDays, k.Params)
	digest := sha256.Sum256([]byte(canonical))
	return k.Source + "/" + hex.EncodeToString(digest[:])
}

// Store is the persistence backend for cache entries. Implementations must
// be safe for concurrent use.
type Store interface {
	Get(id string) (*store.CacheEntry, bool, error)
	Put(entry *store.CacheEntry) error
	Delete(id string) error
	List() ([]*store.CacheEntry, error)
	Clear() (int, error)
}

// Settings tune cache behavior. The zero value is usable: entries expire
// after DefaultTTL and time comes from the wall clock.
type Settings struct {
	DefaultTTL  time.Duration
	TTLBySource map[string]time.Duration

	// Clock overrides time.Now, letting tests drive expiry directly.
	Clock func() time.Time
}

type Cache struct {
	store    Store
	settings Settings
	logger   zerolog.Logger
	metrics  *metrics.Metrics
	group    singleflight.Group
}

func New(logger zerolog.Logger, backend Store, settings Settings, m *metrics.Metrics) *Cache {
	if settings.DefaultTTL <= 0 {
		settings.DefaultTTL = DefaultTTL
	}
	if settings.Clock == nil {
		settings.Clock = time.Now
	}

	return &Cache{
		store:    backend,
		settings: settings,
		logger:   logger,
		metrics:  m,
	}
}

func (c *Cache) ttlFor(source string) time.Duration {
	if ttl, ok := c.settings.TTLBySource[source]; ok && ttl > 0 {
		return ttl
	}
	return c.settings.DefaultTTL
}

type flightResult struct {
	payload   json.RawMessage
	fromCache bool
}

// GetOrFetch returns the cached payload for key when a valid entry exists,
// otherwise it invokes fetch, stores the result and returns it. The second
// return value reports whether the payload came from the cache. A failed
// fetch stores nothing and the error is returned unchanged. Concurrent
// calls for the same key are collapsed into a single fetch.
func (c *Cache) GetOrFetch(ctx context.Context, key Key, fetch func(ctx context.Context) (json.RawMessage, error)) (json.RawMessage, bool, error) {
	id := key.ID()

	v, err, _ := c.group.Do(id, func() (interface{}, error) {
		now := c.settings.Clock()

		entry, ok, err := c.store.Get(id)
		if err != nil {
			return nil, fmt.Errorf("read cache entry %s: %w", id, err)
		}
		if ok {
			if !entry.Expired(now) {
				c.metrics.RecordCacheHit(key.Source)
				return flightResult{payload: entry.Payload, fromCache: true}, nil
			}
			// Expired entries are evicted lazily, on the read that
			// finds them stale.
			if err := c.store.Delete(id); err != nil {
				c.logger.Warn().Err(err).Str("key", id).Msg("failed to evict expired cache entry")
			}
		}

		c.metrics.RecordCacheMiss(key.Source)
		payload, err := fetch(ctx)
		if err != nil {
			return nil, err
		}

		entry = &store.CacheEntry{
			Key:        id,
			Source:     key.Source,
			WindowDays: key.WindowDays,
			Params:     key.Params,
			Payload:    payload,
			FetchedAt:  now,
			TTLSeconds: int64(c.ttlFor(key.Source) / time.Second),
		}
		if err := c.store.Put(entry); err != nil {
			// The fetch succeeded, so serve the payload and only log
			// the persistence failure.
			c.logger.Warn().Err(err).Str("key", id).Msg("failed to store cache entry")
		}

		return flightResult{payload: payload, fromCache: false}, nil
	})
	if err != nil {
		return nil, false, err
	}

	res := v.(flightResult)
	return res.payload, res.fromCache, nil
}

// GetOrFetchAs is the typed convenience wrapper around GetOrFetch for
// sources that return row slices.
func GetOrFetchAs[T any](ctx context.Context, c *Cache, key Key, fetch func(ctx context.Context) ([]T, error)) ([]T, bool, error) {
	payload, fromCache, err := c.GetOrFetch(ctx, key, func(ctx context.Context) (json.RawMessage, error) {
		rows, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(rows)
	})
	if err != nil {
		return nil, false, err
	}

	var rows []T
	if err := json.Unmarshal(payload, &rows); err != nil {
		return nil, false, fmt.Errorf("decode cached %s payload: %w", key.Source, err)
	}
	return rows, fromCache, nil
}

// Stats aggregates the stored entries per source namespace. Validity is
// judged against the cache clock at call time.
func (c *Cache) Stats() ([]store.CacheNamespaceStats, error) {
	entries, err := c.store.List()
	if err != nil {
		return nil, fmt.Errorf("list cache entries: %w", err)
	}

	now := c.settings.Clock()
	bySource := make(map[string]*store.CacheNamespaceStats)
	for _, entry := range entries {
		ns, ok := bySource[entry.Source]
		if !ok {
			ns = &store.CacheNamespaceStats{Source: entry.Source}
			bySource[entry.Source] = ns
		}
		ns.TotalEntries++
		if !entry.Expired(now) {
			ns.ValidEntries++
		}
		ns.SizeBytes += int64(len(entry.Payload))
	}

	stats := make([]store.CacheNamespaceStats, 0, len(bySource))
	for _, ns := range bySource {
		stats = append(stats, *ns)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Source < stats[j].Source })

	return stats, nil
}

// Clear drops every entry and returns how many were removed.
func (c *Cache) Clear() (int, error) {
	removed, err := c.store.Clear()
	if err != nil {
		return 0, fmt.Errorf("clear cache: %w", err)
	}
	return removed, nil
}
