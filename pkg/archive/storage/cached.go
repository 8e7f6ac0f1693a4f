package storage

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/coocood/freecache"

	"mercator-hq/cardvault/pkg/archive"
	"mercator-hq/cardvault/pkg/telemetry/metrics"
)

// minCacheSize is the smallest cache freecache will allocate (512KB).
const minCacheSize = 512 * 1024

// CacheConfig configures the read-through record cache.
type CacheConfig struct {
	// SizeMB is the cache capacity in megabytes.
	SizeMB int

	// TTL bounds how long a cached record is served. Zero means no expiry.
	TTL time.Duration

	// Metrics receives hit and miss counts. Optional.
	Metrics *metrics.Collector
}

// CachedStorage is a read-through cache in front of another archive.Store.
// Single-record reads are served from the cache; every write invalidates
// the affected keys both before and after it reaches the underlying store.
//
// Every invalidation bumps a write generation. A read that missed only
// fills the cache if no write started or finished while it was loading,
// so a record deleted during the load is never cached.
type CachedStorage struct {
	next    archive.Store
	cache   *freecache.Cache
	ttl     int
	metrics *metrics.Collector
	logger  *slog.Logger

	mu         sync.Mutex
	generation uint64
}

// NewCachedStorage wraps next with a freecache-backed record cache.
func NewCachedStorage(next archive.Store, config CacheConfig) *CachedStorage {
	size := config.SizeMB * 1024 * 1024
	if size < minCacheSize {
		size = minCacheSize
	}

	logger := slog.Default().With("component", "archive.storage.cache")
	logger.Info("archive record cache initialized", "size_mb", config.SizeMB, "ttl", config.TTL)

	return &CachedStorage{
		next:    next,
		cache:   freecache.NewCache(size),
		ttl:     int(config.TTL.Seconds()),
		metrics: config.Metrics,
		logger:  logger,
	}
}

func cacheKey(collection archive.Collection, archiveID string) []byte {
	return []byte(string(collection) + "/" + archiveID)
}

// ListAll always reads from the underlying store.
func (s *CachedStorage) ListAll(ctx context.Context, collection archive.Collection) ([]*archive.Record, error) {
	return s.next.ListAll(ctx, collection)
}

// Get serves a record from the cache, falling back to the underlying store.
func (s *CachedStorage) Get(ctx context.Context, collection archive.Collection, archiveID string) (*archive.Record, error) {
	key := cacheKey(collection, archiveID)

	if data, err := s.cache.Get(key); err == nil {
		r, err := archive.UnmarshalRecord(data)
		if err == nil {
			s.metrics.RecordCacheLookup(string(collection), true)
			return r, nil
		}
		// A corrupt entry is dropped and reloaded.
		s.logger.Warn("dropping undecodable cache entry", "key", string(key), "error", err)
		s.cache.Del(key)
	}
	s.metrics.RecordCacheLookup(string(collection), false)

	s.mu.Lock()
	gen := s.generation
	s.mu.Unlock()

	r, err := s.next.Get(ctx, collection, archiveID)
	if err != nil {
		return nil, err
	}

	s.fill(key, r, gen)
	return r, nil
}

// fill caches r unless a write invalidated the cache since gen was read.
func (s *CachedStorage) fill(key []byte, r *archive.Record, gen uint64) {
	data, err := archive.MarshalRecord(r)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != gen {
		s.logger.Debug("skipping cache fill raced by a write", "key", string(key))
		return
	}
	if err := s.cache.Set(key, data, s.ttl); err != nil {
		s.logger.Debug("record not cached", "key", string(key), "error", err)
	}
	s.metrics.SetCacheEntries(s.cache.EntryCount())
}

// invalidate drops the keys and bumps the write generation.
func (s *CachedStorage) invalidate(keys ...[]byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	for _, key := range keys {
		s.cache.Del(key)
	}
}

// Put writes through and invalidates the cached entry.
func (s *CachedStorage) Put(ctx context.Context, collection archive.Collection, record *archive.Record) error {
	if record != nil {
		key := cacheKey(collection, record.ArchiveID)
		s.invalidate(key)
		defer s.invalidate(key)
	}
	return s.next.Put(ctx, collection, record)
}

// Delete writes through and invalidates the cached entry.
func (s *CachedStorage) Delete(ctx context.Context, collection archive.Collection, archiveID string) error {
	key := cacheKey(collection, archiveID)
	s.invalidate(key)
	defer s.invalidate(key)
	return s.next.Delete(ctx, collection, archiveID)
}

// BulkDelete writes through and invalidates every listed entry.
func (s *CachedStorage) BulkDelete(ctx context.Context, collection archive.Collection, archiveIDs []string) error {
	keys := make([][]byte, 0, len(archiveIDs))
	for _, id := range archiveIDs {
		keys = append(keys, cacheKey(collection, id))
	}
	s.invalidate(keys...)
	defer s.invalidate(keys...)
	return s.next.BulkDelete(ctx, collection, archiveIDs)
}

// SetFavorite writes through and invalidates the cached entry.
func (s *CachedStorage) SetFavorite(ctx context.Context, collection archive.Collection, archiveID string, favorite bool) (*archive.Record, error) {
	key := cacheKey(collection, archiveID)
	s.invalidate(key)
	defer s.invalidate(key)
	return s.next.SetFavorite(ctx, collection, archiveID, favorite)
}

// Close clears the cache and closes the underlying store.
func (s *CachedStorage) Close() error {
	s.cache.Clear()
	return s.next.Close()
}

// Stats returns the cache hit and miss counts.
func (s *CachedStorage) Stats() (hits, misses int64) {
	return s.cache.HitCount(), s.cache.MissCount()
}
