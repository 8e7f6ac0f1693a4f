package storage

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"mercator-hq/cardvault/pkg/archive"
)

// countingStore counts Get calls that reach the underlying store.
type countingStore struct {
	*MemoryStorage
	gets int
}

func (s *countingStore) Get(ctx context.Context, c archive.Collection, id string) (*archive.Record, error) {
	s.gets++
	return s.MemoryStorage.Get(ctx, c, id)
}

func TestCachedStorage_ServesRepeatReadsFromCache(t *testing.T) {
	next := &countingStore{MemoryStorage: NewMemoryStorage()}
	store := NewCachedStorage(next, CacheConfig{SizeMB: 1})
	ctx := context.Background()

	if err := store.Put(ctx, archive.CollectionTrash, packRecord("p1", baseTime)); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := store.Get(ctx, archive.CollectionTrash, "p1"); err != nil {
			t.Fatalf("Get() failed: %v", err)
		}
	}

	if next.gets != 1 {
		t.Errorf("underlying Get called %d times, want 1", next.gets)
	}
	hits, misses := store.Stats()
	if hits != 2 || misses != 1 {
		t.Errorf("Stats() = (%d, %d), want (2, 1)", hits, misses)
	}
}

func TestCachedStorage_InvalidatesOnWrites(t *testing.T) {
	next := &countingStore{MemoryStorage: NewMemoryStorage()}
	store := NewCachedStorage(next, CacheConfig{SizeMB: 1, TTL: time.Hour})
	ctx := context.Background()

	tests := []struct {
		name  string
		write func() error
		gone  bool
	}{
		{
			name: "put",
			write: func() error {
				r := packRecord("p1", baseTime)
				r.IsFavorite = true
				return store.Put(ctx, archive.CollectionTrash, r)
			},
		},
		{
			name:  "delete",
			write: func() error { return store.Delete(ctx, archive.CollectionTrash, "p1") },
			gone:  true,
		},
		{
			name:  "bulk delete",
			write: func() error { return store.BulkDelete(ctx, archive.CollectionTrash, []string{"p1"}) },
			gone:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := store.Put(ctx, archive.CollectionTrash, packRecord("p1", baseTime)); err != nil {
				t.Fatalf("Put() failed: %v", err)
			}
			if _, err := store.Get(ctx, archive.CollectionTrash, "p1"); err != nil {
				t.Fatalf("Get() failed: %v", err)
			}

			if err := tt.write(); err != nil {
				t.Fatalf("write failed: %v", err)
			}

			got, err := store.Get(ctx, archive.CollectionTrash, "p1")
			if tt.gone {
				if !errors.Is(err, archive.ErrNotFound) {
					t.Errorf("expected ErrNotFound after %s, got %v", tt.name, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Get() failed: %v", err)
			}
			if !got.IsFavorite {
				t.Error("stale record served after put")
			}
		})
	}
}

func TestCachedStorage_MissesAreNotCached(t *testing.T) {
	next := &countingStore{MemoryStorage: NewMemoryStorage()}
	store := NewCachedStorage(next, CacheConfig{SizeMB: 1})
	ctx := context.Background()

	if _, err := store.Get(ctx, archive.CollectionHistory, "h1"); !errors.Is(err, archive.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := next.Put(ctx, archive.CollectionHistory, deckRecord("h1", "d1", baseTime)); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}
	if _, err := store.Get(ctx, archive.CollectionHistory, "h1"); err != nil {
		t.Errorf("record written behind the cache not visible: %v", err)
	}
}

// pausingStore holds the first Get after it has read the record, until
// release is closed.
type pausingStore struct {
	*MemoryStorage
	once    sync.Once
	loaded  chan struct{}
	release chan struct{}
}

func (s *pausingStore) Get(ctx context.Context, c archive.Collection, id string) (*archive.Record, error) {
	r, err := s.MemoryStorage.Get(ctx, c, id)
	s.once.Do(func() {
		close(s.loaded)
		<-s.release
	})
	return r, err
}

func TestCachedStorage_DeleteDuringLoadIsNotCached(t *testing.T) {
	tests := []struct {
		name  string
		write func(ctx context.Context, store *CachedStorage) error
	}{
		{
			name: "bulk delete",
			write: func(ctx context.Context, store *CachedStorage) error {
				return store.BulkDelete(ctx, archive.CollectionTrash, []string{"x"})
			},
		},
		{
			name: "delete",
			write: func(ctx context.Context, store *CachedStorage) error {
				return store.Delete(ctx, archive.CollectionTrash, "x")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := &pausingStore{
				MemoryStorage: NewMemoryStorage(),
				loaded:        make(chan struct{}),
				release:       make(chan struct{}),
			}
			store := NewCachedStorage(next, CacheConfig{SizeMB: 1, TTL: time.Hour})
			ctx := context.Background()

			if err := next.MemoryStorage.Put(ctx, archive.CollectionTrash, packRecord("x", baseTime)); err != nil {
				t.Fatalf("Put() failed: %v", err)
			}

			done := make(chan error, 1)
			go func() {
				_, err := store.Get(ctx, archive.CollectionTrash, "x")
				done <- err
			}()

			<-next.loaded
			if err := tt.write(ctx, store); err != nil {
				t.Fatalf("write failed: %v", err)
			}
			close(next.release)

			if err := <-done; err != nil {
				t.Fatalf("Get() failed: %v", err)
			}

			if next.Size(archive.CollectionTrash) != 0 {
				t.Fatalf("underlying store still holds the record")
			}
			if r, err := store.Get(ctx, archive.CollectionTrash, "x"); !errors.Is(err, archive.ErrNotFound) {
				t.Errorf("deleted record served from cache: record=%v err=%v", r, err)
			}
		})
	}
}

func TestCachedStorage_SetFavoriteInvalidates(t *testing.T) {
	store := NewCachedStorage(NewMemoryStorage(), CacheConfig{SizeMB: 1, TTL: time.Hour})
	ctx := context.Background()

	if err := store.Put(ctx, archive.CollectionHistory, deckRecord("h1", "d1", baseTime)); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}
	if _, err := store.Get(ctx, archive.CollectionHistory, "h1"); err != nil {
		t.Fatalf("Get() failed: %v", err)
	}

	if _, err := store.SetFavorite(ctx, archive.CollectionHistory, "h1", true); err != nil {
		t.Fatalf("SetFavorite() failed: %v", err)
	}

	got, err := store.Get(ctx, archive.CollectionHistory, "h1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if !got.IsFavorite {
		t.Error("stale record served after SetFavorite")
	}
}
