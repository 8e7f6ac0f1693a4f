package storage

import (
	"context"
	"sync"

	"mercator-hq/cardvault/pkg/archive"
)

// MemoryStorage implements archive.Store using in-memory maps.
// Records are copied on the way in and out so callers never share state with
// the store.
type MemoryStorage struct {
	records map[archive.Collection]map[string]*archive.Record
	mu      sync.RWMutex
}

// NewMemoryStorage creates a new in-memory archive store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		records: newCollections(),
	}
}

func newCollections() map[archive.Collection]map[string]*archive.Record {
	m := make(map[archive.Collection]map[string]*archive.Record, len(archive.Collections))
	for _, c := range archive.Collections {
		m[c] = make(map[string]*archive.Record)
	}
	return m
}

// ListAll returns copies of every record in the collection.
func (s *MemoryStorage) ListAll(ctx context.Context, collection archive.Collection) ([]*archive.Record, error) {
	if !collection.Valid() {
		return nil, archive.NewStorageError("memory", "list_all", errUnknownCollection(collection))
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]*archive.Record, 0, len(s.records[collection]))
	for _, r := range s.records[collection] {
		results = append(results, r.Clone())
	}
	return results, nil
}

// Get returns a copy of the record or a *archive.NotFoundError.
func (s *MemoryStorage) Get(ctx context.Context, collection archive.Collection, archiveID string) (*archive.Record, error) {
	if !collection.Valid() {
		return nil, archive.NewStorageError("memory", "get", errUnknownCollection(collection))
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[collection][archiveID]
	if !ok {
		return nil, archive.NewNotFoundError(collection, archiveID)
	}
	return r.Clone(), nil
}

// Put upserts a copy of the record.
func (s *MemoryStorage) Put(ctx context.Context, collection archive.Collection, record *archive.Record) error {
	if !collection.Valid() {
		return archive.NewStorageError("memory", "put", errUnknownCollection(collection))
	}
	if err := record.Validate(); err != nil {
		return archive.NewStorageError("memory", "put", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[collection][record.ArchiveID] = record.Clone()
	return nil
}

// Delete removes the record; a missing id is ignored.
func (s *MemoryStorage) Delete(ctx context.Context, collection archive.Collection, archiveID string) error {
	if !collection.Valid() {
		return archive.NewStorageError("memory", "delete", errUnknownCollection(collection))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records[collection], archiveID)
	return nil
}

// BulkDelete removes all listed records under one lock, so the batch is
// applied atomically.
func (s *MemoryStorage) BulkDelete(ctx context.Context, collection archive.Collection, archiveIDs []string) error {
	if !collection.Valid() {
		return archive.NewStorageError("memory", "bulk_delete", errUnknownCollection(collection))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range archiveIDs {
		delete(s.records[collection], id)
	}
	return nil
}

// SetFavorite updates the flag under the write lock, so a concurrent delete
// either happens first and wins or happens after.
func (s *MemoryStorage) SetFavorite(ctx context.Context, collection archive.Collection, archiveID string, favorite bool) (*archive.Record, error) {
	if !collection.Valid() {
		return nil, archive.NewStorageError("memory", "set_favorite", errUnknownCollection(collection))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[collection][archiveID]
	if !ok {
		return nil, archive.NewNotFoundError(collection, archiveID)
	}
	r.IsFavorite = favorite
	return r.Clone(), nil
}

// Close drops all records.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = newCollections()
	return nil
}

// Size returns the number of records in a collection (for testing).
func (s *MemoryStorage) Size(collection archive.Collection) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records[collection])
}
