// Package storage provides archive.Store backends for the trash and history
// collections.
//
// # Storage Backends
//
//   - SQLite: durable storage in a single file (mattn/go-sqlite3)
//   - Memory: in-memory storage for tests and ephemeral runs
//   - Cached: a freecache read-through layer in front of either of the above
//
// # SQLite Backend
//
// The schema is versioned with goose migrations embedded in the binary and
// applied on open. Both collections share one table keyed by
// (collection, archive_id). Payloads are stored as JSON, zstd-compressed
// unless compression is disabled; the encoding column records which one was
// used so both can be read back.
//
//	store, err := storage.NewSQLiteStorage(&storage.SQLiteConfig{
//	    Path:        "data/archive.db",
//	    WALMode:     true,
//	    BusyTimeout: 5 * time.Second,
//	    Compress:    true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
// # Thread Safety
//
// All backends are safe for concurrent use. BulkDelete is atomic in every
// backend: either all listed records are removed or none are.
package storage
