package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	json "github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"mercator-hq/cardvault/pkg/archive"
)

//go:embed migrations/*.sql
var migrations embed.FS

// timeLayout is fixed width so archived_at sorts correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const (
	encodingJSON = "json"
	encodingZstd = "zstd"
)

// SQLiteConfig contains configuration for the SQLite archive store.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections to the database.
	// Default: 4
	MaxOpenConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration

	// Compress stores payloads zstd-compressed.
	// Default: true
	Compress bool
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/archive.db",
		MaxOpenConns: 4,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
		Compress:     true,
	}
}

// SQLiteStorage implements archive.Store on SQLite. Both collections share
// one table keyed by (collection, archive_id).
type SQLiteStorage struct {
	db      *sql.DB
	config  *SQLiteConfig
	encoder *zstd.Encoder
	decoder *zstd.Decoder
	logger  *slog.Logger
}

// NewSQLiteStorage opens the database and applies pending schema migrations.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	if config.Path == "" {
		return nil, archive.NewStorageError("sqlite", "open", fmt.Errorf("db path cannot be empty"))
	}
	if config.MaxOpenConns <= 0 {
		config.MaxOpenConns = 4
	}
	if config.BusyTimeout <= 0 {
		config.BusyTimeout = 5 * time.Second
	}

	logger := slog.Default().With("component", "archive.storage.sqlite")

	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d&_foreign_keys=on", config.Path, config.BusyTimeout.Milliseconds())
	if config.WALMode {
		dsn += "&_journal_mode=WAL"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, archive.NewStorageError("sqlite", "open", err)
	}
	db.SetMaxOpenConns(config.MaxOpenConns)

	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		db.Close()
		return nil, archive.NewStorageError("sqlite", "init_compression", err)
	}
	decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	if err != nil {
		encoder.Close()
		db.Close()
		return nil, archive.NewStorageError("sqlite", "init_compression", err)
	}

	s := &SQLiteStorage{
		db:      db,
		config:  config,
		encoder: encoder,
		decoder: decoder,
		logger:  logger,
	}

	if err := s.migrate(context.Background()); err != nil {
		s.Close()
		return nil, err
	}

	logger.Info("SQLite archive storage initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
		"compress", config.Compress,
	)

	return s, nil
}

func (s *SQLiteStorage) migrate(ctx context.Context) error {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return archive.NewStorageError("sqlite", "migrate", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, s.db, fsys)
	if err != nil {
		return archive.NewStorageError("sqlite", "migrate", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return archive.NewStorageError("sqlite", "migrate", err)
	}
	for _, r := range results {
		s.logger.Debug("applied migration", "version", r.Source.Version, "duration", r.Duration)
	}
	return nil
}

// ListAll returns every record in the collection, oldest first.
func (s *SQLiteStorage) ListAll(ctx context.Context, collection archive.Collection) ([]*archive.Record, error) {
	if !collection.Valid() {
		return nil, archive.NewStorageError("sqlite", "list_all", errUnknownCollection(collection))
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT archive_id, item_id, item_type, archived_at, is_favorite, is_manual, payload, encoding
		FROM archive_records
		WHERE collection = ?
		ORDER BY archived_at ASC, archive_id ASC`, string(collection))
	if err != nil {
		return nil, archive.NewStorageError("sqlite", "list_all", err)
	}
	defer rows.Close()

	records := []*archive.Record{}
	for rows.Next() {
		r, err := s.scanRow(rows)
		if err != nil {
			return nil, archive.NewStorageError("sqlite", "scan", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, archive.NewStorageError("sqlite", "list_all", err)
	}
	return records, nil
}

// Get returns the record or a *archive.NotFoundError.
func (s *SQLiteStorage) Get(ctx context.Context, collection archive.Collection, archiveID string) (*archive.Record, error) {
	if !collection.Valid() {
		return nil, archive.NewStorageError("sqlite", "get", errUnknownCollection(collection))
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT archive_id, item_id, item_type, archived_at, is_favorite, is_manual, payload, encoding
		FROM archive_records
		WHERE collection = ? AND archive_id = ?`, string(collection), archiveID)
	if err != nil {
		return nil, archive.NewStorageError("sqlite", "get", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, archive.NewStorageError("sqlite", "get", err)
		}
		return nil, archive.NewNotFoundError(collection, archiveID)
	}

	r, err := s.scanRow(rows)
	if err != nil {
		return nil, archive.NewStorageError("sqlite", "scan", err)
	}
	return r, nil
}

// Put upserts the record.
func (s *SQLiteStorage) Put(ctx context.Context, collection archive.Collection, record *archive.Record) error {
	if !collection.Valid() {
		return archive.NewStorageError("sqlite", "put", errUnknownCollection(collection))
	}
	if err := record.Validate(); err != nil {
		return archive.NewStorageError("sqlite", "put", err)
	}

	payload, encoding, err := s.encodePayload(record.Payload)
	if err != nil {
		return archive.NewStorageError("sqlite", "encode", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO archive_records (
			collection, archive_id, item_id, item_type, archived_at,
			is_favorite, is_manual, payload, encoding
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(collection, archive_id) DO UPDATE SET
			item_id = excluded.item_id,
			item_type = excluded.item_type,
			archived_at = excluded.archived_at,
			is_favorite = excluded.is_favorite,
			is_manual = excluded.is_manual,
			payload = excluded.payload,
			encoding = excluded.encoding`,
		string(collection), record.ArchiveID, record.ItemID, string(record.ItemType),
		record.ArchivedAt.UTC().Format(timeLayout),
		record.IsFavorite, record.IsManual, payload, encoding,
	)
	if err != nil {
		return archive.NewStorageError("sqlite", "put", err)
	}
	return nil
}

// Delete removes the record; a missing id is ignored.
func (s *SQLiteStorage) Delete(ctx context.Context, collection archive.Collection, archiveID string) error {
	if !collection.Valid() {
		return archive.NewStorageError("sqlite", "delete", errUnknownCollection(collection))
	}

	_, err := s.db.ExecContext(ctx,
		`DELETE FROM archive_records WHERE collection = ? AND archive_id = ?`,
		string(collection), archiveID)
	if err != nil {
		return archive.NewStorageError("sqlite", "delete", err)
	}
	return nil
}

// BulkDelete removes all listed records in a single transaction.
func (s *SQLiteStorage) BulkDelete(ctx context.Context, collection archive.Collection, archiveIDs []string) error {
	if !collection.Valid() {
		return archive.NewStorageError("sqlite", "bulk_delete", errUnknownCollection(collection))
	}
	if len(archiveIDs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return archive.NewStorageError("sqlite", "bulk_delete", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `DELETE FROM archive_records WHERE collection = ? AND archive_id = ?`)
	if err != nil {
		return archive.NewStorageError("sqlite", "bulk_delete", err)
	}
	defer stmt.Close()

	for _, id := range archiveIDs {
		if _, err := stmt.ExecContext(ctx, string(collection), id); err != nil {
			return archive.NewStorageError("sqlite", "bulk_delete", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return archive.NewStorageError("sqlite", "bulk_delete", err)
	}
	return nil
}

// SetFavorite updates the flag with a conditional UPDATE and reads the row
// back in the same transaction.
func (s *SQLiteStorage) SetFavorite(ctx context.Context, collection archive.Collection, archiveID string, favorite bool) (*archive.Record, error) {
	if !collection.Valid() {
		return nil, archive.NewStorageError("sqlite", "set_favorite", errUnknownCollection(collection))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, archive.NewStorageError("sqlite", "set_favorite", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE archive_records SET is_favorite = ? WHERE collection = ? AND archive_id = ?`,
		favorite, string(collection), archiveID)
	if err != nil {
		return nil, archive.NewStorageError("sqlite", "set_favorite", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, archive.NewStorageError("sqlite", "set_favorite", err)
	}
	if n == 0 {
		return nil, archive.NewNotFoundError(collection, archiveID)
	}

	row := tx.QueryRowContext(ctx, `
		SELECT archive_id, item_id, item_type, archived_at, is_favorite, is_manual, payload, encoding
		FROM archive_records
		WHERE collection = ? AND archive_id = ?`, string(collection), archiveID)
	r, err := s.scanRow(row)
	if err != nil {
		return nil, archive.NewStorageError("sqlite", "scan", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, archive.NewStorageError("sqlite", "set_favorite", err)
	}
	return r, nil
}

// Close closes the database and the compression codecs.
func (s *SQLiteStorage) Close() error {
	s.decoder.Close()
	if err := s.encoder.Close(); err != nil {
		s.db.Close()
		return archive.NewStorageError("sqlite", "close", err)
	}
	if err := s.db.Close(); err != nil {
		return archive.NewStorageError("sqlite", "close", err)
	}
	return nil
}

func (s *SQLiteStorage) encodePayload(p archive.Payload) ([]byte, string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, "", err
	}
	if !s.config.Compress {
		return data, encodingJSON, nil
	}
	return s.encoder.EncodeAll(data, make([]byte, 0, len(data)/2)), encodingZstd, nil
}

func (s *SQLiteStorage) decodePayload(itemType archive.ItemType, data []byte, encoding string) (archive.Payload, error) {
	switch encoding {
	case encodingJSON:
	case encodingZstd:
		raw, err := s.decoder.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress payload: %w", err)
		}
		data = raw
	default:
		return nil, fmt.Errorf("unknown payload encoding %q", encoding)
	}
	return archive.DecodePayload(itemType, data)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *SQLiteStorage) scanRow(row rowScanner) (*archive.Record, error) {
	var (
		r          archive.Record
		itemType   string
		archivedAt string
		payload    []byte
		encoding   string
	)
	if err := row.Scan(&r.ArchiveID, &r.ItemID, &itemType, &archivedAt, &r.IsFavorite, &r.IsManual, &payload, &encoding); err != nil {
		return nil, err
	}

	t, err := time.Parse(timeLayout, archivedAt)
	if err != nil {
		return nil, fmt.Errorf("record %q: invalid archived_at %q: %w", r.ArchiveID, archivedAt, err)
	}
	r.ArchivedAt = t
	r.ItemType = archive.ItemType(itemType)

	r.Payload, err = s.decodePayload(r.ItemType, payload, encoding)
	if err != nil {
		return nil, fmt.Errorf("record %q: %w", r.ArchiveID, err)
	}
	return &r, nil
}

func errUnknownCollection(c archive.Collection) error {
	return fmt.Errorf("unknown collection %q", c)
}
