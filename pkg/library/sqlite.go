package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	json "github.com/goccy/go-json"
	_ "modernc.org/sqlite" // SQLite driver
)

const librarySchema = `
CREATE TABLE IF NOT EXISTS packs (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    cover_url TEXT NOT NULL DEFAULT '',
    tags TEXT NOT NULL DEFAULT '[]',
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS cards (
    id TEXT NOT NULL,
    pack_id TEXT NOT NULL REFERENCES packs(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    rarity TEXT NOT NULL DEFAULT '',
    image_url TEXT NOT NULL DEFAULT '',
    weight REAL NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    PRIMARY KEY (pack_id, id)
);

CREATE TABLE IF NOT EXISTS decks (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    main_counts TEXT NOT NULL DEFAULT '{}',
    side_counts TEXT NOT NULL DEFAULT '{}',
    extra_counts TEXT NOT NULL DEFAULT '{}',
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);
`

// SQLiteConfig configures the SQLite live store.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// SQLiteStore implements Store on a pure-Go SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

// NewSQLiteStore opens (and if needed creates) the live-entity database.
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)",
		cfg.Path, cfg.BusyTimeout.Milliseconds())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Writes are serialized by SQLite anyway; one connection keeps the
	// pragmas consistent.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(librarySchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	logger := slog.Default().With("component", "library.sqlite")
	logger.Info("library store initialized", "path", cfg.Path)

	return &SQLiteStore{db: db, logger: logger, now: time.Now}, nil
}

// GetPack returns the pack or ErrNotFound.
func (s *SQLiteStore) GetPack(ctx context.Context, packID string) (*Pack, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, cover_url, tags, created_at, updated_at FROM packs WHERE id = ?`, packID)

	var (
		p    Pack
		tags string
	)
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.CoverURL, &tags, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("pack %q: %w", packID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load pack %q: %w", packID, err)
	}
	if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags of pack %q: %w", packID, err)
	}
	return &p, nil
}

// ListCards returns the pack's cards ordered by id.
func (s *SQLiteStore) ListCards(ctx context.Context, packID string) ([]Card, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, pack_id, name, rarity, image_url, weight, created_at, updated_at
		 FROM cards WHERE pack_id = ? ORDER BY id`, packID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards of pack %q: %w", packID, err)
	}
	defer rows.Close()

	cards := []Card{}
	for rows.Next() {
		var c Card
		if err := rows.Scan(&c.ID, &c.PackID, &c.Name, &c.Rarity, &c.ImageURL, &c.Weight, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list cards of pack %q: %w", packID, err)
	}
	return cards, nil
}

// SavePack upserts the pack and replaces its card set in one transaction.
func (s *SQLiteStore) SavePack(ctx context.Context, pack Pack, cards []Card) (*Pack, error) {
	if pack.ID == "" {
		return nil, fmt.Errorf("pack id is required")
	}
	for _, c := range cards {
		if c.PackID != pack.ID {
			return nil, fmt.Errorf("card %q belongs to pack %q, not %q", c.ID, c.PackID, pack.ID)
		}
	}

	now := s.now().UTC()
	if pack.CreatedAt.IsZero() {
		pack.CreatedAt = now
	}
	if pack.UpdatedAt.IsZero() {
		pack.UpdatedAt = now
	}
	tags, err := json.Marshal(pack.Tags)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tags: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO packs (id, name, description, cover_url, tags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			cover_url = excluded.cover_url,
			tags = excluded.tags,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at`,
		pack.ID, pack.Name, pack.Description, pack.CoverURL, string(tags), pack.CreatedAt, pack.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save pack %q: %w", pack.ID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM cards WHERE pack_id = ?`, pack.ID); err != nil {
		return nil, fmt.Errorf("failed to replace cards of pack %q: %w", pack.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cards (id, pack_id, name, rarity, image_url, weight, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare card insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range cards {
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		if c.UpdatedAt.IsZero() {
			c.UpdatedAt = now
		}
		if _, err := stmt.ExecContext(ctx, c.ID, c.PackID, c.Name, c.Rarity, c.ImageURL, c.Weight, c.CreatedAt, c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to save card %q: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit pack %q: %w", pack.ID, err)
	}

	out := pack.Clone()
	return &out, nil
}

// DeletePack removes the pack and its cards.
func (s *SQLiteStore) DeletePack(ctx context.Context, packID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM cards WHERE pack_id = ?`, packID); err != nil {
		return fmt.Errorf("failed to delete cards of pack %q: %w", packID, err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM packs WHERE id = ?`, packID)
	if err != nil {
		return fmt.Errorf("failed to delete pack %q: %w", packID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("pack %q: %w", packID, ErrNotFound)
	}
	return tx.Commit()
}

// BulkDeletePacks removes every listed pack in one transaction.
func (s *SQLiteStore) BulkDeletePacks(ctx context.Context, packIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, id := range packIDs {
		if _, err := tx.ExecContext(ctx, `DELETE FROM cards WHERE pack_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete cards of pack %q: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM packs WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete pack %q: %w", id, err)
		}
	}
	return tx.Commit()
}

// GetDeck returns the deck or ErrNotFound.
func (s *SQLiteStore) GetDeck(ctx context.Context, deckID string) (*Deck, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, main_counts, side_counts, extra_counts, created_at, updated_at
		 FROM decks WHERE id = ?`, deckID)

	var (
		d                 Deck
		main, side, extra string
	)
	err := row.Scan(&d.ID, &d.Name, &d.Description, &main, &side, &extra, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("deck %q: %w", deckID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load deck %q: %w", deckID, err)
	}

	for _, zone := range []struct {
		raw string
		dst *CardCounts
	}{{main, &d.Main}, {side, &d.Side}, {extra, &d.Extra}} {
		if err := json.Unmarshal([]byte(zone.raw), zone.dst); err != nil {
			return nil, fmt.Errorf("failed to decode counts of deck %q: %w", deckID, err)
		}
	}
	return &d, nil
}

// SaveDeck upserts the deck.
func (s *SQLiteStore) SaveDeck(ctx context.Context, deck Deck) (*Deck, error) {
	if deck.ID == "" {
		return nil, fmt.Errorf("deck id is required")
	}

	now := s.now().UTC()
	if deck.CreatedAt.IsZero() {
		deck.CreatedAt = now
	}
	if deck.UpdatedAt.IsZero() {
		deck.UpdatedAt = now
	}

	encoded := make([]string, 0, 3)
	for _, zone := range []CardCounts{deck.Main, deck.Side, deck.Extra} {
		b, err := json.Marshal(zone.Clone())
		if err != nil {
			return nil, fmt.Errorf("failed to encode counts of deck %q: %w", deck.ID, err)
		}
		encoded = append(encoded, string(b))
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO decks (id, name, description, main_counts, side_counts, extra_counts, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			main_counts = excluded.main_counts,
			side_counts = excluded.side_counts,
			extra_counts = excluded.extra_counts,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at`,
		deck.ID, deck.Name, deck.Description, encoded[0], encoded[1], encoded[2], deck.CreatedAt, deck.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save deck %q: %w", deck.ID, err)
	}

	out := deck.Clone()
	return &out, nil
}

// DeleteDeck removes the deck.
func (s *SQLiteStore) DeleteDeck(ctx context.Context, deckID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM decks WHERE id = ?`, deckID)
	if err != nil {
		return fmt.Errorf("failed to delete deck %q: %w", deckID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("deck %q: %w", deckID, ErrNotFound)
	}
	return nil
}

// BulkDeleteDecks removes every listed deck in one transaction.
func (s *SQLiteStore) BulkDeleteDecks(ctx context.Context, deckIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, id := range deckIDs {
		if _, err := tx.ExecContext(ctx, `DELETE FROM decks WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete deck %q: %w", id, err)
		}
	}
	return tx.Commit()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
