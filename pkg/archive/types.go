package archive

import (
	"context"
	"fmt"
	"time"

	"mercator-hq/cardvault/pkg/library"
)

// ItemType identifies the kind of entity an archive record holds. It selects
// both the retention policy and the payload variant.
type ItemType string

const (
	// ItemTypePackBundle is a pack together with all of its cards.
	ItemTypePackBundle ItemType = "packBundle"
	// ItemTypeDeck is a deck with its main, side and extra zones.
	ItemTypeDeck ItemType = "deck"
)

// ItemTypes lists every item type in a stable order.
var ItemTypes = []ItemType{ItemTypePackBundle, ItemTypeDeck}

// Valid reports whether t is a known item type.
func (t ItemType) Valid() bool {
	return t == ItemTypePackBundle || t == ItemTypeDeck
}

// ParseItemType converts a string to an ItemType.
func ParseItemType(s string) (ItemType, error) {
	t := ItemType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown item type %q (expected %q or %q)", s, ItemTypePackBundle, ItemTypeDeck)
	}
	return t, nil
}

// Collection names one of the two archive collections.
type Collection string

const (
	// CollectionTrash holds soft-deleted entities whose live copy is gone.
	CollectionTrash Collection = "trash"
	// CollectionHistory holds snapshots of entities that remain live.
	CollectionHistory Collection = "history"
)

// Collections lists every collection in a stable order.
var Collections = []Collection{CollectionTrash, CollectionHistory}

// Valid reports whether c is a known collection.
func (c Collection) Valid() bool {
	return c == CollectionTrash || c == CollectionHistory
}

// ParseCollection converts a string to a Collection.
func ParseCollection(s string) (Collection, error) {
	c := Collection(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown collection %q (expected %q or %q)", s, CollectionTrash, CollectionHistory)
	}
	return c, nil
}

// Record is the persisted unit of an archive collection.
type Record struct {
	// ArchiveID is unique within the collection. In the trash it equals
	// ItemID; in the history it is a fresh id per snapshot.
	ArchiveID string

	// ItemID is the id of the live entity the record was taken from.
	ItemID string

	ItemType ItemType

	// ArchivedAt orders records and drives age-based eviction.
	ArchivedAt time.Time

	// IsFavorite exempts the record from count-based eviction only.
	IsFavorite bool

	// IsManual is true when a user triggered the archival. Informational.
	IsManual bool

	Payload Payload
}

// Validate checks the record's identity fields and that the payload variant
// matches ItemType.
func (r *Record) Validate() error {
	if r.ArchiveID == "" {
		return fmt.Errorf("archive id is required")
	}
	if r.ItemID == "" {
		return fmt.Errorf("item id is required")
	}
	if !r.ItemType.Valid() {
		return fmt.Errorf("unknown item type %q", r.ItemType)
	}
	if r.Payload == nil {
		return fmt.Errorf("record %q has no payload", r.ArchiveID)
	}
	if got := r.Payload.ItemType(); got != r.ItemType {
		return fmt.Errorf("record %q: item type %q does not match payload %q", r.ArchiveID, r.ItemType, got)
	}
	return nil
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	out := *r
	if r.Payload != nil {
		out.Payload = r.Payload.clone()
	}
	return &out
}

// Payload is the archived entity. It is a closed set: *PackBundle or
// *DeckSnapshot.
type Payload interface {
	ItemType() ItemType
	clone() Payload
}

// PackBundle is a pack and its complete card list. Every card references
// Pack.ID.
type PackBundle struct {
	Pack  library.Pack   `json:"pack"`
	Cards []library.Card `json:"cards"`
}

// ItemType implements Payload.
func (b *PackBundle) ItemType() ItemType { return ItemTypePackBundle }

func (b *PackBundle) clone() Payload {
	out := &PackBundle{Pack: b.Pack.Clone()}
	if b.Cards != nil {
		out.Cards = append([]library.Card(nil), b.Cards...)
	}
	return out
}

// CardCount is one entry of a deck zone in archived form.
type CardCount struct {
	CardID string `json:"card_id"`
	Count  int    `json:"count"`
}

// DeckSnapshot is a deck with its zones stored as ordered (card, count)
// lists instead of maps.
type DeckSnapshot struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Main        []CardCount `json:"main"`
	Side        []CardCount `json:"side"`
	Extra       []CardCount `json:"extra"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// ItemType implements Payload.
func (d *DeckSnapshot) ItemType() ItemType { return ItemTypeDeck }

func (d *DeckSnapshot) clone() Payload {
	out := *d
	out.Main = append([]CardCount(nil), d.Main...)
	out.Side = append([]CardCount(nil), d.Side...)
	out.Extra = append([]CardCount(nil), d.Extra...)
	return &out
}

// Store is the persistence facade for both archive collections, keyed by
// archive id. Implementations must be safe for concurrent use and hold no
// business logic.
type Store interface {
	// ListAll returns every record in the collection. The order is unspecified.
	ListAll(ctx context.Context, collection Collection) ([]*Record, error)

	// Get returns the record or a *NotFoundError.
	Get(ctx context.Context, collection Collection, archiveID string) (*Record, error)

	// Put inserts or replaces the record with the same archive id.
	Put(ctx context.Context, collection Collection, record *Record) error

	// Delete removes the record. Deleting a missing id is not an error.
	Delete(ctx context.Context, collection Collection, archiveID string) error

	// BulkDelete removes all listed records atomically: either every
	// deletion is applied or none is.
	BulkDelete(ctx context.Context, collection Collection, archiveIDs []string) error

	// SetFavorite updates the favorite flag of an existing record in place
	// and returns the updated record. A missing record yields a
	// *NotFoundError and is never created.
	SetFavorite(ctx context.Context, collection Collection, archiveID string, favorite bool) (*Record, error)

	// Close releases any resources held by the store.
	Close() error
}
