package library

import (
	"context"
	"errors"
	"maps"
	"slices"
	"time"
)

// ErrNotFound is returned by live stores when the requested entity does not exist.
var ErrNotFound = errors.New("entity not found")

// Pack is a card-bundle definition. Its cards are stored separately and
// reference the pack through Card.PackID.
type Pack struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CoverURL    string    `json:"cover_url,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Clone returns a deep copy of the pack.
func (p Pack) Clone() Pack {
	p.Tags = slices.Clone(p.Tags)
	return p
}

// Card is a single card belonging to exactly one pack.
type Card struct {
	ID       string `json:"id"`
	PackID   string `json:"pack_id"`
	Name     string `json:"name"`
	Rarity   string `json:"rarity,omitempty"`
	ImageURL string `json:"image_url,omitempty"`

	// Weight is the relative draw weight used by the pack-opening simulator.
	Weight float64 `json:"weight"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CardCounts maps a card id to the number of copies in a deck zone.
type CardCounts map[string]int

// Clone returns a copy of the counts. A nil receiver yields an empty map.
func (c CardCounts) Clone() CardCounts {
	out := make(CardCounts, len(c))
	maps.Copy(out, c)
	return out
}

// Total returns the number of cards across all entries.
func (c CardCounts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// Deck is a named card list split into main, side and extra zones.
type Deck struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Main        CardCounts `json:"main"`
	Side        CardCounts `json:"side"`
	Extra       CardCounts `json:"extra"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Clone returns a deep copy of the deck.
func (d Deck) Clone() Deck {
	d.Main = d.Main.Clone()
	d.Side = d.Side.Clone()
	d.Extra = d.Extra.Clone()
	return d
}

// PackStore is the live collection of packs and their cards.
//
// SavePack is an upsert of the pack together with its complete card set:
// any existing card of the pack that is not in cards is removed.
// DeletePack removes the pack and all of its cards.
type PackStore interface {
	GetPack(ctx context.Context, packID string) (*Pack, error)
	ListCards(ctx context.Context, packID string) ([]Card, error)
	SavePack(ctx context.Context, pack Pack, cards []Card) (*Pack, error)
	DeletePack(ctx context.Context, packID string) error
	BulkDeletePacks(ctx context.Context, packIDs []string) error
}

// DeckStore is the live collection of decks.
type DeckStore interface {
	GetDeck(ctx context.Context, deckID string) (*Deck, error)
	SaveDeck(ctx context.Context, deck Deck) (*Deck, error)
	DeleteDeck(ctx context.Context, deckID string) error
	BulkDeleteDecks(ctx context.Context, deckIDs []string) error
}

// Store combines both live collections.
type Store interface {
	PackStore
	DeckStore
	Close() error
}
