package library

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore implements Store using in-memory maps.
// It is used by tests and by the "memory" library backend.
type MemoryStore struct {
	mu    sync.RWMutex
	packs map[string]Pack
	cards map[string]map[string]Card // pack id -> card id -> card
	decks map[string]Deck
	now   func() time.Time
}

// NewMemoryStore creates an empty in-memory live store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		packs: make(map[string]Pack),
		cards: make(map[string]map[string]Card),
		decks: make(map[string]Deck),
		now:   time.Now,
	}
}

// GetPack returns a copy of the pack or ErrNotFound.
func (s *MemoryStore) GetPack(ctx context.Context, packID string) (*Pack, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.packs[packID]
	if !ok {
		return nil, fmt.Errorf("pack %q: %w", packID, ErrNotFound)
	}
	out := p.Clone()
	return &out, nil
}

// ListCards returns the pack's cards ordered by id.
func (s *MemoryStore) ListCards(ctx context.Context, packID string) ([]Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cards := make([]Card, 0, len(s.cards[packID]))
	for _, c := range s.cards[packID] {
		cards = append(cards, c)
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].ID < cards[j].ID })
	return cards, nil
}

// SavePack upserts the pack and replaces its card set.
func (s *MemoryStore) SavePack(ctx context.Context, pack Pack, cards []Card) (*Pack, error) {
	if pack.ID == "" {
		return nil, fmt.Errorf("pack id is required")
	}
	for _, c := range cards {
		if c.PackID != pack.ID {
			return nil, fmt.Errorf("card %q belongs to pack %q, not %q", c.ID, c.PackID, pack.ID)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if pack.CreatedAt.IsZero() {
		pack.CreatedAt = now
	}
	if pack.UpdatedAt.IsZero() {
		pack.UpdatedAt = now
	}
	s.packs[pack.ID] = pack.Clone()

	set := make(map[string]Card, len(cards))
	for _, c := range cards {
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		if c.UpdatedAt.IsZero() {
			c.UpdatedAt = now
		}
		set[c.ID] = c
	}
	s.cards[pack.ID] = set

	out := pack.Clone()
	return &out, nil
}

// DeletePack removes the pack and its cards.
func (s *MemoryStore) DeletePack(ctx context.Context, packID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.packs[packID]; !ok {
		return fmt.Errorf("pack %q: %w", packID, ErrNotFound)
	}
	delete(s.packs, packID)
	delete(s.cards, packID)
	return nil
}

// BulkDeletePacks removes every listed pack; unknown ids are ignored.
func (s *MemoryStore) BulkDeletePacks(ctx context.Context, packIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range packIDs {
		delete(s.packs, id)
		delete(s.cards, id)
	}
	return nil
}

// GetDeck returns a copy of the deck or ErrNotFound.
func (s *MemoryStore) GetDeck(ctx context.Context, deckID string) (*Deck, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.decks[deckID]
	if !ok {
		return nil, fmt.Errorf("deck %q: %w", deckID, ErrNotFound)
	}
	out := d.Clone()
	return &out, nil
}

// SaveDeck upserts the deck.
func (s *MemoryStore) SaveDeck(ctx context.Context, deck Deck) (*Deck, error) {
	if deck.ID == "" {
		return nil, fmt.Errorf("deck id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if deck.CreatedAt.IsZero() {
		deck.CreatedAt = now
	}
	if deck.UpdatedAt.IsZero() {
		deck.UpdatedAt = now
	}
	s.decks[deck.ID] = deck.Clone()

	out := deck.Clone()
	return &out, nil
}

// DeleteDeck removes the deck.
func (s *MemoryStore) DeleteDeck(ctx context.Context, deckID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.decks[deckID]; !ok {
		return fmt.Errorf("deck %q: %w", deckID, ErrNotFound)
	}
	delete(s.decks, deckID)
	return nil
}

// BulkDeleteDecks removes every listed deck; unknown ids are ignored.
func (s *MemoryStore) BulkDeleteDecks(ctx context.Context, deckIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range deckIDs {
		delete(s.decks, id)
	}
	return nil
}

// Close releases nothing; it exists to satisfy Store.
func (s *MemoryStore) Close() error {
	return nil
}
