// Package bundle converts live packs and decks into archive payloads and back.
//
// Packing is a pure transformation: inputs are copied, never mutated. Pack
// bundles must not contain cards of another pack; deck zones are stored as
// (card id, count) lists sorted by card id.
package bundle

import (
	"fmt"
	"sort"

	"mercator-hq/cardvault/pkg/archive"
	"mercator-hq/cardvault/pkg/library"
)

// PackPack bundles a pack with its full card list.
// It fails with *archive.InconsistentBundleError if any card belongs to a
// different pack.
func PackPack(pack library.Pack, cards []library.Card) (*archive.PackBundle, error) {
	if err := checkOrphans(pack.ID, cards); err != nil {
		return nil, err
	}

	b := &archive.PackBundle{
		Pack:  pack.Clone(),
		Cards: make([]library.Card, len(cards)),
	}
	copy(b.Cards, cards)
	return b, nil
}

// UnpackPack splits a bundle back into its pack and cards. The orphan check
// is repeated because stored payloads are not trusted.
func UnpackPack(b *archive.PackBundle) (library.Pack, []library.Card, error) {
	if b == nil {
		return library.Pack{}, nil, fmt.Errorf("nil pack bundle")
	}
	if err := checkOrphans(b.Pack.ID, b.Cards); err != nil {
		return library.Pack{}, nil, err
	}

	cards := make([]library.Card, len(b.Cards))
	copy(cards, b.Cards)
	return b.Pack.Clone(), cards, nil
}

func checkOrphans(packID string, cards []library.Card) error {
	if packID == "" {
		return archive.NewInconsistentBundleError("", "", "pack id is empty")
	}
	seen := make(map[string]struct{}, len(cards))
	for _, c := range cards {
		if c.PackID != packID {
			return archive.NewInconsistentBundleError(packID, c.ID,
				fmt.Sprintf("card references pack %q", c.PackID))
		}
		if _, dup := seen[c.ID]; dup {
			return archive.NewInconsistentBundleError(packID, c.ID, "duplicate card id")
		}
		seen[c.ID] = struct{}{}
	}
	return nil
}

// PackDeck converts a deck into its archived form. A negative count would
// produce a payload that cannot be restored, so it is rejected.
func PackDeck(deck library.Deck) (*archive.DeckSnapshot, error) {
	if deck.ID == "" {
		return nil, archive.NewInconsistentBundleError("", "", "deck id is empty")
	}
	for _, z := range []struct {
		name   string
		counts library.CardCounts
	}{{"main", deck.Main}, {"side", deck.Side}, {"extra", deck.Extra}} {
		for id, n := range z.counts {
			if n < 0 {
				return nil, archive.NewInconsistentBundleError(deck.ID, id,
					fmt.Sprintf("negative count %d in %s zone", n, z.name))
			}
		}
	}

	return &archive.DeckSnapshot{
		ID:          deck.ID,
		Name:        deck.Name,
		Description: deck.Description,
		Main:        toPairs(deck.Main),
		Side:        toPairs(deck.Side),
		Extra:       toPairs(deck.Extra),
		CreatedAt:   deck.CreatedAt,
		UpdatedAt:   deck.UpdatedAt,
	}, nil
}

// UnpackDeck rebuilds a live deck from its archived form.
func UnpackDeck(s *archive.DeckSnapshot) (library.Deck, error) {
	if s == nil {
		return library.Deck{}, fmt.Errorf("nil deck snapshot")
	}

	zones := [3]library.CardCounts{}
	for i, z := range []struct {
		name  string
		pairs []archive.CardCount
	}{{"main", s.Main}, {"side", s.Side}, {"extra", s.Extra}} {
		counts, err := fromPairs(s.ID, z.name, z.pairs)
		if err != nil {
			return library.Deck{}, err
		}
		zones[i] = counts
	}

	return library.Deck{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		Main:        zones[0],
		Side:        zones[1],
		Extra:       zones[2],
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}, nil
}

func toPairs(counts library.CardCounts) []archive.CardCount {
	pairs := make([]archive.CardCount, 0, len(counts))
	for id, n := range counts {
		pairs = append(pairs, archive.CardCount{CardID: id, Count: n})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].CardID < pairs[j].CardID })
	return pairs
}

func fromPairs(deckID, zone string, pairs []archive.CardCount) (library.CardCounts, error) {
	counts := make(library.CardCounts, len(pairs))
	for _, p := range pairs {
		if _, dup := counts[p.CardID]; dup {
			return nil, archive.NewInconsistentBundleError(deckID, p.CardID,
				fmt.Sprintf("duplicate entry in %s zone", zone))
		}
		if p.Count < 0 {
			return nil, archive.NewInconsistentBundleError(deckID, p.CardID,
				fmt.Sprintf("negative count %d in %s zone", p.Count, zone))
		}
		counts[p.CardID] = p.Count
	}
	return counts, nil
}

// Entity is a live entity in the shape the packer consumes: either a pack
// with its cards, or a deck. Exactly one of Pack and Deck is set.
type Entity struct {
	Pack  *library.Pack
	Cards []library.Card
	Deck  *library.Deck
}

// ItemType returns the archive item type the entity packs into.
func (e Entity) ItemType() archive.ItemType {
	if e.Deck != nil {
		return archive.ItemTypeDeck
	}
	return archive.ItemTypePackBundle
}

// Pack converts a live entity into its payload.
func Pack(e Entity) (archive.Payload, error) {
	switch {
	case e.Pack != nil && e.Deck != nil:
		return nil, fmt.Errorf("entity has both a pack and a deck")
	case e.Pack != nil:
		b, err := PackPack(*e.Pack, e.Cards)
		if err != nil {
			return nil, err
		}
		return b, nil
	case e.Deck != nil:
		d, err := PackDeck(*e.Deck)
		if err != nil {
			return nil, err
		}
		return d, nil
	default:
		return nil, fmt.Errorf("entity is empty")
	}
}

// Unpack converts a payload back into a live entity.
func Unpack(p archive.Payload) (Entity, error) {
	switch v := p.(type) {
	case *archive.PackBundle:
		pack, cards, err := UnpackPack(v)
		if err != nil {
			return Entity{}, err
		}
		return Entity{Pack: &pack, Cards: cards}, nil
	case *archive.DeckSnapshot:
		deck, err := UnpackDeck(v)
		if err != nil {
			return Entity{}, err
		}
		return Entity{Deck: &deck}, nil
	default:
		return Entity{}, fmt.Errorf("unsupported payload %T", p)
	}
}
