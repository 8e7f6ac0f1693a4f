package library

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()

	sqlite, err := NewSQLiteStore(SQLiteConfig{Path: filepath.Join(t.TempDir(), "library.db")})
	if err != nil {
		t.Fatalf("NewSQLiteStore() failed: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

var stamp = time.Date(2024, 2, 10, 9, 0, 0, 0, time.UTC)

func TestStore_PackLifecycle(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			pack := Pack{ID: "p1", Name: "Starter", Tags: []string{"core"}, CreatedAt: stamp, UpdatedAt: stamp}
			cards := []Card{
				{ID: "c2", PackID: "p1", Name: "Dragon", Weight: 0.1, CreatedAt: stamp, UpdatedAt: stamp},
				{ID: "c1", PackID: "p1", Name: "Knight", Weight: 0.9, CreatedAt: stamp, UpdatedAt: stamp},
			}
			if _, err := store.SavePack(ctx, pack, cards); err != nil {
				t.Fatalf("SavePack() failed: %v", err)
			}

			got, err := store.GetPack(ctx, "p1")
			if err != nil {
				t.Fatalf("GetPack() failed: %v", err)
			}
			if got.Name != "Starter" || len(got.Tags) != 1 || !got.CreatedAt.Equal(stamp) {
				t.Errorf("unexpected pack: %+v", got)
			}

			list, err := store.ListCards(ctx, "p1")
			if err != nil {
				t.Fatalf("ListCards() failed: %v", err)
			}
			if len(list) != 2 || list[0].ID != "c1" || list[1].Weight != 0.1 {
				t.Errorf("unexpected cards: %+v", list)
			}

			// Saving replaces the complete card set.
			if _, err := store.SavePack(ctx, pack, cards[:1]); err != nil {
				t.Fatalf("SavePack() failed: %v", err)
			}
			list, _ = store.ListCards(ctx, "p1")
			if len(list) != 1 || list[0].ID != "c2" {
				t.Errorf("card set not replaced: %+v", list)
			}

			if err := store.DeletePack(ctx, "p1"); err != nil {
				t.Fatalf("DeletePack() failed: %v", err)
			}
			if _, err := store.GetPack(ctx, "p1"); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
			if list, _ := store.ListCards(ctx, "p1"); len(list) != 0 {
				t.Errorf("cards survived pack deletion: %+v", list)
			}
			if err := store.DeletePack(ctx, "p1"); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound deleting twice, got %v", err)
			}
		})
	}
}

func TestStore_SavePackRejectsForeignCards(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.SavePack(context.Background(), Pack{ID: "p1"}, []Card{{ID: "c1", PackID: "p2"}})
			if err == nil {
				t.Error("expected error for card of another pack")
			}
		})
	}
}

func TestStore_DeckLifecycle(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			deck := Deck{
				ID:        "d1",
				Name:      "Aggro",
				Main:      CardCounts{"c1": 3, "c2": 0},
				Side:      CardCounts{"c9": 1},
				CreatedAt: stamp,
				UpdatedAt: stamp,
			}
			if _, err := store.SaveDeck(ctx, deck); err != nil {
				t.Fatalf("SaveDeck() failed: %v", err)
			}

			got, err := store.GetDeck(ctx, "d1")
			if err != nil {
				t.Fatalf("GetDeck() failed: %v", err)
			}
			if got.Main["c1"] != 3 || got.Side.Total() != 1 || len(got.Extra) != 0 {
				t.Errorf("unexpected deck: %+v", got)
			}
			if _, ok := got.Main["c2"]; !ok {
				t.Error("zero-count entry lost")
			}

			if err := store.DeleteDeck(ctx, "d1"); err != nil {
				t.Fatalf("DeleteDeck() failed: %v", err)
			}
			if _, err := store.GetDeck(ctx, "d1"); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestStore_BulkDelete(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, id := range []string{"a", "b", "c"} {
				if _, err := store.SavePack(ctx, Pack{ID: id}, nil); err != nil {
					t.Fatalf("SavePack() failed: %v", err)
				}
				if _, err := store.SaveDeck(ctx, Deck{ID: id}); err != nil {
					t.Fatalf("SaveDeck() failed: %v", err)
				}
			}

			if err := store.BulkDeletePacks(ctx, []string{"a", "b", "missing"}); err != nil {
				t.Fatalf("BulkDeletePacks() failed: %v", err)
			}
			if err := store.BulkDeleteDecks(ctx, []string{"c", "missing"}); err != nil {
				t.Fatalf("BulkDeleteDecks() failed: %v", err)
			}

			if _, err := store.GetPack(ctx, "c"); err != nil {
				t.Errorf("pack c should survive: %v", err)
			}
			if _, err := store.GetPack(ctx, "a"); !errors.Is(err, ErrNotFound) {
				t.Errorf("pack a should be gone: %v", err)
			}
			if _, err := store.GetDeck(ctx, "a"); err != nil {
				t.Errorf("deck a should survive: %v", err)
			}
			if _, err := store.GetDeck(ctx, "c"); !errors.Is(err, ErrNotFound) {
				t.Errorf("deck c should be gone: %v", err)
			}
		})
	}
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if _, err := store.SaveDeck(ctx, Deck{ID: "d1", Main: CardCounts{"a": 1}}); err != nil {
		t.Fatalf("SaveDeck() failed: %v", err)
	}
	d, _ := store.GetDeck(ctx, "d1")
	d.Main["a"] = 42

	again, _ := store.GetDeck(ctx, "d1")
	if again.Main["a"] != 1 {
		t.Error("GetDeck result aliases stored state")
	}
}

func TestNewSQLiteStore_EmptyPath(t *testing.T) {
	if _, err := NewSQLiteStore(SQLiteConfig{}); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestCardCounts(t *testing.T) {
	var nilCounts CardCounts
	if c := nilCounts.Clone(); c == nil || len(c) != 0 {
		t.Errorf("Clone of nil = %#v, want empty map", c)
	}
	if total := (CardCounts{"a": 2, "b": 3}).Total(); total != 5 {
		t.Errorf("Total() = %d, want 5", total)
	}
}
