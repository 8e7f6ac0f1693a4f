package policy

import (
	"errors"
	"sync"
	"testing"

	"mercator-hq/cardvault/pkg/archive"
)

func intPtr(n int) *int { return &n }

func TestDefault(t *testing.T) {
	tests := []struct {
		collection archive.Collection
		itemType   archive.ItemType
		want       Policy
	}{
		{archive.CollectionTrash, archive.ItemTypePackBundle, Policy{TimeLimitDays: 30, MaxSize: 100}},
		{archive.CollectionTrash, archive.ItemTypeDeck, Policy{TimeLimitDays: 30, MaxSize: 200}},
		{archive.CollectionHistory, archive.ItemTypePackBundle, Policy{TimeLimitDays: 90, MaxSize: 500}},
		{archive.CollectionHistory, archive.ItemTypeDeck, Policy{TimeLimitDays: 60, MaxSize: 1000}},
	}

	for _, tt := range tests {
		t.Run(string(tt.collection)+"/"+string(tt.itemType), func(t *testing.T) {
			got, err := Default(tt.collection, tt.itemType)
			if err != nil {
				t.Fatalf("Default() failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Default() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDefault_UnknownPair(t *testing.T) {
	_, err := Default(archive.Collection("attic"), archive.ItemTypeDeck)
	if !errors.Is(err, archive.ErrPolicyUnresolved) {
		t.Errorf("expected ErrPolicyUnresolved, got %v", err)
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		override *Partial
		want     Policy
	}{
		{
			name:     "no override",
			override: nil,
			want:     Policy{TimeLimitDays: 30, MaxSize: 200},
		},
		{
			name:     "empty override",
			override: &Partial{},
			want:     Policy{TimeLimitDays: 30, MaxSize: 200},
		},
		{
			name:     "only max size overridden",
			override: &Partial{MaxSize: intPtr(5)},
			want:     Policy{TimeLimitDays: 30, MaxSize: 5},
		},
		{
			name:     "only time limit overridden",
			override: &Partial{TimeLimitDays: intPtr(7)},
			want:     Policy{TimeLimitDays: 7, MaxSize: 200},
		},
		{
			name:     "explicit zero disables the axis",
			override: &Partial{TimeLimitDays: intPtr(0)},
			want:     Policy{TimeLimitDays: 0, MaxSize: 200},
		},
		{
			name:     "both overridden",
			override: &Partial{TimeLimitDays: intPtr(1), MaxSize: intPtr(1)},
			want:     Policy{TimeLimitDays: 1, MaxSize: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(archive.CollectionTrash, archive.ItemTypeDeck, tt.override)
			if err != nil {
				t.Fatalf("Resolve() failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestPolicy_String(t *testing.T) {
	if got := (Policy{}).String(); got != "time_limit=unlimited max_size=unlimited" {
		t.Errorf("String() = %q", got)
	}
	if got := (Policy{TimeLimitDays: 30, MaxSize: 2}).String(); got != "time_limit=30d max_size=2" {
		t.Errorf("String() = %q", got)
	}
}

func TestOverrides_Validate(t *testing.T) {
	tests := []struct {
		name      string
		overrides *Overrides
		wantErr   bool
	}{
		{name: "nil", overrides: nil},
		{name: "empty", overrides: &Overrides{}},
		{
			name: "zero limits",
			overrides: &Overrides{
				Trash: ItemOverrides{Deck: &Partial{TimeLimitDays: intPtr(0), MaxSize: intPtr(0)}},
			},
		},
		{
			name: "negative time limit",
			overrides: &Overrides{
				History: ItemOverrides{PackBundle: &Partial{TimeLimitDays: intPtr(-1)}},
			},
			wantErr: true,
		},
		{
			name: "negative max size",
			overrides: &Overrides{
				Trash: ItemOverrides{PackBundle: &Partial{MaxSize: intPtr(-3)}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.overrides.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestResolver_PerPairOverrides(t *testing.T) {
	r := NewResolver(&Overrides{
		Trash:   ItemOverrides{PackBundle: &Partial{MaxSize: intPtr(2)}},
		History: ItemOverrides{Deck: &Partial{TimeLimitDays: intPtr(0)}},
	})

	all, err := r.All()
	if err != nil {
		t.Fatalf("All() failed: %v", err)
	}

	want := map[archive.Collection]map[archive.ItemType]Policy{
		archive.CollectionTrash: {
			archive.ItemTypePackBundle: {TimeLimitDays: 30, MaxSize: 2},
			archive.ItemTypeDeck:       {TimeLimitDays: 30, MaxSize: 200},
		},
		archive.CollectionHistory: {
			archive.ItemTypePackBundle: {TimeLimitDays: 90, MaxSize: 500},
			archive.ItemTypeDeck:       {TimeLimitDays: 0, MaxSize: 1000},
		},
	}
	for c, byType := range want {
		for it, p := range byType {
			if all[c][it] != p {
				t.Errorf("%s/%s = %s, want %s", c, it, all[c][it], p)
			}
		}
	}
}

func TestResolver_SetOverrides(t *testing.T) {
	r := NewResolver(nil)

	if err := r.SetOverrides(Overrides{Trash: ItemOverrides{Deck: &Partial{MaxSize: intPtr(9)}}}); err != nil {
		t.Fatalf("SetOverrides() failed: %v", err)
	}
	if p, _ := r.Resolve(archive.CollectionTrash, archive.ItemTypeDeck); p.MaxSize != 9 {
		t.Errorf("MaxSize = %d, want 9", p.MaxSize)
	}

	err := r.SetOverrides(Overrides{Trash: ItemOverrides{Deck: &Partial{MaxSize: intPtr(-1)}}})
	if err == nil {
		t.Fatal("expected invalid overrides to be rejected")
	}
	if p, _ := r.Resolve(archive.CollectionTrash, archive.ItemTypeDeck); p.MaxSize != 9 {
		t.Errorf("rejected overrides were applied: MaxSize = %d", p.MaxSize)
	}
}

func TestResolver_ConcurrentAccess(t *testing.T) {
	r := NewResolver(nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = r.SetOverrides(Overrides{History: ItemOverrides{PackBundle: &Partial{MaxSize: intPtr(n)}}})
		}(i)
		go func() {
			defer wg.Done()
			if _, err := r.Resolve(archive.CollectionHistory, archive.ItemTypePackBundle); err != nil {
				t.Errorf("Resolve() failed: %v", err)
			}
		}()
	}
	wg.Wait()
}
