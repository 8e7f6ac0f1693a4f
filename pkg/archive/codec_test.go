package archive

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"mercator-hq/cardvault/pkg/library"
)

func TestRecordCodec_RoundTrip(t *testing.T) {
	at := time.Date(2024, 5, 1, 8, 30, 0, 123, time.UTC)

	tests := []struct {
		name   string
		record *Record
	}{
		{
			name: "pack bundle",
			record: &Record{
				ArchiveID:  "p1",
				ItemID:     "p1",
				ItemType:   ItemTypePackBundle,
				ArchivedAt: at,
				IsManual:   true,
				Payload: &PackBundle{
					Pack:  library.Pack{ID: "p1", Name: "Starter", Tags: []string{"core"}, CreatedAt: at, UpdatedAt: at},
					Cards: []library.Card{{ID: "c1", PackID: "p1", Name: "Knight", Weight: 0.5, CreatedAt: at, UpdatedAt: at}},
				},
			},
		},
		{
			name: "deck snapshot",
			record: &Record{
				ArchiveID:  "0b8f",
				ItemID:     "d1",
				ItemType:   ItemTypeDeck,
				ArchivedAt: at,
				IsFavorite: true,
				Payload: &DeckSnapshot{
					ID:        "d1",
					Name:      "Aggro",
					Main:      []CardCount{{CardID: "c1", Count: 3}},
					Side:      []CardCount{},
					Extra:     []CardCount{{CardID: "c7", Count: 0}},
					CreatedAt: at,
					UpdatedAt: at,
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := MarshalRecord(tt.record)
			if err != nil {
				t.Fatalf("MarshalRecord() failed: %v", err)
			}
			got, err := UnmarshalRecord(data)
			if err != nil {
				t.Fatalf("UnmarshalRecord() failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.record) {
				t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, tt.record)
			}
		})
	}
}

func TestRecordCodec_PersistedShape(t *testing.T) {
	r := &Record{
		ArchiveID: "d1",
		ItemID:    "d1",
		ItemType:  ItemTypeDeck,
		Payload:   &DeckSnapshot{ID: "d1"},
	}
	data, err := MarshalRecord(r)
	if err != nil {
		t.Fatalf("MarshalRecord() failed: %v", err)
	}

	for _, key := range []string{`"archive_id"`, `"item_type":"deck"`, `"is_favorite"`, `"payload"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("encoded record missing %s: %s", key, data)
		}
	}
}

func TestRecordCodec_Errors(t *testing.T) {
	if _, err := MarshalRecord(&Record{ArchiveID: "x"}); err == nil {
		t.Error("expected error encoding a record without payload")
	}

	tests := []struct {
		name string
		data string
	}{
		{name: "unknown item type", data: `{"archive_id":"x","item_type":"sticker","payload":{}}`},
		{name: "payload shape mismatch", data: `{"archive_id":"x","item_type":"deck","payload":{"main":"oops"}}`},
		{name: "malformed json", data: `{"archive_id":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := UnmarshalRecord([]byte(tt.data)); err == nil {
				t.Error("expected decode error")
			}
		})
	}
}

func TestRecord_Validate(t *testing.T) {
	good := func() *Record {
		return &Record{ArchiveID: "a", ItemID: "i", ItemType: ItemTypeDeck, Payload: &DeckSnapshot{ID: "i"}}
	}

	tests := []struct {
		name    string
		mutate  func(r *Record)
		wantErr bool
	}{
		{name: "valid", mutate: func(r *Record) {}},
		{name: "missing archive id", mutate: func(r *Record) { r.ArchiveID = "" }, wantErr: true},
		{name: "missing item id", mutate: func(r *Record) { r.ItemID = "" }, wantErr: true},
		{name: "unknown item type", mutate: func(r *Record) { r.ItemType = "sticker" }, wantErr: true},
		{name: "no payload", mutate: func(r *Record) { r.Payload = nil }, wantErr: true},
		{name: "payload mismatch", mutate: func(r *Record) { r.Payload = &PackBundle{} }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := good()
			tt.mutate(r)
			if err := r.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRecord_CloneIsDeep(t *testing.T) {
	r := &Record{
		ArchiveID: "d1",
		ItemID:    "d1",
		ItemType:  ItemTypeDeck,
		Payload:   &DeckSnapshot{ID: "d1", Main: []CardCount{{CardID: "a", Count: 1}}},
	}
	c := r.Clone()
	c.Payload.(*DeckSnapshot).Main[0].Count = 99

	if r.Payload.(*DeckSnapshot).Main[0].Count != 1 {
		t.Error("Clone shares payload memory with the original")
	}
}

func TestParse(t *testing.T) {
	if c, err := ParseCollection("history"); err != nil || c != CollectionHistory {
		t.Errorf("ParseCollection(history) = %q, %v", c, err)
	}
	if _, err := ParseCollection("attic"); err == nil {
		t.Error("expected error for unknown collection")
	}
	if it, err := ParseItemType("packBundle"); err != nil || it != ItemTypePackBundle {
		t.Errorf("ParseItemType(packBundle) = %q, %v", it, err)
	}
	if _, err := ParseItemType("PackBundle"); err == nil {
		t.Error("item types are case sensitive")
	}
}

func TestErrors_Sentinels(t *testing.T) {
	cause := errors.New("disk full")

	tests := []struct {
		name   string
		err    error
		target error
	}{
		{"inconsistent bundle", NewInconsistentBundleError("p1", "c1", "orphan"), ErrInconsistentBundle},
		{"not found", NewNotFoundError(CollectionTrash, "x"), ErrNotFound},
		{"storage", NewStorageError("sqlite", "put", cause), ErrPersistence},
		{"storage cause", NewStorageError("sqlite", "put", cause), cause},
		{"policy", NewPolicyUnresolvedError("attic", ItemTypeDeck), ErrPolicyUnresolved},
		{"retention wraps storage", NewRetentionError(CollectionTrash, ItemTypeDeck, NewStorageError("memory", "bulk_delete", cause)), ErrPersistence},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.target) {
				t.Errorf("errors.Is(%v, %v) = false", tt.err, tt.target)
			}
			if tt.err.Error() == "" {
				t.Error("empty error message")
			}
		})
	}
}
