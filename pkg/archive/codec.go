package archive

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"
)

// recordJSON is the stable persisted shape of a Record.
type recordJSON struct {
	ArchiveID  string          `json:"archive_id"`
	ItemID     string          `json:"item_id"`
	ItemType   ItemType        `json:"item_type"`
	ArchivedAt time.Time       `json:"archived_at"`
	IsFavorite bool            `json:"is_favorite"`
	IsManual   bool            `json:"is_manual"`
	Payload    json.RawMessage `json:"payload"`
}

// MarshalJSON encodes the record in its persisted shape.
func (r *Record) MarshalJSON() ([]byte, error) {
	if r.Payload == nil {
		return nil, fmt.Errorf("record %q has no payload", r.ArchiveID)
	}
	payload, err := json.Marshal(r.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload of record %q: %w", r.ArchiveID, err)
	}
	return json.Marshal(recordJSON{
		ArchiveID:  r.ArchiveID,
		ItemID:     r.ItemID,
		ItemType:   r.ItemType,
		ArchivedAt: r.ArchivedAt.UTC(),
		IsFavorite: r.IsFavorite,
		IsManual:   r.IsManual,
		Payload:    payload,
	})
}

// UnmarshalJSON decodes a persisted record, selecting the payload variant
// from item_type.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw recordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	payload, err := DecodePayload(raw.ItemType, raw.Payload)
	if err != nil {
		return fmt.Errorf("record %q: %w", raw.ArchiveID, err)
	}

	*r = Record{
		ArchiveID:  raw.ArchiveID,
		ItemID:     raw.ItemID,
		ItemType:   raw.ItemType,
		ArchivedAt: raw.ArchivedAt,
		IsFavorite: raw.IsFavorite,
		IsManual:   raw.IsManual,
		Payload:    payload,
	}
	return nil
}

// DecodePayload decodes a raw payload for the given item type.
func DecodePayload(itemType ItemType, data []byte) (Payload, error) {
	switch itemType {
	case ItemTypePackBundle:
		var b PackBundle
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, fmt.Errorf("failed to decode pack bundle: %w", err)
		}
		return &b, nil
	case ItemTypeDeck:
		var d DeckSnapshot
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("failed to decode deck snapshot: %w", err)
		}
		return &d, nil
	default:
		return nil, fmt.Errorf("unknown item type %q", itemType)
	}
}

// MarshalRecord encodes a record to its persisted JSON form.
func MarshalRecord(r *Record) ([]byte, error) {
	return json.Marshal(r)
}

// UnmarshalRecord decodes a record from its persisted JSON form.
func UnmarshalRecord(data []byte) (*Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
