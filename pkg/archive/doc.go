// Package archive defines the archive data model for packs and decks: the two
// archive collections (trash and history), the archive record, its payload
// variants and the Store interface that persists them.
//
// # Architecture
//
// The archive subsystem consists of five parts, leaves first:
//
//  1. Retention Policy Resolver (package policy) - merges user overrides with
//     built-in defaults per (collection, item type)
//  2. Bundle Packer (package bundle) - converts live entities to payloads and back
//  3. Record Store (this package's Store, implemented in package storage)
//  4. Garbage Collector (package retention) - age and count eviction
//  5. Orchestrator (package orchestrator) - trash, snapshot, restore, purge
//
// # Collections
//
// Trash holds soft-deleted entities. The live copy is gone and the record's
// archive id equals the entity id, so at most one trashed copy of an entity
// exists at a time.
//
// History holds snapshots of entities that are still live. Every snapshot has
// its own archive id; many snapshots of one entity may coexist and are ordered
// by ArchivedAt.
//
// # Payloads
//
// A record carries exactly one of two payload variants:
//
//	*PackBundle   - a pack and all of its cards (item type "packBundle")
//	*DeckSnapshot - a deck whose zones are (card id, count) lists (item type "deck")
//
// The persisted JSON shape is:
//
//	{
//	  "archive_id": "...",
//	  "item_id": "...",
//	  "item_type": "packBundle" | "deck",
//	  "archived_at": "2025-01-15T10:00:00Z",
//	  "is_favorite": false,
//	  "is_manual": true,
//	  "payload": { ... }
//	}
//
// # Errors
//
// Typed errors carry context and match sentinels through errors.Is:
//
//	errors.Is(err, archive.ErrNotFound)           // *NotFoundError
//	errors.Is(err, archive.ErrInconsistentBundle) // *InconsistentBundleError
//	errors.Is(err, archive.ErrPersistence)        // *StorageError
//	errors.Is(err, archive.ErrPolicyUnresolved)   // *PolicyUnresolvedError
package archive
