// Package orchestrator moves packs and decks between the live library and
// the archive collections.
//
// Transitions:
//
//	Live    --Trash-->             Trash    (live entity deleted)
//	Live    --Snapshot-->          History  (live entity unaffected)
//	Trash   --Restore-->           Live
//	History --Restore-->           Live     (overwrites the live copy)
//	Trash   --PermanentlyDelete--> gone
//	History --PermanentlyDelete--> gone
//
// Retention sweeps (package retention) are the other way records leave a
// collection.
//
// # Basic Usage
//
//	o := orchestrator.New(store, lib, lib,
//	    orchestrator.WithMetrics(collector),
//	)
//
//	record, err := o.Trash(ctx, archive.ItemTypeDeck, "deck-42", true)
//	if err != nil {
//	    return err
//	}
//
//	if _, err := o.Restore(ctx, archive.CollectionTrash, record.ArchiveID); err != nil {
//	    return err
//	}
//
// Bulk variants (TrashMany, RestoreMany, DeleteMany) never abort on the first
// failure; each item carries its own outcome in an ItemResult.
package orchestrator
