package orchestrator

import (
	"context"

	"mercator-hq/cardvault/pkg/archive"
)

// ItemResult is the outcome of one item of a bulk operation. Record is nil
// when Err is set and for deletions.
type ItemResult struct {
	ID     string          `json:"id"`
	Record *archive.Record `json:"-"`
	Err    error           `json:"-"`
}

// Failed returns the results that carry an error.
func Failed(results []ItemResult) []ItemResult {
	var failed []ItemResult
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}

// TrashMany trashes each item independently. A failure is reported on its
// item and does not stop the batch.
func (o *Orchestrator) TrashMany(ctx context.Context, itemType archive.ItemType, itemIDs []string, manual bool) []ItemResult {
	results := make([]ItemResult, 0, len(itemIDs))
	for _, id := range itemIDs {
		record, err := o.Trash(ctx, itemType, id, manual)
		results = append(results, ItemResult{ID: id, Record: record, Err: err})
	}
	o.logBatch(ctx, OpTrash, string(archive.CollectionTrash), results)
	return results
}

// RestoreMany restores each record independently.
func (o *Orchestrator) RestoreMany(ctx context.Context, collection archive.Collection, archiveIDs []string) []ItemResult {
	results := make([]ItemResult, 0, len(archiveIDs))
	for _, id := range archiveIDs {
		record, err := o.Restore(ctx, collection, id)
		results = append(results, ItemResult{ID: id, Record: record, Err: err})
	}
	o.logBatch(ctx, OpRestore, string(collection), results)
	return results
}

// DeleteMany permanently deletes each record independently.
func (o *Orchestrator) DeleteMany(ctx context.Context, collection archive.Collection, archiveIDs []string) []ItemResult {
	results := make([]ItemResult, 0, len(archiveIDs))
	for _, id := range archiveIDs {
		results = append(results, ItemResult{ID: id, Err: o.PermanentlyDelete(ctx, collection, id)})
	}
	o.logBatch(ctx, OpDelete, string(collection), results)
	return results
}

func (o *Orchestrator) logBatch(ctx context.Context, op, collection string, results []ItemResult) {
	failed := Failed(results)
	if len(failed) == 0 {
		o.logger.DebugContext(ctx, "bulk operation completed", "operation", op, "collection", collection, "count", len(results))
		return
	}
	o.logger.WarnContext(ctx, "bulk operation partially failed",
		"operation", op,
		"collection", collection,
		"count", len(results),
		"failed_count", len(failed),
	)
}
