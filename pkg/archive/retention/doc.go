// Package retention evicts archive records that violate their retention
// policy.
//
// # Eviction
//
// Each (collection, item type) pair is swept independently:
//
//   - Age pass: records archived before now minus the time limit are evicted,
//     favorites included
//   - Count pass: among the survivors, non-favorites beyond MaxSize (newest
//     kept) are evicted; favorites are exempt and do not count against the cap
//
// The combined eviction list is applied with one BulkDelete, so a failed
// sweep leaves the collection untouched. A second sweep with no new
// archivals evicts nothing.
//
// # Basic Usage
//
//	gc := retention.NewCollector(store, resolver,
//	    retention.WithMetrics(collector),
//	)
//
//	report, err := gc.Sweep(ctx, archive.CollectionTrash, archive.ItemTypeDeck)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(report.PurgedIDs)
//
// # Scheduled Sweeps
//
//	scheduler := retention.NewScheduler(gc, "0 3 * * *") // Daily at 3 AM
//	if err := scheduler.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer scheduler.Stop()
//
// Scheduled sweep failures are logged and counted in metrics; they are not
// retried until the next tick.
package retention
