// Package metrics provides Prometheus metrics collection for cardvault.
//
// # Metrics Categories
//
//   - Archive Metrics: orchestrator operations and records per collection
//   - GC Metrics: retention sweeps, evicted records by reason, sweep duration
//   - Cache Metrics: record cache lookups per collection and cached entries
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//
//	collector.RecordArchiveOperation("trash", "trash", nil)
//	collector.RecordSweep("history", "deck", 2, 0, 15*time.Millisecond, nil)
//
//	http.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
//
// All label values come from closed sets (operation names, collections,
// item types), so metric cardinality is bounded.
//
// A nil *Collector is a no-op and may be passed wherever metrics are
// optional.
package metrics
