package metrics

import (
	"time"

	"mercator-hq/cardvault/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values for archive operations and sweeps.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Purge reason label values.
const (
	ReasonAge   = "age"
	ReasonCount = "count"
)

// Collector is the entry point for all cardvault Prometheus metrics.
// It owns a registry and groups the metrics by subsystem.
//
// A nil *Collector is valid and records nothing, so components can take an
// optional collector without nil checks at every call site.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	// Archive mutation metrics
	archiveMetrics *ArchiveMetrics

	// Garbage collector metrics
	gcMetrics *GCMetrics

	// Record cache metrics
	cacheMetrics *CacheMetrics
}

// NewCollector creates a new metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, a fresh registry is created.
//
// Example:
//
//	cfg := &config.MetricsConfig{
//		Enabled:   true,
//		Namespace: "cardvault",
//	}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if len(cfg.SweepDurationBuckets) == 0 {
		cfg.SweepDurationBuckets = append([]float64(nil), config.DefaultSweepDurationBuckets...)
	}

	c := &Collector{
		config:   cfg,
		registry: registry,
	}

	c.archiveMetrics = NewArchiveMetrics(cfg, registry)
	c.gcMetrics = NewGCMetrics(cfg, registry)
	c.cacheMetrics = NewCacheMetrics(cfg, registry)

	return c
}

func (c *Collector) enabled() bool {
	return c != nil && c.config.Enabled
}

// RecordArchiveOperation records one orchestrator operation.
//
// Parameters:
//   - operation: "trash", "snapshot", "restore", "delete", "favorite", "empty_trash"
//   - collection: "trash" or "history"
//   - err: the operation's result; nil counts as success
func (c *Collector) RecordArchiveOperation(operation, collection string, err error) {
	if !c.enabled() {
		return
	}

	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	c.archiveMetrics.RecordOperation(operation, collection, outcome)
}

// SetArchiveRecords sets the number of records currently held for a pair.
func (c *Collector) SetArchiveRecords(collection, itemType string, count int) {
	if !c.enabled() {
		return
	}

	c.archiveMetrics.SetRecords(collection, itemType, count)
}

// RecordSweep records the result of one GC sweep of a (collection, item type) pair.
//
// Example:
//
//	collector.RecordSweep("trash", "deck", 3, 1, 40*time.Millisecond, nil)
func (c *Collector) RecordSweep(collection, itemType string, agePurged, countPurged int, duration time.Duration, err error) {
	if !c.enabled() {
		return
	}

	status := OutcomeSuccess
	if err != nil {
		status = OutcomeError
	}
	c.gcMetrics.RecordSweep(collection, itemType, status, duration)
	if err == nil {
		c.gcMetrics.RecordPurged(collection, itemType, ReasonAge, agePurged)
		c.gcMetrics.RecordPurged(collection, itemType, ReasonCount, countPurged)
	}
}

// RecordCacheLookup records a record cache lookup in a collection.
func (c *Collector) RecordCacheLookup(collection string, hit bool) {
	if !c.enabled() {
		return
	}

	c.cacheMetrics.RecordLookup(collection, hit)
}

// SetCacheEntries sets the number of records held by the record cache.
func (c *Collector) SetCacheEntries(n int64) {
	if !c.enabled() {
		return
	}

	c.cacheMetrics.SetEntries(n)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}
