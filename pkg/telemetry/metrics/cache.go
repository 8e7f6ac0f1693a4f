package metrics

import (
	"mercator-hq/cardvault/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Cache lookup result label values.
const (
	ResultHit  = "hit"
	ResultMiss = "miss"
)

// CacheMetrics tracks the archive record cache.
//
// Metrics:
//   - cardvault_record_cache_lookups_total{collection,result}
//   - cardvault_record_cache_entries
type CacheMetrics struct {
	lookupsTotal *prometheus.CounterVec
	entries      prometheus.Gauge
}

// NewCacheMetrics creates and registers the record cache metrics.
func NewCacheMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *CacheMetrics {
	cm := &CacheMetrics{
		lookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "record_cache",
				Name:      "lookups_total",
				Help:      "Record cache lookups by collection and result",
			},
			[]string{"collection", "result"},
		),
		entries: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: "record_cache",
				Name:      "entries",
				Help:      "Records currently held in the cache",
			},
		),
	}

	registry.MustRegister(cm.lookupsTotal, cm.entries)
	return cm
}

// RecordLookup counts one cache lookup.
func (cm *CacheMetrics) RecordLookup(collection string, hit bool) {
	result := ResultMiss
	if hit {
		result = ResultHit
	}
	cm.lookupsTotal.WithLabelValues(collection, result).Inc()
}

// SetEntries sets the number of cached records.
func (cm *CacheMetrics) SetEntries(n int64) {
	cm.entries.Set(float64(n))
}
