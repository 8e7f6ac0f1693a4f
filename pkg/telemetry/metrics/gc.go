package metrics

import (
	"time"

	"mercator-hq/cardvault/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// GCMetrics tracks garbage collector sweeps.
//
// Metrics:
//   - cardvault_gc_sweeps_total: Sweeps by collection, item type and status
//   - cardvault_gc_purged_records_total: Evicted records by reason ("age" or "count")
//   - cardvault_gc_sweep_duration_seconds: Sweep duration histogram
type GCMetrics struct {
	sweepsTotal   *prometheus.CounterVec
	purgedTotal   *prometheus.CounterVec
	sweepDuration *prometheus.HistogramVec
}

// NewGCMetrics creates and registers GC metrics with the provided registry.
func NewGCMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *GCMetrics {
	gm := &GCMetrics{
		sweepsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "gc_sweeps_total",
				Help:      "Total number of retention sweeps",
			},
			[]string{"collection", "item_type", "status"},
		),

		purgedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "gc_purged_records_total",
				Help:      "Total number of archive records evicted by retention",
			},
			[]string{"collection", "item_type", "reason"},
		),

		sweepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "gc_sweep_duration_seconds",
				Help:      "Duration of retention sweeps in seconds",
				Buckets:   cfg.SweepDurationBuckets,
			},
			[]string{"collection", "item_type"},
		),
	}

	registry.MustRegister(
		gm.sweepsTotal,
		gm.purgedTotal,
		gm.sweepDuration,
	)

	return gm
}

// RecordSweep counts a sweep and observes its duration.
func (gm *GCMetrics) RecordSweep(collection, itemType, status string, duration time.Duration) {
	gm.sweepsTotal.WithLabelValues(collection, itemType, status).Inc()
	gm.sweepDuration.WithLabelValues(collection, itemType).Observe(duration.Seconds())
}

// RecordPurged adds n evicted records for a reason.
func (gm *GCMetrics) RecordPurged(collection, itemType, reason string, n int) {
	if n <= 0 {
		return
	}
	gm.purgedTotal.WithLabelValues(collection, itemType, reason).Add(float64(n))
}
