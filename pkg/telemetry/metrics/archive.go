package metrics

import (
	"mercator-hq/cardvault/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// ArchiveMetrics tracks archive mutations and collection sizes.
//
// Metrics:
//   - cardvault_archive_operations_total: Operations by name, collection and outcome
//   - cardvault_archive_records: Records currently held per collection and item type
type ArchiveMetrics struct {
	operationsTotal *prometheus.CounterVec
	records         *prometheus.GaugeVec
}

// NewArchiveMetrics creates and registers archive metrics with the provided registry.
func NewArchiveMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ArchiveMetrics {
	am := &ArchiveMetrics{
		operationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "archive_operations_total",
				Help:      "Total number of archive operations",
			},
			[]string{"operation", "collection", "outcome"},
		),

		records: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "archive_records",
				Help:      "Number of records held in an archive collection",
			},
			[]string{"collection", "item_type"},
		),
	}

	registry.MustRegister(
		am.operationsTotal,
		am.records,
	)

	return am
}

// RecordOperation increments the operation counter.
func (am *ArchiveMetrics) RecordOperation(operation, collection, outcome string) {
	am.operationsTotal.WithLabelValues(operation, collection, outcome).Inc()
}

// SetRecords sets the record gauge for a pair.
func (am *ArchiveMetrics) SetRecords(collection, itemType string, count int) {
	am.records.WithLabelValues(collection, itemType).Set(float64(count))
}
