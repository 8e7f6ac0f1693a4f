package retention

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"mercator-hq/cardvault/pkg/archive"
	"mercator-hq/cardvault/pkg/archive/policy"
	"mercator-hq/cardvault/pkg/telemetry/metrics"
	"mercator-hq/cardvault/pkg/telemetry/tracing"
)

// EvictionReport describes a completed sweep of one (collection, item type)
// pair. An empty PurgedIDs with a nil error means nothing needed eviction.
type EvictionReport struct {
	Collection archive.Collection `json:"collection"`
	ItemType   archive.ItemType   `json:"item_type"`
	Policy     policy.Policy      `json:"policy"`

	// PurgedIDs lists evicted archive ids: age evictions first, then count
	// evictions.
	PurgedIDs   []string `json:"purged_ids"`
	AgePurged   int      `json:"age_purged"`
	CountPurged int      `json:"count_purged"`

	// KeptCount is the number of records of the pair left after the sweep.
	KeptCount int `json:"kept_count"`

	// DryRun is set when the plan was computed but not applied.
	DryRun bool `json:"dry_run,omitempty"`
}

// PolicySource resolves the effective policy for a pair. *policy.Resolver
// implements it.
type PolicySource interface {
	Resolve(collection archive.Collection, itemType archive.ItemType) (policy.Policy, error)
}

// Option configures a Collector.
type Option func(*Collector)

// WithClock overrides the time source used for age eviction.
func WithClock(now func() time.Time) Option {
	return func(c *Collector) { c.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Collector) { c.logger = logger.With("component", "archive.retention") }
}

// WithMetrics records sweep results on the given collector.
func WithMetrics(m *metrics.Collector) Option {
	return func(c *Collector) { c.metrics = m }
}

// WithTracer wraps every sweep in a span.
func WithTracer(t *tracing.Tracer) Option {
	return func(c *Collector) { c.tracer = t }
}

// Collector enforces retention policies on the archive collections.
// It is safe for concurrent use: sweeps of the same pair are serialized,
// sweeps of different pairs run independently.
type Collector struct {
	store    archive.Store
	policies PolicySource
	now      func() time.Time
	logger   *slog.Logger
	metrics  *metrics.Collector
	tracer   *tracing.Tracer

	mu    sync.Mutex
	locks map[pairKey]*sync.Mutex
}

type pairKey struct {
	collection archive.Collection
	itemType   archive.ItemType
}

// NewCollector creates a garbage collector over store.
func NewCollector(store archive.Store, policies PolicySource, opts ...Option) *Collector {
	c := &Collector{
		store:    store,
		policies: policies,
		now:      time.Now,
		logger:   slog.Default().With("component", "archive.retention"),
		locks:    make(map[pairKey]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Collector) lock(collection archive.Collection, itemType archive.ItemType) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := pairKey{collection, itemType}
	l, ok := c.locks[k]
	if !ok {
		l = &sync.Mutex{}
		c.locks[k] = l
	}
	return l
}

// Sweep evicts the records of one pair that violate its policy.
// The whole eviction batch is applied with a single BulkDelete; on failure
// nothing is reported as purged and a *archive.RetentionError is returned.
func (c *Collector) Sweep(ctx context.Context, collection archive.Collection, itemType archive.ItemType) (*EvictionReport, error) {
	return c.sweep(ctx, collection, itemType, false)
}

// DryRun computes what Sweep would evict without deleting anything.
func (c *Collector) DryRun(ctx context.Context, collection archive.Collection, itemType archive.ItemType) (*EvictionReport, error) {
	return c.sweep(ctx, collection, itemType, true)
}

func (c *Collector) sweep(ctx context.Context, collection archive.Collection, itemType archive.ItemType, dryRun bool) (report *EvictionReport, err error) {
	ctx, span := c.tracer.Start(ctx, "archive.sweep")
	tracing.SetRecordAttributes(span, string(collection), "")
	tracing.SetItemAttributes(span, string(itemType), "")
	defer func() {
		if report != nil {
			tracing.SetSweepAttributes(span, report.Policy.String(), len(report.PurgedIDs), report.KeptCount, dryRun)
		}
		tracing.End(span, err)
	}()

	l := c.lock(collection, itemType)
	l.Lock()
	defer l.Unlock()

	start := time.Now()
	defer func() {
		if dryRun {
			return
		}
		age, count := 0, 0
		if report != nil {
			age, count = report.AgePurged, report.CountPurged
			c.metrics.SetArchiveRecords(string(collection), string(itemType), report.KeptCount)
		}
		c.metrics.RecordSweep(string(collection), string(itemType), age, count, time.Since(start), err)
	}()

	p, err := c.policies.Resolve(collection, itemType)
	if err != nil {
		return nil, archive.NewRetentionError(collection, itemType, err)
	}

	all, err := c.store.ListAll(ctx, collection)
	if err != nil {
		return nil, archive.NewRetentionError(collection, itemType, err)
	}

	records := make([]*archive.Record, 0, len(all))
	for _, r := range all {
		if r.ItemType == itemType {
			records = append(records, r)
		}
	}

	now := c.now()
	plan := Plan(records, p, now)

	c.logger.DebugContext(ctx, "sweep planned",
		"collection", collection,
		"item_type", itemType,
		"policy", p.String(),
		"record_count", len(records),
		"age_candidates", len(plan.ByAge),
		"count_candidates", len(plan.ByCount),
	)

	report = &EvictionReport{
		Collection:  collection,
		ItemType:    itemType,
		Policy:      p,
		PurgedIDs:   plan.IDs(),
		AgePurged:   len(plan.ByAge),
		CountPurged: len(plan.ByCount),
		KeptCount:   plan.Kept,
		DryRun:      dryRun,
	}

	if dryRun || plan.Len() == 0 {
		return report, nil
	}

	if err := c.store.BulkDelete(ctx, collection, report.PurgedIDs); err != nil {
		return nil, archive.NewRetentionError(collection, itemType, err)
	}

	c.logger.InfoContext(ctx, "archive records evicted",
		"collection", collection,
		"item_type", itemType,
		"purged_count", len(report.PurgedIDs),
		"age_purged", report.AgePurged,
		"count_purged", report.CountPurged,
		"kept_count", report.KeptCount,
	)

	return report, nil
}

// SweepSummary collects the per-pair results of SweepAll.
type SweepSummary struct {
	Reports []*EvictionReport `json:"reports"`
	Errors  []error           `json:"-"`
}

// Purged returns the total number of evicted records.
func (s *SweepSummary) Purged() int {
	n := 0
	for _, r := range s.Reports {
		n += len(r.PurgedIDs)
	}
	return n
}

// SweepAll sweeps every (collection, item type) pair. A failing pair does not
// stop the others; the returned error joins every failure.
func (c *Collector) SweepAll(ctx context.Context) (_ *SweepSummary, err error) {
	ctx, span := c.tracer.Start(ctx, "archive.sweep_all")
	defer func() { tracing.End(span, err) }()

	summary := &SweepSummary{}

	for _, collection := range archive.Collections {
		for _, itemType := range archive.ItemTypes {
			report, err := c.Sweep(ctx, collection, itemType)
			if err != nil {
				c.logger.ErrorContext(ctx, "sweep failed",
					"collection", collection,
					"item_type", itemType,
					"error", err,
				)
				summary.Errors = append(summary.Errors, err)
				continue
			}
			summary.Reports = append(summary.Reports, report)
		}
	}

	if len(summary.Errors) > 0 {
		return summary, fmt.Errorf("%d of %d sweeps failed: %w",
			len(summary.Errors), len(archive.Collections)*len(archive.ItemTypes), errors.Join(summary.Errors...))
	}
	return summary, nil
}
