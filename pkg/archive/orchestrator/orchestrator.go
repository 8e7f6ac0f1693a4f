package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"mercator-hq/cardvault/pkg/archive"
	"mercator-hq/cardvault/pkg/archive/bundle"
	"mercator-hq/cardvault/pkg/library"
	"mercator-hq/cardvault/pkg/telemetry/metrics"
	"mercator-hq/cardvault/pkg/telemetry/tracing"
)

// Operation names used in logs and metrics.
const (
	OpTrash      = "trash"
	OpSnapshot   = "snapshot"
	OpRestore    = "restore"
	OpDelete     = "delete"
	OpFavorite   = "favorite"
	OpEmptyTrash = "empty_trash"
)

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithClock overrides the time source used for ArchivedAt.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithIDGenerator overrides the generator of history archive ids.
func WithIDGenerator(newID func() string) Option {
	return func(o *Orchestrator) { o.newID = newID }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger.With("component", "archive.orchestrator") }
}

// WithMetrics records every operation outcome on the given collector.
func WithMetrics(m *metrics.Collector) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithTracer wraps every operation in a span.
func WithTracer(t *tracing.Tracer) Option {
	return func(o *Orchestrator) { o.tracer = t }
}

// Orchestrator moves entities between the live library and the archive
// collections.
//
// Mutations of one archive record are serialized, and so are operations that
// read or write the same live entity. Operations on different keys, and
// retention sweeps, run concurrently.
type Orchestrator struct {
	store archive.Store
	packs library.PackStore
	decks library.DeckStore

	now     func() time.Time
	newID   func() string
	logger  *slog.Logger
	metrics *metrics.Collector
	tracer  *tracing.Tracer

	locks *keyedLock
}

// New creates an orchestrator over the archive store and the live stores.
func New(store archive.Store, packs library.PackStore, decks library.DeckStore, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:  store,
		packs:  packs,
		decks:  decks,
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
		logger: slog.Default().With("component", "archive.orchestrator"),
		locks:  newKeyedLock(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// begin starts the span of an operation. The returned func ends it with the
// operation's error and records the outcome metric.
func (o *Orchestrator) begin(ctx context.Context, op string, collection archive.Collection) (context.Context, trace.Span, func(error)) {
	ctx, span := o.tracer.Start(ctx, "archive."+op)
	tracing.SetRecordAttributes(span, string(collection), "")
	return ctx, span, func(err error) {
		o.metrics.RecordArchiveOperation(op, string(collection), err)
		tracing.End(span, err)
	}
}

func recordKey(collection archive.Collection, archiveID string) string {
	return "record/" + string(collection) + "/" + archiveID
}

func liveKey(itemType archive.ItemType, itemID string) string {
	return "live/" + string(itemType) + "/" + itemID
}

// Trash moves a live entity into the trash under archive id = item id.
//
// The record is written first and the live entity deleted second. If the
// live delete fails the trash write is undone: a previous trash record of the
// same item is put back, otherwise the new one is removed.
func (o *Orchestrator) Trash(ctx context.Context, itemType archive.ItemType, itemID string, manual bool) (record *archive.Record, err error) {
	ctx, span, done := o.begin(ctx, OpTrash, archive.CollectionTrash)
	defer func() { done(err) }()
	tracing.SetItemAttributes(span, string(itemType), itemID)

	unlock := o.locks.Lock(recordKey(archive.CollectionTrash, itemID))
	defer unlock()
	unlockLive := o.locks.Lock(liveKey(itemType, itemID))
	defer unlockLive()

	record, err = o.capture(ctx, itemType, itemID, itemID, manual)
	if err != nil {
		return nil, err
	}

	previous, gerr := o.store.Get(ctx, archive.CollectionTrash, itemID)
	switch {
	case gerr == nil:
	case errors.Is(gerr, archive.ErrNotFound):
		previous = nil
	default:
		return nil, gerr
	}

	if err := o.store.Put(ctx, archive.CollectionTrash, record); err != nil {
		return nil, err
	}

	if err := o.deleteLive(ctx, itemType, itemID); err != nil {
		if cerr := o.compensate(ctx, itemID, previous); cerr != nil {
			o.logger.ErrorContext(ctx, "failed to undo trash write",
				"item_type", itemType,
				"item_id", itemID,
				"error", cerr,
			)
			return nil, errors.Join(fmt.Errorf("delete live %s %q: %w", itemType, itemID, err), cerr)
		}
		return nil, fmt.Errorf("delete live %s %q: %w", itemType, itemID, err)
	}

	o.logger.InfoContext(ctx, "item trashed",
		"item_type", itemType,
		"item_id", itemID,
		"manual", manual,
		"replaced", previous != nil,
	)

	return record.Clone(), nil
}

func (o *Orchestrator) compensate(ctx context.Context, itemID string, previous *archive.Record) error {
	if previous != nil {
		return o.store.Put(ctx, archive.CollectionTrash, previous)
	}
	return o.store.Delete(ctx, archive.CollectionTrash, itemID)
}

// Snapshot copies a live entity into the history under a fresh archive id.
// The live entity is not touched.
func (o *Orchestrator) Snapshot(ctx context.Context, itemType archive.ItemType, itemID string, manual bool) (record *archive.Record, err error) {
	ctx, span, done := o.begin(ctx, OpSnapshot, archive.CollectionHistory)
	defer func() { done(err) }()
	tracing.SetItemAttributes(span, string(itemType), itemID)

	unlockLive := o.locks.Lock(liveKey(itemType, itemID))
	defer unlockLive()

	record, err = o.capture(ctx, itemType, itemID, o.newID(), manual)
	if err != nil {
		return nil, err
	}

	if err := o.store.Put(ctx, archive.CollectionHistory, record); err != nil {
		return nil, err
	}

	o.logger.InfoContext(ctx, "item snapshotted",
		"item_type", itemType,
		"item_id", itemID,
		"archive_id", record.ArchiveID,
		"manual", manual,
	)

	return record.Clone(), nil
}

// capture loads and packs the live entity into a new record.
func (o *Orchestrator) capture(ctx context.Context, itemType archive.ItemType, itemID, archiveID string, manual bool) (*archive.Record, error) {
	entity, err := o.loadLive(ctx, itemType, itemID)
	if err != nil {
		return nil, err
	}

	payload, err := bundle.Pack(entity)
	if err != nil {
		return nil, err
	}

	return &archive.Record{
		ArchiveID:  archiveID,
		ItemID:     itemID,
		ItemType:   itemType,
		ArchivedAt: o.now(),
		IsManual:   manual,
		Payload:    payload,
	}, nil
}

// Restore writes the archived entity back into the live store, overwriting
// any live entity with the same id, then removes the record. If the live
// write fails the record is kept.
func (o *Orchestrator) Restore(ctx context.Context, collection archive.Collection, archiveID string) (record *archive.Record, err error) {
	ctx, span, done := o.begin(ctx, OpRestore, collection)
	defer func() { done(err) }()
	tracing.SetRecordAttributes(span, "", archiveID)

	if !collection.Valid() {
		return nil, fmt.Errorf("unknown collection %q", collection)
	}

	unlock := o.locks.Lock(recordKey(collection, archiveID))
	defer unlock()

	record, err = o.store.Get(ctx, collection, archiveID)
	if err != nil {
		return nil, err
	}
	tracing.SetItemAttributes(span, string(record.ItemType), record.ItemID)

	unlockLive := o.locks.Lock(liveKey(record.ItemType, record.ItemID))
	defer unlockLive()

	entity, err := bundle.Unpack(record.Payload)
	if err != nil {
		return nil, err
	}

	if err := o.saveLive(ctx, entity); err != nil {
		return nil, fmt.Errorf("restore %s %q: %w", record.ItemType, record.ItemID, err)
	}

	if err := o.store.Delete(ctx, collection, archiveID); err != nil {
		o.logger.ErrorContext(ctx, "restored item but failed to remove archive record",
			"collection", collection,
			"archive_id", archiveID,
			"error", err,
		)
		return nil, err
	}

	o.logger.InfoContext(ctx, "item restored",
		"collection", collection,
		"archive_id", archiveID,
		"item_type", record.ItemType,
		"item_id", record.ItemID,
	)

	return record, nil
}

// PermanentlyDelete removes an archive record. Deleting a missing record is
// not an error.
func (o *Orchestrator) PermanentlyDelete(ctx context.Context, collection archive.Collection, archiveID string) (err error) {
	ctx, span, done := o.begin(ctx, OpDelete, collection)
	defer func() { done(err) }()
	tracing.SetRecordAttributes(span, "", archiveID)

	unlock := o.locks.Lock(recordKey(collection, archiveID))
	defer unlock()

	if err := o.store.Delete(ctx, collection, archiveID); err != nil {
		return err
	}

	o.logger.InfoContext(ctx, "archive record deleted", "collection", collection, "archive_id", archiveID)
	return nil
}

// SetFavorite updates the favorite flag of an existing record.
func (o *Orchestrator) SetFavorite(ctx context.Context, collection archive.Collection, archiveID string, favorite bool) (record *archive.Record, err error) {
	ctx, span, done := o.begin(ctx, OpFavorite, collection)
	defer func() { done(err) }()
	tracing.SetRecordAttributes(span, "", archiveID)

	unlock := o.locks.Lock(recordKey(collection, archiveID))
	defer unlock()

	// The store only updates an existing row, so a record evicted by a
	// concurrent sweep stays evicted.
	record, err = o.store.SetFavorite(ctx, collection, archiveID, favorite)
	if err != nil {
		return nil, err
	}

	o.logger.DebugContext(ctx, "favorite updated",
		"collection", collection,
		"archive_id", archiveID,
		"favorite", favorite,
	)
	return record, nil
}

// ListOptions filters List results. Zero values match everything.
type ListOptions struct {
	ItemType      archive.ItemType
	ItemID        string
	FavoritesOnly bool
}

func (opts ListOptions) match(r *archive.Record) bool {
	if opts.ItemType != "" && r.ItemType != opts.ItemType {
		return false
	}
	if opts.ItemID != "" && r.ItemID != opts.ItemID {
		return false
	}
	if opts.FavoritesOnly && !r.IsFavorite {
		return false
	}
	return true
}

// List returns the matching records of a collection, newest first.
func (o *Orchestrator) List(ctx context.Context, collection archive.Collection, opts ListOptions) ([]*archive.Record, error) {
	all, err := o.store.ListAll(ctx, collection)
	if err != nil {
		return nil, err
	}

	records := make([]*archive.Record, 0, len(all))
	for _, r := range all {
		if opts.match(r) {
			records = append(records, r)
		}
	}

	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.ArchivedAt.Equal(b.ArchivedAt) {
			return a.ArchivedAt.After(b.ArchivedAt)
		}
		return a.ArchiveID > b.ArchiveID
	})
	return records, nil
}

// EmptyTrash permanently deletes every trash record in one bulk delete and
// returns the deleted archive ids. Favorites are kept unless includeFavorites
// is set.
func (o *Orchestrator) EmptyTrash(ctx context.Context, includeFavorites bool) (ids []string, err error) {
	ctx, span, done := o.begin(ctx, OpEmptyTrash, archive.CollectionTrash)
	defer func() {
		span.SetAttributes(attribute.Int(tracing.AttrBatchSize, len(ids)))
		done(err)
	}()

	all, err := o.store.ListAll(ctx, archive.CollectionTrash)
	if err != nil {
		return nil, err
	}

	for _, r := range all {
		if r.IsFavorite && !includeFavorites {
			continue
		}
		ids = append(ids, r.ArchiveID)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	sort.Strings(ids)

	if err := o.store.BulkDelete(ctx, archive.CollectionTrash, ids); err != nil {
		return nil, err
	}

	o.logger.InfoContext(ctx, "trash emptied", "purged_count", len(ids), "include_favorites", includeFavorites)
	return ids, nil
}

func (o *Orchestrator) loadLive(ctx context.Context, itemType archive.ItemType, itemID string) (bundle.Entity, error) {
	switch itemType {
	case archive.ItemTypePackBundle:
		pack, err := o.packs.GetPack(ctx, itemID)
		if err != nil {
			return bundle.Entity{}, fmt.Errorf("load pack %q: %w", itemID, err)
		}
		cards, err := o.packs.ListCards(ctx, itemID)
		if err != nil {
			return bundle.Entity{}, fmt.Errorf("load cards of pack %q: %w", itemID, err)
		}
		return bundle.Entity{Pack: pack, Cards: cards}, nil
	case archive.ItemTypeDeck:
		deck, err := o.decks.GetDeck(ctx, itemID)
		if err != nil {
			return bundle.Entity{}, fmt.Errorf("load deck %q: %w", itemID, err)
		}
		return bundle.Entity{Deck: deck}, nil
	default:
		return bundle.Entity{}, fmt.Errorf("unknown item type %q", itemType)
	}
}

func (o *Orchestrator) deleteLive(ctx context.Context, itemType archive.ItemType, itemID string) error {
	if itemType == archive.ItemTypeDeck {
		return o.decks.DeleteDeck(ctx, itemID)
	}
	return o.packs.DeletePack(ctx, itemID)
}

func (o *Orchestrator) saveLive(ctx context.Context, e bundle.Entity) error {
	if e.Deck != nil {
		_, err := o.decks.SaveDeck(ctx, *e.Deck)
		return err
	}
	_, err := o.packs.SavePack(ctx, *e.Pack, e.Cards)
	return err
}
