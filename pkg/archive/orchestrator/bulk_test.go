package orchestrator

import (
	"context"
	"errors"
	"testing"

	"mercator-hq/cardvault/pkg/archive"
	"mercator-hq/cardvault/pkg/config"
	"mercator-hq/cardvault/pkg/library"
	"mercator-hq/cardvault/pkg/telemetry/metrics"
	"mercator-hq/cardvault/pkg/telemetry/tracing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestTrashMany_PartialFailure(t *testing.T) {
	f := newFixture(t)
	f.seedPack(t, "p1", "c1")
	f.seedPack(t, "p3", "c3")

	results := f.orch.TrashMany(context.Background(), archive.ItemTypePackBundle, []string{"p1", "p2", "p3"}, true)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	failed := Failed(results)
	if len(failed) != 1 || failed[0].ID != "p2" {
		t.Fatalf("expected only p2 to fail, got %+v", failed)
	}
	if !errors.Is(failed[0].Err, library.ErrNotFound) {
		t.Errorf("unexpected error for p2: %v", failed[0].Err)
	}
	if results[0].Record == nil || results[2].Record == nil {
		t.Error("successful results must carry the record")
	}
	if f.store.Size(archive.CollectionTrash) != 2 {
		t.Errorf("expected 2 trash records, got %d", f.store.Size(archive.CollectionTrash))
	}
}

func TestRestoreMany_PartialFailure(t *testing.T) {
	f := newFixture(t)
	f.seedDeck(t, "d1", nil)
	f.seedDeck(t, "d2", nil)
	ctx := context.Background()

	if r := f.orch.TrashMany(ctx, archive.ItemTypeDeck, []string{"d1", "d2"}, false); len(Failed(r)) != 0 {
		t.Fatalf("TrashMany() failed: %+v", Failed(r))
	}

	results := f.orch.RestoreMany(ctx, archive.CollectionTrash, []string{"d1", "missing", "d2"})

	failed := Failed(results)
	if len(failed) != 1 || failed[0].ID != "missing" {
		t.Fatalf("expected only the missing id to fail, got %+v", failed)
	}
	if !errors.Is(failed[0].Err, archive.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", failed[0].Err)
	}
	for _, id := range []string{"d1", "d2"} {
		if _, err := f.live.GetDeck(ctx, id); err != nil {
			t.Errorf("deck %s not restored: %v", id, err)
		}
	}
}

func TestDeleteMany(t *testing.T) {
	f := newFixture(t)
	f.seedDeck(t, "d1", nil)
	ctx := context.Background()

	if _, err := f.orch.Snapshot(ctx, archive.ItemTypeDeck, "d1", false); err != nil {
		t.Fatalf("Snapshot() failed: %v", err)
	}

	results := f.orch.DeleteMany(ctx, archive.CollectionHistory, []string{"snap-001", "snap-999"})
	if len(Failed(results)) != 0 {
		t.Errorf("missing ids must not fail a delete: %+v", Failed(results))
	}
	if f.store.Size(archive.CollectionHistory) != 0 {
		t.Error("history record not deleted")
	}
}

func TestOrchestrator_RecordsMetrics(t *testing.T) {
	m := metrics.NewCollector(&config.MetricsConfig{Enabled: true, Namespace: "orchtest"}, prometheus.NewRegistry())

	f := newFixture(t)
	f.orch = New(f.store, f.live, f.live, WithMetrics(m))
	f.seedDeck(t, "d1", nil)
	ctx := context.Background()

	if _, err := f.orch.Trash(ctx, archive.ItemTypeDeck, "d1", false); err != nil {
		t.Fatalf("Trash() failed: %v", err)
	}
	_, _ = f.orch.Restore(ctx, archive.CollectionTrash, "missing")

	n, err := testutil.GatherAndCount(m.Registry(), "orchtest_archive_operations_total")
	if err != nil {
		t.Fatalf("GatherAndCount() failed: %v", err)
	}
	// trash/success and restore/error
	if n != 2 {
		t.Errorf("expected 2 operation series, got %d", n)
	}
}

func TestOrchestrator_RecordsSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tracer, err := tracing.NewWithExporter(config.TracingConfig{Enabled: true, Sampler: "always"}, exporter)
	if err != nil {
		t.Fatalf("NewWithExporter() failed: %v", err)
	}

	f := newFixture(t)
	f.orch = New(f.store, f.live, f.live, WithTracer(tracer))
	f.seedDeck(t, "d1", nil)
	ctx := context.Background()

	if _, err := f.orch.Trash(ctx, archive.ItemTypeDeck, "d1", false); err != nil {
		t.Fatalf("Trash() failed: %v", err)
	}
	_, _ = f.orch.Restore(ctx, archive.CollectionTrash, "missing")

	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2", len(spans))
	}

	trash, restore := spans[0], spans[1]
	if trash.Name != "archive.trash" || trash.Status.Code != codes.Ok {
		t.Errorf("trash span = %s (%v)", trash.Name, trash.Status.Code)
	}
	if restore.Name != "archive.restore" || restore.Status.Code != codes.Error {
		t.Errorf("restore span = %s (%v)", restore.Name, restore.Status.Code)
	}

	found := false
	for _, kv := range trash.Attributes {
		if string(kv.Key) == tracing.AttrItemID && kv.Value.AsString() == "d1" {
			found = true
		}
	}
	if !found {
		t.Errorf("trash span lacks %s: %v", tracing.AttrItemID, trash.Attributes)
	}
}
