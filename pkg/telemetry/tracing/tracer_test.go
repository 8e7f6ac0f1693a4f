package tracing

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"mercator-hq/cardvault/pkg/config"
)

func newRecordingTracer(t *testing.T, sampler string) (*Tracer, *tracetest.InMemoryExporter) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tracer, err := NewWithExporter(config.TracingConfig{
		Enabled:     true,
		ServiceName: "cardvault-test",
		Sampler:     sampler,
	}, exporter)
	if err != nil {
		t.Fatalf("NewWithExporter() failed: %v", err)
	}
	t.Cleanup(func() { _ = tracer.Shutdown(context.Background()) })
	return tracer, exporter
}

func attrs(kvs []attribute.KeyValue) map[string]attribute.Value {
	m := make(map[string]attribute.Value, len(kvs))
	for _, kv := range kvs {
		m[string(kv.Key)] = kv.Value
	}
	return m
}

func TestNew_Disabled(t *testing.T) {
	tracer, err := New(config.TracingConfig{Enabled: false})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if tracer.Enabled() {
		t.Error("disabled config produced an enabled tracer")
	}

	ctx, span := tracer.Start(context.Background(), "archive.trash")
	span.End()
	if TraceID(ctx) != "" {
		t.Errorf("noop span has trace id %q", TraceID(ctx))
	}
	if err := tracer.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() = %v", err)
	}
}

func TestNew_UnsupportedExporter(t *testing.T) {
	_, err := New(config.TracingConfig{Enabled: true, Exporter: "zipkin", Sampler: SamplerAlways})
	if err == nil {
		t.Fatal("expected error for unsupported exporter")
	}
}

func TestNewWithExporter_InvalidSampler(t *testing.T) {
	_, err := NewWithExporter(config.TracingConfig{Enabled: true, Sampler: "sometimes"}, tracetest.NewInMemoryExporter())
	if err == nil {
		t.Fatal("expected error for unknown sampler")
	}
}

func TestNilTracer(t *testing.T) {
	var tracer *Tracer

	_, span := tracer.Start(context.Background(), "archive.sweep")
	span.End()

	if tracer.Enabled() {
		t.Error("nil tracer reports enabled")
	}
	if err := tracer.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() = %v", err)
	}
}

func TestTracer_RecordsSpanWithAttributes(t *testing.T) {
	tracer, exporter := newRecordingTracer(t, SamplerAlways)

	ctx, span := tracer.Start(context.Background(), "archive.restore")
	if TraceID(ctx) == "" {
		t.Error("expected a trace id on the span context")
	}
	SetItemAttributes(span, "deck", "D1")
	SetRecordAttributes(span, "trash", "D1")
	End(span, nil)

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	got := spans[0]
	if got.Name != "archive.restore" {
		t.Errorf("Name = %q", got.Name)
	}
	if got.Status.Code != codes.Ok {
		t.Errorf("Status = %v, want Ok", got.Status.Code)
	}

	a := attrs(got.Attributes)
	want := map[string]string{
		AttrItemType:   "deck",
		AttrItemID:     "D1",
		AttrCollection: "trash",
		AttrArchiveID:  "D1",
	}
	for k, v := range want {
		if a[k].AsString() != v {
			t.Errorf("%s = %q, want %q", k, a[k].AsString(), v)
		}
	}
}

func TestTracer_ChildSpanSharesTrace(t *testing.T) {
	tracer, exporter := newRecordingTracer(t, SamplerAlways)

	ctx, parent := tracer.Start(context.Background(), "archive.sweep_all")
	_, child := tracer.Start(ctx, "archive.sweep")
	child.End()
	parent.End()

	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2", len(spans))
	}
	if spans[0].SpanContext.TraceID() != spans[1].SpanContext.TraceID() {
		t.Error("child and parent have different trace ids")
	}
	if spans[0].Parent.SpanID() != spans[1].SpanContext.SpanID() {
		t.Error("child span is not linked to its parent")
	}
}

func TestTracer_NeverSampler(t *testing.T) {
	tracer, exporter := newRecordingTracer(t, SamplerNever)

	_, span := tracer.Start(context.Background(), "archive.trash")
	span.End()

	if n := len(exporter.GetSpans()); n != 0 {
		t.Errorf("exported %d spans with the never sampler", n)
	}
}

func TestEnd_RecordsError(t *testing.T) {
	tracer, exporter := newRecordingTracer(t, SamplerAlways)

	_, span := tracer.Start(context.Background(), "archive.sweep")
	SetSweepAttributes(span, "30d/100", 3, 7, false)
	End(span, errors.New("bulk delete failed"))

	got := exporter.GetSpans()[0]
	if got.Status.Code != codes.Error {
		t.Errorf("Status = %v, want Error", got.Status.Code)
	}
	if len(got.Events) == 0 {
		t.Error("expected an exception event")
	}

	a := attrs(got.Attributes)
	if a[AttrPurgedCount].AsInt64() != 3 || a[AttrKeptCount].AsInt64() != 7 {
		t.Errorf("sweep attributes = %v", got.Attributes)
	}
	if !a["error"].AsBool() {
		t.Error("error attribute not set")
	}
}
