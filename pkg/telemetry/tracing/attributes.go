package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys set on archive spans. Custom keys use the "cardvault.*"
// namespace.
const (
	AttrCollection = "cardvault.collection"
	AttrItemType   = "cardvault.item_type"
	AttrItemID     = "cardvault.item_id"
	AttrArchiveID  = "cardvault.archive_id"

	AttrPolicy      = "cardvault.retention.policy"
	AttrPurgedCount = "cardvault.retention.purged_count"
	AttrKeptCount   = "cardvault.retention.kept_count"
	AttrDryRun      = "cardvault.retention.dry_run"

	AttrBatchSize = "cardvault.batch.size"
)

// SetItemAttributes sets the live entity attributes. Empty values are
// skipped.
func SetItemAttributes(span trace.Span, itemType, itemID string) {
	if itemType != "" {
		span.SetAttributes(attribute.String(AttrItemType, itemType))
	}
	if itemID != "" {
		span.SetAttributes(attribute.String(AttrItemID, itemID))
	}
}

// SetRecordAttributes sets the archive record attributes. Empty values are
// skipped.
func SetRecordAttributes(span trace.Span, collection, archiveID string) {
	if collection != "" {
		span.SetAttributes(attribute.String(AttrCollection, collection))
	}
	if archiveID != "" {
		span.SetAttributes(attribute.String(AttrArchiveID, archiveID))
	}
}

// SetSweepAttributes sets the outcome of a retention sweep.
func SetSweepAttributes(span trace.Span, policy string, purged, kept int, dryRun bool) {
	span.SetAttributes(
		attribute.String(AttrPolicy, policy),
		attribute.Int(AttrPurgedCount, purged),
		attribute.Int(AttrKeptCount, kept),
		attribute.Bool(AttrDryRun, dryRun),
	)
}

// End records err on span, sets the status, and ends it. It is meant to be
// deferred with a named error result:
//
//	ctx, span := tracer.Start(ctx, "archive.restore")
//	defer func() { tracing.End(span, err) }()
func End(span trace.Span, err error) {
	SetError(span, err)
	SetStatus(span, err)
	span.End()
}

// SetError marks the span as failed and records the error.
func SetError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.SetAttributes(
		attribute.Bool("error", true),
		attribute.String("error.message", err.Error()),
	)
	span.RecordError(err)
}

// SetStatus sets the span status based on an error.
// If err is nil, status is set to OK, otherwise to Error.
func SetStatus(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
}
