// Package tracing provides OpenTelemetry spans for archive operations and
// retention sweeps.
//
// Tracing is off by default. When enabled, spans are exported over OTLP gRPC:
//
//	telemetry:
//	  tracing:
//	    enabled: true
//	    endpoint: otel-collector:4317
//	    sampler: ratio
//	    sample_ratio: 0.25
//	    otlp:
//	      insecure: true
//
// Span names follow "archive.<operation>" (archive.trash, archive.restore,
// archive.sweep, ...) and carry the cardvault.* attributes declared in this
// package. Components accept a *Tracer through a WithTracer option and fall
// back to a noop tracer.
package tracing
