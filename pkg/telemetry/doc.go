// Package telemetry groups the observability packages of cardvault.
//
// # Components
//
//   - logging: slog setup with run and command fields from the context
//   - metrics: Prometheus collectors for archive operations, sweeps and the record cache
//   - tracing: OpenTelemetry spans for archive operations and sweeps
//   - health: liveness, readiness and version endpoints
//
// Components take these as optional dependencies; a nil metrics collector
// or tracer disables the matching signal.
package telemetry
