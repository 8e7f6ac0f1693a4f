// Package logging builds the process-wide structured logger.
//
// # Overview
//
// The logging package wraps Go's standard log/slog package to provide:
//   - JSON and text output formats
//   - Configurable log levels (debug, info, warn, error)
//   - Context fields (run_id, command) attached by ContextHandler
//
// Components never depend on this package directly; they take a
// *slog.Logger or fall back to slog.Default().With("component", ...).
//
// # Usage
//
//	logger, err := logging.Setup(logging.FromConfig(cfg.Telemetry.Logging))
//	if err != nil {
//	    return err
//	}
//
//	ctx = logging.WithRunID(ctx, runID)
//	logger.InfoContext(ctx, "sweep started") // includes run_id
package logging
