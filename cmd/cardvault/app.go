package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"mercator-hq/cardvault/pkg/archive"
	"mercator-hq/cardvault/pkg/archive/orchestrator"
	"mercator-hq/cardvault/pkg/archive/policy"
	"mercator-hq/cardvault/pkg/archive/retention"
	"mercator-hq/cardvault/pkg/archive/storage"
	"mercator-hq/cardvault/pkg/config"
	"mercator-hq/cardvault/pkg/library"
	"mercator-hq/cardvault/pkg/telemetry/metrics"
	"mercator-hq/cardvault/pkg/telemetry/tracing"
)

// app holds the components shared by the commands.
type app struct {
	cfg          *config.Config
	store        archive.Store
	live         library.Store
	resolver     *policy.Resolver
	metrics      *metrics.Collector
	tracer       *tracing.Tracer
	collector    *retention.Collector
	orchestrator *orchestrator.Orchestrator
}

// newApp builds the components from configuration. Tests replace it to
// run commands against in-memory stores.
var newApp = buildApp

func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg}

	if cfg.Telemetry.Metrics.Enabled {
		a.metrics = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	}

	tracer, err := tracing.New(cfg.Telemetry.Tracing)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.tracer = tracer

	overrides := cfg.Retention.Policies
	if cfg.Retention.PoliciesFile != "" {
		overrides, err = policy.LoadOverrides(cfg.Retention.PoliciesFile)
		if err != nil {
			a.Close(ctx)
			return nil, err
		}
	}
	a.resolver = policy.NewResolver(&overrides)

	a.store, err = openArchiveStore(cfg.Storage, a.metrics)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}

	a.live, err = openLibraryStore(cfg.Library)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}

	a.wire()
	return a, nil
}

// wire creates the collector and orchestrator over the opened stores.
func (a *app) wire() {
	a.collector = retention.NewCollector(a.store, a.resolver,
		retention.WithMetrics(a.metrics),
		retention.WithTracer(a.tracer),
	)
	a.orchestrator = orchestrator.New(a.store, a.live, a.live,
		orchestrator.WithMetrics(a.metrics),
		orchestrator.WithTracer(a.tracer),
	)
}

func openArchiveStore(cfg config.StorageConfig, m *metrics.Collector) (archive.Store, error) {
	var store archive.Store
	switch cfg.Backend {
	case "sqlite":
		s, err := storage.NewSQLiteStorage(&storage.SQLiteConfig{
			Path:         cfg.SQLite.Path,
			MaxOpenConns: cfg.SQLite.MaxOpenConns,
			WALMode:      cfg.SQLite.WALMode,
			BusyTimeout:  cfg.SQLite.BusyTimeout,
			Compress:     cfg.SQLite.Compression,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open archive store: %w", err)
		}
		store = s
	case "memory":
		store = storage.NewMemoryStorage()
	default:
		return nil, fmt.Errorf("unsupported archive backend: %s", cfg.Backend)
	}

	if cfg.Cache.Enabled {
		store = storage.NewCachedStorage(store, storage.CacheConfig{
			SizeMB:  cfg.Cache.SizeMB,
			TTL:     cfg.Cache.TTL,
			Metrics: m,
		})
	}
	return store, nil
}

func openLibraryStore(cfg config.LibraryConfig) (library.Store, error) {
	switch cfg.Backend {
	case "sqlite":
		s, err := library.NewSQLiteStore(library.SQLiteConfig{
			Path:        cfg.SQLite.Path,
			BusyTimeout: cfg.SQLite.BusyTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open library store: %w", err)
		}
		return s, nil
	case "memory":
		return library.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported library backend: %s", cfg.Backend)
	}
}

// Close releases the stores and flushes the tracer.
func (a *app) Close(ctx context.Context) {
	var errs []error
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if a.live != nil {
		errs = append(errs, a.live.Close())
	}
	errs = append(errs, a.tracer.Shutdown(ctx))

	if err := errors.Join(errs...); err != nil {
		slog.Warn("failed to close cardvault components", "error", err)
	}
}
