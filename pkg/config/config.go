package config

import (
	"time"

	"mercator-hq/cardvault/pkg/archive/policy"
)

// Config is the root configuration structure for cardvault.
// It contains all configuration sections for the archive store, the live
// library store, retention, and telemetry.
type Config struct {
	// Storage contains configuration for the archive record store
	// (trash and history collections).
	Storage StorageConfig `yaml:"storage"`

	// Library contains configuration for the live pack and deck store
	// that restores write into.
	Library LibraryConfig `yaml:"library"`

	// Retention contains the garbage collector schedule and the per
	// collection retention overrides.
	Retention RetentionConfig `yaml:"retention"`

	// Telemetry contains configuration for logging, metrics, and tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// StorageConfig contains configuration for the archive record store.
type StorageConfig struct {
	// Backend selects the storage implementation.
	// Options: "sqlite", "memory"
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite contains SQLite-specific configuration.
	SQLite ArchiveSQLiteConfig `yaml:"sqlite"`

	// Cache contains the read-through record cache configuration.
	Cache CacheConfig `yaml:"cache"`
}

// ArchiveSQLiteConfig contains SQLite configuration for the archive store.
type ArchiveSQLiteConfig struct {
	// Path is the database file path.
	// Default: "data/archive.db"
	Path string `yaml:"path"`

	// MaxOpenConns is the maximum number of open connections.
	// Default: 4
	MaxOpenConns int `yaml:"max_open_conns"`

	// WALMode enables Write-Ahead Logging mode.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is how long to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`

	// Compression stores archived payloads zstd-compressed.
	// Default: true
	Compression bool `yaml:"compression"`
}

// CacheConfig contains configuration for the archive record cache.
type CacheConfig struct {
	// Enabled puts a freecache layer in front of the archive store.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// SizeMB is the cache capacity in megabytes.
	// Default: 16
	SizeMB int `yaml:"size_mb"`

	// TTL bounds how long a cached record is served (0 = no expiry).
	// Default: 10m
	TTL time.Duration `yaml:"ttl"`
}

// LibraryConfig contains configuration for the live entity store.
type LibraryConfig struct {
	// Backend selects the live store implementation.
	// Options: "sqlite", "memory"
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite contains SQLite-specific configuration.
	SQLite LibrarySQLiteConfig `yaml:"sqlite"`
}

// LibrarySQLiteConfig contains SQLite configuration for the live store.
type LibrarySQLiteConfig struct {
	// Path is the database file path.
	// Default: "data/library.db"
	Path string `yaml:"path"`

	// BusyTimeout is how long to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RetentionConfig contains garbage collector configuration.
type RetentionConfig struct {
	// Schedule is a cron expression for automatic sweeps.
	// An empty schedule disables the scheduler.
	// Default: "0 3 * * *" (daily at 3 AM)
	Schedule string `yaml:"schedule"`

	// Policies holds inline overrides of the built-in retention policies.
	// Any field left out keeps its default.
	Policies policy.Overrides `yaml:"policies"`

	// PoliciesFile is an optional YAML file with overrides. When set, it
	// replaces the inline Policies at startup.
	PoliciesFile string `yaml:"policies_file"`

	// WatchPoliciesFile reloads PoliciesFile when it changes.
	// Default: false
	WatchPoliciesFile bool `yaml:"watch_policies_file"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains OpenTelemetry tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// ListenAddress is where the run command serves the admin endpoint
	// (metrics, /health, /ready, /version). Empty disables it.
	// Default: "127.0.0.1:9090"
	ListenAddress string `yaml:"listen_address"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "cardvault"
	Namespace string `yaml:"namespace"`

	// SweepDurationBuckets defines histogram buckets for sweep duration (seconds).
	// Default: [0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 30]
	SweepDurationBuckets []float64 `yaml:"sweep_duration_buckets"`
}

// TracingConfig contains OpenTelemetry tracing configuration.
type TracingConfig struct {
	// Enabled controls whether spans are exported.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// ServiceName is reported as the service.name resource attribute.
	// Default: "cardvault"
	ServiceName string `yaml:"service_name"`

	// Exporter selects the span exporter.
	// Options: "otlp"
	// Default: "otlp"
	Exporter string `yaml:"exporter"`

	// Endpoint is the collector address (host:port).
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// Sampler selects the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "always"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces kept by the "ratio" sampler.
	SampleRatio float64 `yaml:"sample_ratio"`

	// OTLP contains OTLP exporter options.
	OTLP OTLPConfig `yaml:"otlp"`
}

// OTLPConfig contains OTLP gRPC exporter options.
type OTLPConfig struct {
	// Insecure disables TLS towards the collector.
	Insecure bool `yaml:"insecure"`

	// Timeout bounds each export call.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}
