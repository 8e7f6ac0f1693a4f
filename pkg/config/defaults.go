package config

import "time"

// Default values for configuration fields.
const (
	// Storage defaults
	DefaultStorageBackend      = "sqlite"
	DefaultStorageSQLitePath   = "data/archive.db"
	DefaultStorageMaxOpenConns = 4
	DefaultStorageWALMode      = true
	DefaultStorageBusyTimeout  = 5 * time.Second
	DefaultStorageCompression  = true
	DefaultCacheSizeMB         = 16
	DefaultCacheTTL            = 10 * time.Minute

	// Library defaults
	DefaultLibraryBackend     = "sqlite"
	DefaultLibrarySQLitePath  = "data/library.db"
	DefaultLibraryBusyTimeout = 5 * time.Second

	// Retention defaults
	DefaultRetentionSchedule = "0 3 * * *"

	// Telemetry defaults
	DefaultLoggingLevel         = "info"
	DefaultLoggingFormat        = "json"
	DefaultMetricsEnabled       = true
	DefaultMetricsListenAddress = "127.0.0.1:9090"
	DefaultPrometheusPath       = "/metrics"
	DefaultMetricsNamespace     = "cardvault"
	DefaultTracingServiceName   = "cardvault"
	DefaultTracingExporter      = "otlp"
	DefaultTracingEndpoint      = "localhost:4317"
	DefaultTracingSampler       = "always"
	DefaultOTLPTimeout          = 10 * time.Second
)

// DefaultSweepDurationBuckets are histogram buckets for GC sweep durations.
var DefaultSweepDurationBuckets = []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 30}

// Default returns a configuration with every field set to its default.
// Boolean options that default to true are only set here, so LoadConfig
// decodes files on top of Default rather than on top of a zero Config.
func Default() *Config {
	cfg := &Config{
		Storage: StorageConfig{
			SQLite: ArchiveSQLiteConfig{
				WALMode:     DefaultStorageWALMode,
				Compression: DefaultStorageCompression,
			},
		},
		Retention: RetentionConfig{
			Schedule: DefaultRetentionSchedule,
		},
		Telemetry: TelemetryConfig{
			Metrics: MetricsConfig{
				Enabled:       DefaultMetricsEnabled,
				ListenAddress: DefaultMetricsListenAddress,
			},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Storage defaults
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = DefaultStorageBackend
	}
	if cfg.Storage.SQLite.Path == "" {
		cfg.Storage.SQLite.Path = DefaultStorageSQLitePath
	}
	if cfg.Storage.SQLite.MaxOpenConns == 0 {
		cfg.Storage.SQLite.MaxOpenConns = DefaultStorageMaxOpenConns
	}
	if cfg.Storage.SQLite.BusyTimeout == 0 {
		cfg.Storage.SQLite.BusyTimeout = DefaultStorageBusyTimeout
	}
	if cfg.Storage.Cache.SizeMB == 0 {
		cfg.Storage.Cache.SizeMB = DefaultCacheSizeMB
	}
	if cfg.Storage.Cache.TTL == 0 {
		cfg.Storage.Cache.TTL = DefaultCacheTTL
	}

	// Library defaults
	if cfg.Library.Backend == "" {
		cfg.Library.Backend = DefaultLibraryBackend
	}
	if cfg.Library.SQLite.Path == "" {
		cfg.Library.SQLite.Path = DefaultLibrarySQLitePath
	}
	if cfg.Library.SQLite.BusyTimeout == 0 {
		cfg.Library.SQLite.BusyTimeout = DefaultLibraryBusyTimeout
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultPrometheusPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if len(cfg.Telemetry.Metrics.SweepDurationBuckets) == 0 {
		cfg.Telemetry.Metrics.SweepDurationBuckets = append([]float64(nil), DefaultSweepDurationBuckets...)
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Telemetry.Tracing.Exporter == "" {
		cfg.Telemetry.Tracing.Exporter = DefaultTracingExporter
	}
	if cfg.Telemetry.Tracing.Endpoint == "" {
		cfg.Telemetry.Tracing.Endpoint = DefaultTracingEndpoint
	}
	if cfg.Telemetry.Tracing.Sampler == "" {
		cfg.Telemetry.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Telemetry.Tracing.OTLP.Timeout == 0 {
		cfg.Telemetry.Tracing.OTLP.Timeout = DefaultOTLPTimeout
	}
}
