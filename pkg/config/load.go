package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// The file is decoded on top of Default, so omitted fields keep their
// defaults. The configuration is not modified by environment variables; use
// LoadConfigWithEnvOverrides for that functionality.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention CARDVAULT_SECTION_FIELD (e.g., CARDVAULT_STORAGE_SQLITE_PATH).
// Environment variables always take precedence over file-based configuration.
//
// An empty path skips the file and starts from Default.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	var cfg *Config
	if path == "" {
		cfg = Default()
	} else {
		var err error
		cfg, err = LoadConfig(path)
		if err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Malformed numeric, boolean and duration values are ignored.
func applyEnvOverrides(cfg *Config) {
	// Storage overrides
	if val := os.Getenv("CARDVAULT_STORAGE_BACKEND"); val != "" {
		cfg.Storage.Backend = val
	}
	if val := os.Getenv("CARDVAULT_STORAGE_SQLITE_PATH"); val != "" {
		cfg.Storage.SQLite.Path = val
	}
	if val := os.Getenv("CARDVAULT_STORAGE_SQLITE_BUSY_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Storage.SQLite.BusyTimeout = d
		}
	}
	if val := os.Getenv("CARDVAULT_STORAGE_SQLITE_COMPRESSION"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Storage.SQLite.Compression = b
		}
	}
	if val := os.Getenv("CARDVAULT_STORAGE_CACHE_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Storage.Cache.Enabled = b
		}
	}
	if val := os.Getenv("CARDVAULT_STORAGE_CACHE_SIZE_MB"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Storage.Cache.SizeMB = i
		}
	}

	// Library overrides
	if val := os.Getenv("CARDVAULT_LIBRARY_BACKEND"); val != "" {
		cfg.Library.Backend = val
	}
	if val := os.Getenv("CARDVAULT_LIBRARY_SQLITE_PATH"); val != "" {
		cfg.Library.SQLite.Path = val
	}

	// Retention overrides
	if val, ok := os.LookupEnv("CARDVAULT_RETENTION_SCHEDULE"); ok {
		cfg.Retention.Schedule = val
	}
	if val := os.Getenv("CARDVAULT_RETENTION_POLICIES_FILE"); val != "" {
		cfg.Retention.PoliciesFile = val
	}
	if val := os.Getenv("CARDVAULT_RETENTION_WATCH_POLICIES_FILE"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Retention.WatchPoliciesFile = b
		}
	}

	// Telemetry overrides
	if val := os.Getenv("CARDVAULT_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("CARDVAULT_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("CARDVAULT_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val, ok := os.LookupEnv("CARDVAULT_TELEMETRY_METRICS_LISTEN_ADDRESS"); ok {
		cfg.Telemetry.Metrics.ListenAddress = val
	}
	if val := os.Getenv("CARDVAULT_TELEMETRY_METRICS_PATH"); val != "" {
		cfg.Telemetry.Metrics.Path = val
	}
}
