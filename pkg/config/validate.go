package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "storage.backend").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateStorage(&cfg.Storage)...)
	errs = append(errs, validateLibrary(&cfg.Library)...)
	errs = append(errs, validateRetention(&cfg.Retention)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

func validateBackend(field, backend string) []FieldError {
	switch backend {
	case "sqlite", "memory":
		return nil
	default:
		return []FieldError{{
			Field:   field,
			Message: fmt.Sprintf("unsupported backend %q (expected \"sqlite\" or \"memory\")", backend),
		}}
	}
}

// validateStorage validates archive storage configuration.
func validateStorage(cfg *StorageConfig) []FieldError {
	errs := validateBackend("storage.backend", cfg.Backend)

	if cfg.Backend == "sqlite" {
		if cfg.SQLite.Path == "" {
			errs = append(errs, FieldError{
				Field:   "storage.sqlite.path",
				Message: "path is required for sqlite backend",
			})
		}
		if cfg.SQLite.MaxOpenConns < 0 {
			errs = append(errs, FieldError{
				Field:   "storage.sqlite.max_open_conns",
				Message: "max open connections must be non-negative",
			})
		}
		if cfg.SQLite.BusyTimeout < 0 {
			errs = append(errs, FieldError{
				Field:   "storage.sqlite.busy_timeout",
				Message: "busy timeout must be non-negative",
			})
		}
	}

	if cfg.Cache.Enabled && cfg.Cache.SizeMB <= 0 {
		errs = append(errs, FieldError{
			Field:   "storage.cache.size_mb",
			Message: "cache size must be positive when the cache is enabled",
		})
	}
	if cfg.Cache.TTL < 0 {
		errs = append(errs, FieldError{
			Field:   "storage.cache.ttl",
			Message: "cache ttl must be non-negative",
		})
	}

	return errs
}

// validateLibrary validates live store configuration.
func validateLibrary(cfg *LibraryConfig) []FieldError {
	errs := validateBackend("library.backend", cfg.Backend)

	if cfg.Backend == "sqlite" && cfg.SQLite.Path == "" {
		errs = append(errs, FieldError{
			Field:   "library.sqlite.path",
			Message: "path is required for sqlite backend",
		})
	}
	if cfg.SQLite.BusyTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "library.sqlite.busy_timeout",
			Message: "busy timeout must be non-negative",
		})
	}

	return errs
}

// validateRetention validates the GC schedule and policy overrides.
func validateRetention(cfg *RetentionConfig) []FieldError {
	var errs []FieldError

	if cfg.Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "retention.schedule",
				Message: fmt.Sprintf("invalid cron expression: %v", err),
			})
		}
	}

	if err := cfg.Policies.Validate(); err != nil {
		errs = append(errs, FieldError{
			Field:   "retention.policies",
			Message: err.Error(),
		})
	}

	if cfg.WatchPoliciesFile && cfg.PoliciesFile == "" {
		errs = append(errs, FieldError{
			Field:   "retention.watch_policies_file",
			Message: "watching requires retention.policies_file to be set",
		})
	}

	return errs
}

// validateTelemetry validates telemetry configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(cfg.Logging.Level)] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid log level %q (expected debug, info, warn or error)", cfg.Logging.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[strings.ToLower(cfg.Logging.Format)] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid log format %q (expected json or text)", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled {
		if !strings.HasPrefix(cfg.Metrics.Path, "/") {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.path",
				Message: "metrics path must start with /",
			})
		}
		if cfg.Metrics.ListenAddress != "" {
			if _, _, err := net.SplitHostPort(cfg.Metrics.ListenAddress); err != nil {
				errs = append(errs, FieldError{
					Field:   "telemetry.metrics.listen_address",
					Message: fmt.Sprintf("invalid address: %v", err),
				})
			}
		}
	}

	errs = append(errs, validateTracing(&cfg.Tracing)...)

	for i := 1; i < len(cfg.Metrics.SweepDurationBuckets); i++ {
		if cfg.Metrics.SweepDurationBuckets[i] <= cfg.Metrics.SweepDurationBuckets[i-1] {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.sweep_duration_buckets",
				Message: "buckets must be strictly increasing",
			})
			break
		}
	}

	return errs
}

// validateTracing validates tracing configuration. Nothing is checked while
// tracing is disabled.
func validateTracing(cfg *TracingConfig) []FieldError {
	if !cfg.Enabled {
		return nil
	}

	var errs []FieldError

	if cfg.Exporter != "otlp" {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.exporter",
			Message: fmt.Sprintf("unsupported exporter %q (expected \"otlp\")", cfg.Exporter),
		})
	}
	if cfg.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.endpoint",
			Message: "endpoint is required when tracing is enabled",
		})
	}

	switch cfg.Sampler {
	case "always", "never":
	case "ratio":
		if cfg.SampleRatio < 0 || cfg.SampleRatio > 1 {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.sample_ratio",
				Message: fmt.Sprintf("sample ratio must be between 0.0 and 1.0, got %v", cfg.SampleRatio),
			})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sampler",
			Message: fmt.Sprintf("unknown sampler %q (expected always, never or ratio)", cfg.Sampler),
		})
	}

	if cfg.OTLP.Timeout < 0 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.otlp.timeout",
			Message: "timeout must be non-negative",
		})
	}

	return errs
}
