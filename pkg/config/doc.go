// Package config provides configuration management for cardvault.
//
// This package handles loading and validating configuration from YAML files
// with environment variable overrides. Configuration is passed explicitly to
// the components that need it; there is no package-level instance.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("cardvault.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("cardvault.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention CARDVAULT_SECTION_FIELD.
// For example:
//
//   - CARDVAULT_STORAGE_SQLITE_PATH overrides storage.sqlite.path
//   - CARDVAULT_RETENTION_SCHEDULE overrides retention.schedule (empty disables it)
//   - CARDVAULT_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// # Configuration Precedence
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Example Configuration
//
//	storage:
//	  backend: "sqlite"
//	  sqlite:
//	    path: "data/archive.db"
//	  cache:
//	    enabled: true
//	    size_mb: 32
//
//	library:
//	  backend: "sqlite"
//	  sqlite:
//	    path: "data/library.db"
//
//	retention:
//	  schedule: "0 3 * * *"
//	  policies:
//	    trash:
//	      packBundle:
//	        maxSize: 50
//	    history:
//	      deck:
//	        timeLimitDays: 0   # keep deck history forever
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
package config
