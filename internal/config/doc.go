// TrackGuard - Wireless Tracking and Surveillance Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trackguard

/*
Package config provides centralized configuration management for TrackGuard.

Configuration is layered with Koanf v2:
  - Built-in defaults (defaultConfig)
  - An optional YAML file (CONFIG_PATH, ./config.yaml or /etc/trackguard/config.yaml)
  - Environment variables, mapped explicitly by envTransformFunc

# Sections

  - server: HTTP listener, per-IP rate limiting, CORS origins
  - database: DuckDB path and tuning for sightings and anomaly records
  - exclusions: Badger path for the exclusion list
  - analysis: statistical detector constants, pass interval and worker count
  - ml: isolation forest size, seed and training window
  - breaker: circuit breaker around sighting reads
  - logging: zerolog level, format and caller info

# Environment Variables

Server:
  - HTTP_HOST, HTTP_PORT, HTTP_TIMEOUT
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT
  - CORS_ORIGINS: comma-separated

Storage:
  - DUCKDB_PATH, DUCKDB_MAX_MEMORY, DUCKDB_THREADS, DUCKDB_QUERY_TIMEOUT
  - EXCLUSIONS_PATH, EXCLUSIONS_IN_MEMORY

Analysis:
  - ANALYSIS_ENABLED, ANALYSIS_INTERVAL, ANALYSIS_WINDOW, ANALYSIS_WORKERS
  - ANALYSIS_DISABLED_DETECTORS: comma-separated anomaly types

Isolation forest:
  - ML_ENABLED, ML_TREES, ML_SUBSAMPLE_SIZE, ML_SEED, ML_TRAINING_WINDOW

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

# Validation

Validate() applies validator struct tags first, then cross-field checks such
as bucket widths not exceeding their windows.

# Usage Example

	cfg, err := config.Load()
	if err != nil {
	    logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
*/
package config
