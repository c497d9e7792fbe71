// TrackGuard - Wireless Tracking and Surveillance Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trackguard

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/trackguard/config.yaml",
	"/etc/trackguard/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              8742,
			Host:              "0.0.0.0",
			Timeout:           30 * time.Second,
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
			CORSOrigins:       []string{"*"},
		},
		Database: DatabaseConfig{
			Path:         "/data/trackguard.duckdb",
			MaxMemory:    "1GB",
			Threads:      0, // 0 = use runtime.NumCPU()
			QueryTimeout: 30 * time.Second,
		},
		Exclusions: ExclusionsConfig{
			Path:     "/data/exclusions",
			InMemory: false,
		},
		Analysis: AnalysisConfig{
			Enabled:                    true,
			RunOnStartup:               false,
			Interval:                   15 * time.Minute,
			Window:                     7 * 24 * time.Hour,
			MinSightings:               3,
			MinSightingsForFrequency:   5,
			AnomalyThreshold:           0.5,
			SignificantDistanceMeters:  500,
			SuspiciousFrequencyPerHour: 10,
			CorrelationBucket:          5 * time.Minute,
			MinCoOccurrences:           3,
			MinCorrelationCoefficient:  0.5,
			ClusterWindow:              24 * time.Hour,
			ClusterBucket:              10 * time.Minute,
			NewDeviceThreshold:         time.Hour,
			MinClusterDevices:          3,
			Workers:                    4,
			ManualRunsPerMinute:        2,
		},
		ML: MLConfig{
			Enabled:          true,
			Trees:            100,
			SubsampleSize:    256,
			Seed:             42,
			TrainingWindow:   30 * 24 * time.Hour,
			EmitRecords:      true,
			AnomalyThreshold: 0.7,
		},
		Breaker: BreakerConfig{
			MaxRequests:  3,
			Interval:     time.Minute,
			Timeout:      30 * time.Second,
			FailureRatio: 0.6,
			MinRequests:  5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"server.cors_origins",
	"analysis.disabled_detectors",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// If it's already a slice (from YAML file), skip
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - DUCKDB_PATH -> database.path
//   - ANALYSIS_INTERVAL -> analysis.interval
//   - ML_SEED -> ml.seed
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Server mappings
		"http_port":           "server.port",
		"http_host":           "server.host",
		"http_timeout":        "server.timeout",
		"rate_limit_requests": "server.rate_limit_reqs",
		"rate_limit_window":   "server.rate_limit_window",
		"disable_rate_limit":  "server.rate_limit_disabled",
		"cors_origins":        "server.cors_origins",

		// Database mappings
		"duckdb_path":          "database.path",
		"duckdb_max_memory":    "database.max_memory",
		"duckdb_threads":       "database.threads",
		"duckdb_query_timeout": "database.query_timeout",

		// Exclusion store mappings
		"exclusions_path":      "exclusions.path",
		"exclusions_in_memory": "exclusions.in_memory",

		// Analysis mappings
		"analysis_enabled":                "analysis.enabled",
		"analysis_run_on_startup":         "analysis.run_on_startup",
		"analysis_interval":               "analysis.interval",
		"analysis_window":                 "analysis.window",
		"analysis_min_sightings":          "analysis.min_sightings",
		"analysis_anomaly_threshold":      "analysis.anomaly_threshold",
		"analysis_significant_distance":   "analysis.significant_distance_meters",
		"analysis_suspicious_frequency":   "analysis.suspicious_frequency_per_hour",
		"analysis_correlation_bucket":     "analysis.correlation_bucket",
		"analysis_cluster_window":         "analysis.cluster_window",
		"analysis_cluster_bucket":         "analysis.cluster_bucket",
		"analysis_new_device_threshold":   "analysis.new_device_threshold",
		"analysis_workers":                "analysis.workers",
		"analysis_manual_runs_per_minute": "analysis.manual_runs_per_minute",
		"analysis_disabled_detectors":     "analysis.disabled_detectors",

		// ML mappings
		"ml_enabled":           "ml.enabled",
		"ml_trees":             "ml.trees",
		"ml_subsample_size":    "ml.subsample_size",
		"ml_seed":              "ml.seed",
		"ml_training_window":   "ml.training_window",
		"ml_emit_records":      "ml.emit_records",
		"ml_anomaly_threshold": "ml.anomaly_threshold",

		// Circuit breaker mappings
		"breaker_max_requests":  "breaker.max_requests",
		"breaker_interval":      "breaker.interval",
		"breaker_timeout":       "breaker.timeout",
		"breaker_failure_ratio": "breaker.failure_ratio",
		"breaker_min_requests":  "breaker.min_requests",

		// Logging mappings
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// Unmapped keys are skipped so unrelated environment variables never
	// pollute the config.
	return ""
}
