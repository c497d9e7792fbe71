// TrackGuard - Wireless Tracking and Surveillance Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trackguard

package config

import (
	"time"
)

// Config holds all application configuration.
//
// Config is immutable after Load() and safe for concurrent read access from
// multiple goroutines.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Database   DatabaseConfig   `koanf:"database"`
	Exclusions ExclusionsConfig `koanf:"exclusions"`
	Analysis   AnalysisConfig   `koanf:"analysis"`
	ML         MLConfig         `koanf:"ml"`
	Breaker    BreakerConfig    `koanf:"breaker"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port    int           `koanf:"port" validate:"min=1,max=65535"`
	Host    string        `koanf:"host" validate:"required"`
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`

	// RateLimitRequests is the per-IP request budget per RateLimitWindow.
	RateLimitRequests int           `koanf:"rate_limit_reqs" validate:"min=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" validate:"gte=0"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	CORSOrigins []string `koanf:"cors_origins"`
}

// DatabaseConfig holds DuckDB settings for the sighting and anomaly store.
type DatabaseConfig struct {
	Path      string `koanf:"path" validate:"required"`
	MaxMemory string `koanf:"max_memory" validate:"required"`
	Threads   int    `koanf:"threads" validate:"min=0"` // 0 = use NumCPU

	// QueryTimeout bounds queries issued without a caller deadline.
	QueryTimeout time.Duration `koanf:"query_timeout" validate:"gt=0"`
}

// ExclusionsConfig holds the Badger settings for the exclusion list.
type ExclusionsConfig struct {
	Path     string `koanf:"path"`
	InMemory bool   `koanf:"in_memory"`
}

// AnalysisConfig holds the statistical analysis constants and the pass schedule.
//
// Environment Variables:
//   - ANALYSIS_ENABLED: run scheduled passes (default: true)
//   - ANALYSIS_INTERVAL: time between passes (default: 15m)
//   - ANALYSIS_WINDOW: per-device lookback (default: 168h)
//   - ANALYSIS_WORKERS: concurrent sub-tasks per pass (default: 4)
//   - ANALYSIS_DISABLED_DETECTORS: comma-separated anomaly types to skip
type AnalysisConfig struct {
	Enabled      bool          `koanf:"enabled"`
	RunOnStartup bool          `koanf:"run_on_startup"`
	Interval     time.Duration `koanf:"interval" validate:"gt=0"`

	Window                     time.Duration `koanf:"window" validate:"gt=0"`
	MinSightings               int           `koanf:"min_sightings" validate:"min=1"`
	MinSightingsForFrequency   int           `koanf:"min_sightings_for_frequency" validate:"min=2"`
	AnomalyThreshold           float64       `koanf:"anomaly_threshold" validate:"gte=0,lte=1"`
	SignificantDistanceMeters  float64       `koanf:"significant_distance_meters" validate:"gt=0"`
	SuspiciousFrequencyPerHour float64       `koanf:"suspicious_frequency_per_hour" validate:"gt=0"`
	CorrelationBucket          time.Duration `koanf:"correlation_bucket" validate:"gt=0"`
	MinCoOccurrences           int           `koanf:"min_co_occurrences" validate:"min=1"`
	MinCorrelationCoefficient  float64       `koanf:"min_correlation_coefficient" validate:"gte=0,lte=1"`
	ClusterWindow              time.Duration `koanf:"cluster_window" validate:"gt=0"`
	ClusterBucket              time.Duration `koanf:"cluster_bucket" validate:"gt=0"`
	NewDeviceThreshold         time.Duration `koanf:"new_device_threshold" validate:"gt=0"`
	MinClusterDevices          int           `koanf:"min_cluster_devices" validate:"min=2"`
	Workers                    int           `koanf:"workers" validate:"min=1,max=64"`

	// ManualRunsPerMinute limits POST /api/v1/analysis/run.
	ManualRunsPerMinute int `koanf:"manual_runs_per_minute" validate:"min=1"`

	DisabledDetectors []string `koanf:"disabled_detectors"`
}

// MLConfig holds isolation forest settings.
type MLConfig struct {
	Enabled          bool          `koanf:"enabled"`
	Trees            int           `koanf:"trees" validate:"min=1,max=1000"`
	SubsampleSize    int           `koanf:"subsample_size" validate:"min=2"`
	Seed             int64         `koanf:"seed"`
	TrainingWindow   time.Duration `koanf:"training_window" validate:"gt=0"`
	EmitRecords      bool          `koanf:"emit_records"`
	AnomalyThreshold float64       `koanf:"anomaly_threshold" validate:"gte=0,lte=1"`
}

// BreakerConfig holds circuit breaker settings for sighting reads.
type BreakerConfig struct {
	MaxRequests  uint32        `koanf:"max_requests" validate:"min=1"`
	Interval     time.Duration `koanf:"interval" validate:"gte=0"`
	Timeout      time.Duration `koanf:"timeout" validate:"gt=0"`
	FailureRatio float64       `koanf:"failure_ratio" validate:"gt=0,lte=1"`
	MinRequests  uint32        `koanf:"min_requests" validate:"min=1"`
}

// LoggingConfig holds logging configuration.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// Load reads configuration from defaults, the optional config file and the
// environment, in that order of precedence.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
