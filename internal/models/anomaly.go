// TrackGuard - Wireless Tracking and Surveillance Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trackguard

package models

import "time"

// AnomalyType identifies the detector that produced an anomaly record.
type AnomalyType string

const (
	// AnomalyTemporalClustering flags bursts of sightings much closer together
	// than the device's usual cadence.
	AnomalyTemporalClustering AnomalyType = "TEMPORAL_CLUSTERING"

	// AnomalyGeographicTracking flags a device that keeps reappearing after
	// the observer has moved significant distances.
	AnomalyGeographicTracking AnomalyType = "GEOGRAPHIC_TRACKING"

	// AnomalyFrequency flags a device sighted at a suspiciously high rate.
	AnomalyFrequency AnomalyType = "FREQUENCY_ANOMALY"

	// AnomalyCorrelationPattern flags two devices that consistently appear together.
	AnomalyCorrelationPattern AnomalyType = "CORRELATION_PATTERN"

	// AnomalySignalStrength is reserved for signal-based detectors.
	AnomalySignalStrength AnomalyType = "SIGNAL_STRENGTH_ANOMALY"

	// AnomalyNewDeviceCluster flags several never-before-seen devices arriving together.
	AnomalyNewDeviceCluster AnomalyType = "NEW_DEVICE_CLUSTER"

	// AnomalyMLBased is emitted by the isolation forest detector.
	AnomalyMLBased AnomalyType = "ML_BASED_ANOMALY"
)

// AllAnomalyTypes returns every anomaly type in declaration order.
func AllAnomalyTypes() []AnomalyType {
	return []AnomalyType{
		AnomalyTemporalClustering,
		AnomalyGeographicTracking,
		AnomalyFrequency,
		AnomalyCorrelationPattern,
		AnomalySignalStrength,
		AnomalyNewDeviceCluster,
		AnomalyMLBased,
	}
}

// Valid reports whether t is a known anomaly type.
func (t AnomalyType) Valid() bool {
	for _, known := range AllAnomalyTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// Severity is the four-level classification applied to every anomaly record.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Rank orders severities so callers can filter with a minimum level.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	}
	return 0
}

// Valid reports whether s is one of the four severity levels.
func (s Severity) Valid() bool {
	return s.Rank() > 0
}

// LocationPoint is one location sample attached to an anomaly record.
type LocationPoint struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	TimestampMs int64   `json:"timestamp_ms"`
}

// AnomalyDetection is a scored, severity-classified anomaly record.
//
// AnomalyScore and ConfidenceLevel are always within [0,1] when produced by the
// detection package. Acknowledged and FalsePositive are owned by the user-facing
// API and are never set by analysis.
type AnomalyDetection struct {
	ID                int64           `json:"id,omitempty"`
	DetectedAt        time.Time       `json:"detected_at"`
	Type              AnomalyType     `json:"type"`
	Severity          Severity        `json:"severity"`
	DeviceAddresses   []string        `json:"device_addresses"`
	Category          DeviceCategory  `json:"category"`
	AnomalyScore      float64         `json:"anomaly_score"`
	ConfidenceLevel   float64         `json:"confidence_level"`
	Description       string          `json:"description"`
	DetectionCount    int             `json:"detection_count"`
	Locations         []LocationPoint `json:"locations"`
	GeographicSpreadM *float64        `json:"geographic_spread_m,omitempty"`
	TimeSpanMs        int64           `json:"time_span_ms"`
	FirstSeenMs       int64           `json:"first_seen_ms"`
	LastSeenMs        int64           `json:"last_seen_ms"`
	Acknowledged      bool            `json:"acknowledged"`
	FalsePositive     bool            `json:"false_positive"`
}

// AnomalyFilter narrows anomaly listings.
type AnomalyFilter struct {
	Types        []AnomalyType
	Severities   []Severity
	Acknowledged *bool
	StartDate    *time.Time
	EndDate      *time.Time
	Limit        int
	Offset       int
}
