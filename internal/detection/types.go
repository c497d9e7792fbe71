// TrackGuard - Wireless Tracking and Surveillance Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trackguard

package detection

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tomtom215/trackguard/internal/models"
)

// ErrCollaborator marks a failure in the sighting source, exclusion checker,
// or anomaly sink. The pass stops and the error is returned to the caller.
var ErrCollaborator = errors.New("analysis collaborator failed")

// SightingSource provides read access to stored sightings.
type SightingSource interface {
	// SightingsForDevice returns sightings for one address with
	// start <= timestamp <= end. Order is not guaranteed.
	SightingsForDevice(ctx context.Context, address string, start, end time.Time) ([]models.Sighting, error)

	// AllSightingsForCategoryInRange returns every sighting of a category in range.
	AllSightingsForCategoryInRange(ctx context.Context, category models.DeviceCategory, start, end time.Time) ([]models.Sighting, error)

	// DistinctDeviceAddresses returns every address ever seen for a category.
	DistinctDeviceAddresses(ctx context.Context, category models.DeviceCategory) ([]string, error)
}

// ExclusionChecker reports whether an address is exempt from analysis.
type ExclusionChecker interface {
	IsExcluded(ctx context.Context, address string) (bool, error)
}

// AnomalySink persists anomaly records. The engine never reads them back
// within a pass.
type AnomalySink interface {
	InsertAnomaly(ctx context.Context, anomaly *models.AnomalyDetection) error
}

// ModelScorer is the read side of the ML detector.
type ModelScorer interface {
	IsModelReady() bool
	PredictAnomalyScore(sightings []models.Sighting) float64
}

// Config holds every pass-time constant.
type Config struct {
	// AnalysisWindow is the trailing window loaded per device and for correlation.
	AnalysisWindow time.Duration `json:"analysis_window"`

	// MinSightings is the minimum sightings in window for per-device analysis.
	MinSightings int `json:"min_sightings"`

	// MinSightingsForFrequency is the minimum sightings for the frequency detector.
	MinSightingsForFrequency int `json:"min_sightings_for_frequency"`

	// AnomalyThreshold is the score a statistical record must exceed to be emitted.
	AnomalyThreshold float64 `json:"anomaly_threshold"`

	// MLAnomalyThreshold is the score an isolation forest record must exceed.
	MLAnomalyThreshold float64 `json:"ml_anomaly_threshold"`

	// SignificantDistanceMeters is the gap that counts as the observer having moved.
	SignificantDistanceMeters float64 `json:"significant_distance_meters"`

	// SuspiciousFrequencyPerHour is the sighting rate above which a device is flagged.
	SuspiciousFrequencyPerHour float64 `json:"suspicious_frequency_per_hour"`

	// CorrelationBucket is the co-occurrence bucket width.
	CorrelationBucket time.Duration `json:"correlation_bucket"`

	// MinCoOccurrences is the minimum shared buckets for a correlated pair.
	MinCoOccurrences int `json:"min_co_occurrences"`

	// MinCorrelationCoefficient is the minimum co-occurrence ratio for a pair.
	MinCorrelationCoefficient float64 `json:"min_correlation_coefficient"`

	// ClusterWindow is the trailing window scanned for new-device clusters.
	ClusterWindow time.Duration `json:"cluster_window"`

	// ClusterBucket is the new-device cluster bucket width.
	ClusterBucket time.Duration `json:"cluster_bucket"`

	// NewDeviceThreshold is how recently a device must have first appeared to count as new.
	NewDeviceThreshold time.Duration `json:"new_device_threshold"`

	// MinClusterDevices is the minimum new devices in one bucket.
	MinClusterDevices int `json:"min_cluster_devices"`

	// Workers bounds concurrent sub-tasks within a pass.
	Workers int `json:"workers"`

	// EmitMLRecords enables ML_BASED_ANOMALY records when a model is ready.
	EmitMLRecords bool `json:"emit_ml_records"`
}

// DefaultConfig returns the standard analysis constants.
func DefaultConfig() Config {
	return Config{
		AnalysisWindow:             7 * 24 * time.Hour,
		MinSightings:               3,
		MinSightingsForFrequency:   5,
		AnomalyThreshold:           0.5,
		MLAnomalyThreshold:         0.7,
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
		EmitMLRecords:              true,
	}
}

// DeviceDetector analyzes one device's sightings.
type DeviceDetector interface {
	// Type returns the anomaly type this detector emits.
	Type() models.AnomalyType

	// Detect returns zero or more records. sorted is ordered by timestamp and
	// holds at least Config.MinSightings entries.
	Detect(address string, category models.DeviceCategory, sorted []models.Sighting, now time.Time) []*models.AnomalyDetection

	Enabled() bool
	SetEnabled(enabled bool)
}

// CategoryDetector analyzes every device of one category together.
type CategoryDetector interface {
	// Type returns the anomaly type this detector emits.
	Type() models.AnomalyType

	// Detect returns zero or more records. sorted is ordered by timestamp and
	// covers the engine's category lookback. excluded addresses must never
	// appear in a record. Detect returns ctx.Err() when cancelled.
	Detect(ctx context.Context, category models.DeviceCategory, sorted []models.Sighting, excluded map[string]bool, now time.Time) ([]*models.AnomalyDetection, error)

	Enabled() bool
	SetEnabled(enabled bool)
}

// toggle carries the enabled flag shared by every detector.
type toggle struct {
	mu       sync.RWMutex
	disabled bool
}

// Enabled returns whether the detector is currently enabled.
func (t *toggle) Enabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return !t.disabled
}

// SetEnabled enables or disables the detector.
func (t *toggle) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.disabled = !enabled
}
