// TrackGuard - Wireless Tracking and Surveillance Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trackguard

package detection

import (
	"math"
	"time"

	"github.com/tomtom215/trackguard/internal/features"
	"github.com/tomtom215/trackguard/internal/models"
)

// FrequencyDetector flags devices sighted at a suspiciously high rate.
type FrequencyDetector struct {
	toggle
	config Config
}

// NewFrequencyDetector creates a frequency detector.
func NewFrequencyDetector(config Config) *FrequencyDetector {
	return &FrequencyDetector{config: config}
}

// Type returns the anomaly type.
func (d *FrequencyDetector) Type() models.AnomalyType {
	return models.AnomalyFrequency
}

// Detect computes sightings per hour over the full span.
func (d *FrequencyDetector) Detect(address string, category models.DeviceCategory, sorted []models.Sighting, now time.Time) []*models.AnomalyDetection {
	if len(sorted) < d.config.MinSightingsForFrequency {
		return nil
	}

	rate := features.Frequency(sorted)
	if rate <= d.config.SuspiciousFrequencyPerHour {
		return nil
	}

	score := math.Min(rate/20, 1)
	if score <= d.config.AnomalyThreshold {
		return nil
	}

	in := sightingRecordInput(d.Type(), category, []string{address}, sorted, now)
	in.Score = score
	in.Multiplier = confidenceFrequency
	in.Evidence = evidence{Count: len(sorted), Rate: math.Round(rate*10) / 10}
	return []*models.AnomalyDetection{buildRecord(in)}
}
