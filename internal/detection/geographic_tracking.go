// TrackGuard - Wireless Tracking and Surveillance Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trackguard

package detection

import (
	"math"
	"time"

	"github.com/tomtom215/trackguard/internal/geo"
	"github.com/tomtom215/trackguard/internal/models"
)

// minSignificantMoves is the number of significant gaps needed before a
// device is scored at all.
const minSignificantMoves = 2

// GeographicTrackingDetector flags a device that keeps being seen after the
// observer has moved significant distances.
type GeographicTrackingDetector struct {
	toggle
	config Config
}

// NewGeographicTrackingDetector creates a geographic tracking detector.
func NewGeographicTrackingDetector(config Config) *GeographicTrackingDetector {
	return &GeographicTrackingDetector{config: config}
}

// Type returns the anomaly type.
func (d *GeographicTrackingDetector) Type() models.AnomalyType {
	return models.AnomalyGeographicTracking
}

// Detect counts consecutive location gaps above the significant distance.
func (d *GeographicTrackingDetector) Detect(address string, category models.DeviceCategory, sorted []models.Sighting, now time.Time) []*models.AnomalyDetection {
	var located []models.Sighting
	for i := range sorted {
		if sorted[i].HasLocation() {
			located = append(located, sorted[i])
		}
	}
	if len(located) < 2 {
		return nil
	}

	moves := 0
	for i := 1; i < len(located); i++ {
		if dist, ok := geo.Between(&located[i-1], &located[i]); ok && dist > d.config.SignificantDistanceMeters {
			moves++
		}
	}
	if moves < minSignificantMoves {
		return nil
	}

	score := math.Min(float64(moves)/5, 1)
	if score <= d.config.AnomalyThreshold {
		return nil
	}

	in := sightingRecordInput(d.Type(), category, []string{address}, located, now)
	in.Score = score
	in.Multiplier = confidenceGeographic
	in.Evidence = evidence{
		Moves: moves,
		Span:  time.Duration(in.LastSeenMs-in.FirstSeenMs) * time.Millisecond,
	}
	return []*models.AnomalyDetection{buildRecord(in)}
}
