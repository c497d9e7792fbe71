// TrackGuard - Wireless Tracking and Surveillance Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trackguard

package detection

import (
	"fmt"
	"math"
	"time"

	"github.com/tomtom215/trackguard/internal/geo"
	"github.com/tomtom215/trackguard/internal/models"
)

// Confidence multipliers applied to the raw score per detector.
const (
	confidenceTemporal    = 1.2
	confidenceGeographic  = 1.1
	confidenceFrequency   = 1.15
	confidenceCorrelation = 1.2
	confidenceCluster     = 1.1
	confidenceML          = 1.0
)

// ClassifySeverity maps a score onto the four severity levels. Boundaries
// are inclusive on the lower end.
func ClassifySeverity(score float64) models.Severity {
	switch {
	case score >= 0.8:
		return models.SeverityCritical
	case score >= 0.6:
		return models.SeverityHigh
	case score >= 0.4:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

// clamp01 bounds v to [0,1]; NaN becomes 0.
func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// evidence is the detector-specific detail rendered into the description.
type evidence struct {
	Count       int
	Span        time.Duration
	Rate        float64
	Devices     int
	Coefficient float64
	Moves       int
}

// recordInput collects what a detector knows about a finding.
type recordInput struct {
	Type       models.AnomalyType
	Category   models.DeviceCategory
	Addresses  []string
	Score      float64
	Multiplier float64
	Evidence   evidence

	// Count is the supporting detection count.
	Count int

	// Locations in chronological order.
	Locations []models.LocationPoint

	FirstSeenMs int64
	LastSeenMs  int64
	Now         time.Time
}

// buildRecord turns a detector finding into a clamped, classified record.
func buildRecord(in *recordInput) *models.AnomalyDetection {
	score := clamp01(in.Score)
	confidence := clamp01(score * in.Multiplier)

	addresses := make([]string, len(in.Addresses))
	copy(addresses, in.Addresses)

	locations := in.Locations
	if locations == nil {
		locations = []models.LocationPoint{}
	}

	rec := &models.AnomalyDetection{
		DetectedAt:      in.Now.UTC(),
		Type:            in.Type,
		Severity:        ClassifySeverity(score),
		DeviceAddresses: addresses,
		Category:        in.Category,
		AnomalyScore:    score,
		ConfidenceLevel: confidence,
		Description:     describe(in.Type, &in.Evidence),
		DetectionCount:  in.Count,
		Locations:       locations,
		TimeSpanMs:      in.LastSeenMs - in.FirstSeenMs,
		FirstSeenMs:     in.FirstSeenMs,
		LastSeenMs:      in.LastSeenMs,
	}
	if len(locations) >= 2 {
		spread := math.Round(geo.MaxSpread(locations)*100) / 100
		rec.GeographicSpreadM = &spread
	}
	return rec
}

// sightingRecordInput fills the sighting-derived fields of a record input.
// sorted must be ordered by timestamp and non-empty.
func sightingRecordInput(t models.AnomalyType, category models.DeviceCategory, addresses []string, sorted []models.Sighting, now time.Time) *recordInput {
	return &recordInput{
		Type:        t,
		Category:    category,
		Addresses:   addresses,
		Count:       len(sorted),
		Locations:   locationPoints(sorted),
		FirstSeenMs: sorted[0].TimestampMs,
		LastSeenMs:  sorted[len(sorted)-1].TimestampMs,
		Now:         now,
	}
}

// locationPoints extracts the located sightings as points, in input order.
func locationPoints(sightings []models.Sighting) []models.LocationPoint {
	var points []models.LocationPoint
	for i := range sightings {
		if !sightings[i].HasLocation() {
			continue
		}
		points = append(points, models.LocationPoint{
			Latitude:    *sightings[i].Latitude,
			Longitude:   *sightings[i].Longitude,
			TimestampMs: sightings[i].TimestampMs,
		})
	}
	return points
}

// describe renders the human-readable description for a record.
func describe(t models.AnomalyType, ev *evidence) string {
	switch t {
	case models.AnomalyTemporalClustering:
		return fmt.Sprintf("Device seen %d times within %s, far more tightly than its usual cadence",
			ev.Count, formatSpan(ev.Span))
	case models.AnomalyGeographicTracking:
		return fmt.Sprintf("Device reappeared after %d significant location changes over %s",
			ev.Moves, formatSpan(ev.Span))
	case models.AnomalyFrequency:
		return fmt.Sprintf("Device seen %d times at %.1f sightings per hour", ev.Count, ev.Rate)
	case models.AnomalyCorrelationPattern:
		return fmt.Sprintf("Two devices appeared together %d times (correlation %.2f)",
			ev.Count, ev.Coefficient)
	case models.AnomalySignalStrength:
		return fmt.Sprintf("Unusual signal strength pattern across %d sightings", ev.Count)
	case models.AnomalyNewDeviceCluster:
		return fmt.Sprintf("%d previously unseen devices appeared within %s",
			ev.Devices, formatSpan(ev.Span))
	case models.AnomalyMLBased:
		return fmt.Sprintf("Behavior of %d sightings deviates from the learned baseline", ev.Count)
	}
	return "Unclassified anomaly"
}

// formatSpan renders a duration at minute precision, or seconds when short.
func formatSpan(d time.Duration) string {
	if d < time.Minute {
		return d.Round(time.Second).String()
	}
	return d.Round(time.Minute).String()
}
