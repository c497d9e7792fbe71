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

// burstFloorRatio bounds the cluster gap threshold from below at a fraction
// of the mean interval, since mean-2σ goes non-positive for bursty devices.
const burstFloorRatio = 0.1

// minClusterSize is the smallest run of tight sightings that forms a cluster.
const minClusterSize = 3

// TemporalClusteringDetector flags runs of sightings spaced far more tightly
// than the device's own mean interval.
type TemporalClusteringDetector struct {
	toggle
	config Config
}

// NewTemporalClusteringDetector creates a temporal clustering detector.
func NewTemporalClusteringDetector(config Config) *TemporalClusteringDetector {
	return &TemporalClusteringDetector{config: config}
}

// Type returns the anomaly type.
func (d *TemporalClusteringDetector) Type() models.AnomalyType {
	return models.AnomalyTemporalClustering
}

// Detect scans consecutive gaps and emits one record per qualifying cluster.
func (d *TemporalClusteringDetector) Detect(address string, category models.DeviceCategory, sorted []models.Sighting, now time.Time) []*models.AnomalyDetection {
	intervals := features.Intervals(sorted)
	if len(intervals) == 0 {
		return nil
	}
	mean, stddev := features.MeanStdDev(intervals)

	threshold := math.Max(mean-2*stddev, mean*burstFloorRatio)

	var records []*models.AnomalyDetection
	clusterStart := 0

	flush := func(end int) {
		size := end - clusterStart + 1
		if size < minClusterSize {
			return
		}
		cluster := sorted[clusterStart : end+1]
		span := float64(cluster[len(cluster)-1].TimestampMs - cluster[0].TimestampMs)
		score := math.Min(mean*float64(size)/math.Max(span, 1)/10, 1)
		if score <= d.config.AnomalyThreshold {
			return
		}

		in := sightingRecordInput(d.Type(), category, []string{address}, cluster, now)
		in.Score = score
		in.Multiplier = confidenceTemporal
		in.Evidence = evidence{Count: size, Span: time.Duration(span) * time.Millisecond}
		records = append(records, buildRecord(in))
	}

	for i := 1; i < len(sorted); i++ {
		gap := float64(sorted[i].TimestampMs - sorted[i-1].TimestampMs)
		if gap < threshold {
			continue
		}
		flush(i - 1)
		clusterStart = i
	}
	flush(len(sorted) - 1)

	return records
}
