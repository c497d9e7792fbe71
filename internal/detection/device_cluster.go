// TrackGuard - Wireless Tracking and Surveillance Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trackguard

package detection

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/tomtom215/trackguard/internal/models"
)

// DeviceClusterDetector flags several previously unseen devices appearing in
// the same short bucket, such as a group of people arriving together.
type DeviceClusterDetector struct {
	toggle
	config Config
}

// NewDeviceClusterDetector creates a new-device cluster detector.
func NewDeviceClusterDetector(config Config) *DeviceClusterDetector {
	return &DeviceClusterDetector{config: config}
}

// Type returns the anomaly type.
func (d *DeviceClusterDetector) Type() models.AnomalyType {
	return models.AnomalyNewDeviceCluster
}

// Detect records each device's first-seen time over the full input, then
// buckets only the trailing cluster window. A device is new in a bucket when
// it was first seen no more than NewDeviceThreshold before the bucket start
// (devices first seen inside the bucket count as new).
func (d *DeviceClusterDetector) Detect(ctx context.Context, category models.DeviceCategory, sorted []models.Sighting, excluded map[string]bool, now time.Time) ([]*models.AnomalyDetection, error) {
	firstSeen := make(map[string]int64)
	for i := range sorted {
		if _, ok := firstSeen[sorted[i].Address]; !ok {
			firstSeen[sorted[i].Address] = sorted[i].TimestampMs
		}
	}

	windowStart := now.Add(-d.config.ClusterWindow).UnixMilli()
	recent := make([]models.Sighting, 0, len(sorted))
	for i := range sorted {
		if sorted[i].TimestampMs >= windowStart {
			recent = append(recent, sorted[i])
		}
	}

	thresholdMs := d.config.NewDeviceThreshold.Milliseconds()
	var records []*models.AnomalyDetection

	for _, bucket := range partitionBuckets(recent, d.config.ClusterBucket) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		newDevices := make(map[string]bool)
		var members []models.Sighting
		for i := range bucket.Sightings {
			s := bucket.Sightings[i]
			if excluded[s.Address] {
				continue
			}
			if bucket.StartMs-firstSeen[s.Address] > thresholdMs {
				continue
			}
			newDevices[s.Address] = true
			members = append(members, s)
		}
		if len(newDevices) < d.config.MinClusterDevices {
			continue
		}

		score := math.Min(float64(len(newDevices))/5, 1)
		if score <= d.config.AnomalyThreshold {
			continue
		}

		addresses := make([]string, 0, len(newDevices))
		for addr := range newDevices {
			addresses = append(addresses, addr)
		}
		sort.Strings(addresses)

		in := sightingRecordInput(d.Type(), category, addresses, members, now)
		in.Score = score
		in.Multiplier = confidenceCluster
		in.Evidence = evidence{
			Devices: len(addresses),
			Span:    time.Duration(in.LastSeenMs-in.FirstSeenMs) * time.Millisecond,
		}
		records = append(records, buildRecord(in))
	}

	return records, nil
}
