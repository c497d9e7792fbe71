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

// CorrelationDetector flags pairs of devices that keep appearing in the same
// time bucket, such as a tracker travelling with its owner's phone.
type CorrelationDetector struct {
	toggle
	config Config
}

// NewCorrelationDetector creates a correlation detector.
func NewCorrelationDetector(config Config) *CorrelationDetector {
	return &CorrelationDetector{config: config}
}

// Type returns the anomaly type.
func (d *CorrelationDetector) Type() models.AnomalyType {
	return models.AnomalyCorrelationPattern
}

// devicePair is an unordered pair with A < B.
type devicePair struct {
	A, B string
}

// pairStats accumulates co-occurrence evidence for one pair.
type pairStats struct {
	coOccurrences int
	timestamps    []int64
	locations     []models.LocationPoint
}

// bucketPresence is one device's appearance within a bucket.
type bucketPresence struct {
	firstMs  int64
	location *models.LocationPoint
}

// Detect counts bucket co-occurrences for every pair of non-excluded devices
// in the window. Buckets are anchored on every in-window sighting, excluded
// or not. A device's count is the number of buckets it appears in.
func (d *CorrelationDetector) Detect(ctx context.Context, category models.DeviceCategory, sorted []models.Sighting, excluded map[string]bool, now time.Time) ([]*models.AnomalyDetection, error) {
	windowStart := now.Add(-d.config.AnalysisWindow).UnixMilli()
	inWindow := make([]models.Sighting, 0, len(sorted))
	for i := range sorted {
		if sorted[i].TimestampMs >= windowStart {
			inWindow = append(inWindow, sorted[i])
		}
	}

	buckets := partitionBuckets(inWindow, d.config.CorrelationBucket)

	deviceBuckets := make(map[string]int)
	pairs := make(map[devicePair]*pairStats)

	for _, bucket := range buckets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		present := make(map[string]*bucketPresence)
		for i := range bucket.Sightings {
			s := &bucket.Sightings[i]
			if excluded[s.Address] {
				continue
			}
			p, ok := present[s.Address]
			if !ok {
				p = &bucketPresence{firstMs: s.TimestampMs}
				present[s.Address] = p
			}
			if p.location == nil && s.HasLocation() {
				p.location = &models.LocationPoint{
					Latitude:    *s.Latitude,
					Longitude:   *s.Longitude,
					TimestampMs: s.TimestampMs,
				}
			}
		}

		addresses := make([]string, 0, len(present))
		for addr := range present {
			addresses = append(addresses, addr)
			deviceBuckets[addr]++
		}
		sort.Strings(addresses)

		for i := 0; i < len(addresses); i++ {
			for j := i + 1; j < len(addresses); j++ {
				key := devicePair{A: addresses[i], B: addresses[j]}
				stats, ok := pairs[key]
				if !ok {
					stats = &pairStats{}
					pairs[key] = stats
				}
				stats.coOccurrences++
				stats.timestamps = append(stats.timestamps, bucket.StartMs)

				if loc := present[key.A].location; loc != nil {
					stats.locations = append(stats.locations, *loc)
				} else if loc := present[key.B].location; loc != nil {
					stats.locations = append(stats.locations, *loc)
				}
			}
		}
	}

	keys := make([]devicePair, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].A != keys[j].A {
			return keys[i].A < keys[j].A
		}
		return keys[i].B < keys[j].B
	})

	var records []*models.AnomalyDetection
	for _, key := range keys {
		stats := pairs[key]
		if stats.coOccurrences < d.config.MinCoOccurrences {
			continue
		}

		denominator := deviceBuckets[key.A]
		if deviceBuckets[key.B] < denominator {
			denominator = deviceBuckets[key.B]
		}
		if denominator == 0 {
			continue
		}
		coefficient := float64(stats.coOccurrences) / float64(denominator)
		score := math.Min(coefficient*float64(stats.coOccurrences)/5, 1)
		if score <= d.config.AnomalyThreshold || coefficient <= d.config.MinCorrelationCoefficient {
			continue
		}

		records = append(records, buildRecord(&recordInput{
			Type:       d.Type(),
			Category:   category,
			Addresses:  []string{key.A, key.B},
			Score:      score,
			Multiplier: confidenceCorrelation,
			Evidence: evidence{
				Count:       stats.coOccurrences,
				Coefficient: math.Round(coefficient*100) / 100,
			},
			Count:       stats.coOccurrences,
			Locations:   stats.locations,
			FirstSeenMs: stats.timestamps[0],
			LastSeenMs:  stats.timestamps[len(stats.timestamps)-1],
			Now:         now,
		}))
	}

	return records, nil
}
