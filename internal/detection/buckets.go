// TrackGuard - Wireless Tracking and Surveillance Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trackguard

package detection

import (
	"time"

	"github.com/tomtom215/trackguard/internal/models"
)

// timeBucket is a contiguous run of sightings starting at StartMs.
type timeBucket struct {
	StartMs   int64
	Sightings []models.Sighting
}

// partitionBuckets splits sorted sightings into disjoint buckets. A new
// bucket starts at the first sighting more than width after the current
// bucket's start, so buckets are anchored to data rather than the clock.
func partitionBuckets(sorted []models.Sighting, width time.Duration) []timeBucket {
	if len(sorted) == 0 {
		return nil
	}
	widthMs := width.Milliseconds()

	buckets := []timeBucket{{StartMs: sorted[0].TimestampMs}}
	for i := range sorted {
		current := &buckets[len(buckets)-1]
		if sorted[i].TimestampMs-current.StartMs > widthMs {
			buckets = append(buckets, timeBucket{StartMs: sorted[i].TimestampMs})
			current = &buckets[len(buckets)-1]
		}
		current.Sightings = append(current.Sightings, sorted[i])
	}
	return buckets
}
