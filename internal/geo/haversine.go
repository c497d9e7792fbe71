// TrackGuard - Wireless Tracking and Surveillance Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trackguard

// Package geo provides great-circle distance helpers used by feature
// extraction and geographic anomaly detectors.
package geo

import (
	"math"

	"github.com/tomtom215/trackguard/internal/models"
)

// EarthRadiusMeters is the mean Earth radius used for all distance math.
const EarthRadiusMeters = 6371000.0

// Haversine returns the great-circle distance in meters between two
// coordinates given in decimal degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	// Convert to radians
	lat1Rad := lat1 * math.Pi / 180.0
	lon1Rad := lon1 * math.Pi / 180.0
	lat2Rad := lat2 * math.Pi / 180.0
	lon2Rad := lon2 * math.Pi / 180.0

	dLat := lat2Rad - lat1Rad
	dLon := lon2Rad - lon1Rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// Between returns the distance in meters between two located sightings.
// ok is false when either sighting lacks coordinates.
func Between(a, b *models.Sighting) (meters float64, ok bool) {
	if !a.HasLocation() || !b.HasLocation() {
		return 0, false
	}
	return Haversine(*a.Latitude, *a.Longitude, *b.Latitude, *b.Longitude), true
}

// MaxSpread returns the largest pairwise distance among points in meters.
// Points beyond the first 200 are ignored to bound the quadratic scan.
func MaxSpread(points []models.LocationPoint) float64 {
	const maxPoints = 200
	if len(points) > maxPoints {
		points = points[:maxPoints]
	}
	var spread float64
	for i := 0; i < len(points); i++ {
		for j := i + 1; j < len(points); j++ {
			d := Haversine(points[i].Latitude, points[i].Longitude, points[j].Latitude, points[j].Longitude)
			if d > spread {
				spread = d
			}
		}
	}
	return spread
}
