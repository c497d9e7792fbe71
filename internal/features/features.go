// TrackGuard - Wireless Tracking and Surveillance Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trackguard

// Package features summarizes a device's sighting history into a fixed-size
// numeric vector for the isolation forest.
package features

import (
	"math"
	"sort"

	"github.com/tomtom215/trackguard/internal/geo"
	"github.com/tomtom215/trackguard/internal/models"
)

// NormalizationVersion identifies the scaling constants used by ToArray.
// Bump it whenever a scale changes.
const NormalizationVersion = 1

// Count is the length of the vector returned by ToArray.
const Count = 10

const (
	msPerHour = 3600000.0

	scaleDetectionCount = 100.0
	scaleInterval       = msPerHour
	scaleFrequency      = 20.0
	scaleLocations      = 50.0
	scaleDistance       = 10000.0
	scaleSignal         = 100.0
	scaleEntropy        = 4.0
)

// DeviceFeatures is the per-device summary consumed by the ML detector.
type DeviceFeatures struct {
	Address          string
	DetectionCount   int
	MeanInterval     float64 // ms
	StdDevInterval   float64 // ms
	Frequency        float64 // sightings per hour
	UniqueLocations  int
	MeanDistance     float64 // meters between consecutive located sightings
	MaxDistance      float64
	MeanSignal       float64 // dBm
	StdDevSignal     float64
	HourOfDayEntropy float64 // nats
}

// Extract computes features for one device. Sightings need not be sorted.
// An empty input yields a zero-valued DeviceFeatures.
func Extract(sightings []models.Sighting) DeviceFeatures {
	var f DeviceFeatures
	if len(sightings) == 0 {
		return f
	}

	sorted := models.SortSightings(sightings)
	f.Address = sorted[0].Address
	f.DetectionCount = len(sorted)

	intervals := Intervals(sorted)
	f.MeanInterval, f.StdDevInterval = MeanStdDev(intervals)

	f.Frequency = Frequency(sorted)

	extractGeographic(sorted, &f)
	extractSignal(sorted, &f)
	f.HourOfDayEntropy = hourEntropy(sorted)

	return f
}

// ExtractAll groups sightings by address and extracts features for each
// device, ordered by address so downstream sampling is reproducible.
func ExtractAll(sightings []models.Sighting) []DeviceFeatures {
	groups := models.GroupByAddress(sightings)
	addresses := make([]string, 0, len(groups))
	for addr := range groups {
		addresses = append(addresses, addr)
	}
	sort.Strings(addresses)

	out := make([]DeviceFeatures, 0, len(groups))
	for _, addr := range addresses {
		out = append(out, Extract(groups[addr]))
	}
	return out
}

// ToArray returns the normalized feature vector. Every element is in [0,1].
func (f DeviceFeatures) ToArray() []float64 {
	return []float64{
		clip01(float64(f.DetectionCount) / scaleDetectionCount),
		clip01(f.MeanInterval / scaleInterval),
		clip01(f.StdDevInterval / scaleInterval),
		clip01(f.Frequency / scaleFrequency),
		clip01(float64(f.UniqueLocations) / scaleLocations),
		clip01(f.MeanDistance / scaleDistance),
		clip01(f.MaxDistance / scaleDistance),
		clip01(math.Abs(f.MeanSignal) / scaleSignal),
		clip01(f.StdDevSignal / scaleSignal),
		clip01(f.HourOfDayEntropy / scaleEntropy),
	}
}

// Intervals returns absolute deltas between consecutive timestamps.
// sorted must already be ordered by timestamp.
func Intervals(sorted []models.Sighting) []float64 {
	if len(sorted) < 2 {
		return nil
	}
	out := make([]float64, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		out = append(out, math.Abs(float64(sorted[i].TimestampMs-sorted[i-1].TimestampMs)))
	}
	return out
}

// Frequency returns sightings per hour over the span of sorted.
// Returns 0 for a single sighting or a zero-length span.
func Frequency(sorted []models.Sighting) float64 {
	if len(sorted) <= 1 {
		return 0
	}
	span := float64(sorted[len(sorted)-1].TimestampMs - sorted[0].TimestampMs)
	if span <= 0 {
		return 0
	}
	return float64(len(sorted)) / span * msPerHour
}

// MeanStdDev returns the mean and population standard deviation of values.
// Both are 0 for an empty slice.
func MeanStdDev(values []float64) (mean, stddev float64) {
	if len(values) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean = sum / float64(len(values))

	var variance float64
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))
	return mean, math.Sqrt(variance)
}

func extractGeographic(sorted []models.Sighting, f *DeviceFeatures) {
	type coord struct{ lat, lon float64 }

	unique := make(map[coord]struct{})
	var located []*models.Sighting
	for i := range sorted {
		if !sorted[i].HasLocation() {
			continue
		}
		located = append(located, &sorted[i])
		unique[coord{*sorted[i].Latitude, *sorted[i].Longitude}] = struct{}{}
	}
	f.UniqueLocations = len(unique)

	if len(located) < 2 {
		return
	}
	var total float64
	for i := 1; i < len(located); i++ {
		d, _ := geo.Between(located[i-1], located[i])
		total += d
		if d > f.MaxDistance {
			f.MaxDistance = d
		}
	}
	f.MeanDistance = total / float64(len(located)-1)
}

func extractSignal(sorted []models.Sighting, f *DeviceFeatures) {
	var signals []float64
	for i := range sorted {
		if sorted[i].Signal != nil {
			signals = append(signals, float64(*sorted[i].Signal))
		}
	}
	f.MeanSignal, f.StdDevSignal = MeanStdDev(signals)
}

// hourEntropy is the Shannon entropy (nats) of the hour-of-day histogram.
func hourEntropy(sorted []models.Sighting) float64 {
	if len(sorted) == 0 {
		return 0
	}
	var buckets [24]int
	for i := range sorted {
		hour := (sorted[i].TimestampMs / int64(msPerHour)) % 24
		if hour < 0 {
			hour += 24
		}
		buckets[hour]++
	}

	n := float64(len(sorted))
	var entropy float64
	for _, c := range buckets {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		entropy -= p * math.Log(p)
	}
	return entropy
}

func clip01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
