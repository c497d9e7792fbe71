// TrackGuard - Wireless Tracking and Surveillance Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trackguard

package detection

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/trackguard/internal/models"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// at returns the epoch millis of testNow shifted by offset.
func at(offset time.Duration) int64 {
	return testNow.Add(offset).UnixMilli()
}

func sightingAt(address string, ts int64) models.Sighting {
	return models.Sighting{Address: address, Category: models.CategoryWiFi, TimestampMs: ts}
}

func locatedAt(address string, ts int64, lat, lon float64) models.Sighting {
	s := sightingAt(address, ts)
	s.Latitude = models.Float64Ptr(lat)
	s.Longitude = models.Float64Ptr(lon)
	return s
}

// evenlySpaced returns n sightings ending at end, step apart.
func evenlySpaced(address string, n int, end time.Duration, step time.Duration) []models.Sighting {
	out := make([]models.Sighting, 0, n)
	for i := n - 1; i >= 0; i-- {
		out = append(out, sightingAt(address, at(end-time.Duration(i)*step)))
	}
	return out
}

// memorySource is an in-memory SightingSource.
type memorySource struct {
	mu        sync.Mutex
	sightings []models.Sighting
	err       error
	calls     int
}

func (m *memorySource) add(s ...models.Sighting) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sightings = append(m.sightings, s...)
}

func (m *memorySource) SightingsForDevice(ctx context.Context, address string, start, end time.Time) ([]models.Sighting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	var out []models.Sighting
	for _, s := range m.sightings {
		if s.Address == address && s.TimestampMs >= start.UnixMilli() && s.TimestampMs <= end.UnixMilli() {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memorySource) AllSightingsForCategoryInRange(ctx context.Context, category models.DeviceCategory, start, end time.Time) ([]models.Sighting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Sighting
	for _, s := range m.sightings {
		if s.Category == category && s.TimestampMs >= start.UnixMilli() && s.TimestampMs <= end.UnixMilli() {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memorySource) DistinctDeviceAddresses(ctx context.Context, category models.DeviceCategory) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[string]bool)
	var out []string
	for _, s := range m.sightings {
		if s.Category == category && !seen[s.Address] {
			seen[s.Address] = true
			out = append(out, s.Address)
		}
	}
	return out, nil
}

// staticExclusions excludes a fixed set of addresses.
type staticExclusions map[string]bool

func (s staticExclusions) IsExcluded(ctx context.Context, address string) (bool, error) {
	return s[address], nil
}

// memorySink records inserted anomalies.
type memorySink struct {
	mu      sync.Mutex
	records []*models.AnomalyDetection
	err     error
}

func (m *memorySink) InsertAnomaly(ctx context.Context, rec *models.AnomalyDetection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, rec)
	return nil
}

// sorted returns the records in a stable order for comparison.
func (m *memorySink) sorted() []*models.AnomalyDetection {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.AnomalyDetection, len(m.records))
	copy(out, m.records)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		if out[i].FirstSeenMs != out[j].FirstSeenMs {
			return out[i].FirstSeenMs < out[j].FirstSeenMs
		}
		return joinAddresses(out[i].DeviceAddresses) < joinAddresses(out[j].DeviceAddresses)
	})
	return out
}

func joinAddresses(addrs []string) string {
	out := ""
	for _, a := range addrs {
		out += a + ","
	}
	return out
}

// fixedScorer returns a constant score.
type fixedScorer struct {
	ready bool
	score float64
}

func (f fixedScorer) IsModelReady() bool { return f.ready }

func (f fixedScorer) PredictAnomalyScore([]models.Sighting) float64 { return f.score }

func recordsOfType(recs []*models.AnomalyDetection, t models.AnomalyType) []*models.AnomalyDetection {
	var out []*models.AnomalyDetection
	for _, r := range recs {
		if r.Type == t {
			out = append(out, r)
		}
	}
	return out
}
