// TrackGuard - Wireless Tracking and Surveillance Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trackguard

package models

import (
	"sort"
	"time"
)

// DeviceCategory identifies the radio family a sighting was observed on.
type DeviceCategory string

const (
	// CategoryWiFi is a wireless-LAN network or client.
	CategoryWiFi DeviceCategory = "WIFI"

	// CategoryBluetooth is a short-range radio device (classic or LE).
	CategoryBluetooth DeviceCategory = "BLUETOOTH"

	// CategoryOther covers anything else the scanner reports.
	CategoryOther DeviceCategory = "OTHER"
)

// AllCategories returns every device category in a stable order.
func AllCategories() []DeviceCategory {
	return []DeviceCategory{CategoryWiFi, CategoryBluetooth, CategoryOther}
}

// Valid reports whether c is a known category.
func (c DeviceCategory) Valid() bool {
	switch c {
	case CategoryWiFi, CategoryBluetooth, CategoryOther:
		return true
	}
	return false
}

// Sighting is a single observation of a wireless device.
// Optional fields are nil when the scanner could not supply them.
type Sighting struct {
	ID          int64          `json:"id,omitempty"`
	Address     string         `json:"address" validate:"required,min=1,max=128"`
	Category    DeviceCategory `json:"category" validate:"required,device_category"`
	TimestampMs int64          `json:"timestamp_ms" validate:"required,gt=0"`
	Latitude    *float64       `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude   *float64       `json:"longitude,omitempty" validate:"omitempty,longitude"`
	Accuracy    *float64       `json:"accuracy,omitempty" validate:"omitempty,gte=0"`
	Signal      *int           `json:"signal,omitempty" validate:"omitempty,gte=-150,lte=50"`
	Frequency   *int           `json:"frequency,omitempty" validate:"omitempty,gt=0"`
	Capability  *string        `json:"capability,omitempty" validate:"omitempty,max=512"`
	Connected   bool           `json:"connected"`
}

// HasLocation reports whether both coordinates are present.
func (s *Sighting) HasLocation() bool {
	return s.Latitude != nil && s.Longitude != nil
}

// Time returns the sighting timestamp as a time.Time in UTC.
func (s *Sighting) Time() time.Time {
	return time.UnixMilli(s.TimestampMs).UTC()
}

// SortSightings returns a copy of sightings ordered by timestamp ascending.
// The input slice is left untouched.
func SortSightings(sightings []Sighting) []Sighting {
	sorted := make([]Sighting, len(sightings))
	copy(sorted, sightings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TimestampMs < sorted[j].TimestampMs
	})
	return sorted
}

// GroupByAddress splits sightings by device address, preserving input order
// within each group.
func GroupByAddress(sightings []Sighting) map[string][]Sighting {
	groups := make(map[string][]Sighting)
	for i := range sightings {
		groups[sightings[i].Address] = append(groups[sightings[i].Address], sightings[i])
	}
	return groups
}

// Float64Ptr returns a pointer to v.
func Float64Ptr(v float64) *float64 { return &v }

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }
