// TrackGuard - Wireless Tracking and Surveillance Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trackguard

/*
Package models defines data structures shared across TrackGuard.

Key Components:

  - Sighting: one observed wireless-device event (address, timestamp, optional
    location and signal metadata). Sightings are read-only inputs to analysis.
  - AnomalyDetection: a scored, severity-classified record describing a
    suspicious pattern. Created by the detection engine, persisted by the
    database layer, later mutated only through acknowledge/false-positive flags.
  - AnomalyType / Severity: closed enumerations with exhaustive switches in the
    detection package.
  - APIResponse / APIError: the standard HTTP envelope.

Ordering:

Sightings for a device are not guaranteed to arrive sorted. Consumers that do
interval arithmetic call SortSightings first.

Usage Example:

	s := models.Sighting{
	    Address:     "AA:BB:CC:DD:EE:FF",
	    Category:    models.CategoryBluetooth,
	    TimestampMs: time.Now().UnixMilli(),
	}
	if s.HasLocation() {
	    // ...
	}
*/
package models
