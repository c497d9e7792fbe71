// TrackGuard - Wireless Tracking and Surveillance Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trackguard

// Package database provides DuckDB-backed storage for sightings and anomaly
// records.
//
// # Overview
//
// DB is the single data layer between the analysis engine and DuckDB:
//   - database.go: connection lifecycle, pool configuration and checkpoints
//   - schema.go: table, sequence and index creation
//   - sightings.go: sighting ingest and the read side used by analysis
//     (detection.SightingSource)
//   - anomalies.go: anomaly persistence (detection.AnomalySink), listing and
//     user-facing acknowledge/false-positive mutations
//   - breaker.go: a gobreaker circuit breaker around the sighting source
//
// # Storage Layout
//
// Sightings keep their epoch-millisecond timestamps as BIGINT so range
// queries compare integers. Anomaly device addresses and location points are
// stored as JSON text encoded with goccy/go-json.
//
// # Thread Safety
//
// All DB methods are safe for concurrent use; database/sql pools connections
// and DuckDB serializes conflicting writes.
//
// # Metrics
//
// Every query records its duration and failures through
// metrics.RecordDBQuery, labelled by operation and table.
package database
