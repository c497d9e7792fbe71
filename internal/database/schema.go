// TrackGuard - Wireless Tracking and Surveillance Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trackguard

package database

import (
	"context"
	"fmt"
)

// schemaStatements create the tables idempotently. DuckDB has no
// AUTOINCREMENT, so ids come from explicit sequences.
var schemaStatements = []string{
	`CREATE SEQUENCE IF NOT EXISTS sightings_id_seq`,
	`CREATE SEQUENCE IF NOT EXISTS anomaly_detections_id_seq`,

	`CREATE TABLE IF NOT EXISTS sightings (
		id BIGINT PRIMARY KEY DEFAULT nextval('sightings_id_seq'),
		address TEXT NOT NULL,
		category TEXT NOT NULL,
		timestamp_ms BIGINT NOT NULL,
		latitude DOUBLE,
		longitude DOUBLE,
		accuracy_m DOUBLE,
		signal_dbm INTEGER,
		frequency_mhz INTEGER,
		capability TEXT,
		connected BOOLEAN NOT NULL DEFAULT false
	)`,

	`CREATE TABLE IF NOT EXISTS anomaly_detections (
		id BIGINT PRIMARY KEY DEFAULT nextval('anomaly_detections_id_seq'),
		detected_at TIMESTAMP NOT NULL,
		anomaly_type TEXT NOT NULL,
		severity TEXT NOT NULL,
		device_addresses TEXT NOT NULL,
		category TEXT NOT NULL,
		anomaly_score DOUBLE NOT NULL,
		confidence_level DOUBLE NOT NULL,
		description TEXT NOT NULL,
		detection_count INTEGER NOT NULL,
		locations TEXT NOT NULL,
		geographic_spread_m DOUBLE,
		time_span_ms BIGINT NOT NULL,
		first_seen_ms BIGINT NOT NULL,
		last_seen_ms BIGINT NOT NULL,
		acknowledged BOOLEAN NOT NULL DEFAULT false,
		false_positive BOOLEAN NOT NULL DEFAULT false
	)`,

	`CREATE INDEX IF NOT EXISTS idx_sightings_address_ts ON sightings(address, timestamp_ms)`,
	`CREATE INDEX IF NOT EXISTS idx_sightings_category_ts ON sightings(category, timestamp_ms)`,
	`CREATE INDEX IF NOT EXISTS idx_anomalies_detected_at ON anomaly_detections(detected_at)`,
}

// InitSchema creates the sightings and anomaly tables if they don't exist.
func (db *DB) InitSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	return nil
}
