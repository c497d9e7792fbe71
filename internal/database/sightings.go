// TrackGuard - Wireless Tracking and Surveillance Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trackguard

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/trackguard/internal/logging"
	"github.com/tomtom215/trackguard/internal/metrics"
	"github.com/tomtom215/trackguard/internal/models"
)

const sightingColumns = `id, address, category, timestamp_ms, latitude, longitude,
	accuracy_m, signal_dbm, frequency_mhz, capability, connected`

// InsertSightings stores a batch of sightings in one transaction and returns
// the number inserted. Assigned ids are written back into the slice.
func (db *DB) InsertSightings(ctx context.Context, sightings []models.Sighting) (inserted int, err error) {
	if len(sightings) == 0 {
		return 0, nil
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("insert", "sightings", time.Since(start), err) }()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	// Ensure transaction is finalized
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logging.Error().
					Err(rbErr).
					AnErr("original_error", err).
					Msg("Transaction rollback failed")
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO sightings (
		address, category, timestamp_ms, latitude, longitude,
		accuracy_m, signal_dbm, frequency_mhz, capability, connected
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare sighting insert: %w", err)
	}
	defer closeWithLog(stmt, "prepared statement")

	perCategory := make(map[models.DeviceCategory]int)
	for i := range sightings {
		s := &sightings[i]
		err = stmt.QueryRowContext(ctx,
			s.Address,
			string(s.Category),
			s.TimestampMs,
			nullFloat(s.Latitude),
			nullFloat(s.Longitude),
			nullFloat(s.Accuracy),
			nullInt(s.Signal),
			nullInt(s.Frequency),
			nullString(s.Capability),
			s.Connected,
		).Scan(&s.ID)
		if err != nil {
			return 0, fmt.Errorf("failed to insert sighting %d: %w", i, err)
		}
		perCategory[s.Category]++
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit sightings: %w", err)
	}

	for category, n := range perCategory {
		metrics.RecordSightingsIngested(string(category), n)
	}
	return len(sightings), nil
}

// SightingsForDevice returns one device's sightings with start <= t <= end,
// ordered by timestamp.
func (db *DB) SightingsForDevice(ctx context.Context, address string, start, end time.Time) ([]models.Sighting, error) {
	return db.querySightings(ctx, "select_device",
		`SELECT `+sightingColumns+` FROM sightings
		WHERE address = ? AND timestamp_ms BETWEEN ? AND ?
		ORDER BY timestamp_ms, id`,
		address, start.UnixMilli(), end.UnixMilli())
}

// AllSightingsForCategoryInRange returns every sighting of a category within
// the range, ordered by timestamp.
func (db *DB) AllSightingsForCategoryInRange(ctx context.Context, category models.DeviceCategory, start, end time.Time) ([]models.Sighting, error) {
	return db.querySightings(ctx, "select_category",
		`SELECT `+sightingColumns+` FROM sightings
		WHERE category = ? AND timestamp_ms BETWEEN ? AND ?
		ORDER BY timestamp_ms, id`,
		string(category), start.UnixMilli(), end.UnixMilli())
}

// SightingsInRange returns all sightings within the range. It feeds model
// training.
func (db *DB) SightingsInRange(ctx context.Context, start, end time.Time) ([]models.Sighting, error) {
	return db.querySightings(ctx, "select_range",
		`SELECT `+sightingColumns+` FROM sightings
		WHERE timestamp_ms BETWEEN ? AND ?
		ORDER BY timestamp_ms, id`,
		start.UnixMilli(), end.UnixMilli())
}

// SightingsForAnomaly returns the sightings of the record's devices over the
// record's time span.
func (db *DB) SightingsForAnomaly(ctx context.Context, rec *models.AnomalyDetection) ([]models.Sighting, error) {
	if len(rec.DeviceAddresses) == 0 {
		return nil, nil
	}
	args := make([]interface{}, 0, len(rec.DeviceAddresses)+2)
	placeholders := ""
	for i, addr := range rec.DeviceAddresses {
		if i > 0 {
			placeholders += ", "
		}
		placeholders += "?"
		args = append(args, addr)
	}
	args = append(args, rec.FirstSeenMs, rec.LastSeenMs)

	return db.querySightings(ctx, "select_anomaly",
		`SELECT `+sightingColumns+` FROM sightings
		WHERE address IN (`+placeholders+`) AND timestamp_ms BETWEEN ? AND ?
		ORDER BY timestamp_ms, id`,
		args...)
}

// DistinctDeviceAddresses returns every address ever sighted in a category.
func (db *DB) DistinctDeviceAddresses(ctx context.Context, category models.DeviceCategory) (addresses []string, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("select_addresses", "sightings", time.Since(start), err) }()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT DISTINCT address FROM sightings WHERE category = ? ORDER BY address`,
		string(category))
	if err != nil {
		return nil, fmt.Errorf("failed to query device addresses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var addr string
		if err = rows.Scan(&addr); err != nil {
			return nil, fmt.Errorf("failed to scan device address: %w", err)
		}
		addresses = append(addresses, addr)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating device addresses: %w", err)
	}
	return addresses, nil
}

// CountSightings returns the number of stored sightings.
func (db *DB) CountSightings(ctx context.Context) (count int64, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("count", "sightings", time.Since(start), err) }()

	if err = db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM sightings`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count sightings: %w", err)
	}
	return count, nil
}

func (db *DB) querySightings(ctx context.Context, operation, query string, args ...interface{}) (sightings []models.Sighting, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordDBQuery(operation, "sightings", time.Since(start), err) }()

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sightings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s models.Sighting
		if err = scanSighting(rows, &s); err != nil {
			return nil, fmt.Errorf("failed to scan sighting: %w", err)
		}
		sightings = append(sightings, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sightings: %w", err)
	}
	return sightings, nil
}

// scanSighting scans a single row with nullable fields handling.
func scanSighting(scanner interface {
	Scan(dest ...interface{}) error
}, s *models.Sighting) error {
	var (
		category           string
		lat, lon, accuracy sql.NullFloat64
		signal, frequency  sql.NullInt64
		capability         sql.NullString
	)
	if err := scanner.Scan(
		&s.ID, &s.Address, &category, &s.TimestampMs,
		&lat, &lon, &accuracy, &signal, &frequency, &capability, &s.Connected,
	); err != nil {
		return err
	}

	s.Category = models.DeviceCategory(category)
	if lat.Valid {
		s.Latitude = &lat.Float64
	}
	if lon.Valid {
		s.Longitude = &lon.Float64
	}
	if accuracy.Valid {
		s.Accuracy = &accuracy.Float64
	}
	if signal.Valid {
		s.Signal = models.IntPtr(int(signal.Int64))
	}
	if frequency.Valid {
		s.Frequency = models.IntPtr(int(frequency.Int64))
	}
	if capability.Valid {
		s.Capability = &capability.String
	}
	return nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}
