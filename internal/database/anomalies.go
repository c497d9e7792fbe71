// TrackGuard - Wireless Tracking and Surveillance Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trackguard

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/trackguard/internal/database/query"
	"github.com/tomtom215/trackguard/internal/metrics"
	"github.com/tomtom215/trackguard/internal/models"
)

const (
	defaultAnomalyLimit = 100
	maxAnomalyLimit     = 1000
)

const anomalyColumns = `id, detected_at, anomaly_type, severity, device_addresses, category,
	anomaly_score, confidence_level, description, detection_count, locations,
	geographic_spread_m, time_span_ms, first_seen_ms, last_seen_ms,
	acknowledged, false_positive`

// InsertAnomaly persists a new anomaly record and sets its ID.
func (db *DB) InsertAnomaly(ctx context.Context, rec *models.AnomalyDetection) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("insert", "anomaly_detections", time.Since(start), err) }()

	addresses, err := json.Marshal(rec.DeviceAddresses)
	if err != nil {
		return fmt.Errorf("failed to encode device addresses: %w", err)
	}
	locations := rec.Locations
	if locations == nil {
		locations = []models.LocationPoint{}
	}
	locationsJSON, err := json.Marshal(locations)
	if err != nil {
		return fmt.Errorf("failed to encode locations: %w", err)
	}

	// Use RETURNING to get the generated ID (DuckDB doesn't support LastInsertId with sequences)
	err = db.conn.QueryRowContext(ctx, `INSERT INTO anomaly_detections (
		detected_at, anomaly_type, severity, device_addresses, category,
		anomaly_score, confidence_level, description, detection_count, locations,
		geographic_spread_m, time_span_ms, first_seen_ms, last_seen_ms,
		acknowledged, false_positive
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		rec.DetectedAt.UTC(),
		string(rec.Type),
		string(rec.Severity),
		string(addresses),
		string(rec.Category),
		rec.AnomalyScore,
		rec.ConfidenceLevel,
		rec.Description,
		rec.DetectionCount,
		string(locationsJSON),
		nullFloat(rec.GeographicSpreadM),
		rec.TimeSpanMs,
		rec.FirstSeenMs,
		rec.LastSeenMs,
		rec.Acknowledged,
		rec.FalsePositive,
	).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("failed to insert anomaly: %w", err)
	}
	return nil
}

// GetAnomaly retrieves an anomaly by ID. It returns ErrNotFound when absent.
func (db *DB) GetAnomaly(ctx context.Context, id int64) (rec *models.AnomalyDetection, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() {
		if errors.Is(err, ErrNotFound) {
			metrics.RecordDBQuery("select_one", "anomaly_detections", time.Since(start), nil)
			return
		}
		metrics.RecordDBQuery("select_one", "anomaly_detections", time.Since(start), err)
	}()

	rec = &models.AnomalyDetection{}
	err = scanAnomaly(db.conn.QueryRowContext(ctx,
		`SELECT `+anomalyColumns+` FROM anomaly_detections WHERE id = ?`, id), rec)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("anomaly %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get anomaly: %w", err)
	}
	return rec, nil
}

// ListAnomalies returns anomalies matching filter, newest first.
func (db *DB) ListAnomalies(ctx context.Context, filter models.AnomalyFilter) (records []models.AnomalyDetection, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("select", "anomaly_detections", time.Since(start), err) }()

	whereClause, args := anomalyWhere(filter).BuildWithPrefix()

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultAnomalyLimit
	}
	if limit > maxAnomalyLimit {
		limit = maxAnomalyLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	args = append(args, limit, offset)

	// All user values are parameterized; the where clause only names fixed columns.
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+anomalyColumns+` FROM anomaly_detections `+whereClause+
			` ORDER BY detected_at DESC, id DESC LIMIT ? OFFSET ?`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query anomalies: %w", err)
	}
	defer rows.Close()

	records = make([]models.AnomalyDetection, 0)
	for rows.Next() {
		var rec models.AnomalyDetection
		if err = scanAnomaly(rows, &rec); err != nil {
			return nil, fmt.Errorf("failed to scan anomaly: %w", err)
		}
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating anomalies: %w", err)
	}
	return records, nil
}

// CountAnomalies returns the number of anomalies matching filter, ignoring
// its limit and offset.
func (db *DB) CountAnomalies(ctx context.Context, filter models.AnomalyFilter) (count int, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("count", "anomaly_detections", time.Since(start), err) }()

	whereClause, args := anomalyWhere(filter).BuildWithPrefix()
	if err = db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM anomaly_detections `+whereClause, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count anomalies: %w", err)
	}
	return count, nil
}

// AcknowledgeAnomaly marks an anomaly as reviewed.
func (db *DB) AcknowledgeAnomaly(ctx context.Context, id int64) error {
	return db.updateAnomaly(ctx, "acknowledge",
		`UPDATE anomaly_detections SET acknowledged = true WHERE id = ?`, id)
}

// MarkFalsePositive flags an anomaly as a false positive. A false positive is
// also considered acknowledged.
func (db *DB) MarkFalsePositive(ctx context.Context, id int64) error {
	return db.updateAnomaly(ctx, "false_positive",
		`UPDATE anomaly_detections SET false_positive = true, acknowledged = true WHERE id = ?`, id)
}

func (db *DB) updateAnomaly(ctx context.Context, operation, stmt string, id int64) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() {
		if errors.Is(err, ErrNotFound) {
			metrics.RecordDBQuery(operation, "anomaly_detections", time.Since(start), nil)
			return
		}
		metrics.RecordDBQuery(operation, "anomaly_detections", time.Since(start), err)
	}()

	res, err := db.conn.ExecContext(ctx, stmt, id)
	if err != nil {
		return fmt.Errorf("failed to update anomaly: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("anomaly %d: %w", id, ErrNotFound)
	}
	return nil
}

// anomalyWhere translates a filter into WHERE clauses.
func anomalyWhere(filter models.AnomalyFilter) *query.WhereBuilder {
	types := make([]string, len(filter.Types))
	for i, t := range filter.Types {
		types[i] = string(t)
	}
	severities := make([]string, len(filter.Severities))
	for i, s := range filter.Severities {
		severities[i] = string(s)
	}

	return query.NewWhereBuilder().
		AddIn("anomaly_type", types).
		AddIn("severity", severities).
		AddBool("acknowledged", filter.Acknowledged).
		AddTimeRange("detected_at", utcPtr(filter.StartDate), utcPtr(filter.EndDate))
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// scanAnomaly scans a single anomaly row and decodes its JSON columns.
func scanAnomaly(scanner interface {
	Scan(dest ...interface{}) error
}, rec *models.AnomalyDetection) error {
	var (
		anomalyType, severity, category string
		addresses, locations            string
		spread                          sql.NullFloat64
	)
	if err := scanner.Scan(
		&rec.ID,
		&rec.DetectedAt,
		&anomalyType,
		&severity,
		&addresses,
		&category,
		&rec.AnomalyScore,
		&rec.ConfidenceLevel,
		&rec.Description,
		&rec.DetectionCount,
		&locations,
		&spread,
		&rec.TimeSpanMs,
		&rec.FirstSeenMs,
		&rec.LastSeenMs,
		&rec.Acknowledged,
		&rec.FalsePositive,
	); err != nil {
		return err
	}

	rec.Type = models.AnomalyType(anomalyType)
	rec.Severity = models.Severity(severity)
	rec.Category = models.DeviceCategory(category)
	rec.DetectedAt = rec.DetectedAt.UTC()
	if spread.Valid {
		rec.GeographicSpreadM = &spread.Float64
	}

	if err := json.Unmarshal([]byte(addresses), &rec.DeviceAddresses); err != nil {
		return fmt.Errorf("failed to decode device addresses: %w", err)
	}
	rec.Locations = []models.LocationPoint{}
	if err := json.Unmarshal([]byte(locations), &rec.Locations); err != nil {
		return fmt.Errorf("failed to decode locations: %w", err)
	}
	return nil
}
