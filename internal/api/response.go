// TrackGuard - Wireless Tracking and Surveillance Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trackguard

package api

import (
	"github.com/tomtom215/trackguard/internal/models"
)

// HealthStatus is returned by GET /health.
type HealthStatus struct {
	Status            string             `json:"status"`
	Version           string             `json:"version"`
	DatabaseConnected bool               `json:"database_connected"`
	MLEnabled         bool               `json:"ml_enabled"`
	Model             models.ModelStatus `json:"model"`
	Uptime            float64            `json:"uptime_seconds"`
	LogLevel          string             `json:"log_level"`
}

// IngestResponse is returned by POST /sightings.
type IngestResponse struct {
	Inserted int `json:"inserted"`
}

// AnomalyListResponse is one page of anomaly records.
type AnomalyListResponse struct {
	Anomalies []models.AnomalyDetection `json:"anomalies"`
	Total     int                       `json:"total"`
	Limit     int                       `json:"limit"`
	Offset    int                       `json:"offset"`
}

// ModelStatusResponse is returned by GET /model/status.
type ModelStatusResponse struct {
	models.ModelStatus
	MLEnabled bool                        `json:"ml_enabled"`
	Detectors map[models.AnomalyType]bool `json:"detectors"`
}

// DetectorStatusResponse lists detector flags.
type DetectorStatusResponse struct {
	Detectors map[models.AnomalyType]bool `json:"detectors"`
}

// ExclusionListResponse lists excluded addresses.
type ExclusionListResponse struct {
	Exclusions []models.ExclusionEntry `json:"exclusions"`
	Count      int                     `json:"count"`
}
