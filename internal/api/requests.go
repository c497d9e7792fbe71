// TrackGuard - Wireless Tracking and Surveillance Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trackguard

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/tomtom215/trackguard/internal/models"
)

// defaultAnomalyLimit is the page size when limit is absent.
const defaultAnomalyLimit = 100

// IngestSightingsRequest is the body of POST /sightings.
type IngestSightingsRequest struct {
	Sightings []models.Sighting `json:"sightings" validate:"required,min=1,max=10000,dive"`
}

// AnomalyListRequest holds the parsed query of GET /anomalies.
type AnomalyListRequest struct {
	Types        []string   `json:"type" validate:"omitempty,dive,anomaly_type"`
	Severities   []string   `json:"severity" validate:"omitempty,dive,severity"`
	Acknowledged *bool      `json:"acknowledged"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	Limit        int        `json:"limit" validate:"min=1,max=1000"`
	Offset       int        `json:"offset" validate:"min=0,max=1000000"`
}

// parseAnomalyListRequest reads the query string. Malformed booleans and
// timestamps are reported as errors; numeric parameters fall back to defaults.
func parseAnomalyListRequest(r *http.Request) (*AnomalyListRequest, error) {
	q := r.URL.Query()
	req := &AnomalyListRequest{
		Types:      parseCommaSeparated(q.Get("type")),
		Severities: parseCommaSeparated(q.Get("severity")),
		Limit:      getIntParam(r, "limit", defaultAnomalyLimit),
		Offset:     getIntParam(r, "offset", 0),
	}

	if v := q.Get("acknowledged"); v != "" {
		ack, err := strconv.ParseBool(v)
		if err != nil {
			return nil, errors.New("acknowledged must be a boolean")
		}
		req.Acknowledged = &ack
	}

	var err error
	if req.StartDate, err = parseTimeParam(q.Get("start_date"), "start_date"); err != nil {
		return nil, err
	}
	if req.EndDate, err = parseTimeParam(q.Get("end_date"), "end_date"); err != nil {
		return nil, err
	}
	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		return nil, errors.New("end_date must not be before start_date")
	}

	return req, nil
}

func parseTimeParam(value, name string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("%s must be an RFC3339 timestamp", name)
	}
	return &t, nil
}

// Filter converts the request into a database filter.
func (req *AnomalyListRequest) Filter() models.AnomalyFilter {
	filter := models.AnomalyFilter{
		Acknowledged: req.Acknowledged,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Limit:        req.Limit,
		Offset:       req.Offset,
	}
	for _, t := range req.Types {
		filter.Types = append(filter.Types, models.AnomalyType(t))
	}
	for _, s := range req.Severities {
		filter.Severities = append(filter.Severities, models.Severity(s))
	}
	return filter
}

// ExclusionRequest is the body of POST /exclusions.
type ExclusionRequest struct {
	Address string `json:"address" validate:"required,max=128"`
	Reason  string `json:"reason" validate:"max=256"`
}

// DetectorToggleRequest is the body of PUT /analysis/detectors/{type}.
type DetectorToggleRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}
