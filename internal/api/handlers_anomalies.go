// TrackGuard - Wireless Tracking and Surveillance Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trackguard

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/trackguard/internal/database"
	"github.com/tomtom215/trackguard/internal/logging"
	"github.com/tomtom215/trackguard/internal/models"
)

// ListAnomalies returns one page of anomaly records, newest first.
//
// Query parameters:
//   - type, severity: comma-separated enumerations
//   - acknowledged: true or false
//   - start_date, end_date: RFC3339
//   - limit (1-1000, default 100), offset
func (h *Handler) ListAnomalies(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req, err := parseAnomalyListRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, codeValidation, err.Error(), nil)
		return
	}
	if apiErr := validateRequest(req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr, nil)
		return
	}

	filter := req.Filter()
	records, err := h.store.ListAnomalies(r.Context(), filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeDatabase, "Failed to list anomalies", err)
		return
	}
	total, err := h.store.CountAnomalies(r.Context(), filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeDatabase, "Failed to count anomalies", err)
		return
	}

	respondSuccess(w, http.StatusOK, AnomalyListResponse{
		Anomalies: records,
		Total:     total,
		Limit:     req.Limit,
		Offset:    req.Offset,
	}, start)
}

// AcknowledgeAnomaly marks a record as reviewed and forwards its sightings
// to the model as legitimate feedback.
func (h *Handler) AcknowledgeAnomaly(w http.ResponseWriter, r *http.Request) {
	h.updateAnomaly(w, r, false)
}

// MarkFalsePositive flags a record as a false positive and forwards its
// sightings to the model as false-positive feedback.
func (h *Handler) MarkFalsePositive(w http.ResponseWriter, r *http.Request) {
	h.updateAnomaly(w, r, true)
}

func (h *Handler) updateAnomaly(w http.ResponseWriter, r *http.Request, falsePositive bool) {
	start := time.Now()
	ctx := r.Context()

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, codeValidation, "id must be a positive integer", nil)
		return
	}

	if falsePositive {
		err = h.store.MarkFalsePositive(ctx, id)
	} else {
		err = h.store.AcknowledgeAnomaly(ctx, id)
	}
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, http.StatusNotFound, codeNotFound, "Anomaly not found", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeDatabase, "Failed to update anomaly", err)
		return
	}

	rec, err := h.store.GetAnomaly(ctx, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeDatabase, "Failed to load anomaly", err)
		return
	}

	h.forwardFeedback(ctx, rec, falsePositive)

	respondSuccess(w, http.StatusOK, rec, start)
}

// forwardFeedback hands the record's sightings to the model. The mutation is
// already committed, so a failed lookup is only logged.
func (h *Handler) forwardFeedback(ctx context.Context, rec *models.AnomalyDetection, falsePositive bool) {
	sightings, err := h.store.SightingsForAnomaly(ctx, rec)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Int64("anomaly_id", rec.ID).Msg("Feedback sightings unavailable")
		return
	}
	h.analyzer.RecordFeedback(sightings, falsePositive)
}
