// TrackGuard - Wireless Tracking and Surveillance Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trackguard

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/trackguard/internal/analysis"
	"github.com/tomtom215/trackguard/internal/detection"
	"github.com/tomtom215/trackguard/internal/metrics"
	"github.com/tomtom215/trackguard/internal/models"
)

// RunAnalysis runs one analysis pass synchronously and returns its summary.
// Requests beyond the manual-run token bucket are answered with 429.
func (h *Handler) RunAnalysis(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if !h.runLimiter.Allow() {
		metrics.APIRateLimitHits.WithLabelValues("analysis-run").Inc()
		w.Header().Set("Retry-After", "60")
		respondError(w, http.StatusTooManyRequests, codeRateLimited, "Manual analysis runs are rate limited", nil)
		return
	}

	result, err := h.analyzer.RunPass(r.Context())
	if err != nil {
		if errors.Is(err, detection.ErrCollaborator) {
			respondError(w, http.StatusServiceUnavailable, codeUnavailable, "Analysis dependencies unavailable", err)
			return
		}
		respondError(w, http.StatusInternalServerError, codeAnalysis, "Analysis pass failed", err)
		return
	}

	respondSuccess(w, http.StatusOK, result, start)
}

// DetectorStatus lists the enabled flag of each statistical detector.
func (h *Handler) DetectorStatus(w http.ResponseWriter, _ *http.Request) {
	respondSuccess(w, http.StatusOK, DetectorStatusResponse{Detectors: h.analyzer.DetectorStatus()}, time.Now())
}

// SetDetectorEnabled toggles one statistical detector.
//
// Body: {"enabled": false}
func (h *Handler) SetDetectorEnabled(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	anomalyType := models.AnomalyType(chi.URLParam(r, "type"))
	if !anomalyType.Valid() {
		respondError(w, http.StatusBadRequest, codeValidation, "type must be a valid anomaly type", nil)
		return
	}

	var req DetectorToggleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, codeInvalidJSON, "Invalid request body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr, nil)
		return
	}

	if !h.analyzer.SetDetectorEnabled(anomalyType, *req.Enabled) {
		respondError(w, http.StatusNotFound, codeUnknownDetect, "No detector handles this anomaly type", nil)
		return
	}

	respondSuccess(w, http.StatusOK, DetectorStatusResponse{Detectors: h.analyzer.DetectorStatus()}, start)
}

// TrainModel retrains the isolation forest from the training window.
func (h *Handler) TrainModel(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	status, err := h.analyzer.Train(r.Context())
	if errors.Is(err, analysis.ErrMLDisabled) {
		respondError(w, http.StatusConflict, codeMLDisabled, "ML detection is disabled", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeTraining, "Model training failed", err)
		return
	}

	respondSuccess(w, http.StatusOK, status, start)
}

// ModelStatus describes the forest and the detector flags.
func (h *Handler) ModelStatus(w http.ResponseWriter, _ *http.Request) {
	respondSuccess(w, http.StatusOK, ModelStatusResponse{
		ModelStatus: h.analyzer.ModelStatus(),
		MLEnabled:   h.analyzer.MLEnabled(),
		Detectors:   h.analyzer.DetectorStatus(),
	}, time.Now())
}
