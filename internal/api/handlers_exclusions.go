// TrackGuard - Wireless Tracking and Surveillance Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trackguard

package api

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/trackguard/internal/exclusion"
	"github.com/tomtom215/trackguard/internal/logging"
)

// ListExclusions returns every excluded address.
func (h *Handler) ListExclusions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	entries, err := h.exclusions.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeExclusion, "Failed to list exclusions", err)
		return
	}

	respondSuccess(w, http.StatusOK, ExclusionListResponse{Exclusions: entries, Count: len(entries)}, start)
}

// AddExclusion adds an address to the exclusion set. Later passes skip it.
//
// Body: {"address": "AA:BB:CC:DD:EE:FF", "reason": "my phone"}
func (h *Handler) AddExclusion(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req ExclusionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, codeInvalidJSON, "Invalid request body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr, nil)
		return
	}

	entry, err := h.exclusions.Add(r.Context(), req.Address, req.Reason)
	if errors.Is(err, exclusion.ErrEmptyAddress) {
		respondError(w, http.StatusBadRequest, codeValidation, "address is required", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeExclusion, "Failed to add exclusion", err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("address", logging.RedactAddress(entry.Address)).
		Msg("Exclusion added")
	respondSuccess(w, http.StatusCreated, entry, start)
}

// RemoveExclusion deletes an address from the exclusion set.
func (h *Handler) RemoveExclusion(w http.ResponseWriter, r *http.Request) {
	address, err := url.PathUnescape(chi.URLParam(r, "address"))
	if err != nil || address == "" {
		respondError(w, http.StatusBadRequest, codeValidation, "address is required", nil)
		return
	}

	err = h.exclusions.Remove(r.Context(), address)
	if errors.Is(err, exclusion.ErrNotFound) {
		respondError(w, http.StatusNotFound, codeNotFound, "Exclusion not found", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeExclusion, "Failed to remove exclusion", err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("address", logging.RedactAddress(address)).
		Msg("Exclusion removed")
	w.WriteHeader(http.StatusNoContent)
}
