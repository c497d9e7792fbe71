// TrackGuard - Wireless Tracking and Surveillance Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trackguard

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/trackguard/internal/logging"
)

// IngestSightings stores a batch of sightings.
//
// Body: {"sightings": [{"address": "...", "category": "BLUETOOTH", "timestamp_ms": ...}, ...]}
// The whole batch is rejected if any sighting fails validation.
func (h *Handler) IngestSightings(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req IngestSightingsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, codeInvalidJSON, "Invalid request body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr, nil)
		return
	}

	inserted, err := h.store.InsertSightings(r.Context(), req.Sightings)
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeDatabase, "Failed to store sightings", err)
		return
	}

	logging.Ctx(r.Context()).Debug().Int("sightings", inserted).Msg("Sightings ingested")
	respondSuccess(w, http.StatusCreated, IngestResponse{Inserted: inserted}, start)
}
