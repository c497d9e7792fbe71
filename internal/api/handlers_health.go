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

// Health reports database connectivity and model readiness. A failed
// database ping answers 503 with status "degraded".
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	dbConnected := h.store != nil && h.store.Ping(r.Context()) == nil

	health := HealthStatus{
		Status:            "healthy",
		Version:           h.version,
		DatabaseConnected: dbConnected,
		MLEnabled:         h.analyzer.MLEnabled(),
		Model:             h.analyzer.ModelStatus(),
		Uptime:            time.Since(h.startTime).Seconds(),
		LogLevel:          logging.CurrentLevel(),
	}

	status := http.StatusOK
	if !dbConnected {
		health.Status = "degraded"
		status = http.StatusServiceUnavailable
	}

	respondSuccess(w, status, health, start)
}
