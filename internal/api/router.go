// TrackGuard - Wireless Tracking and Surveillance Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trackguard

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/trackguard/internal/middleware"
)

// Router wires handlers and middleware into a chi mux.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. A nil middleware config uses the defaults.
func NewRouter(handler *Handler, mwConfig *ChiMiddlewareConfig) *Router {
	return &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddleware(mwConfig),
	}
}

// Setup builds the HTTP handler for all routes.
func (router *Router) Setup() http.Handler {
	h := router.handler
	r := chi.NewRouter()

	// Must precede route registration so sub-routers inherit them.
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusNotFound, codeNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.PrometheusMetrics)

		// Monitoring endpoints stay outside the client rate limit.
		r.Get("/health", h.Health)
		r.Handle("/metrics", promhttp.Handler())

		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit("api"))
			r.Use(chimiddleware.Compress(5, "application/json"))

			r.Post("/sightings", h.IngestSightings)

			r.Get("/anomalies", h.ListAnomalies)
			r.Post("/anomalies/{id}/acknowledge", h.AcknowledgeAnomaly)
			r.Post("/anomalies/{id}/false-positive", h.MarkFalsePositive)

			r.Post("/analysis/run", h.RunAnalysis)
			r.Get("/analysis/detectors", h.DetectorStatus)
			r.Put("/analysis/detectors/{type}", h.SetDetectorEnabled)

			r.Post("/model/train", h.TrainModel)
			r.Get("/model/status", h.ModelStatus)

			r.Get("/exclusions", h.ListExclusions)
			r.Post("/exclusions", h.AddExclusion)
			r.Delete("/exclusions/{address}", h.RemoveExclusion)
		})
	})

	return r
}
