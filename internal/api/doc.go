// TrackGuard - Wireless Tracking and Surveillance Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trackguard

/*
Package api provides the TrackGuard REST API.

Routes are served by chi under /api/v1:

	GET    /health                         liveness, database ping, model readiness
	POST   /sightings                      batch ingest (201 + inserted count)
	GET    /anomalies                      paginated, filtered list
	POST   /anomalies/{id}/acknowledge     mark reviewed, forward ML feedback
	POST   /anomalies/{id}/false-positive  mark false positive, forward ML feedback
	POST   /analysis/run                   synchronous pass (token-bucket limited)
	GET    /analysis/detectors             enabled flag per statistical detector
	PUT    /analysis/detectors/{type}      toggle one detector
	POST   /model/train                    retrain the isolation forest
	GET    /model/status                   forest status
	GET    /exclusions                     list excluded addresses
	POST   /exclusions                     add an excluded address
	DELETE /exclusions/{address}           remove an excluded address
	GET    /metrics                        Prometheus exposition

Responses:

Every JSON response uses the models.APIResponse envelope. Errors carry a
machine-readable code (VALIDATION_ERROR, NOT_FOUND, RATE_LIMIT_EXCEEDED, ...)
and a human-readable message; validation errors add per-field details.

Middleware:

The global stack is request ID, real IP, panic recovery and CORS. The /api/v1
group adds per-IP rate limiting (go-chi/httprate), Prometheus instrumentation
and response compression.
*/
package api
