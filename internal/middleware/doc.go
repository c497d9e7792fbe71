// TrackGuard - Wireless Tracking and Surveillance Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trackguard

/*
Package middleware provides HTTP middleware shared by the TrackGuard API.

Components:

  - PrometheusMetrics: request count, latency and in-flight instrumentation,
    labeled by the chi route pattern so that path parameters such as
    anomaly IDs do not explode label cardinality
  - RequestID: X-Request-ID propagation into the logging context

Typical ordering inside the chi router:

	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
*/
package middleware
