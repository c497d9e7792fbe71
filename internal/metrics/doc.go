// TrackGuard - Wireless Tracking and Surveillance Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trackguard

/*
Package metrics provides Prometheus metrics collection and export for observability.

# Overview

The package provides metrics for:
  - Analysis pass duration, outcome, and devices scanned
  - Emitted anomaly records by type and severity
  - Isolation forest training and readiness
  - Database query performance
  - HTTP request latency and throughput
  - Circuit breaker state transitions

All collectors are registered on the default registry at package init via
promauto and exposed at /metrics:

	curl http://localhost:8473/metrics

# Usage

	start := time.Now()
	result, err := engine.RunAnalysisPass(ctx)
	metrics.RecordAnalysisPass(time.Since(start), result.DevicesAnalyzed, err)
*/
package metrics
