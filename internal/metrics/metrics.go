// TrackGuard - Wireless Tracking and Surveillance Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trackguard

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	SightingsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sightings_ingested_total",
			Help: "Total number of sightings stored",
		},
		[]string{"category"},
	)

	// Analysis Metrics
	AnalysisPassDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "analysis_pass_duration_seconds",
			Help:    "Duration of full analysis passes in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	AnalysisPassesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_passes_total",
			Help: "Total number of analysis passes by outcome",
		},
		[]string{"result"}, // "success", "failure"
	)

	AnalysisDevicesScanned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "analysis_devices_scanned_total",
			Help: "Total number of devices analyzed across all passes",
		},
	)

	AnalysisLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "analysis_last_success_timestamp",
			Help: "Unix timestamp of the last successful analysis pass",
		},
	)

	AnomaliesDetected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "anomalies_detected_total",
			Help: "Total number of anomaly records emitted",
		},
		[]string{"type", "severity"},
	)

	// Model Metrics
	ModelTrainingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "model_training_duration_seconds",
			Help:    "Duration of isolation forest training in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	ModelTrainingSamples = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "model_training_samples",
			Help: "Number of device feature vectors used in the last training",
		},
	)

	ModelReady = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "model_ready",
			Help: "Whether the isolation forest is trained (1) or not (0)",
		},
	)

	ModelFeedbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "model_feedback_total",
			Help: "Total number of feedback batches received",
		},
		[]string{"false_positive"},
	)

	// Exclusion Metrics
	ExclusionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "exclusions_active",
			Help: "Current number of excluded device addresses",
		},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Application Info
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		// Truncate long error messages
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordAnalysisPass records the outcome of one analysis pass.
func RecordAnalysisPass(duration time.Duration, devices int, err error) {
	AnalysisPassDuration.Observe(duration.Seconds())
	AnalysisDevicesScanned.Add(float64(devices))
	if err != nil {
		AnalysisPassesTotal.WithLabelValues("failure").Inc()
		return
	}
	AnalysisPassesTotal.WithLabelValues("success").Inc()
	AnalysisLastSuccess.Set(float64(time.Now().Unix()))
}

// RecordAnomaly counts one emitted anomaly record.
func RecordAnomaly(anomalyType, severity string) {
	AnomaliesDetected.WithLabelValues(anomalyType, severity).Inc()
}

// RecordModelTraining records a completed training run.
func RecordModelTraining(duration time.Duration, samples int) {
	ModelTrainingDuration.Observe(duration.Seconds())
	ModelTrainingSamples.Set(float64(samples))
}

// SetModelReady sets the model readiness gauge.
func SetModelReady(ready bool) {
	if ready {
		ModelReady.Set(1)
		return
	}
	ModelReady.Set(0)
}

// RecordModelFeedback counts a feedback batch.
func RecordModelFeedback(falsePositive bool) {
	ModelFeedbackTotal.WithLabelValues(strconv.FormatBool(falsePositive)).Inc()
}

// SetExclusionsActive sets the number of excluded addresses.
func SetExclusionsActive(count int) {
	ExclusionsActive.Set(float64(count))
}

// RecordSightingsIngested counts stored sightings for a category.
func RecordSightingsIngested(category string, count int) {
	SightingsIngested.WithLabelValues(category).Add(float64(count))
}
