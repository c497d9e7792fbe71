// TrackGuard - Wireless Tracking and Surveillance Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trackguard

package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/trackguard/internal/config"
	"github.com/tomtom215/trackguard/internal/detection"
	"github.com/tomtom215/trackguard/internal/logging"
	"github.com/tomtom215/trackguard/internal/metrics"
	"github.com/tomtom215/trackguard/internal/models"
)

// SourceBreakerName is the metrics label of the sighting source breaker.
const SourceBreakerName = "sighting-source"

// BreakerSource wraps a detection.SightingSource with a circuit breaker so a
// failing store fails analysis passes fast instead of stacking timeouts.
//
// The breaker uses real time for its interval and timeout. Tests that need
// deterministic behaviour should exercise the wrapped source directly.
type BreakerSource struct {
	source detection.SightingSource
	cb     *gobreaker.CircuitBreaker[interface{}]
	name   string
}

// NewBreakerSource wraps source using the thresholds in cfg.
func NewBreakerSource(source detection.SightingSource, cfg config.BreakerConfig) *BreakerSource {
	name := SourceBreakerName

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}

			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= cfg.FailureRatio

			if shouldTrip {
				logging.Warn().Str("breaker", name).Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return shouldTrip
		},

		// A canceled pass says nothing about the health of the store.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &BreakerSource{source: source, cb: cb, name: name}
}

// State returns the breaker's current state for status reporting.
func (bs *BreakerSource) State() string {
	return stateToString(bs.cb.State())
}

func (bs *BreakerSource) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := bs.cb.Execute(fn)

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(bs.name, "rejected").Inc()
			logging.Warn().Err(err).Str("breaker", bs.name).Msg("[CIRCUIT BREAKER] Request rejected")
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(bs.name, "failure").Inc()
		}
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(bs.name, "success").Inc()
	return result, nil
}

// castResult type-casts the breaker result, returning the zero value on error.
func castResult[T any](result interface{}, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	if result == nil {
		return zero, nil
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// SightingsForDevice implements detection.SightingSource.
func (bs *BreakerSource) SightingsForDevice(ctx context.Context, address string, start, end time.Time) ([]models.Sighting, error) {
	return castResult[[]models.Sighting](bs.execute(func() (interface{}, error) {
		return bs.source.SightingsForDevice(ctx, address, start, end)
	}))
}

// AllSightingsForCategoryInRange implements detection.SightingSource.
func (bs *BreakerSource) AllSightingsForCategoryInRange(ctx context.Context, category models.DeviceCategory, start, end time.Time) ([]models.Sighting, error) {
	return castResult[[]models.Sighting](bs.execute(func() (interface{}, error) {
		return bs.source.AllSightingsForCategoryInRange(ctx, category, start, end)
	}))
}

// DistinctDeviceAddresses implements detection.SightingSource.
func (bs *BreakerSource) DistinctDeviceAddresses(ctx context.Context, category models.DeviceCategory) ([]string, error) {
	return castResult[[]string](bs.execute(func() (interface{}, error) {
		return bs.source.DistinctDeviceAddresses(ctx, category)
	}))
}

var _ detection.SightingSource = (*BreakerSource)(nil)
