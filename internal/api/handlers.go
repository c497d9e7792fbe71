// TrackGuard - Wireless Tracking and Surveillance Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trackguard

package api

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/trackguard/internal/detection"
	"github.com/tomtom215/trackguard/internal/models"
)

// Store is the persistence surface used by the handlers.
// *database.DB satisfies it.
type Store interface {
	Ping(ctx context.Context) error
	InsertSightings(ctx context.Context, sightings []models.Sighting) (int, error)
	ListAnomalies(ctx context.Context, filter models.AnomalyFilter) ([]models.AnomalyDetection, error)
	CountAnomalies(ctx context.Context, filter models.AnomalyFilter) (int, error)
	GetAnomaly(ctx context.Context, id int64) (*models.AnomalyDetection, error)
	AcknowledgeAnomaly(ctx context.Context, id int64) error
	MarkFalsePositive(ctx context.Context, id int64) error
	SightingsForAnomaly(ctx context.Context, rec *models.AnomalyDetection) ([]models.Sighting, error)
}

// ExclusionStore manages the exclusion set. *exclusion.Store satisfies it.
type ExclusionStore interface {
	Add(ctx context.Context, address, reason string) (*models.ExclusionEntry, error)
	Remove(ctx context.Context, address string) error
	List(ctx context.Context) ([]models.ExclusionEntry, error)
}

// Analyzer runs passes and manages the model. *analysis.Coordinator
// satisfies it.
type Analyzer interface {
	RunPass(ctx context.Context) (*detection.PassResult, error)
	Train(ctx context.Context) (models.ModelStatus, error)
	RecordFeedback(sightings []models.Sighting, falsePositive bool)
	MLEnabled() bool
	ModelStatus() models.ModelStatus
	DetectorStatus() map[models.AnomalyType]bool
	SetDetectorEnabled(anomalyType models.AnomalyType, enabled bool) bool
}

// HandlerConfig carries the settings the handlers read at runtime.
type HandlerConfig struct {
	// ManualRunsPerMinute bounds POST /analysis/run. Zero or less disables the limit.
	ManualRunsPerMinute int
	Version             string
}

// Handler serves the REST API.
type Handler struct {
	store      Store
	exclusions ExclusionStore
	analyzer   Analyzer
	runLimiter *rate.Limiter
	version    string
	startTime  time.Time
}

// NewHandler creates a new API handler.
//
// The manual analysis limiter is a token bucket refilled at
// ManualRunsPerMinute per minute with a burst of the same size.
func NewHandler(store Store, exclusions ExclusionStore, analyzer Analyzer, cfg HandlerConfig) *Handler {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.ManualRunsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.ManualRunsPerMinute)), cfg.ManualRunsPerMinute)
	}

	version := cfg.Version
	if version == "" {
		version = "dev"
	}

	return &Handler{
		store:      store,
		exclusions: exclusions,
		analyzer:   analyzer,
		runLimiter: limiter,
		version:    version,
		startTime:  time.Now(),
	}
}
