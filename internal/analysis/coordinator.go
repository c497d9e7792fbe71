// TrackGuard - Wireless Tracking and Surveillance Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trackguard

// Package analysis ties the detection engine and the ML detector to the
// sighting store. Both the scheduled service and the HTTP API drive analysis
// through a Coordinator.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/trackguard/internal/config"
	"github.com/tomtom215/trackguard/internal/detection"
	"github.com/tomtom215/trackguard/internal/logging"
	"github.com/tomtom215/trackguard/internal/ml"
	"github.com/tomtom215/trackguard/internal/models"
)

// ErrMLDisabled is returned by Train when the ML detector is switched off.
var ErrMLDisabled = errors.New("ml detector disabled")

// HistorySource supplies the training history.
type HistorySource interface {
	SightingsInRange(ctx context.Context, start, end time.Time) ([]models.Sighting, error)
}

// Coordinator runs training and analysis passes.
type Coordinator struct {
	engine   *detection.Engine
	detector *ml.Detector
	history  HistorySource
	cfg      config.MLConfig
	clock    func() time.Time
}

// NewCoordinator wires the engine to the detector. When cfg.Enabled is set
// the detector becomes the engine's model scorer.
func NewCoordinator(engine *detection.Engine, detector *ml.Detector, history HistorySource, cfg config.MLConfig) *Coordinator {
	if cfg.Enabled {
		engine.SetModelScorer(detector)
	}
	return &Coordinator{
		engine:   engine,
		detector: detector,
		history:  history,
		cfg:      cfg,
		clock:    time.Now,
	}
}

// SetClock overrides the time source for the training window.
func (c *Coordinator) SetClock(clock func() time.Time) {
	c.clock = clock
}

// Engine returns the wrapped engine.
func (c *Coordinator) Engine() *detection.Engine {
	return c.engine
}

// Detector returns the wrapped ML detector.
func (c *Coordinator) Detector() *ml.Detector {
	return c.detector
}

// MLEnabled reports whether training and ML scoring are on.
func (c *Coordinator) MLEnabled() bool {
	return c.cfg.Enabled
}

// Train rebuilds the forest from the configured training window.
func (c *Coordinator) Train(ctx context.Context) (models.ModelStatus, error) {
	if !c.cfg.Enabled {
		return c.detector.Status(), ErrMLDisabled
	}

	end := c.clock()
	start := end.Add(-c.cfg.TrainingWindow)
	history, err := c.history.SightingsInRange(ctx, start, end)
	if err != nil {
		return c.detector.Status(), fmt.Errorf("load training history: %w", err)
	}

	c.detector.TrainModel(history, c.cfg.Trees, c.cfg.SubsampleSize)

	status := c.detector.Status()
	logging.Ctx(ctx).Info().
		Int("sightings", len(history)).
		Bool("ready", status.Ready).
		Msg("Model training finished")
	return status, nil
}

// RunPass runs one analysis pass.
func (c *Coordinator) RunPass(ctx context.Context) (*detection.PassResult, error) {
	return c.engine.RunAnalysisPass(ctx)
}

// Cycle retrains the model when ML is enabled and then runs a pass. A failed
// training is logged and the pass still runs with the previous model.
func (c *Coordinator) Cycle(ctx context.Context) error {
	ctx = logging.ContextWithNewCorrelationID(ctx)

	if c.cfg.Enabled {
		if _, err := c.Train(ctx); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("Model retraining failed, keeping previous model")
		}
	}

	if _, err := c.RunPass(ctx); err != nil {
		return err
	}
	return nil
}

// RecordFeedback forwards feedback on an anomaly's sightings to the detector.
func (c *Coordinator) RecordFeedback(sightings []models.Sighting, falsePositive bool) {
	c.detector.RecordFeedback(sightings, falsePositive)
}

// ModelStatus describes the current forest.
func (c *Coordinator) ModelStatus() models.ModelStatus {
	return c.detector.Status()
}

// DetectorStatus reports which statistical detectors are enabled.
func (c *Coordinator) DetectorStatus() map[models.AnomalyType]bool {
	return c.engine.DetectorStatus()
}

// SetDetectorEnabled toggles a statistical detector. It returns false for an
// unknown type.
func (c *Coordinator) SetDetectorEnabled(anomalyType models.AnomalyType, enabled bool) bool {
	return c.engine.SetDetectorEnabled(anomalyType, enabled)
}
