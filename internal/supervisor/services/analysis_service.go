// TrackGuard - Wireless Tracking and Surveillance Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trackguard

package services

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/trackguard/internal/logging"
)

// AnalysisCycler runs one retrain-then-analyze cycle.
//
// Satisfied by *analysis.Coordinator.
type AnalysisCycler interface {
	Cycle(ctx context.Context) error
}

// AnalysisServiceConfig holds scheduling for the analysis service.
type AnalysisServiceConfig struct {
	// Interval between cycles. Defaults to 15 minutes.
	Interval time.Duration

	// RunOnStartup runs a cycle as soon as the service starts.
	RunOnStartup bool

	// CycleTimeout bounds a single cycle. Defaults to Interval.
	CycleTimeout time.Duration
}

// AnalysisService is the scheduler that drives periodic analysis passes.
// Failed cycles are logged and retried on the next tick; the service itself
// only returns when its context is canceled.
type AnalysisService struct {
	cycler AnalysisCycler
	config AnalysisServiceConfig
	name   string
}

// NewAnalysisService creates the scheduled analysis service.
func NewAnalysisService(cycler AnalysisCycler, cfg AnalysisServiceConfig) *AnalysisService {
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Minute
	}
	if cfg.CycleTimeout <= 0 {
		cfg.CycleTimeout = cfg.Interval
	}
	return &AnalysisService{
		cycler: cycler,
		config: cfg,
		name:   "analysis-scheduler",
	}
}

// Serve implements suture.Service.
func (s *AnalysisService) Serve(ctx context.Context) error {
	logging.Info().
		Bool("run_on_startup", s.config.RunOnStartup).
		Dur("interval", s.config.Interval).
		Msg("Analysis scheduler starting")

	if s.config.RunOnStartup {
		s.runCycle(ctx)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("Analysis scheduler shutting down")
			return ctx.Err()

		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

func (s *AnalysisService) runCycle(ctx context.Context) {
	cycleCtx, cancel := context.WithTimeout(ctx, s.config.CycleTimeout)
	defer cancel()

	if err := s.cycler.Cycle(cycleCtx); err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return
		}
		logging.Warn().Err(err).Msg("Scheduled analysis cycle failed")
	}
}

// String implements fmt.Stringer for logging.
func (s *AnalysisService) String() string {
	return s.name
}
