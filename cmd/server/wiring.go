// TrackGuard - Wireless Tracking and Surveillance Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trackguard

package main

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/trackguard/internal/analysis"
	"github.com/tomtom215/trackguard/internal/api"
	"github.com/tomtom215/trackguard/internal/config"
	"github.com/tomtom215/trackguard/internal/database"
	"github.com/tomtom215/trackguard/internal/detection"
	"github.com/tomtom215/trackguard/internal/exclusion"
	"github.com/tomtom215/trackguard/internal/logging"
	"github.com/tomtom215/trackguard/internal/ml"
	"github.com/tomtom215/trackguard/internal/models"
	"github.com/tomtom215/trackguard/internal/supervisor"
	"github.com/tomtom215/trackguard/internal/supervisor/services"
)

const (
	httpShutdownTimeout = 10 * time.Second
	readHeaderTimeout   = 10 * time.Second
)

type application struct {
	coordinator *analysis.Coordinator
	server      *http.Server
	tree        *supervisor.SupervisorTree
}

// build wires the engine, API and supervisor tree on top of open stores.
func build(cfg *config.Config, db *database.DB, excl *exclusion.Store) (*application, error) {
	source := database.NewBreakerSource(db, cfg.Breaker)
	engine := detection.NewEngine(source, excl, db, detectionConfig(cfg))
	if err := disableDetectors(engine, cfg.Analysis.DisabledDetectors); err != nil {
		return nil, err
	}

	coord := analysis.NewCoordinator(engine, ml.NewDetector(cfg.ML.Seed), db, cfg.ML)

	handler := api.NewHandler(db, excl, coord, api.HandlerConfig{
		ManualRunsPerMinute: cfg.Analysis.ManualRunsPerMinute,
		Version:             version,
	})
	router := api.NewRouter(handler, api.ChiMiddlewareConfigFromServer(cfg.Server))

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:           router.Setup(),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       2 * cfg.Server.Timeout,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		return nil, fmt.Errorf("create supervisor tree: %w", err)
	}

	tree.AddDataService(services.NewCheckpointService(db, 0))
	if cfg.Analysis.Enabled {
		tree.AddAnalysisService(services.NewAnalysisService(coord, services.AnalysisServiceConfig{
			Interval:     cfg.Analysis.Interval,
			RunOnStartup: cfg.Analysis.RunOnStartup,
		}))
	} else {
		logging.Info().Msg("Scheduled analysis disabled (ANALYSIS_ENABLED=false)")
	}
	tree.AddAPIService(services.NewHTTPServerService(server, httpShutdownTimeout))

	return &application{
		coordinator: coord,
		server:      server,
		tree:        tree,
	}, nil
}

// detectionConfig maps the analysis and ml config sections onto the engine.
func detectionConfig(cfg *config.Config) detection.Config {
	a := cfg.Analysis
	return detection.Config{
		AnalysisWindow:             a.Window,
		MinSightings:               a.MinSightings,
		MinSightingsForFrequency:   a.MinSightingsForFrequency,
		AnomalyThreshold:           a.AnomalyThreshold,
		MLAnomalyThreshold:         cfg.ML.AnomalyThreshold,
		SignificantDistanceMeters:  a.SignificantDistanceMeters,
		SuspiciousFrequencyPerHour: a.SuspiciousFrequencyPerHour,
		CorrelationBucket:          a.CorrelationBucket,
		MinCoOccurrences:           a.MinCoOccurrences,
		MinCorrelationCoefficient:  a.MinCorrelationCoefficient,
		ClusterWindow:              a.ClusterWindow,
		ClusterBucket:              a.ClusterBucket,
		NewDeviceThreshold:         a.NewDeviceThreshold,
		MinClusterDevices:          a.MinClusterDevices,
		Workers:                    a.Workers,
		EmitMLRecords:              cfg.ML.Enabled && cfg.ML.EmitRecords,
	}
}

func disableDetectors(engine *detection.Engine, names []string) error {
	for _, name := range names {
		anomalyType := models.AnomalyType(strings.ToUpper(strings.TrimSpace(name)))
		if !engine.SetDetectorEnabled(anomalyType, false) {
			return fmt.Errorf("analysis.disabled_detectors: no detector for %q", name)
		}
	}
	return nil
}
