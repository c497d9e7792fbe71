// TrackGuard - Wireless Tracking and Surveillance Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trackguard

package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/tomtom215/trackguard/internal/config"
	"github.com/tomtom215/trackguard/internal/database"
	"github.com/tomtom215/trackguard/internal/exclusion"
	"github.com/tomtom215/trackguard/internal/logging"
	"github.com/tomtom215/trackguard/internal/metrics"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", version).
		Str("db_path", cfg.Database.Path).
		Bool("analysis_enabled", cfg.Analysis.Enabled).
		Bool("ml_enabled", cfg.ML.Enabled).
		Msg("Starting TrackGuard")
	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("TrackGuard stopped with error")
	}

	logging.Info().Msg("Application stopped gracefully")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Failed to close database")
		}
	}()

	excl, err := exclusion.Open(cfg.Exclusions.Path, cfg.Exclusions.InMemory)
	if err != nil {
		return fmt.Errorf("open exclusion store: %w", err)
	}
	defer func() {
		if err := excl.Close(); err != nil {
			logging.Error().Err(err).Msg("Failed to close exclusion store")
		}
	}()

	app, err := build(cfg, db, excl)
	if err != nil {
		return err
	}

	logging.Info().Str("addr", app.server.Addr).Msg("Starting supervisor tree")
	if err := app.tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor tree: %w", err)
	}

	unstopped, _ := app.tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}
	return nil
}
