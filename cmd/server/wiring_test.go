// TrackGuard - Wireless Tracking and Surveillance Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trackguard

package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tomtom215/trackguard/internal/config"
	"github.com/tomtom215/trackguard/internal/database"
	"github.com/tomtom215/trackguard/internal/detection"
	"github.com/tomtom215/trackguard/internal/exclusion"
	"github.com/tomtom215/trackguard/internal/models"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("DUCKDB_PATH", ":memory:")
	t.Setenv("EXCLUSIONS_IN_MEMORY", "true")
	t.Setenv("CONFIG_PATH", "")
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load failed: %v", err)
	}
	return cfg
}

func openStores(t *testing.T, cfg *config.Config) (*database.DB, *exclusion.Store) {
	t.Helper()
	db, err := database.New(&cfg.Database)
	if err != nil {
		t.Fatalf("database.New failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	excl, err := exclusion.Open(cfg.Exclusions.Path, cfg.Exclusions.InMemory)
	if err != nil {
		t.Fatalf("exclusion.Open failed: %v", err)
	}
	t.Cleanup(func() { _ = excl.Close() })
	return db, excl
}

func TestBuild(t *testing.T) {
	cfg := testConfig(t)
	cfg.Analysis.DisabledDetectors = []string{"correlation_pattern"}
	db, excl := openStores(t, cfg)

	app, err := build(cfg, db, excl)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	if app.server.Addr != "0.0.0.0:8742" {
		t.Errorf("server addr = %q", app.server.Addr)
	}
	status := app.coordinator.DetectorStatus()
	if status[models.AnomalyCorrelationPattern] || !status[models.AnomalyFrequency] {
		t.Errorf("detector status = %v, want only correlation disabled", status)
	}

	rec := httptest.NewRecorder()
	app.server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200", rec.Code)
	}
}

func TestBuild_UnknownDisabledDetector(t *testing.T) {
	cfg := testConfig(t)
	cfg.Analysis.DisabledDetectors = []string{"ML_BASED_ANOMALY"}
	db, excl := openStores(t, cfg)

	if _, err := build(cfg, db, excl); err == nil {
		t.Error("expected error for a type without a statistical detector")
	}
}

func TestDetectionConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Analysis.Window = 48 * time.Hour
	cfg.Analysis.Workers = 9
	cfg.ML.AnomalyThreshold = 0.8

	tests := []struct {
		name        string
		mlEnabled   bool
		emitRecords bool
		wantEmit    bool
	}{
		{"ml on, emit on", true, true, true},
		{"ml on, emit off", true, false, false},
		{"ml off, emit on", false, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg.ML.Enabled = tt.mlEnabled
			cfg.ML.EmitRecords = tt.emitRecords
			dc := detectionConfig(cfg)

			if dc.EmitMLRecords != tt.wantEmit {
				t.Errorf("EmitMLRecords = %v, want %v", dc.EmitMLRecords, tt.wantEmit)
			}
			if dc.AnalysisWindow != 48*time.Hour || dc.Workers != 9 || dc.MLAnomalyThreshold != 0.8 {
				t.Errorf("unexpected mapping %+v", dc)
			}
		})
	}
}

func TestDetectionConfig_DefaultsMatchEngine(t *testing.T) {
	cfg := testConfig(t)
	got := detectionConfig(cfg)
	want := detection.DefaultConfig()
	if got != want {
		t.Errorf("config defaults drifted from engine defaults:\n got  %+v\n want %+v", got, want)
	}
}
