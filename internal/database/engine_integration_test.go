// TrackGuard - Wireless Tracking and Surveillance Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trackguard

package database

import (
	"context"
	"testing"
	"time"

	"github.com/tomtom215/trackguard/internal/detection"
	"github.com/tomtom215/trackguard/internal/models"
)

// TestEngineAgainstDuckDB runs a full pass with the database acting as both
// sighting source and anomaly sink.
func TestEngineAgainstDuckDB(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	// 15 sightings inside the last hour trips the frequency detector.
	batch := make([]models.Sighting, 0, 15)
	for i := 0; i < 15; i++ {
		batch = append(batch, sighting("chatty", models.CategoryBluetooth, -time.Duration(i)*4*time.Minute))
	}
	insertSightings(t, db, batch...)

	engine := detection.NewEngine(NewBreakerSource(db, testBreakerConfig()), nil, db, detection.DefaultConfig())
	engine.SetClock(func() time.Time { return testNow })

	result, err := engine.RunAnalysisPass(ctx)
	if err != nil {
		t.Fatalf("RunAnalysisPass failed: %v", err)
	}
	if result.DevicesAnalyzed != 1 {
		t.Errorf("DevicesAnalyzed = %d, want 1", result.DevicesAnalyzed)
	}

	stored, err := db.ListAnomalies(ctx, models.AnomalyFilter{
		Types: []models.AnomalyType{models.AnomalyFrequency},
	})
	if err != nil {
		t.Fatalf("ListAnomalies failed: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("stored %d frequency anomalies, want 1", len(stored))
	}
	if stored[0].DeviceAddresses[0] != "chatty" || stored[0].DetectionCount != 15 {
		t.Errorf("unexpected record %+v", stored[0])
	}

	related, err := db.SightingsForAnomaly(ctx, &stored[0])
	if err != nil {
		t.Fatalf("SightingsForAnomaly failed: %v", err)
	}
	if len(related) != 15 {
		t.Errorf("SightingsForAnomaly returned %d, want 15", len(related))
	}
}
