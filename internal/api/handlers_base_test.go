// TrackGuard - Wireless Tracking and Surveillance Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trackguard

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/trackguard/internal/analysis"
	"github.com/tomtom215/trackguard/internal/config"
	"github.com/tomtom215/trackguard/internal/database"
	"github.com/tomtom215/trackguard/internal/detection"
	"github.com/tomtom215/trackguard/internal/exclusion"
	"github.com/tomtom215/trackguard/internal/ml"
	"github.com/tomtom215/trackguard/internal/models"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type envOptions struct {
	mlEnabled  bool
	manualRuns int
	middleware *ChiMiddlewareConfig
}

type testEnv struct {
	db      *database.DB
	excl    *exclusion.Store
	coord   *analysis.Coordinator
	handler *Handler
	server  http.Handler
}

// newTestEnv wires the real stores and coordinator behind the router.
// Every component runs in memory with the clock pinned to testNow.
func newTestEnv(t *testing.T, opts envOptions) *testEnv {
	t.Helper()

	db, err := database.New(&config.DatabaseConfig{
		Path:         ":memory:",
		MaxMemory:    "256MB",
		Threads:      1,
		QueryTimeout: 10 * time.Second,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	excl, err := exclusion.Open("", true)
	if err != nil {
		t.Fatalf("failed to open exclusion store: %v", err)
	}
	t.Cleanup(func() { _ = excl.Close() })

	dcfg := detection.DefaultConfig()
	dcfg.Workers = 2
	engine := detection.NewEngine(db, excl, db, dcfg)
	engine.SetClock(func() time.Time { return testNow })

	detector := ml.NewDetector(7)
	detector.SetClock(func() time.Time { return testNow })

	coord := analysis.NewCoordinator(engine, detector, db, config.MLConfig{
		Enabled:          opts.mlEnabled,
		Trees:            20,
		SubsampleSize:    32,
		Seed:             7,
		TrainingWindow:   30 * 24 * time.Hour,
		AnomalyThreshold: 0.7,
	})
	coord.SetClock(func() time.Time { return testNow })

	mw := opts.middleware
	if mw == nil {
		mw = DefaultChiMiddlewareConfig()
		mw.RateLimitDisabled = true
	}

	h := NewHandler(db, excl, coord, HandlerConfig{ManualRunsPerMinute: opts.manualRuns, Version: "test"})
	return &testEnv{
		db:      db,
		excl:    excl,
		coord:   coord,
		handler: h,
		server:  NewRouter(h, mw).Setup(),
	}
}

type envelope struct {
	Status string           `json:"status"`
	Data   json.RawMessage  `json:"data"`
	Error  *models.APIError `json:"error"`
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	return serve(t, e.server, method, path, body)
}

func serve(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	if data != nil && env.Status == "success" {
		if err := json.Unmarshal(env.Data, data); err != nil {
			t.Fatalf("decode data %s: %v", env.Data, err)
		}
	}
	return env
}

func expectError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) envelope {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, status, rec.Body.String())
	}
	env := decodeEnvelope(t, rec, nil)
	if env.Status != "error" || env.Error == nil {
		t.Fatalf("expected error envelope, got %s", rec.Body.String())
	}
	if env.Error.Code != code {
		t.Errorf("error code = %q, want %q", env.Error.Code, code)
	}
	return env
}

// chattyBatch is 15 sightings inside the last hour, enough to trip the
// frequency detector.
func chattyBatch(address string) []models.Sighting {
	batch := make([]models.Sighting, 0, 15)
	for i := 0; i < 15; i++ {
		batch = append(batch, models.Sighting{
			Address:     address,
			Category:    models.CategoryBluetooth,
			TimestampMs: testNow.Add(-time.Duration(i) * 4 * time.Minute).UnixMilli(),
		})
	}
	return batch
}

func (e *testEnv) insertAnomaly(t *testing.T, anomalyType models.AnomalyType, severity models.Severity, address string) *models.AnomalyDetection {
	t.Helper()
	rec := &models.AnomalyDetection{
		DetectedAt:      testNow,
		Type:            anomalyType,
		Severity:        severity,
		DeviceAddresses: []string{address},
		Category:        models.CategoryBluetooth,
		AnomalyScore:    0.75,
		ConfidenceLevel: 0.8,
		Description:     "test",
		DetectionCount:  15,
		Locations:       []models.LocationPoint{},
		TimeSpanMs:      time.Hour.Milliseconds(),
		FirstSeenMs:     testNow.Add(-time.Hour).UnixMilli(),
		LastSeenMs:      testNow.UnixMilli(),
	}
	if err := e.db.InsertAnomaly(context.Background(), rec); err != nil {
		t.Fatalf("InsertAnomaly failed: %v", err)
	}
	return rec
}
