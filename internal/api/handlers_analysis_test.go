// TrackGuard - Wireless Tracking and Surveillance Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trackguard

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/tomtom215/trackguard/internal/detection"
	"github.com/tomtom215/trackguard/internal/models"
)

func TestRunAnalysis_EndToEnd(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	rec := env.do(t, http.MethodPost, "/api/v1/sightings", IngestSightingsRequest{Sightings: chattyBatch("chatty")})
	if rec.Code != http.StatusCreated {
		t.Fatalf("ingest status = %d (body %s)", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodPost, "/api/v1/analysis/run", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("run status = %d (body %s)", rec.Code, rec.Body.String())
	}
	var result detection.PassResult
	decodeEnvelope(t, rec, &result)

	if result.DevicesAnalyzed != 1 {
		t.Errorf("devices_analyzed = %d, want 1", result.DevicesAnalyzed)
	}
	if result.RecordsByType[models.AnomalyFrequency] != 1 {
		t.Errorf("records_by_type = %v, want one FREQUENCY_ANOMALY", result.RecordsByType)
	}
	if result.CorrelationID == "" {
		t.Error("missing correlation id")
	}

	rec = env.do(t, http.MethodGet, "/api/v1/anomalies?type=FREQUENCY_ANOMALY", nil)
	var page AnomalyListResponse
	decodeEnvelope(t, rec, &page)
	if page.Total != 1 || page.Anomalies[0].DeviceAddresses[0] != "chatty" {
		t.Errorf("unexpected stored anomalies %+v", page)
	}
}

func TestRunAnalysis_ExcludedDeviceIsSkipped(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	if _, err := env.db.InsertSightings(context.Background(), chattyBatch("chatty")); err != nil {
		t.Fatalf("InsertSightings failed: %v", err)
	}

	rec := env.do(t, http.MethodPost, "/api/v1/exclusions", ExclusionRequest{Address: "Chatty", Reason: "own phone"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add exclusion status = %d (body %s)", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodPost, "/api/v1/analysis/run", nil)
	var result detection.PassResult
	decodeEnvelope(t, rec, &result)
	if result.DevicesExcluded != 1 || result.RecordsEmitted != 0 {
		t.Errorf("excluded=%d records=%d, want 1 and 0", result.DevicesExcluded, result.RecordsEmitted)
	}
}

func TestRunAnalysis_RateLimited(t *testing.T) {
	env := newTestEnv(t, envOptions{manualRuns: 1})

	if rec := env.do(t, http.MethodPost, "/api/v1/analysis/run", nil); rec.Code != http.StatusOK {
		t.Fatalf("first run status = %d, want 200", rec.Code)
	}
	rec := env.do(t, http.MethodPost, "/api/v1/analysis/run", nil)
	expectError(t, rec, http.StatusTooManyRequests, codeRateLimited)
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After header")
	}
}

// failingAnalyzer wraps a real coordinator but fails passes and training.
type failingAnalyzer struct {
	Analyzer
	passErr  error
	trainErr error
}

func (f failingAnalyzer) RunPass(context.Context) (*detection.PassResult, error) {
	return nil, f.passErr
}

func (f failingAnalyzer) Train(context.Context) (models.ModelStatus, error) {
	return models.ModelStatus{}, f.trainErr
}

func TestRunAnalysis_Failures(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "collaborator unavailable",
			err:        fmt.Errorf("%w: load sightings: circuit breaker is open", detection.ErrCollaborator),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   codeUnavailable,
		},
		{
			name:       "other failure",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusInternalServerError,
			wantCode:   codeAnalysis,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(env.db, env.excl, failingAnalyzer{Analyzer: env.coord, passErr: tt.err}, HandlerConfig{})
			rec := serve(t, NewRouter(h, nil).Setup(), http.MethodPost, "/api/v1/analysis/run", nil)
			expectError(t, rec, tt.wantStatus, tt.wantCode)
		})
	}
}

func TestTrainModel(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		env := newTestEnv(t, envOptions{mlEnabled: false})
		expectError(t, env.do(t, http.MethodPost, "/api/v1/model/train", nil), http.StatusConflict, codeMLDisabled)
	})

	t.Run("trains from history", func(t *testing.T) {
		env := newTestEnv(t, envOptions{mlEnabled: true})
		for i := 0; i < 5; i++ {
			if _, err := env.db.InsertSightings(context.Background(), chattyBatch(fmt.Sprintf("dev-%d", i))); err != nil {
				t.Fatalf("InsertSightings failed: %v", err)
			}
		}

		rec := env.do(t, http.MethodPost, "/api/v1/model/train", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d (body %s)", rec.Code, rec.Body.String())
		}
		var status models.ModelStatus
		decodeEnvelope(t, rec, &status)
		if !status.Ready || status.DeviceCount != 5 || status.Trees != 20 {
			t.Errorf("unexpected status %+v", status)
		}

		rec = env.do(t, http.MethodGet, "/api/v1/model/status", nil)
		var resp ModelStatusResponse
		decodeEnvelope(t, rec, &resp)
		if !resp.Ready || !resp.MLEnabled || resp.TrainedAt == nil || !resp.TrainedAt.Equal(testNow) {
			t.Errorf("unexpected model status %+v", resp)
		}
	})

	t.Run("training failure", func(t *testing.T) {
		env := newTestEnv(t, envOptions{mlEnabled: true})
		h := NewHandler(env.db, env.excl, failingAnalyzer{Analyzer: env.coord, trainErr: context.Canceled}, HandlerConfig{})
		rec := serve(t, NewRouter(h, nil).Setup(), http.MethodPost, "/api/v1/model/train", nil)
		expectError(t, rec, http.StatusInternalServerError, codeTraining)
	})
}

func TestModelStatus_ListsDetectors(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	rec := env.do(t, http.MethodGet, "/api/v1/model/status", nil)
	var resp ModelStatusResponse
	decodeEnvelope(t, rec, &resp)

	if resp.Ready || resp.MLEnabled {
		t.Errorf("untrained disabled model reported ready=%v enabled=%v", resp.Ready, resp.MLEnabled)
	}
	for _, typ := range []models.AnomalyType{
		models.AnomalyTemporalClustering,
		models.AnomalyGeographicTracking,
		models.AnomalyFrequency,
		models.AnomalyCorrelationPattern,
		models.AnomalyNewDeviceCluster,
	} {
		if enabled, ok := resp.Detectors[typ]; !ok || !enabled {
			t.Errorf("detector %s enabled=%v present=%v", typ, enabled, ok)
		}
	}
}

func TestSetDetectorEnabled(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	rec := env.do(t, http.MethodPut, "/api/v1/analysis/detectors/FREQUENCY_ANOMALY", `{"enabled": false}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", rec.Code, rec.Body.String())
	}
	var resp DetectorStatusResponse
	decodeEnvelope(t, rec, &resp)
	if resp.Detectors[models.AnomalyFrequency] {
		t.Error("frequency detector still enabled")
	}

	// The disabled detector no longer fires.
	if _, err := env.db.InsertSightings(context.Background(), chattyBatch("chatty")); err != nil {
		t.Fatalf("InsertSightings failed: %v", err)
	}
	var result detection.PassResult
	decodeEnvelope(t, env.do(t, http.MethodPost, "/api/v1/analysis/run", nil), &result)
	if result.RecordsByType[models.AnomalyFrequency] != 0 {
		t.Errorf("disabled detector emitted %d records", result.RecordsByType[models.AnomalyFrequency])
	}

	rec = env.do(t, http.MethodGet, "/api/v1/analysis/detectors", nil)
	decodeEnvelope(t, rec, &resp)
	if resp.Detectors[models.AnomalyFrequency] {
		t.Error("GET reports frequency detector enabled")
	}
}

func TestSetDetectorEnabled_Errors(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"unknown type", "/api/v1/analysis/detectors/BOGUS", `{"enabled": true}`, http.StatusBadRequest, codeValidation},
		{"no statistical detector", "/api/v1/analysis/detectors/ML_BASED_ANOMALY", `{"enabled": true}`, http.StatusNotFound, codeUnknownDetect},
		{"missing flag", "/api/v1/analysis/detectors/FREQUENCY_ANOMALY", `{}`, http.StatusBadRequest, codeValidation},
		{"bad json", "/api/v1/analysis/detectors/FREQUENCY_ANOMALY", `{"enabled":`, http.StatusBadRequest, codeInvalidJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectError(t, env.do(t, http.MethodPut, tt.path, tt.body), tt.wantStatus, tt.wantCode)
		})
	}
}

func TestExclusions_Lifecycle(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	const address = "aa:bb:cc:dd:ee:ff"

	rec := env.do(t, http.MethodPost, "/api/v1/exclusions", ExclusionRequest{Address: address, Reason: "home router"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add status = %d (body %s)", rec.Code, rec.Body.String())
	}
	var entry models.ExclusionEntry
	decodeEnvelope(t, rec, &entry)
	if entry.Address != "AA:BB:CC:DD:EE:FF" || entry.Reason != "home router" || entry.AddedAt.IsZero() {
		t.Errorf("unexpected entry %+v", entry)
	}

	var list ExclusionListResponse
	decodeEnvelope(t, env.do(t, http.MethodGet, "/api/v1/exclusions", nil), &list)
	if list.Count != 1 || len(list.Exclusions) != 1 {
		t.Fatalf("list = %+v, want one entry", list)
	}

	path := "/api/v1/exclusions/" + url.PathEscape(address)
	rec = env.do(t, http.MethodDelete, path, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d (body %s)", rec.Code, rec.Body.String())
	}
	expectError(t, env.do(t, http.MethodDelete, path, nil), http.StatusNotFound, codeNotFound)

	decodeEnvelope(t, env.do(t, http.MethodGet, "/api/v1/exclusions", nil), &list)
	if list.Count != 0 || list.Exclusions == nil {
		t.Errorf("list after delete = %+v, want empty array", list)
	}
}

func TestAddExclusion_Rejections(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{"missing address", `{"reason": "x"}`, codeValidation},
		{"blank address", `{"address": "   "}`, codeValidation},
		{"reason too long", fmt.Sprintf(`{"address": "aa", "reason": "%0300d"}`, 0), codeValidation},
		{"malformed", `{"address": `, codeInvalidJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectError(t, env.do(t, http.MethodPost, "/api/v1/exclusions", tt.body), http.StatusBadRequest, tt.wantCode)
		})
	}
}

func TestNewHandler_ManualRunLimiter(t *testing.T) {
	tests := []struct {
		name    string
		perMin  int
		allowed int
	}{
		{"unlimited", 0, 10},
		{"burst of three", 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(nil, nil, nil, HandlerConfig{ManualRunsPerMinute: tt.perMin})
			now := time.Now()
			allowed := 0
			for i := 0; i < 10; i++ {
				if h.runLimiter.AllowN(now, 1) {
					allowed++
				}
			}
			if allowed != tt.allowed {
				t.Errorf("allowed %d of 10, want %d", allowed, tt.allowed)
			}
		})
	}
}
