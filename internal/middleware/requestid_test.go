// TrackGuard - Wireless Tracking and Surveillance Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trackguard

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/tomtom215/trackguard/internal/logging"
)

func captureIDs(header string) (requestID, correlationID, responseID string) {
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID = logging.RequestIDFromContext(r.Context())
		correlationID = logging.CorrelationIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if header != "" {
		req.Header.Set(RequestIDHeader, header)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return requestID, correlationID, rec.Header().Get(RequestIDHeader)
}

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		wantSame bool
	}{
		{name: "generates when absent", header: ""},
		{name: "preserves upstream id", header: "upstream-id-12345", wantSame: true},
		{name: "replaces oversized id", header: strings.Repeat("x", maxRequestIDLength+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requestID, correlationID, responseID := captureIDs(tt.header)

			if responseID == "" {
				t.Fatal("missing response header")
			}
			if requestID != responseID {
				t.Errorf("context id %q != response id %q", requestID, responseID)
			}
			if correlationID == "" {
				t.Error("missing correlation id in context")
			}
			if tt.wantSame {
				if responseID != tt.header {
					t.Errorf("response id = %q, want %q", responseID, tt.header)
				}
				return
			}
			if _, err := uuid.Parse(responseID); err != nil {
				t.Errorf("generated id %q is not a UUID: %v", responseID, err)
			}
		})
	}
}

func TestRequestID_UniquePerRequest(t *testing.T) {
	first, _, _ := captureIDs("")
	second, _, _ := captureIDs("")
	if first == second {
		t.Errorf("expected distinct ids, both %q", first)
	}
}
