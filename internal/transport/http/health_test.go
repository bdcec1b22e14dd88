package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

type fixedStorageState string

func (s fixedStorageState) StorageState() string { return string(s) }

func TestHealthHandler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		storage StorageStateReporter
		status  int
		body    healthResponse
	}{
		{"memory store", nil, http.StatusOK, healthResponse{Status: "ok", Storage: "memory"}},
		{"breaker closed", fixedStorageState("closed"), http.StatusOK, healthResponse{Status: "ok", Storage: "closed"}},
		{"breaker half-open", fixedStorageState("half-open"), http.StatusOK, healthResponse{Status: "ok", Storage: "half-open"}},
		{"breaker open", fixedStorageState("open"), http.StatusServiceUnavailable, healthResponse{Status: "degraded", Storage: "open"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			rec := httptest.NewRecorder()

			HealthHandler(tt.storage).ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, rec.Code)
			}
			var got healthResponse
			if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if got != tt.body {
				t.Fatalf("expected %+v, got %+v", tt.body, got)
			}
		})
	}
}
