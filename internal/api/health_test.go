package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthHandler_CheckHealth(t *testing.T) {
	tests := []struct {
		name    string
		healthy bool
		want    string
	}{
		{"healthy", true, "healthy"},
		{"unhealthy", false, "unhealthy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(func() bool { return tt.healthy }, func() map[string]bool { return map[string]bool{"store": tt.healthy} })
			req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
			w := httptest.NewRecorder()
			h.CheckHealth(w, req)
			if code := w.Result().StatusCode; code != http.StatusOK {
				t.Fatalf("unexpected status code: %d", code)
			}
			var body struct {
				Status     string          `json:"status"`
				Components map[string]bool `json:"components"`
			}
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Status != tt.want {
				t.Fatalf("status = %q, want %q", body.Status, tt.want)
			}
			if body.Components["store"] != tt.healthy {
				t.Fatalf("components = %v", body.Components)
			}
		})
	}
}

func TestHealthHandler_NilProbeIsUnhealthy(t *testing.T) {
	h := NewHealthHandler(nil, nil)
	w := httptest.NewRecorder()
	h.CheckHealth(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	var body map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "unhealthy" {
		t.Fatalf("got %v", body["status"])
	}
}
