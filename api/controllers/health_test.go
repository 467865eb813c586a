package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rahulverma/medibill-gateway/pkg/config"
)

type stubPinger struct {
	err error
}

func (s *stubPinger) Ping(context.Context) error {
	return s.err
}

func testConfig() *config.Config {
	return &config.Config{App: config.AppConfig{Env: "test"}}
}

func TestHealthLive(t *testing.T) {
	handler := HealthLive(testConfig())

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("X-MediBill-Env"); got != "test" {
		t.Errorf("env header = %q, want test", got)
	}
}

func TestHealthReadyAllChecksPass(t *testing.T) {
	handler := HealthReady(testConfig(), &stubPinger{}, &stubPinger{})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var envelope struct {
		Data struct {
			Status string            `json:"status"`
			Checks map[string]string `json:"checks"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Status != "ready" {
		t.Errorf("status = %q, want ready", envelope.Data.Status)
	}
	if envelope.Data.Checks["redis"] != "ok" || envelope.Data.Checks["pharmacy_backend"] != "ok" {
		t.Errorf("checks = %v", envelope.Data.Checks)
	}
}

func TestHealthReadyDegradedWhenUpstreamDown(t *testing.T) {
	handler := HealthReady(testConfig(), &stubPinger{}, &stubPinger{err: errors.New("connection refused")})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}

	var envelope struct {
		Data struct {
			Status string            `json:"status"`
			Checks map[string]string `json:"checks"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Status != "degraded" {
		t.Errorf("status = %q, want degraded", envelope.Data.Status)
	}
	if envelope.Data.Checks["pharmacy_backend"] == "ok" {
		t.Error("pharmacy check should report the failure")
	}
}
