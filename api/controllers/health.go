package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/rahulverma/medibill-gateway/api/responses"
	"github.com/rahulverma/medibill-gateway/pkg/config"
)

// Pinger is the reachability probe shared by the readiness dependencies.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-MediBill-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports readiness of the gateway's dependencies: the session
// store and the pharmacy backend.
func HealthReady(cfg *config.Config, sessionStore, upstream Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-MediBill-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		checks := map[string]string{}
		ready := true

		if sessionStore != nil {
			if err := sessionStore.Ping(ctx); err != nil {
				checks["redis"] = err.Error()
				ready = false
			} else {
				checks["redis"] = "ok"
			}
		}
		if upstream != nil {
			if err := upstream.Ping(ctx); err != nil {
				checks["pharmacy_backend"] = err.Error()
				ready = false
			} else {
				checks["pharmacy_backend"] = "ok"
			}
		}

		status := "ready"
		code := http.StatusOK
		if !ready {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		responses.WriteSuccessStatus(w, code, map[string]any{
			"status": status,
			"checks": checks,
		})
	}
}
