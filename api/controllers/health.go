package controllers

import (
	"net/http"
	"time"

	"github.com/openlims/lims-backend/api/responses"
	"github.com/openlims/lims-backend/pkg/config"
	"github.com/openlims/lims-backend/pkg/db"
	"github.com/openlims/lims-backend/pkg/redis"
)

// HealthResponse is the health check wire shape.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Service   string `json:"service"`
}

// ReadinessResponse reports per-dependency reachability.
type ReadinessResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Service   string            `json:"service"`
	Checks    map[string]string `json:"checks"`
}

// Health reports liveness with the service identity and current time.
func Health(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Service:   cfg.App.ServiceName,
		})
	}
}

// Readiness pings the datasource and, when configured, redis. A nil cache
// means rate limiting is off and is reported without failing the check.
func Readiness(cfg *config.Config, database db.Pinger, cache redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]string, 2)
		ready := true

		switch {
		case database == nil:
			checks["database"] = "unconfigured"
			ready = false
		case database.Ping(r.Context()) != nil:
			checks["database"] = "unreachable"
			ready = false
		default:
			checks["database"] = "ok"
		}

		switch {
		case cache == nil:
			checks["redis"] = "disabled"
		case cache.Ping(r.Context()) != nil:
			checks["redis"] = "unreachable"
			ready = false
		default:
			checks["redis"] = "ok"
		}

		status := "ready"
		code := http.StatusOK
		if !ready {
			status = "unavailable"
			code = http.StatusServiceUnavailable
		}

		responses.WriteJSON(w, code, ReadinessResponse{
			Status:    status,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Service:   cfg.App.ServiceName,
			Checks:    checks,
		})
	}
}
