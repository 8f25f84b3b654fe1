package handler

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"time"
)

const healthTimeout = 2 * time.Second

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

// HealthHandler runs every check and answers 200 {"status":"ok"} when all
// pass, or 503 with the failing check names otherwise.
func HealthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		var failing []string
		for name, check := range checks {
			if err := check(ctx); err != nil {
				slog.Warn("health check failed", "check", name, "error", err)
				failing = append(failing, name)
			}
		}

		if len(failing) > 0 {
			slices.Sort(failing)
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "degraded", "failing": failing})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	}
}
