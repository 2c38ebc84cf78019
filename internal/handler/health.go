package handler

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"
)

// Check reports whether an optional dependency is reachable.
type Check func(ctx context.Context) error

type HealthHandler struct {
	db     *sql.DB
	checks map[string]Check
}

func NewHealthHandler(db *sql.DB, checks map[string]Check) *HealthHandler {
	return &HealthHandler{db: db, checks: checks}
}

func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	results := map[string]string{"database": "ok"}
	httpStatus := http.StatusOK

	if err := h.db.PingContext(ctx); err != nil {
		slog.Warn("readiness check failed: database unreachable", "error", err)
		results["database"] = "down"
		httpStatus = http.StatusServiceUnavailable
	}

	// Optional dependencies are reported but do not fail readiness.
	for name, check := range h.checks {
		results[name] = "ok"
		if err := check(ctx); err != nil {
			slog.Warn("readiness check degraded", "check", name, "error", err)
			results[name] = "degraded"
		}
	}

	overallStatus := "ok"
	if httpStatus != http.StatusOK {
		overallStatus = "down"
	}

	RespondJSON(w, httpStatus, map[string]any{
		"status":    overallStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    results,
	})
}
