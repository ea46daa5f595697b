package handlers

import (
	"encoding/json"
	"net/http"

	"garage-backend/internal/health"
)

type HealthHandler struct {
	Checker *health.HealthChecker
}

func NewHealthHandler(checker *health.HealthChecker) *HealthHandler {
	return &HealthHandler{Checker: checker}
}

// BasicHealth is the liveness probe
func (h *HealthHandler) BasicHealth(w http.ResponseWriter, r *http.Request) {
	status := h.Checker.CheckBasic()

	code := http.StatusOK
	if status.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(status)
}

// ReadinessHealth is the readiness probe; same checks, separate endpoint
// so probes can diverge later.
func (h *HealthHandler) ReadinessHealth(w http.ResponseWriter, r *http.Request) {
	h.BasicHealth(w, r)
}
