package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

const pingTimeout = 2 * time.Second

// Health states reported in the status field of /health.
const (
	HealthOK          = "ok"
	HealthUnavailable = "unavailable"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthStatus struct {
	Status string `json:"status"`
}

type HealthHandler struct {
	store Pinger
}

func NewHealthHandler(store Pinger) *HealthHandler {
	return &HealthHandler{store: store}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		slog.ErrorContext(r.Context(), "health check failed", "error", err)
		writeHealth(w, http.StatusServiceUnavailable, HealthUnavailable)
		return
	}

	writeHealth(w, http.StatusOK, HealthOK)
}

func writeHealth(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(HealthStatus{Status: status}); err != nil {
		slog.Error("failed to encode health status", "error", err)
	}
}
