package handler

import (
	"net/http"
	"time"

	"commuter/internal/store"
)

// ReadinessChecker reports whether the first network load has completed.
type ReadinessChecker interface {
	IsReady() bool
}

type HealthHandler struct {
	ready ReadinessChecker
	store *store.NetworkStore
}

func NewHealthHandler(ready ReadinessChecker, s *store.NetworkStore) *HealthHandler {
	return &HealthHandler{
		ready: ready,
		store: s,
	}
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

type ReadyResponse struct {
	Ready       bool      `json:"ready"`
	Version     string    `json:"version"`
	Connections int       `json:"connections"`
	ServerTime  time.Time `json:"serverTime"`
}

func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ready := h.ready.IsReady()
	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}

	respondJSON(w, status, ReadyResponse{
		Ready:       ready,
		Version:     h.store.Version(),
		Connections: h.store.Count(),
		ServerTime:  time.Now(),
	})
}
