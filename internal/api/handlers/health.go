// Package handlers contains HTTP request handlers
package handlers

import (
	"net/http"
	"time"
)

type HealthHandler struct {
	startTime time.Time
	sources   SourceProvider
}

func NewHealthHandler(sources SourceProvider) *HealthHandler {
	return &HealthHandler{startTime: time.Now(), sources: sources}
}

// Health reports DEGRADED when the latest poll of any source failed.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := "OK"
	for _, s := range h.sources.Snapshot() {
		if s.ConsecutiveFailures > 0 {
			status = "DEGRADED"
			break
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(h.startTime).String(),
	})
}

// Sources lists the health of every poller
func (h *HealthHandler) Sources(w http.ResponseWriter, r *http.Request) {
	snapshot := h.sources.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   len(snapshot),
		"sources": snapshot,
	})
}
