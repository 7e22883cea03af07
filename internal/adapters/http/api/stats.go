package api

import (
	"net/http"
)

// StatsProvider reports service counters for /stats.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// StatsHandler serves GET /stats.
type StatsHandler struct {
	stats StatsProvider
}

// NewStatsHandler wraps stats.
func NewStatsHandler(stats StatsProvider) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// HandleStats writes a fresh snapshot of the counters. Responses are never cached.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, h.stats.GetStats())
}
