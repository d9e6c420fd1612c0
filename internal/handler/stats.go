package handler

import (
	"net/http"
	"time"

	"github.com/sageql/sageql/internal/models"
	"github.com/sageql/sageql/internal/stats"
)

// StatsHandler exposes the pipeline's aggregate counters
type StatsHandler struct {
	recorder *stats.Recorder
}

func NewStatsHandler(recorder *stats.Recorder) *StatsHandler {
	return &StatsHandler{recorder: recorder}
}

// Stats handles GET /api/v1/query/stats
func (h *StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	models.WriteJSON(w, http.StatusOK, map[string]any{
		"stats":     h.recorder.Snapshot(),
		"timestamp": time.Now().UTC(),
	})
}

// Reset handles POST /api/v1/query/stats/reset
func (h *StatsHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.recorder.Reset()
	models.WriteJSON(w, http.StatusOK, map[string]any{
		"status":    "reset",
		"timestamp": time.Now().UTC(),
	})
}
