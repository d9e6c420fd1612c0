package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/sageql/sageql/internal/models"
	"github.com/sageql/sageql/internal/warehouse"
)

const version = "1.0.0"

// HealthHandler handles GET /health with dependency checks
type HealthHandler struct {
	wh        warehouse.Warehouse
	aiEnabled bool
}

func NewHealthHandler(wh warehouse.Warehouse, aiEnabled bool) *HealthHandler {
	return &HealthHandler{wh: wh, aiEnabled: aiEnabled}
}

// Health handles GET /health. The warehouse is pinged with a short
// deadline so a hung database degrades the check instead of blocking it.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"server": "ok"}
	overallStatus := "healthy"

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if h.wh != nil {
		if err := h.wh.Ping(ctx); err != nil {
			checks["warehouse"] = "unavailable: " + err.Error()
			overallStatus = "degraded"
		} else {
			checks["warehouse"] = "ok"
		}
	} else {
		checks["warehouse"] = "disabled"
	}

	if h.aiEnabled {
		checks["ai_generator"] = "configured"
	} else {
		checks["ai_generator"] = "disabled"
	}

	statusCode := http.StatusOK
	if overallStatus == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}

	models.WriteJSON(w, statusCode, models.HealthResponse{
		Status:  overallStatus,
		Version: version,
		Checks:  checks,
	})
}
