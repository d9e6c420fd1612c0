package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sageql/sageql/internal/models"
	"github.com/sageql/sageql/internal/pipeline"
)

// QueryHandler handles natural-language question resolution
type QueryHandler struct {
	pipe           *pipeline.Pipeline
	defaultMaxRows int
	maxRowsCeiling int
	defaultTimeout float64
	timeoutCeiling float64
}

func NewQueryHandler(pipe *pipeline.Pipeline, defaultMaxRows, maxRowsCeiling int, defaultTimeout, timeoutCeiling float64) *QueryHandler {
	return &QueryHandler{
		pipe:           pipe,
		defaultMaxRows: defaultMaxRows,
		maxRowsCeiling: maxRowsCeiling,
		defaultTimeout: defaultTimeout,
		timeoutCeiling: timeoutCeiling,
	}
}

// Resolve handles POST /api/v1/query
func (h *QueryHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req models.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		models.WriteError(w, http.StatusBadRequest, models.ErrorResponse{
			Error:     "invalid request body: " + err.Error(),
			ErrorType: "InvalidInputError",
			Suggestions: []string{
				`Send a JSON body like {"question": "What was total revenue last month?"}`,
			},
		})
		return
	}
	req.SetDefaults(h.defaultMaxRows, h.maxRowsCeiling, h.defaultTimeout, h.timeoutCeiling)

	resp, err := h.pipe.Resolve(r.Context(), pipeline.Request{
		Question:   req.Question,
		MaxRows:    req.MaxRows,
		Timeout:    time.Duration(req.TimeoutSeconds * float64(time.Second)),
		IncludeSQL: req.IncludeSQLValue(),
	})
	if err != nil {
		errType := pipeline.ErrorType(err)
		models.WriteError(w, statusFor(errType), models.ErrorResponse{
			Error:       err.Error(),
			ErrorType:   errType,
			Suggestions: pipeline.Suggestions(req.Question, err),
		})
		return
	}

	models.WriteJSON(w, http.StatusOK, resp)
}

// statusFor maps pipeline error classes onto HTTP status codes. Timeouts
// surface as 504 so callers can distinguish them from hard failures.
func statusFor(errType string) int {
	switch errType {
	case "InvalidInputError", "ValidationError", "UnknownSchemaObjectError":
		return http.StatusBadRequest
	case "NoStrategyAvailable":
		return http.StatusUnprocessableEntity
	case "AIGenerationTimeout", "DatabaseTimeoutError":
		return http.StatusGatewayTimeout
	case "AIGenerationError":
		return http.StatusBadGateway
	case "DatabaseConnectionError":
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
