package pipeline

import (
	"math"
	"time"

	"github.com/sageql/sageql/internal/models"
	"github.com/sageql/sageql/internal/question"
	"github.com/sageql/sageql/internal/warehouse"
)

type timings struct {
	totalMs  float64
	sqlGenMs float64
	dbMs     float64
}

// buildEnvelope shapes an executed plan into the response payload. Pure
// function of its inputs apart from the timestamp.
func buildEnvelope(q *question.Question, plan *QueryPlan, result *warehouse.QueryResult, t timings, modelName string, includeSQL bool) *models.QueryResponse {
	results := make([]map[string]any, len(result.Rows))
	for i, row := range result.Rows {
		results[i] = formatRow(row)
	}

	resp := &models.QueryResponse{
		Question:        q.Raw,
		Results:         results,
		RowCount:        len(results),
		ExecutionTimeMs: t.totalMs,
		Complexity:      string(plan.Complexity),
		Timestamp:       time.Now().UTC(),
		Metadata: models.QueryMetadata{
			Strategy:            string(plan.Strategy),
			SQLGenerationTimeMs: t.sqlGenMs,
			DatabaseQueryTimeMs: t.dbMs,
			TemplateID:          plan.TemplateID,
			Truncated:           result.Truncated,
		},
	}
	if plan.Strategy == StrategyAI {
		resp.Metadata.Model = modelName
	}
	if includeSQL {
		sql := plan.SQL
		resp.SQLQuery = &sql
	}
	return resp
}

// fastEnvelope wraps a canned answer in the same response shape as an
// executed query: one row, no SQL, strategy FAST.
func fastEnvelope(q *question.Question, answer string, latencyMs float64) *models.QueryResponse {
	return &models.QueryResponse{
		Question:        q.Raw,
		SQLQuery:        nil,
		Results:         []map[string]any{{"answer": answer}},
		RowCount:        1,
		ExecutionTimeMs: latencyMs,
		Complexity:      string(question.Simple),
		Timestamp:       time.Now().UTC(),
		Metadata: models.QueryMetadata{
			Strategy: string(StrategyFast),
		},
	}
}

// formatRow normalizes warehouse values for presentation: floats rounded to
// two decimals, times in RFC 3339, NULLs as "N/A".
func formatRow(row map[string]any) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		switch val := v.(type) {
		case float64:
			out[k] = math.Round(val*100) / 100
		case float32:
			out[k] = math.Round(float64(val)*100) / 100
		case time.Time:
			out[k] = val.Format(time.RFC3339)
		case nil:
			out[k] = "N/A"
		default:
			out[k] = v
		}
	}
	return out
}
