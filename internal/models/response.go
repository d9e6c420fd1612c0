package models

import "time"

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// QueryMetadata describes how a question was resolved.
type QueryMetadata struct {
	Strategy            string  `json:"strategy"`
	SQLGenerationTimeMs float64 `json:"sql_generation_time_ms"`
	DatabaseQueryTimeMs float64 `json:"database_query_time_ms"`
	TemplateID          string  `json:"template_id,omitempty"`
	Model               string  `json:"model,omitempty"`
	Truncated           bool    `json:"truncated,omitempty"`
}

// QueryResponse is returned by POST /api/v1/query.
// Invariant: RowCount == len(Results) and RowCount <= the request's max_rows.
type QueryResponse struct {
	Question        string           `json:"question"`
	SQLQuery        *string          `json:"sql_query"`
	Results         []map[string]any `json:"results"`
	RowCount        int              `json:"row_count"`
	ExecutionTimeMs float64          `json:"execution_time_ms"`
	Complexity      string           `json:"complexity"`
	Timestamp       time.Time        `json:"timestamp"`
	Metadata        QueryMetadata    `json:"metadata"`
}

// ExamplesResponse is returned by GET /api/v1/query/examples
type ExamplesResponse struct {
	Categories map[string][]string `json:"categories"`
	Tips       []string            `json:"tips"`
	Timestamp  time.Time           `json:"timestamp"`
}
