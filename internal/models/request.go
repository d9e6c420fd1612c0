package models

// QueryRequest for POST /api/v1/query (natural-language question)
type QueryRequest struct {
	Question       string  `json:"question"`
	MaxRows        int     `json:"max_rows"`
	IncludeSQL     *bool   `json:"include_sql"`
	TimeoutSeconds float64 `json:"timeout_seconds"`
}

// SetDefaults clamps request fields into their configured bounds. Caller
// values never raise a ceiling, only lower it.
func (r *QueryRequest) SetDefaults(defaultMaxRows, maxRowsCeiling int, defaultTimeout, timeoutCeiling float64) {
	if r.MaxRows <= 0 {
		r.MaxRows = defaultMaxRows
	}
	if r.MaxRows > maxRowsCeiling {
		r.MaxRows = maxRowsCeiling
	}
	if r.IncludeSQL == nil {
		t := true
		r.IncludeSQL = &t
	}
	if r.TimeoutSeconds <= 0 {
		r.TimeoutSeconds = defaultTimeout
	}
	if r.TimeoutSeconds > timeoutCeiling {
		r.TimeoutSeconds = timeoutCeiling
	}
}

// IncludeSQLValue returns the resolved include_sql flag (default true).
func (r *QueryRequest) IncludeSQLValue() bool {
	return r.IncludeSQL == nil || *r.IncludeSQL
}
