// Package warehouse executes validated SQL against the analytics database
// through a bounded connection pool. Three backends share one contract:
// PostgreSQL (pgx pool), BigQuery, and embedded DuckDB for local work.
package warehouse

import (
	"context"
	"time"
)

// QueryResult is the materialized outcome of one statement.
type QueryResult struct {
	Rows            []map[string]any
	Columns         []string
	RowCount        int
	ExecutionTimeMs int64
	Truncated       bool
}

// Warehouse is the execution contract the pipeline depends on. Execute caps
// returned rows at maxRows and must honor the timeout with real
// cancellation; implementations internally fetch maxRows+1 to detect
// truncation without over-fetching.
type Warehouse interface {
	Execute(ctx context.Context, sql string, maxRows int, timeout time.Duration) (*QueryResult, error)
	Schema(ctx context.Context) (map[string][]string, error)
	Ping(ctx context.Context) error
	Close() error
}

// ConnectionError covers pool exhaustion and connect failures.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string { return "warehouse connection: " + e.Err.Error() }
func (e *ConnectionError) Unwrap() error { return e.Err }

// ExecutionError means the warehouse rejected or errored on the statement.
type ExecutionError struct {
	Err error
}

func (e *ExecutionError) Error() string { return "warehouse execution: " + e.Err.Error() }
func (e *ExecutionError) Unwrap() error { return e.Err }

// TimeoutError means the statement exceeded its execution timeout.
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return "warehouse query timed out after " + e.Timeout.String()
}
