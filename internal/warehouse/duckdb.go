package warehouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/rs/zerolog/log"
)

// DuckDB is an embedded backend over database/sql, used for local
// development and demos where standing up a remote warehouse is overkill.
// database/sql provides the bounded pool.
type DuckDB struct {
	db *sql.DB
}

// NewDuckDB opens (or creates) the database at path; an empty path opens an
// in-memory database.
func NewDuckDB(path string, maxConns int) (*DuckDB, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, &ConnectionError{Err: fmt.Errorf("open duckdb: %w", err)}
	}
	if maxConns > 0 {
		db.SetMaxOpenConns(maxConns)
	}
	return &DuckDB{db: db}, nil
}

func (d *DuckDB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func (d *DuckDB) Close() error {
	return d.db.Close()
}

func (d *DuckDB) Execute(ctx context.Context, query string, maxRows int, timeout time.Duration) (*QueryResult, error) {
	queryCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	rows, err := d.db.QueryContext(queryCtx, query)
	if err != nil {
		return nil, d.classify(err, timeout)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, &ExecutionError{Err: err}
	}

	var out []map[string]any
	truncated := false
	for rows.Next() {
		if len(out) == maxRows {
			truncated = true
			break
		}
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, &ExecutionError{Err: err}
		}
		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil && !truncated {
		return nil, d.classify(err, timeout)
	}

	elapsed := time.Since(start)
	log.Debug().
		Int("rows", len(out)).
		Bool("truncated", truncated).
		Dur("elapsed", elapsed).
		Msg("duckdb query executed")

	return &QueryResult{
		Rows:            out,
		Columns:         columns,
		RowCount:        len(out),
		ExecutionTimeMs: elapsed.Milliseconds(),
		Truncated:       truncated,
	}, nil
}

func (d *DuckDB) Schema(ctx context.Context) (map[string][]string, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT table_name, column_name
		FROM information_schema.columns
		WHERE table_schema = 'main'
		ORDER BY table_name, ordinal_position`)
	if err != nil {
		return nil, &ExecutionError{Err: err}
	}
	defer rows.Close()

	schema := make(map[string][]string)
	for rows.Next() {
		var table, column string
		if err := rows.Scan(&table, &column); err != nil {
			return nil, &ExecutionError{Err: err}
		}
		schema[table] = append(schema[table], column)
	}
	return schema, rows.Err()
}

func (d *DuckDB) classify(err error, timeout time.Duration) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Timeout: timeout}
	}
	return &ExecutionError{Err: err}
}
