package warehouse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// Postgres runs statements through a bounded pgx pool. Connections are held
// only for the span of one statement and released on every exit path.
type Postgres struct {
	pool           *pgxpool.Pool
	acquireTimeout time.Duration
}

// NewPostgres opens a pool against dsn with at most maxConns connections.
// acquireTimeout bounds how long Execute waits for a free connection before
// failing with ConnectionError.
func NewPostgres(ctx context.Context, dsn string, maxConns int32, acquireTimeout time.Duration) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &Postgres{pool: pool, acquireTimeout: acquireTimeout}, nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

// Execute acquires a pooled connection, runs sql inside a transaction with a
// server-side statement_timeout matching the client deadline, and reads at
// most maxRows+1 rows to flag truncation.
func (p *Postgres) Execute(ctx context.Context, sql string, maxRows int, timeout time.Duration) (*QueryResult, error) {
	acquireCtx, cancelAcquire := context.WithTimeout(ctx, p.acquireTimeout)
	conn, err := p.pool.Acquire(acquireCtx)
	cancelAcquire()
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}
	defer conn.Release()

	queryCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	tx, err := conn.BeginTx(queryCtx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, p.classify(err, timeout)
	}
	defer tx.Rollback(context.Background())

	// SET LOCAL scopes the timeout to this transaction, so the pooled
	// connection goes back clean.
	if _, err := tx.Exec(queryCtx, fmt.Sprintf("SET LOCAL statement_timeout = %d", timeout.Milliseconds())); err != nil {
		return nil, p.classify(err, timeout)
	}

	rows, err := tx.Query(queryCtx, sql)
	if err != nil {
		return nil, p.classify(err, timeout)
	}
	defer rows.Close()

	var columns []string
	for _, fd := range rows.FieldDescriptions() {
		columns = append(columns, fd.Name)
	}

	var out []map[string]any
	truncated := false
	for rows.Next() {
		if len(out) == maxRows {
			truncated = true
			break
		}
		values, err := rows.Values()
		if err != nil {
			return nil, &ExecutionError{Err: err}
		}
		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil && !truncated {
		return nil, p.classify(err, timeout)
	}

	elapsed := time.Since(start)
	log.Debug().
		Int("rows", len(out)).
		Bool("truncated", truncated).
		Dur("elapsed", elapsed).
		Msg("postgres query executed")

	return &QueryResult{
		Rows:            out,
		Columns:         columns,
		RowCount:        len(out),
		ExecutionTimeMs: elapsed.Milliseconds(),
		Truncated:       truncated,
	}, nil
}

// Schema lists tables and columns in the public schema.
func (p *Postgres) Schema(ctx context.Context) (map[string][]string, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT table_name, column_name
		FROM information_schema.columns
		WHERE table_schema = 'public'
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

func (p *Postgres) classify(err error, timeout time.Duration) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Timeout: timeout}
	}
	// 57014 is query_canceled, raised when statement_timeout fires
	// server-side before the client deadline does.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "57014" {
		return &TimeoutError{Timeout: timeout}
	}
	return &ExecutionError{Err: err}
}
