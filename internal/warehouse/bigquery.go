package warehouse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// BigQuery executes statements as BigQuery jobs. The SDK manages its own
// connection handling; the bounded-pool discipline here is the job context
// deadline, which aborts the job wait and read.
type BigQuery struct {
	client  *bigquery.Client
	dataset string
}

func NewBigQuery(ctx context.Context, projectID, credentialsFile, dataset string) (*BigQuery, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := bigquery.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, &ConnectionError{Err: fmt.Errorf("bigquery.NewClient: %w", err)}
	}
	return &BigQuery{client: client, dataset: dataset}, nil
}

func (b *BigQuery) Ping(ctx context.Context) error {
	q := b.client.Query("SELECT 1")
	job, err := q.Run(ctx)
	if err != nil {
		return &ConnectionError{Err: err}
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return &ConnectionError{Err: err}
	}
	return status.Err()
}

func (b *BigQuery) Close() error {
	return b.client.Close()
}

func (b *BigQuery) Execute(ctx context.Context, sql string, maxRows int, timeout time.Duration) (*QueryResult, error) {
	queryCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	q := b.client.Query(sql)

	start := time.Now()
	job, err := q.Run(queryCtx)
	if err != nil {
		return nil, b.classify(err, timeout)
	}
	status, err := job.Wait(queryCtx)
	if err != nil {
		return nil, b.classify(err, timeout)
	}
	if err := status.Err(); err != nil {
		return nil, &ExecutionError{Err: err}
	}

	it, err := job.Read(queryCtx)
	if err != nil {
		return nil, b.classify(err, timeout)
	}

	var rows []map[string]any
	var columns []string
	truncated := false
	for {
		var row map[string]bigquery.Value
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, b.classify(err, timeout)
		}
		if columns == nil && it.Schema != nil {
			for _, f := range it.Schema {
				columns = append(columns, f.Name)
			}
		}
		if len(rows) == maxRows {
			truncated = true
			break
		}
		m := make(map[string]any, len(row))
		for k, v := range row {
			m[k] = v
		}
		rows = append(rows, m)
	}

	elapsed := time.Since(start)
	log.Debug().
		Str("job_id", job.ID()).
		Int("rows", len(rows)).
		Bool("truncated", truncated).
		Dur("elapsed", elapsed).
		Msg("bigquery query executed")

	return &QueryResult{
		Rows:            rows,
		Columns:         columns,
		RowCount:        len(rows),
		ExecutionTimeMs: elapsed.Milliseconds(),
		Truncated:       truncated,
	}, nil
}

// Schema lists tables and columns for the configured dataset.
func (b *BigQuery) Schema(ctx context.Context) (map[string][]string, error) {
	schema := make(map[string][]string)
	it := b.client.Dataset(b.dataset).Tables(ctx)
	for {
		tbl, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, &ExecutionError{Err: err}
		}
		meta, err := tbl.Metadata(ctx)
		if err != nil {
			log.Warn().Err(err).Str("table", tbl.TableID).Msg("table metadata unavailable")
			continue
		}
		var cols []string
		for _, f := range meta.Schema {
			cols = append(cols, f.Name)
		}
		schema[tbl.TableID] = cols
	}
	return schema, nil
}

func (b *BigQuery) classify(err error, timeout time.Duration) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Timeout: timeout}
	}
	return &ExecutionError{Err: err}
}
