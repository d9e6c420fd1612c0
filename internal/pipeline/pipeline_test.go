package pipeline_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sageql/sageql/internal/catalog"
	"github.com/sageql/sageql/internal/pipeline"
	"github.com/sageql/sageql/internal/question"
	"github.com/sageql/sageql/internal/sqlgen"
	"github.com/sageql/sageql/internal/stats"
	"github.com/sageql/sageql/internal/validate"
	"github.com/sageql/sageql/internal/warehouse"
)

// fakeWarehouse records the last executed SQL and returns a fixed result.
// When truncate is set it caps rows at maxRows and flags the result, the way
// a real backend's maxRows+1 read does.
type fakeWarehouse struct {
	lastSQL  string
	rows     []map[string]any
	truncate bool
	err      error
}

func (f *fakeWarehouse) Execute(ctx context.Context, sql string, maxRows int, timeout time.Duration) (*warehouse.QueryResult, error) {
	f.lastSQL = sql
	if f.err != nil {
		return nil, f.err
	}
	rows := f.rows
	if rows == nil {
		rows = []map[string]any{{"value": 42.0}}
	}
	truncated := false
	if f.truncate && len(rows) > maxRows {
		rows = rows[:maxRows]
		truncated = true
	}
	return &warehouse.QueryResult{
		Rows:            rows,
		RowCount:        len(rows),
		ExecutionTimeMs: 5,
		Truncated:       truncated,
	}, nil
}

func (f *fakeWarehouse) Schema(ctx context.Context) (map[string][]string, error) {
	return map[string][]string{
		"fact_sales":  {"sale_id", "store_id", "product_id", "total_amount", "sale_date"},
		"dim_store":   {"store_id", "store_name", "store_region"},
		"dim_product": {"product_id", "product_name", "product_category"},
	}, nil
}

func (f *fakeWarehouse) Ping(ctx context.Context) error { return nil }
func (f *fakeWarehouse) Close() error                   { return nil }

// stubGenerator returns fixed SQL or a fixed error.
type stubGenerator struct {
	sql   string
	err   error
	calls int
}

func (s *stubGenerator) Generate(ctx context.Context, questionText, schemaHint string, timeout time.Duration) (string, error) {
	s.calls++
	return s.sql, s.err
}

func newTestPipeline(wh warehouse.Warehouse, gen pipeline.SQLGenerator, rec *stats.Recorder) *pipeline.Pipeline {
	return pipeline.New(pipeline.Config{
		Normalizer: question.NewNormalizer(500),
		FastPath:   question.NewFastPath(),
		Classifier: question.NewClassifier(10*time.Second, 20*time.Second, 45*time.Second, 60*time.Second),
		Catalog:    catalog.Default(),
		Generator:  gen,
		Validator:  validate.NewValidator(1000),
		Warehouse:  wh,
		Recorder:   rec,
		ModelName:  "test-model",
	})
}

func testRequest(q string) pipeline.Request {
	return pipeline.Request{Question: q, MaxRows: 100, Timeout: 10 * time.Second, IncludeSQL: true}
}

func TestResolveFastPath(t *testing.T) {
	wh := &fakeWarehouse{}
	rec := stats.NewRecorder()
	p := newTestPipeline(wh, &stubGenerator{}, rec)

	resp, err := p.Resolve(context.Background(), testRequest("What is SQL?"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resp.Metadata.Strategy != "FAST" {
		t.Errorf("Strategy = %q, want FAST", resp.Metadata.Strategy)
	}
	if resp.SQLQuery != nil {
		t.Errorf("fast-path answer should carry no SQL, got %q", *resp.SQLQuery)
	}
	if resp.RowCount != 1 || len(resp.Results) != 1 {
		t.Errorf("RowCount = %d, Results = %v", resp.RowCount, resp.Results)
	}
	if wh.lastSQL != "" {
		t.Errorf("warehouse should not run for fast-path, executed %q", wh.lastSQL)
	}
	if s := rec.Snapshot(); s.Succeeded != 1 || s.Total != 1 {
		t.Errorf("fast-path must record success, snapshot %+v", s)
	}
}

func TestResolveTemplate(t *testing.T) {
	wh := &fakeWarehouse{rows: []map[string]any{{"total_revenue": 12345.678}}}
	gen := &stubGenerator{}
	rec := stats.NewRecorder()
	p := newTestPipeline(wh, gen, rec)

	resp, err := p.Resolve(context.Background(), testRequest("What was total revenue last month?"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resp.Metadata.Strategy != "TEMPLATE" {
		t.Errorf("Strategy = %q, want TEMPLATE", resp.Metadata.Strategy)
	}
	if resp.Metadata.TemplateID != "revenue_time_range" {
		t.Errorf("TemplateID = %q, want revenue_time_range", resp.Metadata.TemplateID)
	}
	if gen.calls != 0 {
		t.Errorf("generator called %d times; templates must not invoke the model", gen.calls)
	}
	if !strings.Contains(wh.lastSQL, "SUM(total_amount)") || !strings.Contains(wh.lastSQL, "DATE_TRUNC('month'") {
		t.Errorf("executed SQL missing aggregate or date filter: %s", wh.lastSQL)
	}
	if resp.SQLQuery == nil || *resp.SQLQuery != wh.lastSQL {
		t.Error("response SQL should be the executed SQL")
	}
	// Floats round to two decimals for presentation.
	if got := resp.Results[0]["total_revenue"]; got != 12345.68 {
		t.Errorf("total_revenue = %v, want 12345.68", got)
	}
}

func TestResolveAIForComplexQuestion(t *testing.T) {
	wh := &fakeWarehouse{}
	gen := &stubGenerator{sql: "SELECT store_id, SUM(total_amount) FROM fact_sales GROUP BY store_id LIMIT 50"}
	rec := stats.NewRecorder()
	p := newTestPipeline(wh, gen, rec)

	resp, err := p.Resolve(context.Background(), testRequest("Show revenue trend month over month by store"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resp.Metadata.Strategy != "AI" {
		t.Errorf("Strategy = %q, want AI", resp.Metadata.Strategy)
	}
	if resp.Complexity != "COMPLEX" {
		t.Errorf("Complexity = %q, want COMPLEX", resp.Complexity)
	}
	if resp.Metadata.Model != "test-model" {
		t.Errorf("Model = %q, want test-model", resp.Metadata.Model)
	}
	if gen.calls != 1 {
		t.Errorf("generator calls = %d, want 1", gen.calls)
	}
}

func TestResolveAIFallsBackToTemplate(t *testing.T) {
	wh := &fakeWarehouse{}
	// COMPLEX classification sends the question to the AI first; on failure
	// the catalog gets one chance.
	gen := &stubGenerator{err: &sqlgen.TimeoutError{Budget: time.Second}}
	rec := stats.NewRecorder()
	p := newTestPipeline(wh, gen, rec)

	resp, err := p.Resolve(context.Background(), testRequest("Compare total revenue last month"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resp.Metadata.Strategy != "TEMPLATE" {
		t.Errorf("Strategy = %q, want TEMPLATE fallback", resp.Metadata.Strategy)
	}
	if gen.calls != 1 {
		t.Errorf("generator calls = %d, want 1", gen.calls)
	}
}

func TestResolveNoStrategyAvailable(t *testing.T) {
	wh := &fakeWarehouse{}
	gen := &stubGenerator{err: &sqlgen.TimeoutError{Budget: time.Second}}
	rec := stats.NewRecorder()
	p := newTestPipeline(wh, gen, rec)

	_, err := p.Resolve(context.Background(), testRequest("Forecast the correlation of anything with everything"))
	if !errors.Is(err, pipeline.ErrNoStrategy) {
		t.Fatalf("error = %v, want ErrNoStrategy", err)
	}
	if got := pipeline.ErrorType(err); got != "NoStrategyAvailable" {
		t.Errorf("ErrorType = %q, want NoStrategyAvailable", got)
	}
	// The AI failure that exhausted the strategies stays inspectable.
	var timeoutErr *sqlgen.TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Errorf("error chain lost the AI timeout cause: %v", err)
	}
	if s := rec.Snapshot(); s.Failed != 1 || s.Total != 1 {
		t.Errorf("failure must be recorded, snapshot %+v", s)
	}
	if len(pipeline.Suggestions("forecast anything", err)) == 0 {
		t.Error("expected suggestions for a failed question")
	}
}

func TestResolveTruncationSurfacesInMetadata(t *testing.T) {
	rows := make([]map[string]any, 8)
	for i := range rows {
		rows[i] = map[string]any{"sale_id": float64(i)}
	}
	wh := &fakeWarehouse{rows: rows, truncate: true}
	rec := stats.NewRecorder()
	p := newTestPipeline(wh, &stubGenerator{}, rec)

	req := testRequest("Show recent sales")
	req.MaxRows = 5
	resp, err := p.Resolve(context.Background(), req)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resp.RowCount != 5 || len(resp.Results) != 5 {
		t.Errorf("RowCount = %d (len %d), want 5", resp.RowCount, len(resp.Results))
	}
	if !resp.Metadata.Truncated {
		t.Error("Metadata.Truncated = false, want true when the warehouse capped rows")
	}
}

func TestResolveInvalidInput(t *testing.T) {
	rec := stats.NewRecorder()
	p := newTestPipeline(&fakeWarehouse{}, &stubGenerator{}, rec)

	_, err := p.Resolve(context.Background(), testRequest("   "))
	if got := pipeline.ErrorType(err); got != "InvalidInputError" {
		t.Fatalf("ErrorType = %q, want InvalidInputError (err %v)", got, err)
	}
	if s := rec.Snapshot(); s.Failed != 1 {
		t.Errorf("invalid input must count as failure, snapshot %+v", s)
	}
}

func TestResolveRejectsGeneratedMutation(t *testing.T) {
	wh := &fakeWarehouse{}
	gen := &stubGenerator{sql: "DELETE FROM fact_sales"}
	rec := stats.NewRecorder()
	p := newTestPipeline(wh, gen, rec)

	_, err := p.Resolve(context.Background(), testRequest("Forecast a breakdown by segment of things"))
	if got := pipeline.ErrorType(err); got != "ValidationError" {
		t.Fatalf("ErrorType = %q, want ValidationError (err %v)", got, err)
	}
	if wh.lastSQL != "" {
		t.Errorf("invalid SQL must never execute, ran %q", wh.lastSQL)
	}
}

func TestResolveDatabaseErrorPropagates(t *testing.T) {
	wh := &fakeWarehouse{err: &warehouse.TimeoutError{Timeout: time.Second}}
	rec := stats.NewRecorder()
	p := newTestPipeline(wh, &stubGenerator{}, rec)

	_, err := p.Resolve(context.Background(), testRequest("How many stores do we have?"))
	if got := pipeline.ErrorType(err); got != "DatabaseTimeoutError" {
		t.Fatalf("ErrorType = %q, want DatabaseTimeoutError (err %v)", got, err)
	}
}

func TestResolveNoWarehouse(t *testing.T) {
	rec := stats.NewRecorder()
	p := newTestPipeline(nil, &stubGenerator{}, rec)

	_, err := p.Resolve(context.Background(), testRequest("How many stores do we have?"))
	if got := pipeline.ErrorType(err); got != "DatabaseConnectionError" {
		t.Fatalf("ErrorType = %q, want DatabaseConnectionError (err %v)", got, err)
	}
}

func TestResolveStatsAcrossRequests(t *testing.T) {
	wh := &fakeWarehouse{}
	rec := stats.NewRecorder()
	p := newTestPipeline(wh, &stubGenerator{sql: "SELECT 1 FROM fact_sales LIMIT 1"}, rec)

	questions := []string{
		"What is SQL?",
		"How many stores do we have?",
		"Total revenue last month",
		"   ", // fails
	}
	for _, q := range questions {
		p.Resolve(context.Background(), testRequest(q))
	}

	s := rec.Snapshot()
	if s.Total != 4 {
		t.Errorf("Total = %d, want 4", s.Total)
	}
	if s.Succeeded != 3 || s.Failed != 1 {
		t.Errorf("Succeeded/Failed = %d/%d, want 3/1", s.Succeeded, s.Failed)
	}
	if s.Succeeded+s.Failed != s.Total {
		t.Errorf("outcome counts do not sum to total: %+v", s)
	}
}
