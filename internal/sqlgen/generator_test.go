package sqlgen_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sageql/sageql/internal/sqlgen"
)

// stubBackend returns a fixed completion, optionally after a delay.
type stubBackend struct {
	text  string
	err   error
	delay time.Duration
}

func (s *stubBackend) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return s.text, s.err
}

// hangingBackend ignores context cancellation entirely.
type hangingBackend struct{}

func (hangingBackend) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	select {} // never returns
}

func TestGenerateExtractsSQL(t *testing.T) {
	g := sqlgen.NewGenerator(&stubBackend{text: "```sql\nSELECT * FROM fact_sales LIMIT 10\n```"})

	sql, err := g.Generate(context.Background(), "show sales", "", time.Second)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if sql != "SELECT * FROM fact_sales LIMIT 10" {
		t.Errorf("sql = %q", sql)
	}
}

func TestGenerateTimeout(t *testing.T) {
	g := sqlgen.NewGenerator(&stubBackend{text: "SELECT 1 FROM t", delay: time.Second})

	start := time.Now()
	_, err := g.Generate(context.Background(), "q", "", 50*time.Millisecond)
	elapsed := time.Since(start)

	var timeoutErr *sqlgen.TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("error = %v, want TimeoutError", err)
	}
	if elapsed > 500*time.Millisecond {
		t.Errorf("returned after %s, should honor the 50ms budget", elapsed)
	}
}

func TestGenerateTimeoutWithHangingBackend(t *testing.T) {
	g := sqlgen.NewGenerator(hangingBackend{})

	start := time.Now()
	_, err := g.Generate(context.Background(), "q", "", 50*time.Millisecond)
	elapsed := time.Since(start)

	var timeoutErr *sqlgen.TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("error = %v, want TimeoutError", err)
	}
	// The budget must hold even when the backend never observes cancellation.
	if elapsed > 500*time.Millisecond {
		t.Errorf("returned after %s, should honor the 50ms budget", elapsed)
	}
}

func TestGenerateBackendError(t *testing.T) {
	g := sqlgen.NewGenerator(&stubBackend{err: fmt.Errorf("api quota exceeded")})

	_, err := g.Generate(context.Background(), "q", "", time.Second)
	var genErr *sqlgen.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("error = %v, want GenerationError", err)
	}
}

func TestGenerateNoSQLInOutput(t *testing.T) {
	g := sqlgen.NewGenerator(&stubBackend{text: "I cannot answer that."})

	_, err := g.Generate(context.Background(), "q", "", time.Second)
	var genErr *sqlgen.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("error = %v, want GenerationError", err)
	}
}
