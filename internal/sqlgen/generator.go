// Package sqlgen turns a natural-language question into candidate SQL by
// calling an external model runtime. It owns the timeout around the model
// call and the post-processing that strips prose and markdown from the
// model's output. Retry and fallback policy live in the pipeline, not here.
package sqlgen

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Backend is the single capability contract for a model runtime, so the
// concrete provider can vary without touching the pipeline.
type Backend interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// TimeoutError reports that the model call exceeded its budget. The
// underlying call is cancelled through its context, not merely abandoned.
type TimeoutError struct {
	Budget time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("sql generation timed out after %s", e.Budget)
}

// GenerationError reports a reachable runtime that returned an error or
// output from which no SQL could be extracted.
type GenerationError struct {
	Reason string
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return "sql generation failed: " + e.Reason + ": " + e.Err.Error()
	}
	return "sql generation failed: " + e.Reason
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Generator issues one bounded model call per question. No retries.
type Generator struct {
	backend Backend
}

func NewGenerator(backend Backend) *Generator {
	return &Generator{backend: backend}
}

// Generate asks the model for SQL answering the question, bounded by
// timeout. The call runs in its own goroutine with a cancelled context so a
// runtime that ignores cancellation still cannot hold the request past the
// budget. schemaHint, when non-empty, is appended to the system prompt.
func (g *Generator) Generate(ctx context.Context, question, schemaHint string, timeout time.Duration) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type completion struct {
		text string
		err  error
	}
	done := make(chan completion, 1)

	start := time.Now()
	go func() {
		text, err := g.backend.Complete(callCtx, BuildSystemPrompt(schemaHint), question)
		done <- completion{text: text, err: err}
	}()

	select {
	case <-callCtx.Done():
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			log.Warn().Dur("budget", timeout).Str("question", question).Msg("sql generation timed out")
			return "", &TimeoutError{Budget: timeout}
		}
		return "", callCtx.Err()
	case c := <-done:
		if c.err != nil {
			if errors.Is(c.err, context.DeadlineExceeded) {
				return "", &TimeoutError{Budget: timeout}
			}
			return "", &GenerationError{Reason: "model call", Err: c.err}
		}
		sql := ExtractSQL(c.text)
		if sql == "" {
			return "", &GenerationError{Reason: "no SQL statement in model output"}
		}
		log.Debug().
			Dur("elapsed", time.Since(start)).
			Int("output_len", len(c.text)).
			Msg("sql generated")
		return sql, nil
	}
}
