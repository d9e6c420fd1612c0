// Package pipeline resolves natural-language questions into warehouse
// results. It owns the strategy decision (fast-path, template, AI), the
// timeout and fallback policy around the AI generator, and the statistics
// recorded for every request.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sageql/sageql/internal/catalog"
	"github.com/sageql/sageql/internal/models"
	"github.com/sageql/sageql/internal/question"
	"github.com/sageql/sageql/internal/stats"
	"github.com/sageql/sageql/internal/validate"
	"github.com/sageql/sageql/internal/warehouse"
)

// SQLGenerator is the slice of sqlgen the pipeline needs; tests substitute
// stubs for it.
type SQLGenerator interface {
	Generate(ctx context.Context, questionText, schemaHint string, timeout time.Duration) (string, error)
}

// Request is one unit of work entering the pipeline.
type Request struct {
	Question   string
	MaxRows    int
	Timeout    time.Duration
	IncludeSQL bool
}

// Pipeline wires the resolution components together. All fields are set at
// construction and never mutated, so one Pipeline serves unbounded
// concurrent requests.
type Pipeline struct {
	normalizer *question.Normalizer
	fastpath   *question.FastPath
	classifier *question.Classifier
	catalog    *catalog.Catalog
	generator  SQLGenerator
	validator  *validate.Validator
	wh         warehouse.Warehouse
	schemas    *warehouse.SchemaCache
	recorder   *stats.Recorder
	modelName  string
}

// Config collects the pipeline's collaborators. Generator and Warehouse may
// be nil, disabling the AI path and execution respectively (useful in
// degraded deployments and tests); Recorder must not be nil.
type Config struct {
	Normalizer *question.Normalizer
	FastPath   *question.FastPath
	Classifier *question.Classifier
	Catalog    *catalog.Catalog
	Generator  SQLGenerator
	Validator  *validate.Validator
	Warehouse  warehouse.Warehouse
	Schemas    *warehouse.SchemaCache
	Recorder   *stats.Recorder
	ModelName  string
}

func New(cfg Config) *Pipeline {
	return &Pipeline{
		normalizer: cfg.Normalizer,
		fastpath:   cfg.FastPath,
		classifier: cfg.Classifier,
		catalog:    cfg.Catalog,
		generator:  cfg.Generator,
		validator:  cfg.Validator,
		wh:         cfg.Warehouse,
		schemas:    cfg.Schemas,
		recorder:   cfg.Recorder,
		modelName:  cfg.ModelName,
	}
}

// Resolve runs one question through the resolution state machine and
// returns either a response envelope or a terminal error. An outcome is
// recorded for every call, success or failure; errors are never retried
// here.
func (p *Pipeline) Resolve(ctx context.Context, req Request) (*models.QueryResponse, error) {
	start := time.Now()
	st := stateStart

	fail := func(err error) (*models.QueryResponse, error) {
		latency := float64(time.Since(start).Milliseconds())
		p.recorder.Record(stats.Failed, latency)
		log.Warn().
			Err(err).
			Str("state", st.String()).
			Str("question", req.Question).
			Float64("latency_ms", latency).
			Msg("question failed")
		return nil, err
	}

	q, err := p.normalizer.Normalize(req.Question)
	if err != nil {
		return fail(err)
	}

	// Fast path first: trivial questions never reach the model or the
	// warehouse.
	st = stateFastChecked
	if answer, ok := p.fastpath.Match(q.Normalized); ok {
		latency := float64(time.Since(start).Milliseconds())
		p.recorder.Record(stats.Succeeded, latency)
		log.Info().Str("question", req.Question).Msg("fast-path answer")
		return fastEnvelope(q, answer, latency), nil
	}

	label := p.classifier.Classify(q)
	st = stateStrategySelected

	genStart := time.Now()
	plan, err := p.buildPlan(ctx, q, label)
	if err != nil {
		return fail(err)
	}
	sqlGenMs := float64(time.Since(genStart).Milliseconds())
	st = stateSQLObtained

	// A validation failure is terminal: a malformed or mutating statement
	// is never retried or patched beyond the limit rewrite.
	validator := p.validator
	if p.schemas != nil {
		if schema, serr := p.schemas.Get(ctx); serr == nil {
			validator = validator.WithSchema(schema)
		} else {
			log.Warn().Err(serr).Msg("schema unavailable, skipping schema checks")
		}
	}
	validSQL, err := validator.Validate(plan.SQL)
	if err != nil {
		return fail(err)
	}
	plan.SQL = validSQL
	st = stateValidated

	if p.wh == nil {
		return fail(&warehouse.ConnectionError{Err: fmt.Errorf("no warehouse configured")})
	}
	result, err := p.wh.Execute(ctx, plan.SQL, req.MaxRows, req.Timeout)
	if err != nil {
		return fail(err)
	}
	st = stateExecuted

	latency := float64(time.Since(start).Milliseconds())
	resp := buildEnvelope(q, plan, result, timings{
		totalMs:  latency,
		sqlGenMs: sqlGenMs,
		dbMs:     float64(result.ExecutionTimeMs),
	}, p.modelName, req.IncludeSQL)
	st = stateDone

	p.recorder.Record(stats.Succeeded, latency)
	log.Info().
		Str("strategy", string(plan.Strategy)).
		Str("complexity", string(plan.Complexity)).
		Int("rows", result.RowCount).
		Float64("latency_ms", latency).
		Str("state", st.String()).
		Msg("question resolved")
	return resp, nil
}

// buildPlan selects the strategy for a classified question. SIMPLE and
// MODERATE questions try the template catalog first; COMPLEX goes straight
// to the AI generator. An AI failure falls back once to the catalog if it
// has not been tried yet, then the request is out of strategies.
func (p *Pipeline) buildPlan(ctx context.Context, q *question.Question, label question.Complexity) (*QueryPlan, error) {
	templateTried := false

	if label != question.Complex {
		if m, ok := p.catalog.Lookup(q.Normalized, q.Entities); ok {
			log.Debug().Str("template", m.TemplateID).Msg("template matched")
			return &QueryPlan{
				Strategy:   StrategyTemplate,
				SQL:        m.SQL,
				TemplateID: m.TemplateID,
				Complexity: label,
			}, nil
		}
		templateTried = true
	}

	if p.generator == nil {
		if m, ok := p.lookupFallback(q, templateTried); ok {
			return &QueryPlan{Strategy: StrategyTemplate, SQL: m.SQL, TemplateID: m.TemplateID, Complexity: label}, nil
		}
		return nil, fmt.Errorf("%w: ai generation disabled", ErrNoStrategy)
	}

	budget := p.classifier.Budget(label)
	schemaHint := ""
	if p.schemas != nil {
		if hint, err := p.schemas.Describe(ctx); err == nil {
			schemaHint = hint
		}
	}

	sql, aiErr := p.generator.Generate(ctx, question.Preprocess(q.Normalized), schemaHint, budget)
	if aiErr == nil {
		return &QueryPlan{Strategy: StrategyAI, SQL: sql, Complexity: label}, nil
	}
	log.Warn().Err(aiErr).Str("complexity", string(label)).Msg("ai generation failed, trying template fallback")

	if m, ok := p.lookupFallback(q, templateTried); ok {
		return &QueryPlan{Strategy: StrategyTemplate, SQL: m.SQL, TemplateID: m.TemplateID, Complexity: label}, nil
	}
	// Both errors stay in the chain: callers branch on ErrNoStrategy while
	// the AI cause remains reachable through errors.As.
	return nil, fmt.Errorf("%w: %w", ErrNoStrategy, aiErr)
}

func (p *Pipeline) lookupFallback(q *question.Question, alreadyTried bool) (catalog.Match, bool) {
	if alreadyTried {
		return catalog.Match{}, false
	}
	return p.catalog.Lookup(q.Normalized, q.Entities)
}

// Stats exposes a snapshot of the recorder for the stats endpoint.
func (p *Pipeline) Stats() stats.Snapshot {
	return p.recorder.Snapshot()
}
