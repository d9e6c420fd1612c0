package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"github.com/sageql/sageql/internal/catalog"
	"github.com/sageql/sageql/internal/config"
	"github.com/sageql/sageql/internal/handler"
	"github.com/sageql/sageql/internal/middleware"
	"github.com/sageql/sageql/internal/pipeline"
	"github.com/sageql/sageql/internal/question"
	"github.com/sageql/sageql/internal/sqlgen"
	"github.com/sageql/sageql/internal/stats"
	"github.com/sageql/sageql/internal/validate"
	"github.com/sageql/sageql/internal/warehouse"
)

// setupRoutes returns (router, warehouse, error) so the warehouse can be
// closed on shutdown.
func (s *Server) setupRoutes() (http.Handler, warehouse.Warehouse, error) {
	cfg := s.cfg
	ctx := context.Background()

	// ─── Warehouse ──────────────────────────────────────────────────────────────
	wh, err := openWarehouse(ctx, cfg)
	if err != nil {
		log.Warn().Err(err).Str("driver", cfg.WarehouseDriver).Msg("warehouse unavailable")
		wh = nil
	}

	var schemas *warehouse.SchemaCache
	if wh != nil && cfg.EnableSchemaChecks {
		schemas = warehouse.NewSchemaCache(wh, time.Duration(cfg.SchemaCacheTTLSeconds)*time.Second)
	}

	// ─── AI generator ───────────────────────────────────────────────────────────
	var generator pipeline.SQLGenerator
	modelName := ""
	if cfg.AnthropicAPIKey != "" {
		backend := sqlgen.NewAnthropicBackend(cfg.AnthropicAPIKey, cfg.Model, cfg.AnthropicBaseURL)
		generator = sqlgen.NewGenerator(backend)
		modelName = backend.Model()
	} else {
		log.Warn().Msg("ANTHROPIC_API_KEY not set - AI generation disabled")
	}

	log.Info().
		Str("warehouse_driver", cfg.WarehouseDriver).
		Bool("warehouse_connected", wh != nil).
		Bool("ai_enabled", generator != nil).
		Bool("schema_checks", schemas != nil).
		Msg("service configuration")

	if wh == nil {
		log.Warn().Msg("WARNING: no warehouse configured - /api/v1/query will fail for data questions")
	}

	// ─── Pipeline ───────────────────────────────────────────────────────────────
	recorder := stats.NewRecorder()
	pipe := pipeline.New(pipeline.Config{
		Normalizer: question.NewNormalizer(cfg.MaxQuestionLength),
		FastPath:   question.NewFastPath(),
		Classifier: question.NewClassifier(
			time.Duration(cfg.SimpleAITimeoutSeconds)*time.Second,
			time.Duration(cfg.ModerateAITimeoutSeconds)*time.Second,
			time.Duration(cfg.ComplexAITimeoutSeconds)*time.Second,
			time.Duration(cfg.AITimeoutCeilingSeconds)*time.Second,
		),
		Catalog:   catalog.Default(),
		Generator: generator,
		Validator: validate.NewValidator(cfg.MaxRowsCeiling),
		Warehouse: wh,
		Schemas:   schemas,
		Recorder:  recorder,
		ModelName: modelName,
	})

	// ─── Handlers ───────────────────────────────────────────────────────────────
	healthH := handler.NewHealthHandler(wh, generator != nil)
	queryH := handler.NewQueryHandler(pipe, cfg.DefaultMaxRows, cfg.MaxRowsCeiling, cfg.DefaultTimeoutSeconds, cfg.TimeoutCeilingSeconds)
	statsH := handler.NewStatsHandler(recorder)
	examplesH := handler.NewExamplesHandler()

	// ─── Router ─────────────────────────────────────────────────────────────────
	r := chi.NewRouter()

	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORSOrigins)))
	r.Use(chiMiddleware.RealIP)

	// Public routes
	r.Get("/health", healthH.Health)
	r.Get("/", healthH.Health)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute))

		r.Route(cfg.APIPrefix, func(r chi.Router) {
			r.Post("/query", queryH.Resolve)
			r.Get("/query/stats", statsH.Stats)
			r.Post("/query/stats/reset", statsH.Reset)
			r.Get("/query/examples", examplesH.Examples)
		})
	})

	return r, wh, nil
}

func openWarehouse(ctx context.Context, cfg *config.Config) (warehouse.Warehouse, error) {
	switch cfg.WarehouseDriver {
	case "postgres":
		if cfg.PostgresDSN == "" {
			log.Warn().Msg("SAGEQL_POSTGRES_DSN not set - warehouse disabled")
			return nil, nil
		}
		return warehouse.NewPostgres(ctx, cfg.PostgresDSN, int32(cfg.PoolMaxConns), time.Duration(cfg.PoolAcquireTimeoutSeconds)*time.Second)
	case "bigquery":
		if cfg.GCPProjectID == "" {
			log.Warn().Msg("GCP_PROJECT_ID not set - warehouse disabled")
			return nil, nil
		}
		return warehouse.NewBigQuery(ctx, cfg.GCPProjectID, cfg.GoogleApplicationCredentials, cfg.BigQueryDataset)
	case "duckdb":
		if cfg.DuckDBPath == "" {
			log.Warn().Msg("SAGEQL_DUCKDB_PATH not set - warehouse disabled")
			return nil, nil
		}
		return warehouse.NewDuckDB(cfg.DuckDBPath, cfg.PoolMaxConns)
	default:
		log.Warn().Str("driver", cfg.WarehouseDriver).Msg("unknown warehouse driver - warehouse disabled")
		return nil, nil
	}
}
