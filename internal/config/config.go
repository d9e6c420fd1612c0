package config

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	// Server
	Host        string `json:"host"`
	Port        int    `json:"port"`
	Environment string `json:"environment"`
	APIPrefix   string `json:"api_prefix"`
	LogLevel    string `json:"log_level"`

	// CORS
	CORSOrigins []string `json:"cors_origins"`

	// Rate Limiting
	RateLimitPerMinute int `json:"rate_limit_per_minute"`

	// Warehouse
	WarehouseDriver              string `json:"warehouse_driver"` // postgres | bigquery | duckdb
	PostgresDSN                  string `json:"postgres_dsn"`
	PoolMaxConns                 int    `json:"pool_max_conns"`
	PoolAcquireTimeoutSeconds    int    `json:"pool_acquire_timeout_seconds"`
	GCPProjectID                 string `json:"gcp_project_id"`
	GoogleApplicationCredentials string `json:"google_application_credentials"`
	BigQueryDataset              string `json:"bigquery_dataset"`
	DuckDBPath                   string `json:"duckdb_path"`

	// Query limits
	DefaultMaxRows        int     `json:"default_max_rows"`
	MaxRowsCeiling        int     `json:"max_rows_ceiling"`
	DefaultTimeoutSeconds float64 `json:"default_timeout_seconds"`
	TimeoutCeilingSeconds float64 `json:"timeout_ceiling_seconds"`
	MaxQuestionLength     int     `json:"max_question_length"`
	SchemaCacheTTLSeconds int     `json:"schema_cache_ttl_seconds"`
	EnableSchemaChecks    bool    `json:"enable_schema_checks"`

	// AI / LLM
	AnthropicAPIKey          string `json:"anthropic_api_key"`
	AnthropicBaseURL         string `json:"anthropic_base_url"` // override for a compatible proxy
	Model                    string `json:"model"`
	SimpleAITimeoutSeconds   int    `json:"simple_ai_timeout_seconds"`
	ModerateAITimeoutSeconds int    `json:"moderate_ai_timeout_seconds"`
	ComplexAITimeoutSeconds  int    `json:"complex_ai_timeout_seconds"`
	AITimeoutCeilingSeconds  int    `json:"ai_timeout_ceiling_seconds"`
}

func Load() (*Config, error) {
	cfg := &Config{
		Host:                      DefaultHost,
		Port:                      DefaultPort,
		Environment:               DefaultEnvironment,
		APIPrefix:                 DefaultAPIPrefix,
		LogLevel:                  DefaultLogLevel,
		CORSOrigins:               DefaultCORSOrigins,
		RateLimitPerMinute:        DefaultRateLimitPerMinute,
		WarehouseDriver:           DefaultWarehouseDriver,
		PoolMaxConns:              DefaultPoolMaxConns,
		PoolAcquireTimeoutSeconds: DefaultPoolAcquireTimeoutSeconds,
		DefaultMaxRows:            DefaultMaxRows,
		MaxRowsCeiling:            DefaultMaxRowsCeiling,
		DefaultTimeoutSeconds:     DefaultTimeoutSeconds,
		TimeoutCeilingSeconds:     DefaultTimeoutCeilingSeconds,
		MaxQuestionLength:         DefaultMaxQuestionLength,
		SchemaCacheTTLSeconds:     DefaultSchemaCacheTTLSeconds,
		EnableSchemaChecks:        true,
		SimpleAITimeoutSeconds:    DefaultSimpleAITimeoutSeconds,
		ModerateAITimeoutSeconds:  DefaultModerateAITimeoutSeconds,
		ComplexAITimeoutSeconds:   DefaultComplexAITimeoutSeconds,
		AITimeoutCeilingSeconds:   DefaultAITimeoutCeilingSeconds,
	}

	// Load from JSON config file if specified
	if path := getEnv("SAGEQL_CONFIG", ""); path != "" {
		if err := loadJSON(path, cfg); err != nil {
			return nil, err
		}
	}

	// Environment overrides
	applyEnvOverrides(cfg)

	return cfg, nil
}

func loadJSON(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, cfg)
}

func applyEnvOverrides(cfg *Config) {
	if v := getEnv("SAGEQL_HOST", ""); v != "" {
		cfg.Host = v
	}
	if v := getEnv("SAGEQL_PORT", ""); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Port = p
		}
	}
	if v := getEnv("SAGEQL_ENV", ""); v != "" {
		cfg.Environment = v
	}
	if v := getEnv("SAGEQL_LOG_LEVEL", ""); v != "" {
		cfg.LogLevel = v
	}
	if v := getEnv("SAGEQL_CORS_ORIGINS", ""); v != "" {
		cfg.CORSOrigins = strings.Split(v, ",")
	}
	if v := getEnv("SAGEQL_WAREHOUSE_DRIVER", ""); v != "" {
		cfg.WarehouseDriver = v
	}
	if v := getEnv("SAGEQL_POSTGRES_DSN", ""); v != "" {
		cfg.PostgresDSN = v
	}
	if v := getEnv("SAGEQL_DUCKDB_PATH", ""); v != "" {
		cfg.DuckDBPath = v
	}
	if v := getEnv("GCP_PROJECT_ID", ""); v != "" {
		cfg.GCPProjectID = v
	}
	if v := getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""); v != "" {
		cfg.GoogleApplicationCredentials = v
	}
	if v := getEnv("SAGEQL_BIGQUERY_DATASET", ""); v != "" {
		cfg.BigQueryDataset = v
	}
	if v := getEnv("ANTHROPIC_API_KEY", ""); v != "" {
		cfg.AnthropicAPIKey = v
	}
	if v := getEnv("ANTHROPIC_BASE_URL", ""); v != "" {
		cfg.AnthropicBaseURL = v
	}
	if v := getEnv("SAGEQL_MODEL", ""); v != "" {
		cfg.Model = v
	}
	if v := getEnv("SAGEQL_POOL_MAX_CONNS", ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.PoolMaxConns = n
		}
	}
	if v := getEnv("SAGEQL_MAX_ROWS_CEILING", ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxRowsCeiling = n
		}
	}
	if v := getEnv("RATE_LIMIT_PER_MINUTE", ""); v != "" {
		if r, err := strconv.Atoi(v); err == nil {
			cfg.RateLimitPerMinute = r
		}
	}
	if v := getEnv("SAGEQL_ENABLE_SCHEMA_CHECKS", ""); v != "" {
		cfg.EnableSchemaChecks = v == "true" || v == "1"
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}
