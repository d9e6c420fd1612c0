package config

const (
	DefaultHost        = "0.0.0.0"
	DefaultPort        = 8000
	DefaultEnvironment = "development"
	DefaultAPIPrefix   = "/api/v1"
	DefaultLogLevel    = "info"

	DefaultRateLimitPerMinute = 60

	DefaultWarehouseDriver           = "postgres"
	DefaultPoolMaxConns              = 10
	DefaultPoolAcquireTimeoutSeconds = 5

	DefaultMaxRows               = 100
	DefaultMaxRowsCeiling        = 1000
	DefaultTimeoutSeconds        = 20.0
	DefaultTimeoutCeilingSeconds = 120.0

	DefaultMaxQuestionLength     = 500
	DefaultSchemaCacheTTLSeconds = 300

	DefaultSimpleAITimeoutSeconds   = 10
	DefaultModerateAITimeoutSeconds = 20
	DefaultComplexAITimeoutSeconds  = 45
	DefaultAITimeoutCeilingSeconds  = 60
)

var DefaultCORSOrigins = []string{
	"http://localhost:3000",
	"http://localhost:8080",
}
