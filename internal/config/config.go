package config

// Config holds all application configuration loaded from environment
// variables via github.com/caarlos0/env.
type Config struct {
	// Server configuration
	HTTPPort    int    `env:"HTTP_PORT" envDefault:"8000"`
	MetricsPort int    `env:"METRICS_PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"dev"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"ideas-engine"`

	// Redis configuration. EmbeddedStore swaps the external redis for an
	// in-process store, for local development and the on-device build.
	EmbeddedStore     bool   `env:"EMBEDDED_STORE" envDefault:"false"`
	RedisHost         string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort         string `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword     string `env:"REDIS_PASSWORD"`
	RedisDB           int    `env:"REDIS_DB" envDefault:"0"`
	RedisMaxRetries   int    `env:"REDIS_MAX_RETRIES" envDefault:"5"`
	RedisRetryDelayMs int    `env:"REDIS_RETRY_DELAY_MS" envDefault:"1000"`

	// Engine tuning (weights, thresholds, decay) comes from a YAML file.
	EngineConfigPath string `env:"ENGINE_CONFIG_PATH" envDefault:"config/engine.yaml"`
}
