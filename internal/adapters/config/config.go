package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"cadence/pkg/errors"
)

type Config struct {
	App           AppConfig
	Postgres      PostgresConfig
	ClickHouse    ClickHouseConfig
	Redis         RedisConfig
	Kafka         KafkaConfig
	Model         ModelConfig
	Fallback      FallbackConfig
	HTTP          HTTPConfig
	ErrorTracking ErrorTrackingConfig
	Workers       WorkerConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"cadence"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Version  string `envconfig:"APP_VERSION" default:"dev"`
}

type PostgresConfig struct {
	Host     string `envconfig:"POSTGRES_HOST" required:"true"`
	Port     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER" required:"true"`
	Password string `envconfig:"POSTGRES_PASSWORD" required:"true"`
	Database string `envconfig:"POSTGRES_DB" required:"true"`
	SSLMode  string `envconfig:"POSTGRES_SSL_MODE" default:"disable"`
	MaxConns int    `envconfig:"POSTGRES_MAX_CONNS" default:"25"`
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

type ClickHouseConfig struct {
	Host     string `envconfig:"CLICKHOUSE_HOST" required:"true"`
	Port     int    `envconfig:"CLICKHOUSE_PORT" default:"9000"`
	User     string `envconfig:"CLICKHOUSE_USER" default:"default"`
	Password string `envconfig:"CLICKHOUSE_PASSWORD"`
	Database string `envconfig:"CLICKHOUSE_DB" default:"cadence"`
}

type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" required:"true"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type KafkaConfig struct {
	Brokers []string `envconfig:"KAFKA_BROKERS" required:"true"`
	GroupID string   `envconfig:"KAFKA_GROUP_ID" default:"cadence"`
}

// ModelConfig controls the clustering model lifecycle.
// The cluster count is fixed at 3 by design and deliberately not configurable.
type ModelConfig struct {
	ArtifactPath       string        `envconfig:"MODEL_ARTIFACT_PATH" default:"data/cluster_model.json"`
	Seed               int64         `envconfig:"MODEL_TRAINING_SEED" default:"42"`
	MinTrainingSamples int           `envconfig:"MODEL_MIN_TRAINING_SAMPLES" default:"20"`
	BatchChunkSize     int           `envconfig:"CLASSIFIER_BATCH_CHUNK_SIZE" default:"500"`
	RetrainThreshold   int           `envconfig:"MODEL_RETRAIN_CORRECTION_THRESHOLD" default:"10"`
	CacheTTL           time.Duration `envconfig:"CLASSIFIER_CACHE_TTL" default:"168h"`
}

// FallbackConfig controls the era-based heuristic used when no trained
// model is available.
type FallbackConfig struct {
	CutoverDate string  `envconfig:"FALLBACK_CUTOVER_DATE" default:"2018-01-01"`
	Confidence  float64 `envconfig:"FALLBACK_CONFIDENCE" default:"0.4"`
}

// CutoverTime parses the configured cutover date.
func (c FallbackConfig) CutoverTime() (time.Time, error) {
	t, err := time.Parse("2006-01-02", c.CutoverDate)
	if err != nil {
		return time.Time{}, errors.Wrap(err, "invalid fallback cutover date")
	}
	return t, nil
}

type HTTPConfig struct {
	Port int `envconfig:"HTTP_PORT" default:"8080"`
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"true"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

// WorkerConfig contains intervals for all background workers
type WorkerConfig struct {
	ReclassifyInterval     time.Duration `envconfig:"WORKER_RECLASSIFY_INTERVAL" default:"5m"`
	ReclassifyEnabled      bool          `envconfig:"WORKER_RECLASSIFY_ENABLED" default:"true"`
	RetrainTriggerInterval time.Duration `envconfig:"WORKER_RETRAIN_TRIGGER_INTERVAL" default:"15m"`
	RetrainTriggerEnabled  bool          `envconfig:"WORKER_RETRAIN_TRIGGER_ENABLED" default:"true"`
}

// Load reads configuration from environment variables
// It first tries to load .env file (useful for local development)
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not exists)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	return &cfg, nil
}
