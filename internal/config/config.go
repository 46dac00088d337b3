package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	chatfield "github.com/chatfield/chatfield-go"
	pkgRetry "github.com/chatfield/chatfield-go/internal/pkg/retry"
)

// Checkpoint store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
	StoreMongo    = "mongo"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr string `env:"SERVER_ADDR" envDefault:":8080"`

	// Interview definition, loaded from a JSON file. Empty selects the
	// built-in demo interview.
	InterviewFile string `env:"INTERVIEW_FILE"`
	Interview     *chatfield.Interview

	// Chat model configuration
	ModelCfg ModelConfig `envPrefix:"MODEL_"`

	// Checkpoint store configuration
	StoreCfg StoreConfig `envPrefix:"STORE_"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Request validation limits
	ValidationCfg ValidationConfig `envPrefix:"VALIDATION_"`

	// Telegram bot configuration (used by the bot binary)
	TelegramCfg TelegramConfig `envPrefix:"TELEGRAM_"`

	// Environment (set from flag, not from env var)
	Environment string
}

// ModelConfig selects and tunes the chat model.
type ModelConfig struct {
	ID          string  `env:"ID" envDefault:"openai:gpt-4o"`
	APIKey      string  `env:"API_KEY"`
	BaseURL     string  `env:"BASE_URL"`
	Temperature float64 `env:"TEMPERATURE" envDefault:"0"`
	// EndpointSecurity: disabled, warn or strict.
	EndpointSecurity string               `env:"ENDPOINT_SECURITY" envDefault:"disabled"`
	Retry            pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

// StoreConfig selects the checkpoint backend and its connection knobs.
type StoreConfig struct {
	Backend string `env:"BACKEND" envDefault:"memory"`
	// TTL expires idle threads in the memory and redis backends; zero
	// keeps them forever.
	TTL time.Duration `env:"TTL" envDefault:"0"`

	// Postgres
	DatabaseURL         string        `env:"DATABASE_URL"`
	DBMaxConns          int           `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns          int           `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`

	// Redis
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Mongo
	MongoURI      string `env:"MONGO_URI"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"chatfield"`
}

// ValidationConfig holds inbound request limits.
type ValidationConfig struct {
	MaxMessageLength  int `env:"MAX_MESSAGE_LENGTH" envDefault:"4000"`
	MaxThreadIDLength int `env:"MAX_THREAD_ID_LENGTH" envDefault:"128"`
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken           string `env:"BOT_TOKEN"`
	UpdateTimeout      int    `env:"UPDATE_TIMEOUT" envDefault:"30"`
	RateLimitPerMinute int    `env:"RATE_LIMIT_PER_MINUTE" envDefault:"20"`
	RateLimitBurst     int    `env:"RATE_LIMIT_BURST" envDefault:"5"`
	ShutdownTimeout    int    `env:"SHUTDOWN_TIMEOUT" envDefault:"30"` // seconds
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = *envFlag

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if err := loadInterview(cfg); err != nil {
		return nil, fmt.Errorf("load interview: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var problems []string

	switch cfg.StoreCfg.Backend {
	case StoreMemory:
	case StorePostgres:
		if cfg.StoreCfg.DatabaseURL == "" {
			problems = append(problems, "STORE_DATABASE_URL is required for the postgres backend")
		}
		if cfg.StoreCfg.DBMaxConns < 1 || cfg.StoreCfg.DBMaxConns > 200 {
			problems = append(problems, fmt.Sprintf("STORE_DB_MAX_CONNS must be between 1 and 200, got %d", cfg.StoreCfg.DBMaxConns))
		}
		if cfg.StoreCfg.DBMinConns < 0 || cfg.StoreCfg.DBMinConns > cfg.StoreCfg.DBMaxConns {
			problems = append(problems, fmt.Sprintf("STORE_DB_MIN_CONNS must be between 0 and STORE_DB_MAX_CONNS(%d), got %d", cfg.StoreCfg.DBMaxConns, cfg.StoreCfg.DBMinConns))
		}
	case StoreRedis:
		if cfg.StoreCfg.RedisAddr == "" {
			problems = append(problems, "STORE_REDIS_ADDR is required for the redis backend")
		}
	case StoreMongo:
		if cfg.StoreCfg.MongoURI == "" {
			problems = append(problems, "STORE_MONGO_URI is required for the mongo backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("STORE_BACKEND must be memory, postgres, redis or mongo, got %q", cfg.StoreCfg.Backend))
	}

	switch cfg.ModelCfg.EndpointSecurity {
	case "disabled", "warn", "strict":
	default:
		problems = append(problems, fmt.Sprintf("MODEL_ENDPOINT_SECURITY must be disabled, warn or strict, got %q", cfg.ModelCfg.EndpointSecurity))
	}

	if cfg.ModelCfg.Temperature < 0 || cfg.ModelCfg.Temperature > 2 {
		problems = append(problems, fmt.Sprintf("MODEL_TEMPERATURE must be between 0 and 2, got %g", cfg.ModelCfg.Temperature))
	}

	if cfg.ValidationCfg.MaxMessageLength < 1 {
		problems = append(problems, fmt.Sprintf("VALIDATION_MAX_MESSAGE_LENGTH must be positive, got %d", cfg.ValidationCfg.MaxMessageLength))
	}
	if cfg.ValidationCfg.MaxThreadIDLength < 1 {
		problems = append(problems, fmt.Sprintf("VALIDATION_MAX_THREAD_ID_LENGTH must be positive, got %d", cfg.ValidationCfg.MaxThreadIDLength))
	}

	// Telegram knobs only matter when a bot token is configured; the
	// bot binary checks for the token itself.
	if cfg.TelegramCfg.BotToken != "" {
		if cfg.TelegramCfg.RateLimitPerMinute < 1 || cfg.TelegramCfg.RateLimitPerMinute > 60 {
			problems = append(problems, fmt.Sprintf("TELEGRAM_RATE_LIMIT_PER_MINUTE must be between 1 and 60, got %d", cfg.TelegramCfg.RateLimitPerMinute))
		}
		if cfg.TelegramCfg.RateLimitBurst < 1 || cfg.TelegramCfg.RateLimitBurst > 20 {
			problems = append(problems, fmt.Sprintf("TELEGRAM_RATE_LIMIT_BURST must be between 1 and 20, got %d", cfg.TelegramCfg.RateLimitBurst))
		}
		if cfg.TelegramCfg.ShutdownTimeout < 1 || cfg.TelegramCfg.ShutdownTimeout > 300 {
			problems = append(problems, fmt.Sprintf("TELEGRAM_SHUTDOWN_TIMEOUT must be between 1 and 300 seconds, got %d", cfg.TelegramCfg.ShutdownTimeout))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(problems, "\n  - "))
	}

	return nil
}

// loadInterview fills cfg.Interview from the configured JSON file, or
// the built-in demo when none is configured.
func loadInterview(cfg *Config) error {
	if cfg.InterviewFile == "" {
		cfg.Interview = defaultInterview()
		return nil
	}

	data, err := os.ReadFile(cfg.InterviewFile)
	if err != nil {
		return fmt.Errorf("read interview file: %w", err)
	}

	iv := &chatfield.Interview{}
	if err := json.Unmarshal(data, iv); err != nil {
		return fmt.Errorf("parse interview file %s: %w", cfg.InterviewFile, err)
	}
	if len(iv.Fields) == 0 {
		return fmt.Errorf("interview file %s declares no fields", cfg.InterviewFile)
	}
	for _, f := range iv.Fields {
		if f.Name == "" {
			return fmt.Errorf("interview file %s: field with empty name", cfg.InterviewFile)
		}
		if f.Desc == "" {
			f.Desc = f.Name
		}
		if f.Specs.Conclude {
			f.Specs.Confidential = true
		}
		for _, c := range f.Casts {
			if err := c.Validate(); err != nil {
				return fmt.Errorf("interview file %s: field %q: %w", cfg.InterviewFile, f.Name, err)
			}
		}
	}

	cfg.Interview = iv
	return nil
}

// defaultInterview is the demo definition served when no interview
// file is configured.
func defaultInterview() *chatfield.Interview {
	return chatfield.New().
		Type("Product Feedback").
		Desc("Feedback about your experience with the product").
		Alice().Type("Support Agent").Trait("friendly and concise").
		Bob().Type("Customer").
		Field("product").Desc("Which product the feedback is about").
		Field("feedback").Desc("The feedback itself").
		Must("specific enough to act on").
		Field("rating").Desc("Overall satisfaction from 1 to 5").
		AsInt().
		Must("a number between 1 and 5").
		Field("churn_risk").Desc("Signs the customer may stop using the product").
		Confidential().
		Field("sentiment").Desc("Overall sentiment of the conversation").
		Conclude().
		AsOne("label", "positive", "neutral", "negative").
		MustBuild()
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
