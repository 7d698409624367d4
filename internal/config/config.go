package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration, loaded from environment
// variables with optional .env support for local development.
type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	DatabaseURL string
	RedisURL    string

	Casdoor    CasdoorConfig
	Gemini     GeminiConfig
	Kafka      KafkaConfig
	Generation GenerationConfig
}

type CasdoorConfig struct {
	Endpoint     string
	ClientID     string
	ClientSecret string
	Cert         string
	Organization string
	Application  string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// GenerationConfig tunes the generation pipeline. Defaults match the
// model's reliable output window and the provider's rate limits.
type GenerationConfig struct {
	// MaxBatchSize caps questions per model call.
	MaxBatchSize int
	// Concurrency bounds parallel model calls per request.
	Concurrency int
	// MaxRetries is per-batch retries on retryable model errors.
	MaxRetries int
	// BankContextLimit caps reference questions injected into prompts.
	BankContextLimit int
}

// LoadConfig reads configuration from the environment. A missing .env
// file is not an error; explicit env vars always win.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		Casdoor: CasdoorConfig{
			Endpoint:     os.Getenv("CASDOOR_ENDPOINT"),
			ClientID:     os.Getenv("CASDOOR_CLIENT_ID"),
			ClientSecret: os.Getenv("CASDOOR_CLIENT_SECRET"),
			Cert:         os.Getenv("CASDOOR_CERT"),
			Organization: os.Getenv("CASDOOR_ORGANIZATION"),
			Application:  os.Getenv("CASDOOR_APPLICATION"),
		},
		Gemini: GeminiConfig{
			APIKey: os.Getenv("GEMINI_API_KEY"),
			Model:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		},
		Kafka: KafkaConfig{
			Brokers: splitAndTrim(os.Getenv("KAFKA_BROKERS")),
			Topic:   getEnv("KAFKA_TOPIC_QUESTIONS", "questions.generated"),
		},
		Generation: GenerationConfig{
			MaxBatchSize:     getEnvInt("GENERATION_MAX_BATCH_SIZE", 3),
			Concurrency:      getEnvInt("GENERATION_CONCURRENCY", 3),
			MaxRetries:       getEnvInt("GENERATION_MAX_RETRIES", 2),
			BankContextLimit: getEnvInt("GENERATION_BANK_CONTEXT_LIMIT", 10),
		},
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.Gemini.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if cfg.Generation.MaxBatchSize < 1 {
		return nil, fmt.Errorf("GENERATION_MAX_BATCH_SIZE must be at least 1")
	}
	if cfg.Generation.Concurrency < 1 {
		return nil, fmt.Errorf("GENERATION_CONCURRENCY must be at least 1")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
