package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Config holds all configuration for the application.
type Config struct {
	AppEnv                string        `validate:"required,oneof=development production test"`
	DBPath                string        `validate:"required"`
	DBDriver              string        `validate:"required"`
	RedisAddr             string        `validate:"omitempty,hostname_port"`
	GRPCPort              int           `validate:"min=1,max=65535"`
	GRPCReflectionEnabled bool
	MetricsPort           int           `validate:"min=0,max=65535"`
	DataPath              string        `validate:"omitempty,file"`
	ReimportOnStart       bool
	JoinMode              string        `validate:"oneof=key positional"`
	DeltaFormula          string        `validate:"oneof=literal percent"`
	CacheTTL              time.Duration `validate:"min=0"`
}

// LoadFromEnv loads configuration from environment variables. Unparseable
// numbers and booleans fall back to their defaults.
func LoadFromEnv() *Config {
	return &Config{
		AppEnv:                getEnv("APP_ENV", "development"),
		DBPath:                getEnv("DB_PATH", "./data/labor.db"),
		DBDriver:              getEnv("DB_DRIVER", "sqlite3"),
		RedisAddr:             getEnvAllowEmpty("REDIS_ADDR", "localhost:6379"),
		GRPCPort:              getEnvInt("GRPC_PORT", 50051),
		GRPCReflectionEnabled: getEnvBool("GRPC_REFLECTION_ENABLED", false),
		MetricsPort:           getEnvInt("METRICS_PORT", 9090),
		DataPath:              getEnv("DATA_PATH", ""),
		ReimportOnStart:       getEnvBool("REIMPORT_ON_START", false),
		JoinMode:              getEnv("JOIN_MODE", "key"),
		DeltaFormula:          getEnv("DELTA_FORMULA", "literal"),
		CacheTTL:              getEnvDuration("CACHE_TTL", 10*time.Minute),
	}
}

// Validate checks every field against its constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// NewLogger creates a new Zap logger based on the config.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	if cfg.AppEnv == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvAllowEmpty keeps an explicitly empty value, which disables the
// feature it configures.
func getEnvAllowEmpty(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return d
}
