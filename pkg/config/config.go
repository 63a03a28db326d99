package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv    string
	LogLevel  string
	LogFormat string
	UserID    string
	Timezone  string

	// Database
	DatabaseDriver string
	DatabaseURL    string
	SQLitePath     string

	// Redis
	RedisURL string

	// RabbitMQ
	RabbitMQURL string

	// Deadline resolution
	AnthropicAPIKey     string
	DeadlineAIModel     string
	DeadlineAITimeout   time.Duration
	DeadlineAIMaxTokens int
	BreakerFailures     int
	BreakerCooldown     time.Duration

	// Commitments
	MaxOverdueCommitments int
	TrustReportCacheTTL   time.Duration

	// Outbox
	OutboxPollInterval    time.Duration
	OutboxBatchSize       int
	OutboxMaxRetries      int
	OutboxRetentionDays   int
	OutboxCleanupInterval time.Duration

	// Servers
	HTTPAddr         string
	MCPAddr          string
	MCPAuthToken     string
	WorkerHealthAddr string

	location *time.Location
}

// Load reads configuration from the environment, after an optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:    getEnv("APP_ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
		UserID:    getEnv("VOUCH_USER_ID", "local"),
		Timezone:  getEnv("TIMEZONE", "Local"),

		DatabaseDriver: getEnv("DATABASE_DRIVER", ""),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		SQLitePath:     getEnv("SQLITE_PATH", ""),

		RedisURL:    getEnv("REDIS_URL", ""),
		RabbitMQURL: getEnv("RABBITMQ_URL", ""),

		AnthropicAPIKey:     getEnv("ANTHROPIC_API_KEY", ""),
		DeadlineAIModel:     getEnv("DEADLINE_AI_MODEL", "claude-3-haiku-20240307"),
		DeadlineAITimeout:   getDurationEnv("DEADLINE_AI_TIMEOUT", 5*time.Second),
		DeadlineAIMaxTokens: getIntEnv("DEADLINE_AI_MAX_TOKENS", 150),
		BreakerFailures:     getIntEnv("DEADLINE_AI_BREAKER_FAILURES", 3),
		BreakerCooldown:     getDurationEnv("DEADLINE_AI_BREAKER_COOLDOWN", 30*time.Second),

		MaxOverdueCommitments: getIntEnv("MAX_OVERDUE_COMMITMENTS", 3),
		TrustReportCacheTTL:   getDurationEnv("TRUST_REPORT_CACHE_TTL", time.Minute),

		OutboxPollInterval:    getDurationEnv("OUTBOX_POLL_INTERVAL", time.Second),
		OutboxBatchSize:       getIntEnv("OUTBOX_BATCH_SIZE", 100),
		OutboxMaxRetries:      getIntEnv("OUTBOX_MAX_RETRIES", 5),
		OutboxRetentionDays:   getIntEnv("OUTBOX_RETENTION_DAYS", 14),
		OutboxCleanupInterval: getDurationEnv("OUTBOX_CLEANUP_INTERVAL", 24*time.Hour),

		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		MCPAddr:          getEnv("MCP_ADDR", ":8090"),
		MCPAuthToken:     getEnv("MCP_AUTH_TOKEN", ""),
		WorkerHealthAddr: getEnv("WORKER_HEALTH_ADDR", ":8081"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late, and resolves the timezone.
func (c *Config) Validate() error {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	c.location = loc

	if c.MaxOverdueCommitments < 1 {
		return fmt.Errorf("MAX_OVERDUE_COMMITMENTS must be at least 1, got %d", c.MaxOverdueCommitments)
	}
	if c.DeadlineAITimeout <= 0 {
		return fmt.Errorf("DEADLINE_AI_TIMEOUT must be positive")
	}
	return nil
}

// Location is the zone calendar rules are evaluated in.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.Local
	}
	return c.location
}

// AIEnabled reports whether the deadline resolver may call the language model.
func (c *Config) AIEnabled() bool {
	return c.AnthropicAPIKey != ""
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
