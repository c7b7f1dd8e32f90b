package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	Port     int
	Env      string
	LogLevel string

	// CORS
	AllowedOrigins []string

	// Admin
	AdminToken string

	// Leaderboard feed
	FeedURL           string
	FeedVersion       string
	FeedTimeout       time.Duration
	FeedRatePerSecond float64

	// Database URLs
	PostgresURL   string
	ClickHouseURL string
	RedisURL      string

	// Archive worker pool
	WorkerCount   int
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration

	// Ranking
	SchedulePath   string
	UpdateInterval time.Duration
}

// Load loads configuration from environment variables.
// It returns an error if critical configuration is missing.
func Load() (*Config, error) {
	cfg := &Config{
		Port:     getEnvInt("PORT", 8080),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		AdminToken: getEnv("ADMIN_TOKEN", ""),

		FeedVersion:       getEnv("FEED_VERSION", "28.3"),
		FeedTimeout:       getEnvDuration("FEED_TIMEOUT", 60*time.Second),
		FeedRatePerSecond: getEnvFloat("FEED_RATE_PER_SECOND", 2),

		ClickHouseURL: getEnv("CLICKHOUSE_URL", ""),

		WorkerCount:   getEnvInt("WORKER_COUNT", 2),
		QueueSize:     getEnvInt("QUEUE_SIZE", 50000),
		BatchSize:     getEnvInt("BATCH_SIZE", 1000),
		FlushInterval: getEnvDuration("FLUSH_INTERVAL", 1*time.Second),

		SchedulePath:   getEnv("SCHEDULE_PATH", ""),
		UpdateInterval: getEnvDuration("UPDATE_INTERVAL", 24*time.Hour),
	}

	// CORS
	origins := getEnv("ALLOWED_ORIGINS", "http://localhost:3000")
	rawOrigins := strings.Split(origins, ",")
	for _, o := range rawOrigins {
		if trimmed := strings.TrimSpace(o); trimmed != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
		}
	}

	// Critical configuration - fail if missing
	var err error
	if cfg.FeedURL, err = getEnvRequired("FEED_URL"); err != nil {
		return nil, err
	}
	if cfg.PostgresURL, err = getEnvRequired("POSTGRES_URL"); err != nil {
		return nil, err
	}
	if cfg.RedisURL, err = getEnvRequired("REDIS_URL"); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ArchiveEnabled reports whether raw results are archived in ClickHouse.
func (c *Config) ArchiveEnabled() bool {
	return c.ClickHouseURL != ""
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvRequired(key string) (string, error) {
	if value := os.Getenv(key); value != "" {
		return value, nil
	}
	return "", fmt.Errorf("missing required environment variable: %s", key)
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
