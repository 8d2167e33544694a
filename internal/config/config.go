package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Fetcher  FetcherConfig
	Crawl    CrawlConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Host            string
	Port            string
	ShutdownTimeout time.Duration
}

type FetcherConfig struct {
	Workers      int
	Timeout      time.Duration
	MaxRetries   int
	RetryDelay   time.Duration
	RateLimitMin time.Duration
	RateLimitMax time.Duration
	UserAgent    string
}

type CrawlConfig struct {
	CategoryListURL string
	BaseURL         string
	Schedule        string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
}

type RedisConfig struct {
	Addr   string // empty disables event publishing
	Stream string
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnvOrDefault("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvOrDefault("SERVER_PORT", "8080"),
			ShutdownTimeout: getDurationOrDefault("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Fetcher: FetcherConfig{
			Workers:      getIntOrDefault("FETCH_WORKERS", 4),
			Timeout:      getDurationOrDefault("FETCH_TIMEOUT", 30*time.Second),
			MaxRetries:   getIntOrDefault("FETCH_MAX_RETRIES", 2),
			RetryDelay:   getDurationOrDefault("FETCH_RETRY_DELAY", 3*time.Second),
			RateLimitMin: getDurationOrDefault("FETCH_RATE_LIMIT_MIN", 500*time.Millisecond),
			RateLimitMax: getDurationOrDefault("FETCH_RATE_LIMIT_MAX", 2*time.Second),
			UserAgent: getEnvOrDefault("FETCH_USER_AGENT",
				"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
		},
		Crawl: CrawlConfig{
			CategoryListURL: getEnvOrDefault("CRAWL_CATEGORY_LIST_URL",
				"https://shopping.naver.com/api/modules/gnb/category"),
			BaseURL: getEnvOrDefault("CRAWL_BASE_URL",
				"https://shopping.naver.com/category"),
			// Original operation ran at 00/06/12/18 local time.
			Schedule: getEnvOrDefault("CRAWL_SCHEDULE", "0 0,6,12,18 * * *"),
		},
		Database: DatabaseConfig{
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     getIntOrDefault("DB_PORT", 5432),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: getEnvOrDefault("DB_PASSWORD", ""),
			DBName:   getEnvOrDefault("DB_NAME", "infomore"),
			SSLMode:  getEnvOrDefault("DB_SSL_MODE", "disable"),
			MaxConns: getIntOrDefault("DB_MAX_CONNS", 4),
		},
		Redis: RedisConfig{
			Addr:   getEnvOrDefault("REDIS_ADDR", ""),
			Stream: getEnvOrDefault("REDIS_STREAM", "stream:catalog_events"),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Fetcher.Workers < 1 {
		return fmt.Errorf("FETCH_WORKERS must be at least 1")
	}

	if c.Fetcher.RateLimitMin > c.Fetcher.RateLimitMax {
		return fmt.Errorf("FETCH_RATE_LIMIT_MIN cannot be greater than FETCH_RATE_LIMIT_MAX")
	}

	if c.Crawl.CategoryListURL == "" || c.Crawl.BaseURL == "" {
		return fmt.Errorf("CRAWL_CATEGORY_LIST_URL and CRAWL_BASE_URL are required")
	}

	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
