// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// StoreConfig provides settings for the remote task store client.
type StoreConfig interface {
	GetStoreBaseURL() string
	GetStoreAPIKey() string
	GetStoreTimeout() time.Duration
}

// InterpreterConfig provides settings for the natural-language command interpreter.
type InterpreterConfig interface {
	GetGeminiAPIKey() string
	GetGeminiModel() string
	IsInterpreterEnabled() bool
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// NotifyConfig provides settings for the staff text notification gateway.
type NotifyConfig interface {
	GetNotifyGatewayURL() string
	GetNotifyGatewayKey() string
	IsNotifyEnabled() bool
}

// ViewConfig provides the polling cadence for the observer views.
type ViewConfig interface {
	GetWorkerPollInterval() time.Duration
	GetBoardPollInterval() time.Duration
	GetProductivityPollInterval() time.Duration
	GetStaffCacheTTL() time.Duration
}

// SchedulerConfig provides settings for the asynq scheduler.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetRefreshSweepInterval() time.Duration
}

// DatabaseConfig provides database settings for the reference store server.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                      string
	HTTPAddr                 string
	StoreBaseURL             string
	StoreAPIKey              string
	StoreTimeout             time.Duration
	GeminiAPIKey             string
	GeminiModel              string
	DefaultPropertyID        string
	CORSAllowAll             bool
	CORSOrigins              []string
	CORSAllowCreds           bool
	NotifyGatewayURL         string
	NotifyGatewayKey         string
	WorkerPollInterval       time.Duration
	BoardPollInterval        time.Duration
	ProductivityPollInterval time.Duration
	StaffCacheTTL            time.Duration
	RedisURL                 string
	RedisTLSInsecure         bool
	AsynqQueueName           string
	AsynqConcurrency         int
	RefreshSweepInterval     time.Duration
	DatabaseURL              string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// StoreConfig implementation
func (c *Config) GetStoreBaseURL() string        { return c.StoreBaseURL }
func (c *Config) GetStoreAPIKey() string         { return c.StoreAPIKey }
func (c *Config) GetStoreTimeout() time.Duration { return c.StoreTimeout }

// InterpreterConfig implementation
func (c *Config) GetGeminiAPIKey() string    { return c.GeminiAPIKey }
func (c *Config) GetGeminiModel() string     { return c.GeminiModel }
func (c *Config) IsInterpreterEnabled() bool { return c.GeminiAPIKey != "" }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// NotifyConfig implementation
func (c *Config) GetNotifyGatewayURL() string { return c.NotifyGatewayURL }
func (c *Config) GetNotifyGatewayKey() string { return c.NotifyGatewayKey }
func (c *Config) IsNotifyEnabled() bool       { return c.NotifyGatewayURL != "" }

// ViewConfig implementation
func (c *Config) GetWorkerPollInterval() time.Duration       { return c.WorkerPollInterval }
func (c *Config) GetBoardPollInterval() time.Duration        { return c.BoardPollInterval }
func (c *Config) GetProductivityPollInterval() time.Duration { return c.ProductivityPollInterval }
func (c *Config) GetStaffCacheTTL() time.Duration            { return c.StaffCacheTTL }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string                    { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool              { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string              { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int               { return c.AsynqConcurrency }
func (c *Config) GetRefreshSweepInterval() time.Duration { return c.RefreshSweepInterval }

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                      getEnv("APP_ENV", "development"),
		HTTPAddr:                 getEnv("HTTP_ADDR", ":8080"),
		StoreBaseURL:             getEnv("STORE_BASE_URL", ""),
		StoreAPIKey:              getEnv("STORE_API_KEY", ""),
		StoreTimeout:             mustDuration(getEnv("STORE_TIMEOUT", "10s")),
		GeminiAPIKey:             getEnv("GEMINI_API_KEY", ""),
		GeminiModel:              getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		DefaultPropertyID:        getEnv("DEFAULT_PROPERTY_ID", "101"),
		CORSAllowAll:             corsAllowAll,
		CORSOrigins:              corsOrigins,
		CORSAllowCreds:           strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		NotifyGatewayURL:         getEnv("NOTIFY_GATEWAY_URL", ""),
		NotifyGatewayKey:         getEnv("NOTIFY_GATEWAY_KEY", ""),
		WorkerPollInterval:       mustDuration(getEnv("WORKER_POLL_INTERVAL", "15s")),
		BoardPollInterval:        mustDuration(getEnv("BOARD_POLL_INTERVAL", "30s")),
		ProductivityPollInterval: mustDuration(getEnv("PRODUCTIVITY_POLL_INTERVAL", "60s")),
		StaffCacheTTL:            mustDuration(getEnv("STAFF_CACHE_TTL", "5m")),
		RedisURL:                 getEnv("REDIS_URL", ""),
		RedisTLSInsecure:         strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:           getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:         mustInt(getEnv("ASYNQ_CONCURRENCY", "10")),
		RefreshSweepInterval:     mustDuration(getEnv("REFRESH_SWEEP_INTERVAL", "5m")),
		DatabaseURL:              getEnv("DATABASE_URL", ""),
	}

	if cfg.StoreBaseURL == "" {
		return nil, fmt.Errorf("STORE_BASE_URL is required")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}

	return cfg, nil
}

// LoadStore reads the configuration subset needed by the reference store server.
func LoadStore() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:         getEnv("APP_ENV", "development"),
		HTTPAddr:    getEnv("STORED_HTTP_ADDR", ":8081"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
