// Package config loads service configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full service configuration.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Logging    LoggingConfig
	Security   SecurityConfig
	Compliance ComplianceConfig
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	Environment  string
}

// DatabaseConfig configures the postgres connection.
type DatabaseConfig struct {
	Host           string
	Port           int
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MaxConnections int
	MigrationsPath string
}

// RedisConfig configures the rate limiter backend.
type RedisConfig struct {
	URL     string
	Enabled bool
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level  string
	Format string
}

// SecurityConfig holds the shared token secret and rate limits.
type SecurityConfig struct {
	TokenSecret       string
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// ComplianceConfig holds the tunables of the compliance core itself.
type ComplianceConfig struct {
	// DefaultRulePack names the pack tenants are seeded from when no pack is
	// given explicitly ("eu" or "de").
	DefaultRulePack string
	// StatsTypeHorizonDays bounds the violationsByType aggregation; it is a
	// required, surfaced parameter rather than a silent default.
	StatsTypeHorizonDays int
	// MaxRangeDays caps check and report period spans.
	MaxRangeDays int
	// ReportDownloadTTL bounds report download URLs.
	ReportDownloadTTL time.Duration
	// ReportBaseURL prefixes generated download URLs.
	ReportBaseURL string
}

// Load reads configuration from the environment. A .env file is honored when
// present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:  getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			Environment:  getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnvInt("DB_PORT", 5432),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", ""),
			DBName:         getEnv("DB_NAME", "shiftwise"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			MaxConnections: getEnvInt("DB_MAX_CONNECTIONS", 20),
			MigrationsPath: getEnv("DB_MIGRATIONS_PATH", "./migrations"),
		},
		Redis: RedisConfig{
			URL:     getEnv("REDIS_URL", "redis://localhost:6379/0"),
			Enabled: getEnvBool("RATE_LIMIT_ENABLED", false),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Security: SecurityConfig{
			TokenSecret:       getEnv("TOKEN_SECRET", "dev-secret-change-in-production"),
			RateLimitRequests: getEnvInt("RATE_LIMIT_REQUESTS", 30),
			RateLimitWindow:   getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
		Compliance: ComplianceConfig{
			DefaultRulePack:      getEnv("DEFAULT_RULE_PACK", "eu"),
			StatsTypeHorizonDays: getEnvInt("STATS_TYPE_HORIZON_DAYS", 30),
			MaxRangeDays:         getEnvInt("COMPLIANCE_MAX_RANGE_DAYS", 366),
			ReportDownloadTTL:    getEnvDuration("REPORT_DOWNLOAD_TTL", time.Hour),
			ReportBaseURL:        getEnv("REPORT_BASE_URL", "http://localhost:8080"),
		},
	}

	return cfg, cfg.Validate()
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Database.Host == "" || c.Database.User == "" || c.Database.DBName == "" {
		return fmt.Errorf("database host, user and name are required")
	}
	if c.Compliance.StatsTypeHorizonDays <= 0 {
		return fmt.Errorf("STATS_TYPE_HORIZON_DAYS must be positive")
	}
	if c.Compliance.MaxRangeDays <= 0 {
		return fmt.Errorf("COMPLIANCE_MAX_RANGE_DAYS must be positive")
	}
	if c.IsProduction() && c.Security.TokenSecret == "dev-secret-change-in-production" {
		return fmt.Errorf("TOKEN_SECRET must be set in production")
	}
	return nil
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// DatabaseURL returns the postgres connection string.
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
