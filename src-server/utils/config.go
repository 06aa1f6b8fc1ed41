package utils

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// LogLevel backs the default slog handler; NewConfig applies LOG_LEVEL to it
// before anything else is logged.
var LogLevel = new(slog.LevelVar)

type envConfig struct {
	Port                     string        `env:"PORT" envDefault:"8080"`
	DatabaseURL              string        `env:"DATABASE_URL" envDefault:"./checkin.db"`
	RedisURL                 string        `env:"REDIS_URL"`
	SessionTTL               time.Duration `env:"SESSION_TTL" envDefault:"2h"`
	AdminEmail               string        `env:"ADMIN_EMAIL"`
	AdminPassword            string        `env:"ADMIN_PASSWORD"`
	Dev                      bool          `env:"DEV" envDefault:"false"`
	MetricCollectionInterval time.Duration `env:"METRIC_COLLECTION_INTERVAL" envDefault:"15s"`
	LogLevel                 slog.Level    `env:"LOG_LEVEL" envDefault:"INFO"`
}

type Config struct {
	port string

	databaseURL string
	redisURL    string
	sessionTTL  time.Duration

	adminEmail    string
	adminPassword string

	dev                      bool
	metricCollectionInterval time.Duration
	logLevel                 slog.Level
}

func NewConfig() (*Config, error) {
	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("NewConfig: %w", err)
	}

	switch {
	case raw.SessionTTL <= 0:
		return nil, fmt.Errorf("NewConfig: SESSION_TTL must be positive, got %s", raw.SessionTTL)
	case raw.MetricCollectionInterval <= 0:
		return nil, fmt.Errorf("NewConfig: METRIC_COLLECTION_INTERVAL must be positive, got %s", raw.MetricCollectionInterval)
	case raw.AdminEmail != "" && raw.AdminPassword == "":
		return nil, fmt.Errorf("NewConfig: ADMIN_PASSWORD is required when ADMIN_EMAIL is set")
	}

	LogLevel.Set(raw.LogLevel)

	cfg := &Config{
		port:                     raw.Port,
		databaseURL:              raw.DatabaseURL,
		redisURL:                 raw.RedisURL,
		sessionTTL:               raw.SessionTTL,
		adminEmail:               strings.TrimSpace(raw.AdminEmail),
		adminPassword:            raw.AdminPassword,
		dev:                      raw.Dev,
		metricCollectionInterval: raw.MetricCollectionInterval,
		logLevel:                 raw.LogLevel,
	}
	slog.Debug("env",
		"PORT", cfg.port,
		"DATABASE_URL", redact(cfg.databaseURL),
		"REDIS_URL", redact(cfg.redisURL),
		"SESSION_TTL", cfg.sessionTTL,
		"ADMIN_EMAIL", cfg.adminEmail,
		"DEV", cfg.dev,
	)
	return cfg, nil
}

// keeps the scheme so logs still show which backend was picked
func redact(url string) string {
	if i := strings.Index(url, "://"); i >= 0 {
		return url[:i+3] + "..."
	}
	return url
}

// Get PORT env, default to 8080
func (c *Config) GetPort() string {
	return c.port
}

// Get DATABASE_URL env; a postgres:// URL selects PostgreSQL, anything else
// is a SQLite file path
func (c *Config) GetDatabaseURL() string {
	return c.databaseURL
}

// Get REDIS_URL env; empty keeps sessions in the database
func (c *Config) GetRedisURL() string {
	return c.redisURL
}

// Get SESSION_TTL env, default to 2h of inactivity
func (c *Config) GetSessionTTL() time.Duration {
	return c.sessionTTL
}

// Get ADMIN_EMAIL env
func (c *Config) GetAdminEmail() string {
	return c.adminEmail
}

// Get ADMIN_PASSWORD env
func (c *Config) GetAdminPassword() string {
	return c.adminPassword
}

// Get DEV env
func (c *Config) GetDev() bool {
	return c.dev
}

// Get METRIC_COLLECTION_INTERVAL env
func (c *Config) GetMetricCollectionInterval() time.Duration {
	return c.metricCollectionInterval
}

// Get LOG_LEVEL env
func (c *Config) GetLogLevel() slog.Level {
	return c.logLevel
}
