// Package config loads application configuration from environment variables
// and applies guardrails to values that have operational limits.
package config

import (
	"fmt"
	"log/slog"
	"net/url"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	// DefaultPort is the default HTTP server port.
	DefaultPort = "8080"

	// DueScanMinIntervalSeconds is the floor for the scan interval; values
	// below it are raised and logged.
	DueScanMinIntervalSeconds = 5

	// DueScanMaxBatchSize is the ceiling for a single claim batch; values
	// above it are clamped and logged.
	DueScanMaxBatchSize = 1000
)

// Config is the full application configuration, shared by the API and the
// worker process. The database URL is not here: it is a required CLI flag
// (backed by DATABASE_URL) owned by the entrypoint.
type Config struct {
	RabbitMQ RabbitMQConfig `envPrefix:"RABBITMQ_"`
	DueScan  DueScanConfig  `envPrefix:"DUE_SCAN_"`
	CORS     CORSConfig     `envPrefix:"CORS_"`
}

// RabbitMQConfig holds broker connection settings.
type RabbitMQConfig struct {
	Host     string `env:"HOST"     envDefault:"localhost"`
	Port     int    `env:"PORT"     envDefault:"5672"`
	Username string `env:"USERNAME" envDefault:"guest"`
	Password string `env:"PASSWORD" envDefault:"guest"`
}

// URL renders the AMQP connection URL. Credentials are percent-encoded so
// passwords containing reserved characters stay parseable.
func (c RabbitMQConfig) URL() string {
	u := url.URL{
		Scheme: "amqp",
		User:   url.UserPassword(c.Username, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   "/",
	}
	return u.String()
}

// DueScanConfig holds the due-scan worker settings.
type DueScanConfig struct {
	IntervalSeconds int `env:"INTERVAL_SECONDS" envDefault:"15"`
	BatchSize       int `env:"BATCH_SIZE"       envDefault:"50"`
}

// Sanitize applies guardrails to the scan settings.
func (c *DueScanConfig) Sanitize() {
	if c.IntervalSeconds < DueScanMinIntervalSeconds {
		slog.Warn("due scan interval below minimum, raising",
			"configured", c.IntervalSeconds,
			"minimum", DueScanMinIntervalSeconds,
		)
		c.IntervalSeconds = DueScanMinIntervalSeconds
	}
	if c.BatchSize > DueScanMaxBatchSize {
		slog.Warn("due scan batch size above maximum, clamping",
			"configured", c.BatchSize,
			"maximum", DueScanMaxBatchSize,
		)
		c.BatchSize = DueScanMaxBatchSize
	}
	if c.BatchSize < 1 {
		c.BatchSize = 1
	}
}

// CORSConfig holds the allowed origins for browser callers.
type CORSConfig struct {
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
}

// Load reads configuration from the environment. A .env file in the working
// directory is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	cfg.DueScan.Sanitize()

	return &cfg, nil
}
