package config_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.RabbitMQ.Host)
	assert.Equal(t, "guest", cfg.RabbitMQ.Username)
	assert.Equal(t, "guest", cfg.RabbitMQ.Password)
	assert.Equal(t, 15, cfg.DueScan.IntervalSeconds)
	assert.Equal(t, 50, cfg.DueScan.BatchSize)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("RABBITMQ_HOST", "mq.internal")
	t.Setenv("DUE_SCAN_INTERVAL_SECONDS", "30")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,https://board.example.com")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "mq.internal", cfg.RabbitMQ.Host)
	assert.Equal(t, 30, cfg.DueScan.IntervalSeconds)
	assert.Equal(t, []string{"http://localhost:3000", "https://board.example.com"}, cfg.CORS.AllowedOrigins)
}

func TestDueScanSanitize_RaisesIntervalToMinimum(t *testing.T) {
	c := config.DueScanConfig{IntervalSeconds: 1, BatchSize: 50}
	c.Sanitize()
	assert.Equal(t, config.DueScanMinIntervalSeconds, c.IntervalSeconds)
	assert.Equal(t, 50, c.BatchSize)
}

func TestDueScanSanitize_ClampsBatchSize(t *testing.T) {
	c := config.DueScanConfig{IntervalSeconds: 15, BatchSize: 5000}
	c.Sanitize()
	assert.Equal(t, config.DueScanMaxBatchSize, c.BatchSize)
}

func TestRabbitMQURL(t *testing.T) {
	c := config.RabbitMQConfig{Host: "mq", Port: 5672, Username: "app", Password: "secret"}
	assert.Equal(t, "amqp://app:secret@mq:5672/", c.URL())
}

func TestRabbitMQURL_EscapesCredentials(t *testing.T) {
	c := config.RabbitMQConfig{Host: "mq", Port: 5672, Username: "app", Password: "p@ss/w:rd"}

	u, err := url.Parse(c.URL())
	require.NoError(t, err)

	assert.Equal(t, "mq:5672", u.Host)
	password, _ := u.User.Password()
	assert.Equal(t, "p@ss/w:rd", password, "reserved characters round-trip through the URL")
}
