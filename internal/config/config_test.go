package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "3000", cfg.AppPort)
	assert.Equal(t, "readings", cfg.DynamoTables.Readings)
	assert.Equal(t, "https://app.coreiot.io", cfg.CoreIoT.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.CoreIoT.Timeout)
	assert.Equal(t, 60*time.Second, cfg.Training.Interval)
	assert.Equal(t, 20, cfg.Training.Window)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("COREIOT_BASE_URL", "http://localhost:9090/")
	t.Setenv("COREIOT_TIMEOUT", "2s")
	t.Setenv("TRAIN_WINDOW", "50")
	t.Setenv("INGEST_RATE_PER_SEC", "0.5")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test,http://b.test")

	cfg := Load()

	assert.Equal(t, "http://localhost:9090", cfg.CoreIoT.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.CoreIoT.Timeout)
	assert.Equal(t, 50, cfg.Training.Window)
	assert.Equal(t, 0.5, cfg.IngestRatePerSec)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("TRAIN_WORKERS", "many")
	t.Setenv("TRAIN_INTERVAL", "soon")

	cfg := Load()

	assert.Equal(t, 4, cfg.Training.Workers)
	assert.Equal(t, 60*time.Second, cfg.Training.Interval)
}
