package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("REDIS_PASSWORD", "s3cret")
	path := writeConfig(t, `
server:
  port: "9090"
  cors_origins: ["http://localhost:3000"]
redis:
  addr: localhost:6379
  password: ${REDIS_PASSWORD}
assessment:
  ttl: 5m
  capture_sequences: true
events:
  publisher: kafka
  kafka_brokers: ["localhost:9092"]
log:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "s3cret", cfg.Redis.Password)
	assert.True(t, cfg.Assessment.CaptureSequences)
	assert.Equal(t, 5*time.Minute, TTLDuration(cfg.Assessment.TTL, time.Minute))
	assert.Equal(t, "assessment.submitted", cfg.EventsTopic())
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadRejectsKafkaWithoutBrokers(t *testing.T) {
	path := writeConfig(t, "events:\n  publisher: kafka\n")
	_, err := Load(path)
	assert.Error(t, err)

	path = writeConfig(t, "events:\n  publisher: carrier-pigeon\n")
	_, err = Load(path)
	assert.Error(t, err)
}

func TestTTLDurationFallback(t *testing.T) {
	assert.Equal(t, time.Minute, TTLDuration("", time.Minute))
	assert.Equal(t, time.Minute, TTLDuration("soon", time.Minute))
	assert.Equal(t, 90*time.Second, TTLDuration("90s", time.Minute))
}
