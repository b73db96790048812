package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("ENV", "prod")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("TOKEN_CACHE_TTL", "")
	t.Setenv("KAFKA_TOPIC", "")

	cfg := LoadConfig()

	assert.Equal(t, ":3000", cfg.ServerPort)
	assert.Equal(t, time.Second, cfg.TokenCacheTTL)
	assert.Equal(t, "visa.notifications", cfg.KafkaTopic)
	assert.False(t, cfg.LogPretty)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("ENV", "prod")
	t.Setenv("TOKEN_CACHE_TTL", "250ms")
	t.Setenv("LOG_PRETTY", "true")
	t.Setenv("ACCESS_SECRET", "s3cret")
	t.Setenv("DATABASE_DSN", "postgres://localhost/visa")

	cfg := LoadConfig()

	assert.Equal(t, 250*time.Millisecond, cfg.TokenCacheTTL)
	assert.True(t, cfg.LogPretty)
	require.NoError(t, cfg.Validate())
}

func TestValidateReportsMissing(t *testing.T) {
	err := Config{}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_DSN")
	assert.Contains(t, err.Error(), "ACCESS_SECRET")

	err = Config{KafkaBroker: "b:9092"}.ValidateNotifier()
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "KAFKA_BROKER")
}
