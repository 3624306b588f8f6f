package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("MATCH_LIMIT", "")
	t.Setenv("AGE_LIMIT", "")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, 3, cfg.Match.Limit)
	assert.Equal(t, 10, cfg.Match.AgeLimit)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.True(t, cfg.DB.MigrateOnStart)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("MATCH_LIMIT", "5")
	t.Setenv("AGE_LIMIT", "4")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Match.Limit)
	assert.Equal(t, 4, cfg.Match.AgeLimit)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
}

func TestValidateRejectsNegativeLimits(t *testing.T) {
	var cfg Config
	cfg.Match.Limit = -1
	cfg.Match.AgeLimit = -2
	cfg.RateLimit.Requests = 1
	cfg.RateLimit.Window = time.Second

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "match.limit")
	assert.Contains(t, err.Error(), "match.age_limit")
}
