package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "fern-api", cfg.AppName)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, BackendMemory, cfg.PrefillBackend)
	assert.False(t, cfg.PrefillPartialResults)
	assert.Equal(t, []string{"*"}, cfg.AllowOrigins)
	assert.Equal(t, []string{"GET", "PUT", "DELETE"}, cfg.AllowMethods)
	assert.Equal(t, 10*time.Second, cfg.DatabaseConnMaxLifetime)
	assert.Equal(t, time.Duration(0), cfg.RedisTTL)
	assert.True(t, cfg.DatabaseMigrationAutoRollback)
	assert.Empty(t, cfg.GraphAPIBaseURL)
}

func TestLoadFrom_Environment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("PREFILL_BACKEND", "redis")
	t.Setenv("PREFILL_PARTIAL_RESULTS", "true")
	t.Setenv("REDIS_TTL", "24h")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("GRAPH_API_BASE_URL", "http://localhost:3000")

	cfg, err := LoadFrom(viper.New())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, BackendRedis, cfg.PrefillBackend)
	assert.True(t, cfg.PrefillPartialResults)
	assert.Equal(t, 24*time.Hour, cfg.RedisTTL)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "http://localhost:3000", cfg.GraphAPIBaseURL)
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unknown backend", "PREFILL_BACKEND", "mongo"},
		{"unknown exporter", "TRACING_EXPORTER", "zipkin"},
		{"non numeric port", "PORT", "abc"},
		{"bad duration", "REDIS_TTL", "soon"},
		{"bad boolean", "KAFKA_ENABLED", "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)

			_, err := LoadFrom(viper.New())
			assert.Error(t, err)
		})
	}
}

func TestLoadFrom_EmptyListVariable(t *testing.T) {
	t.Setenv("HTTP_SERVER_ALLOW_ORIGINS", " , ")

	cfg, err := LoadFrom(viper.New())
	require.NoError(t, err)
	assert.NotNil(t, cfg.AllowOrigins)
	assert.Empty(t, cfg.AllowOrigins)
}

func TestValidate_KafkaRequiresBrokers(t *testing.T) {
	cfg := &Config{PrefillBackend: BackendMemory, KafkaEnabled: true}
	assert.Error(t, cfg.Validate())

	cfg.KafkaBrokers = []string{"localhost:9092"}
	assert.NoError(t, cfg.Validate())
}
