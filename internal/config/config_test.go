package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "area-engine", cfg.ServiceName)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 10*time.Second, cfg.Engine.PollInterval)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("POLL_INTERVAL", "30s")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, 30*time.Second, cfg.Engine.PollInterval)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestLoad_RejectsSubSecondPollInterval(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "100ms")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POLL_INTERVAL")
}

func TestTokenKey(t *testing.T) {
	t.Run("unset yields zeroed development key", func(t *testing.T) {
		cfg := &Config{}
		key, err := cfg.TokenKey()
		require.NoError(t, err)
		assert.Len(t, key, 32)
	})

	t.Run("valid hex", func(t *testing.T) {
		cfg := &Config{}
		cfg.Engine.TokenKeyHex = strings.Repeat("ab", 32)
		key, err := cfg.TokenKey()
		require.NoError(t, err)
		assert.Len(t, key, 32)
	})

	t.Run("wrong length rejected", func(t *testing.T) {
		cfg := &Config{}
		cfg.Engine.TokenKeyHex = "abcd"
		_, err := cfg.TokenKey()
		assert.Error(t, err)
	})

	t.Run("not hex rejected", func(t *testing.T) {
		cfg := &Config{}
		cfg.Engine.TokenKeyHex = strings.Repeat("zz", 32)
		_, err := cfg.TokenKey()
		assert.Error(t, err)
	})
}

func TestValidate_ProductionRequiresSecrets(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	t.Setenv("JWT_SECRET", "super-secret")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TOKEN_KEY")

	t.Setenv("TOKEN_KEY", strings.Repeat("ab", 32))
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Environment)
}

func TestPostgresPoolConfig(t *testing.T) {
	t.Setenv("POSTGRES_HOST", "db.internal")
	t.Setenv("POSTGRES_MAX_CONNS", "50")

	cfg, err := Load()
	require.NoError(t, err)

	pg := cfg.PostgresPoolConfig()
	assert.Equal(t, "db.internal", pg.Host)
	assert.Equal(t, int32(50), pg.MaxConns)
	assert.Contains(t, pg.DSN(), "db.internal")
}
