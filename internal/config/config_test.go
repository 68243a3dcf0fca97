package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"HTTP_LISTEN_ADDR", "LOG_LEVEL", "SERVICE_NAME", "SESSION_TTL_HOURS", "COOKIE_SECURE"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPListenAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "s3gate", cfg.ServiceName)
	assert.Equal(t, 24*7, cfg.SessionTTLHours)
	assert.True(t, cfg.CookieSecure)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/s3gate_test")
	t.Setenv("SESSION_TTL_HOURS", "48")
	t.Setenv("COOKIE_SECURE", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/s3gate_test", cfg.DatabaseURL)
	assert.Equal(t, 48, cfg.SessionTTLHours)
	assert.False(t, cfg.CookieSecure)
}

func TestLoad_BadTTL(t *testing.T) {
	for _, v := range []string{"abc", "0", "-5"} {
		t.Setenv("SESSION_TTL_HOURS", v)
		_, err := Load()
		assert.Error(t, err, "SESSION_TTL_HOURS=%s", v)
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, cfg.Validate())

	cfg.DatabaseURL = "postgres://localhost/s3gate"
	assert.NoError(t, cfg.Validate())
}
