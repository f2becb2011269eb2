package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"ORANGECLOCK_HTTP_PORT",
		"ORANGECLOCK_SQLITE_DSN",
		"ORANGECLOCK_AUDIO_DIR",
		"ORANGECLOCK_HORIZON",
		"ORANGECLOCK_LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.HTTPPort)
	assert.Equal(t, "file:alarmas.db", cfg.SQLiteDSN)
	assert.Equal(t, "audios", cfg.AudioDir)
	assert.Equal(t, 24*time.Hour, cfg.DefaultHorizon)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ORANGECLOCK_HTTP_PORT", "8091")
	t.Setenv("ORANGECLOCK_SQLITE_DSN", "file:otro.db")
	t.Setenv("ORANGECLOCK_AUDIO_DIR", "/srv/audios")
	t.Setenv("ORANGECLOCK_HORIZON", "12h")
	t.Setenv("ORANGECLOCK_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8091, cfg.HTTPPort)
	assert.Equal(t, "file:otro.db", cfg.SQLiteDSN)
	assert.Equal(t, "/srv/audios", cfg.AudioDir)
	assert.Equal(t, 12*time.Hour, cfg.DefaultHorizon)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_ReportsInvalidValuesTogether(t *testing.T) {
	t.Setenv("ORANGECLOCK_HTTP_PORT", "-1")
	t.Setenv("ORANGECLOCK_HORIZON", "pronto")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ORANGECLOCK_HTTP_PORT")
	assert.Contains(t, err.Error(), "ORANGECLOCK_HORIZON")
}
