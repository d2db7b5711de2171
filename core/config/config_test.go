package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "https://api.dispos.pocot.fr", cfg.Source.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Source.Timeout)
	assert.Equal(t, "02:00", cfg.Poll.DefaultMinimumLength)
	assert.Equal(t, 1, cfg.Poll.DefaultWeeks)
	assert.Equal(t, 2, cfg.Poll.DisplayUTCOffsetHours)
	assert.Equal(t, "memory", cfg.Source.CacheBackend)
	assert.Equal(t, 5, cfg.Poll.MaxSessions)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
source:
  base_url: http://localhost:4000
  cache_ttl: 30s
poll:
  default_weeks: 2
`), 0o600))

	t.Setenv("SOURCE_BASE_URL", "http://source.internal")
	t.Setenv("POLL_DEFAULT_MINIMUM_LENGTH", "01:30")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "http://source.internal", cfg.Source.BaseURL, "env wins over file")
	assert.Equal(t, 30*time.Second, cfg.Source.CacheTTL)
	assert.Equal(t, 2, cfg.Poll.DefaultWeeks)
	assert.Equal(t, "01:30", cfg.Poll.DefaultMinimumLength)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		want  string
	}{
		{name: "unknown cache backend", key: "SOURCE_CACHE_BACKEND", value: "memcached", want: "source.cache_backend"},
		{name: "zero max sessions", key: "POLL_MAX_SESSIONS", value: "0", want: "poll.max_sessions"},
		{name: "negative max sessions", key: "POLL_MAX_SESSIONS", value: "-3", want: "poll.max_sessions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(tt.key, tt.value)

			_, err := Load("")
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestGetSafe(t *testing.T) {
	Set(nil)
	_, ok := GetSafe()
	assert.False(t, ok)
	assert.Panics(t, func() { Get() })

	Set(&Config{Server: ServerConfig{Port: 1}})
	t.Cleanup(func() { Set(nil) })
	cfg, ok := GetSafe()
	assert.True(t, ok)
	assert.Equal(t, 1, cfg.Server.Port)
}
