package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngmaloney/isitfrozen/internal/geocoding"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://api.weather.gov", cfg.APIBaseURL)
	assert.Equal(t, geocoding.DefaultZipcodeURL, cfg.ZipcodeURL)
	assert.Equal(t, filepath.Join("data", "isitfrozen.db"), cfg.DBPath)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 5, cfg.ObservationDays)
	assert.Equal(t, 500*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.NotEmpty(t, cfg.UserAgent)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ISITFROZEN_API_BASE_URL", "http://localhost:9999")
	t.Setenv("ISITFROZEN_OBSERVATION_DAYS", "2")
	t.Setenv("ISITFROZEN_HTTP_TIMEOUT", "5s")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9999", cfg.APIBaseURL)
	assert.Equal(t, 2, cfg.ObservationDays)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "isitfrozen.env")
	require.NoError(t, os.WriteFile(path, []byte("DB_PATH=/tmp/frozen.db\nLOG_LEVEL=debug\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/frozen.db", cfg.DBPath)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"zero days", "ISITFROZEN_OBSERVATION_DAYS", "0"},
		{"negative timeout", "ISITFROZEN_HTTP_TIMEOUT", "-1s"},
		{"zero tick", "ISITFROZEN_TICK_INTERVAL", "0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(tt.key, tt.val)

			_, err := Load("")
			assert.Error(t, err)
		})
	}
}
