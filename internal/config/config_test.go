package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbsinterval/internal/errors"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "API_PORT", "GIN_MODE", "LOG_LEVEL", "CHART_WIDTH", "CHART_HEIGHT", "DEFAULT_VARIANT", "PPROF_ENABLED", "SHUTDOWN_TIMEOUT"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "8081", cfg.API.Port)
	assert.Equal(t, "debug", cfg.Server.GinMode)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 1200, cfg.Chart.Width)
	assert.Equal(t, 900, cfg.Chart.Height)
	assert.Equal(t, "tea", cfg.Model.DefaultVariant)
	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.False(t, cfg.Profiling.Enabled)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("GIN_MODE", "release")
	t.Setenv("CHART_WIDTH", "800")
	t.Setenv("CHART_HEIGHT", "600")
	t.Setenv("DEFAULT_VARIANT", "cv-min")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("PPROF_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.GinMode)
	assert.Equal(t, 800, cfg.Chart.Width)
	assert.Equal(t, "cv-min", cfg.Model.DefaultVariant)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.True(t, cfg.Profiling.Enabled)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"port", "PORT", "http"},
		{"gin mode", "GIN_MODE", "verbose"},
		{"variant", "DEFAULT_VARIANT", "bias"},
		{"chart", "CHART_WIDTH", "10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}

func TestModelConfig_Variant(t *testing.T) {
	v, err := ModelConfig{DefaultVariant: "cv-min"}.Variant()
	require.NoError(t, err)
	assert.Equal(t, "cv-min", v.Name)
	assert.False(t, v.IncludeMax)

	_, err = ModelConfig{DefaultVariant: "bias"}.Variant()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("DBS_TEST_DOTENV=loaded\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("DBS_TEST_DOTENV") })

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "loaded", os.Getenv("DBS_TEST_DOTENV"))

	assert.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
}
