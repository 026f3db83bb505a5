package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Server.BaseURL = "https://staging.example.com"
	cfg.Server.Timeout = 10 * time.Second
	cfg.Upload.DefaultAssigneeID = 12
	cfg.Export.Format = "xlsx"
	cfg.Activity.Path = "activity.csv"

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "http://localhost:8089", cfg.Server.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Server.Timeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "csv", cfg.Export.Format)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Empty(t, cfg.Activity.Path)
	require.NoError(t, Validate(cfg))
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("server:\n  base_url: http://svc:9000\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://svc:9000", cfg.Server.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Server.Timeout)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestYAMLFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, Default()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "base_url: http://localhost:8089")
	assert.Contains(t, contents, "timeout: 30s")
	assert.Contains(t, contents, "format: csv")
	assert.NotContains(t, contents, "token:")
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("RECON_BASE_URL", "http://override:1234")
	t.Setenv("RECON_TIMEOUT", "5s")
	t.Setenv("RECON_OTEL_ENABLED", "true")

	cfg := Default()
	require.NoError(t, ApplyEnv(cfg))
	assert.Equal(t, "http://override:1234", cfg.Server.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Server.Timeout)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Server.BaseURL = "not a url"
	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BaseURL")

	cfg = Default()
	cfg.Export.Format = "pdf"
	err = Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oneof")
}

func TestLoadEnvFiles(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("RECON_LOG_LEVEL=debug\n"), 0o644))
	t.Setenv("RECON_LOG_LEVEL", "")
	require.NoError(t, os.Unsetenv("RECON_LOG_LEVEL"))

	n, err := LoadEnvFiles(envPath, filepath.Join(dir, ".env.local"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "debug", os.Getenv("RECON_LOG_LEVEL"))
}

func TestResolveMissingFile(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Resolve(FileName)
	require.NoError(t, err)
	assert.Equal(t, Default().Server.BaseURL, cfg.Server.BaseURL)
}
