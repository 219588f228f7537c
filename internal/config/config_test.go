package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// writeFile — утилита записи временного файла конфигурации.
func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(data), 0o600))
	return p
}

// chdir — смена текущего рабочего каталога с авто-возвратом.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

const sampleYAML = `
env: "prod"
api:
  base_url: "https://pcrec.example.com/api"
  user_agent: "pcrec/1.0"
tokens:
  driver: "redis"
  profile: "work"
  redis_url: "redis://localhost:6379/2"
  redis_prefix: "test:"
  redis_ttl: "1h"
timeouts:
  request: "3s"
  refresh: "2s"
metrics:
  host: "0.0.0.0"
  port: "9100"
`

const minimalYAML = `
env: "dev"
api:
  base_url: "http://localhost:8000/api"
`

const brokenYAML = `
env: [unclosed
`

// Тесты ниже меняют ENV и cwd, поэтому t.Parallel() только там, где их нет.

func TestMetricsConfig_Addr(t *testing.T) {
	t.Parallel()

	require.Equal(t, "127.0.0.1:9100", MetricsConfig{Host: "127.0.0.1", Port: "9100"}.Addr())
	require.Empty(t, MetricsConfig{Host: "127.0.0.1"}.Addr())
}

func TestLoad_WithExplicitPath_OK(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", sampleYAML)

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	require.Equal(t, "prod", cfg.Env)
	require.Equal(t, "https://pcrec.example.com/api", cfg.API.BaseURL)
	require.Equal(t, "pcrec/1.0", cfg.API.UserAgent)
	require.Equal(t, "redis", cfg.Tokens.Driver)
	require.Equal(t, "work", cfg.Tokens.Profile)
	require.Equal(t, "redis://localhost:6379/2", cfg.Tokens.RedisURL)
	require.Equal(t, "test:", cfg.Tokens.RedisPrefix)
	require.Equal(t, time.Hour, cfg.Tokens.RedisTTL)
	require.Equal(t, 3*time.Second, cfg.Timeouts.Request)
	require.Equal(t, 2*time.Second, cfg.Timeouts.Refresh)
	require.Equal(t, "0.0.0.0:9100", cfg.Metrics.Addr())
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", minimalYAML)

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	require.Equal(t, "pcrec", cfg.API.UserAgent)
	require.Equal(t, "file", cfg.Tokens.Driver)
	require.Equal(t, "default", cfg.Tokens.Profile)
	require.Equal(t, "pcrec:tokens:", cfg.Tokens.RedisPrefix)
	require.Equal(t, 720*time.Hour, cfg.Tokens.RedisTTL)
	require.Equal(t, 15*time.Second, cfg.Timeouts.Request)
	require.Equal(t, 10*time.Second, cfg.Timeouts.Refresh)
	require.Empty(t, cfg.Metrics.Addr())
}

func TestLoad_WithExplicitPath_BrokenYAML(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "broken.yaml", brokenYAML)

	_, err := Load(cfgPath)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to read config")
}

func TestLoad_WithExplicitPath_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "stat failed")
}

func TestLoad_EnvOverlaysFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", sampleYAML)
	t.Setenv("TOKEN_STORE", "memory")
	t.Setenv("REQUEST_TIMEOUT", "7s")

	cfg, err := Load(cfgPath)
	require.NoError(t, err)
	require.Equal(t, "memory", cfg.Tokens.Driver)
	require.Equal(t, 7*time.Second, cfg.Timeouts.Request)
	require.Equal(t, "prod", cfg.Env)
}

func TestLoad_WithCONFIG_PATH_OK(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "from_env_path.yaml", minimalYAML)
	t.Setenv("CONFIG_PATH", cfgPath)

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "dev", cfg.Env)
}

func TestLoad_ExplicitPathWinsOverCONFIG_PATH(t *testing.T) {
	dir := t.TempDir()
	explicit := writeFile(t, dir, "explicit.yaml", sampleYAML)
	t.Setenv("CONFIG_PATH", writeFile(t, dir, "env.yaml", minimalYAML))

	cfg, err := Load(explicit)
	require.NoError(t, err)
	require.Equal(t, "prod", cfg.Env)
}

func TestLoad_WithLocalYAML_OK(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, ".", "local.yaml", minimalYAML)
	t.Setenv("CONFIG_PATH", "")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "dev", cfg.Env)
}

func TestLoad_EnvOnly(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("API_BASE_URL", "http://backend:8000/api")
	t.Setenv("TOKEN_STORE", "none")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "http://backend:8000/api", cfg.API.BaseURL)
	require.Equal(t, "none", cfg.Tokens.Driver)
	require.Equal(t, "local", cfg.Env)
}

func TestLoad_EnvOnly_BaseURLRequired(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("API_BASE_URL", "")
	require.NoError(t, os.Unsetenv("API_BASE_URL"))

	_, err := Load("")
	require.Error(t, err)
	require.Contains(t, err.Error(), "config not found")
}
