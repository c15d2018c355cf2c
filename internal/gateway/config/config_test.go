package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"APP_ENV", "PORT", "CONFIG_FILE", "LLM_PROVIDER", "GEMINI_API_KEY", "LLM_MODEL", "LLM_RPS",
		"LLM_BURST", "LLM_TIMEOUT", "SESSION_TTL", "SESSION_MAX", "TRIAGE_ATTEMPTS", "VALIDATE_ANSWERS",
		"GROUND_DECISIONS", "DATABASE_URL", "HISTORY_SQLITE_PATH", "PROFILE_CACHE_SIZE",
		"ARCHIVE_S3_ENDPOINT", "ARCHIVE_S3_REGION", "ARCHIVE_S3_BUCKET", "ARCHIVE_S3_ACCESS_KEY",
		"ARCHIVE_S3_SECRET_KEY", "ARCHIVE_S3_USE_SSL", "MINIO_ROOT_USER", "MINIO_ROOT_PASSWORD",
		"LOG_LEVEL", "LOG_DEV",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_LocalDefaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8081", cfg.Port)
	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "fake", cfg.LLM.Provider)
	assert.Equal(t, 1, cfg.Session.TriageAttempts)
	assert.True(t, cfg.Session.ValidateAnswers)
	assert.Equal(t, "balanceboard.db", cfg.HistorySQLitePath)
	assert.False(t, cfg.Archive.Enabled)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	path := filepath.Join(t.TempDir(), "balance.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "9000"
llm:
  provider: fake
  rps: 5
  timeout: 10s
session:
  max: 10
  ground_decisions: true
`), 0o644))

	t.Setenv("APP_ENV", "prod")
	t.Setenv("LLM_RPS", "0.5")
	t.Setenv("SESSION_TTL", "15m")
	t.Setenv("ARCHIVE_S3_ENDPOINT", "s3.example.com")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Port)
	assert.Equal(t, 0.5, cfg.LLM.RPS)
	assert.Equal(t, 10*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 15*time.Minute, cfg.Session.TTL)
	assert.Equal(t, 10, cfg.Session.Max)
	assert.True(t, cfg.Session.GroundDecisions)
	assert.True(t, cfg.Archive.Enabled)
	assert.True(t, cfg.Archive.UseSSL)
	assert.Empty(t, cfg.HistorySQLitePath)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	t.Setenv("LLM_BURST", "many")
	_, err := Load("")
	assert.ErrorContains(t, err, "LLM_BURST")

	t.Setenv("LLM_BURST", "")
	t.Setenv("LLM_PROVIDER", "gemini")
	_, err = Load("")
	assert.ErrorContains(t, err, "GEMINI_API_KEY")

	t.Setenv("LLM_PROVIDER", "openai")
	_, err = Load("")
	assert.ErrorContains(t, err, "unknown LLM_PROVIDER")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestNormalizePort(t *testing.T) {
	assert.Equal(t, ":8081", normalizePort(""))
	assert.Equal(t, ":80", normalizePort("80"))
	assert.Equal(t, "127.0.0.1:80", normalizePort("127.0.0.1:80"))
}
