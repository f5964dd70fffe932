package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfiguration_Defaults(t *testing.T) {
	cfg, err := LoadConfiguration(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 4096, cfg.Cache.Size)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, "none", cfg.LLM.Provider)
	assert.Equal(t, 3, cfg.Recommend.TopK)
	assert.Equal(t, 5, cfg.RateLimit.Capacity)
}

func TestLoadConfiguration_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  address: ":9090"
model:
  metadata_path: /models/meta.json
  oracle_url: http://model:8000/predict
  oracle_timeout: 2s
cache:
  size: 128
  redis_url: redis://cache:6379/0
store:
  driver: sqlite
  dsn: /data/advisor.db
llm:
  provider: openai
  model: gpt-4o-mini
recommend:
  top_k: 5
`)
	t.Setenv("LOANADVISOR_LLM_API_KEY", "sk-test")
	t.Setenv("LOANADVISOR_CACHE_SIZE", "256")

	cfg, err := LoadConfiguration(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, "/models/meta.json", cfg.Model.MetadataPath)
	assert.Equal(t, 2*time.Second, cfg.Model.OracleTimeout)
	assert.Equal(t, 256, cfg.Cache.Size)
	assert.Equal(t, "redis://cache:6379/0", cfg.Cache.RedisURL)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, 5, cfg.Recommend.TopK)
}

func TestLoadConfiguration_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown driver", "store:\n  driver: postgres\n"},
		{"sqlite without dsn", "store:\n  driver: sqlite\n"},
		{"zero top_k", "recommend:\n  top_k: 0\n"},
		{"negative cache", "cache:\n  size: -1\n"},
		{"broken yaml", "server: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfiguration(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(LoggingConfig{Level: "info", Format: "json"}, "debug")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = NewLogger(LoggingConfig{Level: "warn", Format: "console"}, "")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))

	_, err = NewLogger(LoggingConfig{Level: "loud"}, "")
	assert.Error(t, err)

	_, err = NewLogger(LoggingConfig{Level: "info", Format: "xml"}, "")
	assert.Error(t, err)
}

func TestNewLogger_OutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "advisor.log")

	logger, err := NewLogger(LoggingConfig{Level: "info", Format: "json", OutputFile: path}, "")
	require.NoError(t, err)
	logger.Info("hello")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}
