package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_SampleConfig(t *testing.T) {
	cfg, err := Load("../../configs/config.yaml")
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 30*time.Minute, cfg.Session.IdleTimeout)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.Len(t, cfg.LLM.Personas, 4)
	assert.Equal(t, "データ構造とアルゴリズム", cfg.LLM.Personas[2].Category)
	assert.Equal(t, DefaultCategories, cfg.Board.Categories)
	assert.Equal(t, "すべて", cfg.Board.AllSentinel)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "jwt:\n  secret: s\n"))
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Equal(t, "qa_session", cfg.Session.CookieName)
	assert.Equal(t, "AI", cfg.Board.AIStudentNumber)
	assert.Equal(t, "questions", cfg.Elasticsearch.IndexName)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, RateLimitConfig{PreviewPerMinute: 10, PreviewBurst: 3}, cfg.RateLimit)
}

func TestLoad_EnvOverridesSecrets(t *testing.T) {
	t.Setenv("QABOARD_JWT_SECRET", "from-env")
	t.Setenv("QABOARD_LLM_API_KEY", "key-from-env")

	cfg, err := Load(writeConfig(t, "server:\n  port: \"8080\"\n"))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, "key-from-env", cfg.LLM.APIKey)
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestLoad_RequiresSecret(t *testing.T) {
	_, err := Load(writeConfig(t, "server:\n  port: \"8080\"\n"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestServerConfig_Location(t *testing.T) {
	loc := ServerConfig{Timezone: "Not/AZone"}.Location()
	_, offset := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).In(loc).Zone()
	assert.Equal(t, 9*60*60, offset)
}
