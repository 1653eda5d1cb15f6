package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("AISTREAM_DATA_DIR", dataDir)
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, dataDir, cfg.DataDir)
	assert.Equal(t, filepath.Join(dataDir, "aistream.sqlite"), cfg.DBPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, DefaultGlamourStyle, cfg.GlamourStyle)
	assert.Equal(t, int64(0), cfg.Seed)
	assert.Equal(t, 60, cfg.OpenAI.TimeoutSeconds)

	info, err := os.Stat(dataDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLoadFromFile(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("AISTREAM_DATA_DIR", dataDir)

	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "log_level: debug\nglamour_style: notty\nseed: 42\nopenai:\n  base_url: http://localhost:9999/v1\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "notty", cfg.GlamourStyle)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, "http://localhost:9999/v1", cfg.OpenAI.BaseURL)
}

func TestLoadMissingFileFails(t *testing.T) {
	t.Setenv("AISTREAM_DATA_DIR", t.TempDir())

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("AISTREAM_DATA_DIR", dataDir)
	t.Setenv("AISTREAM_LOG_LEVEL", "warn")
	t.Setenv("AISTREAM_OPENAI_API_KEY", "sk-test")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
}

func TestOpenAIKeyFallsBackToStandardEnv(t *testing.T) {
	t.Setenv("AISTREAM_DATA_DIR", t.TempDir())
	t.Setenv("AISTREAM_OPENAI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "sk-standard")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sk-standard", cfg.OpenAI.APIKey)
}

func TestDetectDataDirExplicitWins(t *testing.T) {
	t.Setenv("AISTREAM_DATA_DIR", "/somewhere/else")

	got, err := DetectDataDir("/explicit/dir")
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean("/explicit/dir"), got)
}
