package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studytrack/internal/platform/config"
)

func writeState(t *testing.T, dataDir, name, content string) {
	t.Helper()
	dir := filepath.Join(dataDir, ".studytrack")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestNewRequiresDataDir(t *testing.T) {
	t.Parallel()
	_, err := config.New("")
	assert.Error(t, err)
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, config.BackendFile, cfg.Backend)
	assert.Equal(t, filepath.Join(dir, ".studytrack", "studytrack.db"), cfg.SQLitePath)
	assert.Equal(t, 9, cfg.UTCOffsetHours)
	assert.Equal(t, time.Minute, cfg.RolloverInterval)
	assert.Equal(t, time.Minute, cfg.StreakThreshold)
	assert.Equal(t, 270, cfg.HeatmapDays)
	assert.Equal(t, config.DefaultCategories, cfg.Categories)
}

func TestLoadLayersYAMLThenEnvFileThenProcessEnv(t *testing.T) {
	dir := t.TempDir()
	writeState(t, dir, "config.yaml", `
backend: sqlite
sqlite_path: db/track.db
user: minji
categories: [math, english]
streak_threshold: 30m
journal: false
`)
	writeState(t, dir, ".env", "STUDYTRACK_USER=jiho\nSTUDYTRACK_LOG_LEVEL=debug\n")
	t.Setenv("STUDYTRACK_LOG_LEVEL", "warn")

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, config.BackendSQLite, cfg.Backend)
	assert.Equal(t, filepath.Join(dir, "db", "track.db"), cfg.SQLitePath)
	assert.Equal(t, "jiho", cfg.User)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, []string{"math", "english"}, cfg.Categories)
	assert.Equal(t, 30*time.Minute, cfg.StreakThreshold)
	assert.False(t, cfg.JournalEnabled)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"unknown backend":   "backend: redis\n",
		"postgres sans dsn": "backend: postgres\n",
		"bad duration":      "rollover_interval: soon\n",
		"tiny interval":     "rollover_interval: 10ms\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			writeState(t, dir, "config.yaml", content)
			_, err := config.Load(dir)
			assert.Error(t, err)
		})
	}
}
