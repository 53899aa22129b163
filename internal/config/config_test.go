package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"DB_TYPE", "DB_DSN", "DATA_DIR", "TELEGRAM_BOT_TOKEN", "ADMIN_USER_IDS",
	"ENABLE_SCHEDULER", "NOTIFICATION_START_HOUR", "NOTIFICATION_END_HOUR",
	"REMINDER_INTERVAL", "BATCH_SIZE", "LOG_LEVEL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DBType)
	assert.Equal(t, "sqlite3", cfg.Driver())
	assert.Equal(t, "data", cfg.DataDir)
	assert.True(t, cfg.SchedulerEnabled)
	assert.Equal(t, 8, cfg.NotificationStartHour)
	assert.Equal(t, 22, cfg.NotificationEndHour)
	assert.Equal(t, time.Hour, cfg.ReminderInterval)
	assert.Equal(t, 10, cfg.BatchSize)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Empty(t, cfg.AdminUserIDs)
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_TYPE", "postgres")
	t.Setenv("DB_DSN", "postgres://localhost/recallbox")
	t.Setenv("ADMIN_USER_IDS", "1, 2,3")
	t.Setenv("ENABLE_SCHEDULER", "false")
	t.Setenv("REMINDER_INTERVAL", "30m")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Driver())
	assert.False(t, cfg.SchedulerEnabled)
	assert.Equal(t, 30*time.Minute, cfg.ReminderInterval)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, map[int64]bool{1: true, 2: true, 3: true}, cfg.AdminUserIDs)

	dsn, err := cfg.DataSource()
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/recallbox", dsn)
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("BATCH_SIZE=25\nNOTIFICATION_START_HOUR=6\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("BATCH_SIZE")
		os.Unsetenv("NOTIFICATION_START_HOUR")
	})

	cfg, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.BatchSize)
	assert.Equal(t, 6, cfg.NotificationStartHour)

	_, err = Load(filepath.Join(dir, "missing.env"))
	assert.NoError(t, err)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"DB_TYPE":                 "mysql",
		"NOTIFICATION_END_HOUR":   "25",
		"ADMIN_USER_IDS":          "abc",
		"LOG_LEVEL":               "loud",
		"BATCH_SIZE":              "0",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestDataSourceSQLite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	cfg := &Config{DBType: "sqlite", DataDir: dir}
	dsn, err := cfg.DataSource()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "recallbox.db"), dsn)
	assert.DirExists(t, dir)

	pg := &Config{DBType: "postgres"}
	_, err = pg.DataSource()
	assert.Error(t, err)
}
