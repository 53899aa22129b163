// Package config loads runtime settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds everything the binary needs to start
type Config struct {
	// DBType is "sqlite" or "postgres"
	DBType string
	// DSN overrides the default SQLite file under DataDir
	DSN     string
	DataDir string

	TelegramToken string
	AdminUserIDs  map[int64]bool

	SchedulerEnabled bool
	// Reminders are only sent between these hours (inclusive)
	NotificationStartHour int
	NotificationEndHour   int
	ReminderInterval      time.Duration
	// Number of items shown per review or learning batch
	BatchSize int

	LogLevel slog.Level
}

// Driver returns the sqlx driver name for DBType
func (c *Config) Driver() string {
	if c.DBType == "postgres" {
		return "postgres"
	}
	return "sqlite3"
}

// DataSource returns the DSN to open, creating the data directory for SQLite
func (c *Config) DataSource() (string, error) {
	if c.DSN != "" {
		return c.DSN, nil
	}
	if c.DBType == "postgres" {
		return "", errors.New("DB_DSN is required for postgres")
	}
	if err := os.MkdirAll(c.DataDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	return filepath.Join(c.DataDir, "recallbox.db"), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db_type", "sqlite")
	v.SetDefault("db_dsn", "")
	v.SetDefault("data_dir", "data")
	v.SetDefault("telegram_bot_token", "")
	v.SetDefault("admin_user_ids", "")
	v.SetDefault("enable_scheduler", true)
	v.SetDefault("notification_start_hour", 8)
	v.SetDefault("notification_end_hour", 22)
	v.SetDefault("reminder_interval", time.Hour)
	v.SetDefault("batch_size", 10)
	v.SetDefault("log_level", "info")
}

// Load reads envFile (when it exists) into the process environment and then
// builds a Config from environment variables.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		DBType:                strings.ToLower(v.GetString("db_type")),
		DSN:                   v.GetString("db_dsn"),
		DataDir:               v.GetString("data_dir"),
		TelegramToken:         v.GetString("telegram_bot_token"),
		SchedulerEnabled:      v.GetBool("enable_scheduler"),
		NotificationStartHour: v.GetInt("notification_start_hour"),
		NotificationEndHour:   v.GetInt("notification_end_hour"),
		ReminderInterval:      v.GetDuration("reminder_interval"),
		BatchSize:             v.GetInt("batch_size"),
		AdminUserIDs:          make(map[int64]bool),
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(v.GetString("log_level"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	for _, idStr := range strings.Split(v.GetString("admin_user_ids"), ",") {
		idStr = strings.TrimSpace(idStr)
		if idStr == "" {
			continue
		}
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid admin user ID %q: %w", idStr, err)
		}
		cfg.AdminUserIDs[id] = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if c.DBType != "sqlite" && c.DBType != "postgres" {
		return fmt.Errorf("unsupported DB_TYPE %q", c.DBType)
	}
	for _, h := range []int{c.NotificationStartHour, c.NotificationEndHour} {
		if h < 0 || h > 23 {
			return fmt.Errorf("notification hour %d out of range 0-23", h)
		}
	}
	if c.ReminderInterval <= 0 {
		return errors.New("REMINDER_INTERVAL must be positive")
	}
	if c.BatchSize <= 0 {
		return errors.New("BATCH_SIZE must be positive")
	}
	return nil
}
