package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	// Server
	Port     int    `mapstructure:"PORT"`
	Env      string `mapstructure:"APP_ENV"` // development | production
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Database. DATABASE_URL wins when set; otherwise SQLite at DB_PATH.
	DBPath      string `mapstructure:"DB_PATH"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// Redis, optional. Empty disables the barcode cache.
	RedisURL string `mapstructure:"REDIS_URL"`

	// Retention thresholds
	SettingsPath string `mapstructure:"SETTINGS_PATH"`
	WarningDays  int    `mapstructure:"WARNING_DAYS"`
	CriticalDays int    `mapstructure:"CRITICAL_DAYS"`

	RateLimitPerMin int `mapstructure:"RATE_LIMIT_PER_MIN"`
}

// Load reads configuration from environment variables (and optional .env file).
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	viper.SetDefault("PORT", 8099)
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DB_PATH", "/data/domovra.sqlite3")
	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("SETTINGS_PATH", "/data/settings.json")
	viper.SetDefault("WARNING_DAYS", 30)
	viper.SetDefault("CRITICAL_DAYS", 14)
	viper.SetDefault("RATE_LIMIT_PER_MIN", 600)

	// Optional .env file for local development; a missing file is fine
	_ = viper.ReadInConfig()

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// UsePostgres reports whether DATABASE_URL points at a Postgres server.
func (c *Config) UsePostgres() bool {
	u := strings.ToLower(c.DatabaseURL)
	return strings.HasPrefix(u, "postgres://") || strings.HasPrefix(u, "postgresql://")
}
