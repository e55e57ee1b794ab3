// Package config loads server configuration from the environment, with
// an optional .env file for development setups.
package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all bancho server configuration.
type Config struct {
	Addr     string `env:"BANCHO_ADDR" envDefault:":8080"`
	LogLevel int    `env:"LOG_LEVEL" envDefault:"20"`

	Database DatabaseConfig
	Redis    RedisConfig

	GeolocationDBPath string `env:"GEOLOCATION_DB_PATH" envDefault:"./GeoLite2-City.mmdb"`

	LoginNotification string `env:"LOGIN_NOTIFICATION"`
	Maintenance       bool   `env:"MAINTENANCE_MODE"`
	MenuIconURL       string `env:"MAIN_MENU_ICON_URL"`
	MenuOnClickURL    string `env:"MAIN_MENU_ON_CLICK_URL"`

	GeneralAnticheatWebhook      string `env:"DISCORD_GENERAL_ANTICHEAT_WEBHOOK"`
	ConfidentialAnticheatWebhook string `env:"DISCORD_CONFIDENTIAL_ANTICHEAT_WEBHOOK"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	User     string `env:"DB_USER" envDefault:"bancho"`
	Password string `env:"DB_PASS" envDefault:"bancho"`
	Host     string `env:"DB_HOST" envDefault:"127.0.0.1"`
	Port     int    `env:"DB_PORT" envDefault:"5432"`
	Name     string `env:"DB_NAME" envDefault:"bancho"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Host string `env:"REDIS_HOST" envDefault:"127.0.0.1"`
	Port int    `env:"REDIS_PORT" envDefault:"6379"`
}

// Addr returns the host:port Redis address.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// SlogLevel maps the numeric LOG_LEVEL convention (10 debug, 20 info,
// 30 warn, 40 error) onto slog's levels.
func (c Config) SlogLevel() slog.Level {
	switch {
	case c.LogLevel <= 10:
		return slog.LevelDebug
	case c.LogLevel <= 20:
		return slog.LevelInfo
	case c.LogLevel <= 30:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// Load reads configuration from the environment. A .env file in the
// working directory is applied first when present; explicit environment
// variables win over it.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}
