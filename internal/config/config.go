// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// ErrConfigNotLoaded wraps every Load failure.
var ErrConfigNotLoaded = errors.New("config not loaded")

// Storage backends.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config holds all settings.
type Config struct {
	Env      string `env:"APP_ENV" env-default:"development" validate:"oneof=development production"`
	LogLevel string `env:"LOG_LEVEL" env-default:"info" validate:"oneof=debug info warn error"`
	Timezone string `env:"APP_TIMEZONE" env-default:"Local"`

	Addr   string `env:"ADDR" env-default:":8080" validate:"required"`
	WebDir string `env:"WEB_DIR"`

	StorageBackend string `env:"STORAGE_BACKEND" env-default:"sqlite" validate:"oneof=sqlite postgres memory"`
	SQLitePath     string `env:"SQLITE_PATH" env-default:"data/weights.db" validate:"required_if=StorageBackend sqlite"`
	DatabaseURL    string `env:"DATABASE_URL" validate:"required_if=StorageBackend postgres"`

	MaintenanceSchedule string `env:"MAINTENANCE_SCHEDULE" env-default:"@hourly"`

	ChartWidth  int `env:"CHART_WIDTH" env-default:"800" validate:"gt=0,lte=4096"`
	ChartHeight int `env:"CHART_HEIGHT" env-default:"400" validate:"gt=0,lte=4096"`
}

// Load reads an optional .env file, then the environment. Variables already
// set in the environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, configNotLoadedErr("read %s: %w", envFile, err)
		}
	}

	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, configNotLoadedErr("read env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, configNotLoadedErr("%w", err)
	}
	return cfg, nil
}

// MustLoad is Load that panics on error.
func MustLoad(envFile string) *Config {
	cfg, err := Load(envFile)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Validate checks field constraints, the time zone and the cron schedule.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.MaintenanceSchedule != "" {
		if _, err := cron.ParseStandard(c.MaintenanceSchedule); err != nil {
			return fmt.Errorf("invalid MAINTENANCE_SCHEDULE: %w", err)
		}
	}
	return nil
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}
	return loc, nil
}

func configNotLoadedErr(format string, args ...any) error {
	return errors.Join(fmt.Errorf(format, args...), ErrConfigNotLoaded)
}
