/*
Package config loads server configuration from the environment.

PURPOSE:
  Central configuration for cmd/server. Values come from environment
  variables with sane defaults; command-line flags in main.go override the
  address and database path for local runs.

USAGE:
  cfg, err := config.Load()
  if err != nil {
      log.Fatal(err)
  }
*/
package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all server settings.
type Config struct {
	Env    string `env:"APP_ENV" env-default:"local"`
	Addr   string `env:"HTTP_ADDR" env-default:":8080"`
	DBPath string `env:"DB_PATH" env-default:"backoffice.db"`

	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"15s"`
	IdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"30s"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return &cfg, nil
}
