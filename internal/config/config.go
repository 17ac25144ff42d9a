package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath   string     `env:"DB_PATH" envDefault:"data/guessactor.db"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	SPADir   string     `env:"SPA_DIR" envDefault:"../web/dist"`
	RedisURL string     `env:"REDIS_URL"`

	AdminEmail    string `env:"ADMIN_EMAIL" envDefault:"admin@guessactor.local"`
	AdminPassword string `env:"ADMIN_PASSWORD" envDefault:"admin123"`

	// Timezone defines the calendar date used for daily limits and rewards.
	Timezone   string `env:"TIMEZONE" envDefault:"UTC"`
	TuningFile string `env:"TUNING_FILE"`
	SeedDemo   bool   `env:"SEED_DEMO" envDefault:"true"`

	// SessionIdle is how long an unused player session stays cached.
	SessionIdle time.Duration `env:"SESSION_IDLE" envDefault:"30m"`
	// CatalogPoll is how often the stored catalog version is checked for
	// changes made by the CLI or other instances.
	CatalogPoll time.Duration `env:"CATALOG_POLL" envDefault:"2s"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	if cfg.SessionIdle <= 0 || cfg.CatalogPoll <= 0 {
		return nil, errors.New("SESSION_IDLE and CATALOG_POLL must be positive")
	}
	return &cfg, nil
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
