package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config is the process configuration, read from the environment.
type Config struct {
	Port   string `envconfig:"BACKOFFICE_PORT" default:"8080"`
	DBPath string `envconfig:"BACKOFFICE_DB_PATH" default:"backoffice.db"`

	LogLevel string `envconfig:"BACKOFFICE_LOG_LEVEL" default:"info"`

	// CalendarWorkers bounds the receipt-calendar fan-out; keep it at or
	// below the storage connection pool size.
	CalendarWorkers int `envconfig:"BACKOFFICE_CALENDAR_WORKERS" default:"4"`

	// SeedPath is the fixture loaded when the database is empty.
	SeedPath string `envconfig:"BACKOFFICE_SEED_PATH" default:"testdata/seed.json"`
}

func Load() (*Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &c, nil
}
