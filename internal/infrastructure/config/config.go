package config

import (
	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration.
type Config struct {
	// Backing file, resolved against the working directory when relative.
	LedgerFile string `env:"LEDGER_FILE" envDefault:"transactions.txt"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"warn"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	err := env.Parse(cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}
