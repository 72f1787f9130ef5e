package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// LogConfig drives logging.Init for every binary in the repo.
type LogConfig struct {
	Level       string `env:"LOG_LEVEL" envDefault:"info"`
	Pretty      bool   `env:"LOG_PRETTY" envDefault:"false"`
	SampleEvery int    `env:"LOG_SAMPLE_EVERY" envDefault:"0"`
	File        string `env:"LOG_FILE"`
	MaxMB       int    `env:"LOG_MAX_MB" envDefault:"10"`
	// Backups is how many rotated files (LOG_FILE.1, .2, ...) are kept.
	// Zero truncates in place.
	Backups int `env:"LOG_BACKUPS" envDefault:"1"`
}

func LoadLog() (LogConfig, error) {
	var cfg LogConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c LogConfig) Validate() error {
	switch {
	case c.MaxMB <= 0:
		return fmt.Errorf("LOG_MAX_MB must be positive, got %d", c.MaxMB)
	case c.Backups < 0:
		return fmt.Errorf("LOG_BACKUPS must not be negative, got %d", c.Backups)
	case c.SampleEvery < 0:
		return fmt.Errorf("LOG_SAMPLE_EVERY must not be negative, got %d", c.SampleEvery)
	}
	return nil
}
