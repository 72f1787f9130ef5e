package config

import "github.com/caarlos0/env/v11"

type AdminConfig struct {
	PostgresDSN string `env:"POSTGRES_DSN,required,notEmpty"`
	StartCoins  int64  `env:"ADMIN_START_COINS" envDefault:"1000"`
}

func LoadAdmin() (AdminConfig, error) {
	var cfg AdminConfig
	err := env.Parse(&cfg)
	return cfg, err
}
