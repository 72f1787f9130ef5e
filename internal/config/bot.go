package config

import "github.com/caarlos0/env/v11"

type BotConfig struct {
	WSURL     string `env:"BOT_WS_URL" envDefault:"ws://localhost:8080/ws"`
	Nick      string `env:"BOT_NICK" envDefault:"bot"`
	PIN       string `env:"BOT_PIN,required,notEmpty"`
	RaiseStep int64  `env:"BOT_RAISE_STEP" envDefault:"20"`
	Rebuy     int64  `env:"BOT_REBUY" envDefault:"0"`
	Seed      int64  `env:"BOT_SEED" envDefault:"0"`
}

func LoadBot() (BotConfig, error) {
	var cfg BotConfig
	err := env.Parse(&cfg)
	return cfg, err
}
