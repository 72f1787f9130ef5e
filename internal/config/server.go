package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// ServerConfig covers the casino-server process: storage, listener and the
// websocket edge.
type ServerConfig struct {
	PostgresDSN     string        `env:"POSTGRES_DSN,required,notEmpty"`
	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	AdminAPIKey     string        `env:"ADMIN_API_KEY"`

	// Empty allows any origin.
	AllowedOrigins []string `env:"WS_ALLOWED_ORIGINS" envSeparator:","`
	// Outbound frames queued per client before it is dropped as too slow.
	SendBuffer int `env:"WS_SEND_BUFFER" envDefault:"32"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	err := env.Parse(&cfg)
	return cfg, err
}
