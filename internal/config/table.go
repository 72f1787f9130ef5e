package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	deckSize     = 52
	burnsAndBoard = 8
)

// TableConfig holds the knobs of the single hosted table.
type TableConfig struct {
	ID            string        `env:"TABLE_ID" envDefault:"main"`
	MaxSeats      int           `env:"TABLE_MAX_SEATS" envDefault:"6"`
	BuyIn         int64         `env:"TABLE_BUY_IN" envDefault:"500"`
	SmallBlind    int64         `env:"TABLE_SMALL_BLIND" envDefault:"10"`
	BigBlind      int64         `env:"TABLE_BIG_BLIND" envDefault:"20"`
	TurnTimeout   time.Duration `env:"TABLE_TURN_TIMEOUT" envDefault:"30s"`
	SweepInterval time.Duration `env:"TABLE_SWEEP_INTERVAL" envDefault:"2s"`
	ShowdownPause time.Duration `env:"TABLE_SHOWDOWN_PAUSE" envDefault:"1500ms"`
}

func LoadTable() (TableConfig, error) {
	var cfg TableConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c TableConfig) Validate() error {
	switch {
	case c.MaxSeats < 2:
		return fmt.Errorf("TABLE_MAX_SEATS must be at least 2, got %d", c.MaxSeats)
	case 2*c.MaxSeats+burnsAndBoard > deckSize:
		// two hole cards each plus three burns and five board cards
		return fmt.Errorf("TABLE_MAX_SEATS %d needs more than %d cards", c.MaxSeats, deckSize)
	case c.SmallBlind <= 0 || c.BigBlind < c.SmallBlind:
		return fmt.Errorf("invalid blinds %d/%d", c.SmallBlind, c.BigBlind)
	case c.BuyIn < c.BigBlind:
		return fmt.Errorf("TABLE_BUY_IN %d below big blind %d", c.BuyIn, c.BigBlind)
	case c.TurnTimeout <= 0 || c.SweepInterval <= 0:
		return fmt.Errorf("turn timeout and sweep interval must be positive")
	}
	return nil
}
