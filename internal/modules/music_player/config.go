package music_player

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the music player module configuration.
type Config struct {
	LavalinkAddress  string `env:"LAVALINK_ADDRESS"   envDefault:"localhost:2333"`
	LavalinkPassword string `env:"LAVALINK_PASSWORD,notEmpty"`
	LavalinkSecure   bool   `env:"LAVALINK_SECURE"    envDefault:"false"`
	LavalinkNodeName string `env:"LAVALINK_NODE_NAME" envDefault:"main"`

	Volume            int           `env:"PLAYER_VOLUME"             envDefault:"30"`
	InactivityTimeout time.Duration `env:"PLAYER_INACTIVITY_TIMEOUT" envDefault:"5m"`

	NotifyRate       float64 `env:"NOTIFY_RATE"        envDefault:"5"`
	NotifyBurst      int     `env:"NOTIFY_BURST"       envDefault:"5"`
	SessionInboxSize int     `env:"SESSION_INBOX_SIZE" envDefault:"100"`
}

// parseConfig reads the module configuration from the environment.
func parseConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Volume < 0 || c.Volume > 1000 {
		return fmt.Errorf("PLAYER_VOLUME must be between 0 and 1000, got %d", c.Volume)
	}
	if c.InactivityTimeout < 0 {
		return fmt.Errorf("PLAYER_INACTIVITY_TIMEOUT must not be negative, got %s", c.InactivityTimeout)
	}
	if c.NotifyRate <= 0 {
		return fmt.Errorf("NOTIFY_RATE must be positive, got %g", c.NotifyRate)
	}
	if c.NotifyBurst < 1 {
		return fmt.Errorf("NOTIFY_BURST must be at least 1, got %d", c.NotifyBurst)
	}
	if c.SessionInboxSize < 1 {
		return fmt.Errorf("SESSION_INBOX_SIZE must be at least 1, got %d", c.SessionInboxSize)
	}
	return nil
}
