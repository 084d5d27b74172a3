package bot

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the bot configuration loaded from environment variables.
type Config struct {
	DiscordToken string     `env:"DISCORD_TOKEN,notEmpty"`
	LogLevel     slog.Level `env:"LOG_LEVEL"              envDefault:"info"`
}

// LoadConfig loads configuration from environment variables.
// Variables from a .env file in the working directory are loaded first,
// without overriding the ones already set.
// Returns an error if required fields are missing.
func LoadConfig() (*Config, error) {
	if err := LoadDotEnv(); err != nil {
		return nil, err
	}

	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadDotEnv loads the given .env files, or ".env" when none are given.
// Missing files are ignored.
func LoadDotEnv(filenames ...string) error {
	if err := godotenv.Load(filenames...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}
