// Package config loads client configuration from the environment, with an
// optional .env file for development.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the full client configuration.
type Config struct {
	// APIURL is the backend base URL, including the /api prefix.
	APIURL string `env:"BOOKX_API_URL" envDefault:"http://localhost:8000/api"`

	// TokenFile is where the session tokens persist between runs. Empty
	// means the platform config dir, e.g. ~/.config/bookx/tokens.json.
	TokenFile string `env:"BOOKX_TOKEN_FILE"`

	// HTTPTimeout bounds every request, refresh rounds included.
	HTTPTimeout time.Duration `env:"BOOKX_HTTP_TIMEOUT" envDefault:"30s"`

	// LogLevel is a zerolog level name: trace, debug, info, warn, error.
	LogLevel string `env:"BOOKX_LOG_LEVEL" envDefault:"info"`

	// Pretty switches log output to the human console writer.
	Pretty bool `env:"BOOKX_LOG_PRETTY" envDefault:"true"`
}

// Load reads the environment into a Config. A .env file in the working
// directory is applied first when present; a missing one is not an error.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.TokenFile == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return Config{}, fmt.Errorf("resolve config dir: %w", err)
		}
		cfg.TokenFile = filepath.Join(dir, "bookx", "tokens.json")
	}
	return cfg, nil
}
