// Package config contains runtime configuration required by gatherctl.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is read from the environment. Defaults point at the public
// gather deployment and its authorization server.
type Config struct {
	GatewayURL        string        `env:"GATHER_GATEWAY_URL" envDefault:"http://164.90.185.210:8080"`
	AuthURL           string        `env:"GATHER_AUTH_URL" envDefault:"http://164.90.185.210:9000"`
	OAuthClientID     string        `env:"GATHER_OAUTH_CLIENT_ID" envDefault:"my-client-id"`
	OAuthClientSecret string        `env:"GATHER_OAUTH_CLIENT_SECRET" envDefault:"my-client-secret"`
	CallbackAddr      string        `env:"GATHER_OAUTH_CALLBACK_ADDR" envDefault:"localhost:5556"`
	SessionPath       string        `env:"GATHER_SESSION_PATH"`
	HTTPTimeout       time.Duration `env:"GATHER_HTTP_TIMEOUT" envDefault:"30s"`
}

// Load parses the environment and fills the session path default
// (~/.config/gatherctl/session.db) when unset.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.GatewayURL == "" {
		return Config{}, errors.New("GATHER_GATEWAY_URL required")
	}
	if cfg.AuthURL == "" {
		return Config{}, errors.New("GATHER_AUTH_URL required")
	}
	if cfg.SessionPath == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return Config{}, err
		}
		cfg.SessionPath = filepath.Join(dir, "gatherctl", "session.db")
	}
	return cfg, nil
}
