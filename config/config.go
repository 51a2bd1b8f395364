// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime settings for the relay.
type Config struct {
	// Address the HTTP server listens on.
	Address string `env:"RESQ_ADDRESS" envDefault:":5000"`

	// DBPath is the sqlite database holding user accounts.
	DBPath string `env:"RESQ_DB" envDefault:"resq.db"`

	// JWTSecret signs and verifies auth tokens.
	JWTSecret string `env:"RESQ_JWT_SECRET" envDefault:"secret"`

	// AllowAnonymous permits sockets without a valid token to connect.
	// When false such connections are rejected with 401.
	AllowAnonymous bool `env:"RESQ_ALLOW_ANONYMOUS" envDefault:"true"`

	// AlertRadiusKm is the proximity alert radius in kilometers.
	AlertRadiusKm float64 `env:"RESQ_ALERT_RADIUS_KM" envDefault:"1"`

	// DataDir is where state files such as push subscriptions are kept.
	DataDir string `env:"RESQ_DATA_DIR" envDefault:"."`

	// VAPID keys for web push. Push stays disabled when unset.
	VAPIDPublicKey  string `env:"RESQ_VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string `env:"RESQ_VAPID_PRIVATE_KEY"`
	VAPIDSubject    string `env:"RESQ_VAPID_SUBJECT" envDefault:"mailto:push@resq.live"`
}

// Load parses configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.AlertRadiusKm <= 0 {
		return Config{}, fmt.Errorf("alert radius must be positive, got %v", cfg.AlertRadiusKm)
	}
	return cfg, nil
}
