// Package config loads process configuration from environment variables.
//
// All ambient environment access happens here, once, at startup. Business
// logic receives the parsed Config (or individual values) by reference and
// never reads os.Getenv itself.
package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds every tunable the server needs.
//
// JWT_SECRET has no default on purpose: signing session tokens with a
// guessable secret would let anyone mint valid credentials, so a missing
// secret is a startup failure, not a per-request warning.
type Config struct {
	Port   int    `env:"PORT"    envDefault:"8080"`
	DBPath string `env:"DB_PATH" envDefault:"data/contactbook.db"`

	// BaseURL is the externally reachable address used when building
	// verification links in outgoing email.
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	JWTSecret string `env:"JWT_SECRET"`

	// UploadDir holds uploads while they are validated and transformed;
	// AvatarDir is where processed avatars live permanently.
	UploadDir      string `env:"UPLOAD_DIR"       envDefault:"tmp"`
	AvatarDir      string `env:"AVATAR_DIR"       envDefault:"public/avatars"`
	AvatarMaxBytes int64  `env:"AVATAR_MAX_BYTES" envDefault:"1048576"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPFrom     string `env:"SMTP_FROM" envDefault:"no-reply@contactbook.local"`
}

// Load parses the environment into a Config and validates the values the
// server cannot run without.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("config: parsing environment: %w", err)
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("config: JWT_SECRET must be set")
	}
	if cfg.AvatarMaxBytes <= 0 {
		return nil, fmt.Errorf("config: AVATAR_MAX_BYTES must be positive, got %d", cfg.AvatarMaxBytes)
	}

	return &cfg, nil
}
