// Package config loads the client's configuration from the environment,
// with optional .env file support for development.
package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

const envPrefix = "SHOPFRONT"

// Config is the runtime configuration of the storefront client.
type Config struct {
	// APIRoot is the base URL of the storefront backend.
	APIRoot string `envconfig:"API_ROOT" default:"http://localhost:8080"`

	// CredentialsPath overrides where the token pair is stored. Empty
	// selects the per-user default location.
	CredentialsPath string `envconfig:"CREDENTIALS_PATH"`

	// VaultPassphrase, when set, seals stored credentials at rest.
	VaultPassphrase string `envconfig:"VAULT_PASSPHRASE"`

	// HTTPTimeout bounds every backend round-trip.
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`

	// LogLevel is a zerolog level name (debug, info, warn, error).
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads configuration from the environment. A .env file in the
// working directory is merged in first, if present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "[config.Load] loading .env")
	}

	cfg := Config{}
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, errors.Wrap(err, "[config.Load] processing environment")
	}
	return &cfg, nil
}
