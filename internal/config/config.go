// Package config loads server configuration from environment variables.
package config

import (
	"fmt"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds the application configuration loaded from environment
// variables.
type Config struct {
	// Port is the HTTP listen port.
	// Environment variable: PORT
	Port string `koanf:"PORT"`

	// UseMemoryStore selects the in-memory store for local development.
	// Environment variable: USE_MEMORY_STORE
	UseMemoryStore bool `koanf:"USE_MEMORY_STORE"`

	// ProjectID is the Google Cloud project for the Firestore store.
	// Environment variable: GOOGLE_CLOUD_PROJECT
	ProjectID string `koanf:"GOOGLE_CLOUD_PROJECT"`

	// APIToken is the static bearer token required on every request. When
	// empty and the memory store is selected, the local-dev identity is used
	// instead.
	// Environment variable: API_TOKEN
	APIToken string `koanf:"API_TOKEN"`

	// LogLevel is the minimum slog level (DEBUG, INFO, WARN, ERROR).
	// Environment variable: LOG_LEVEL
	LogLevel string `koanf:"LOG_LEVEL"`

	// LogJSON enables JSON log output for production.
	// Environment variable: LOG_JSON
	LogJSON bool `koanf:"LOG_JSON"`
}

// Load reads configuration from the process environment and applies
// defaults.
func Load() (Config, error) {
	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", nil), nil); err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf", FlatPaths: true}); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Port == "" {
		cfg.Port = "8111"
	}
	return cfg, nil
}
