// Package config loads SDK configuration from the process environment. A
// local .env file is picked up automatically when present.
package config

import (
	"fmt"

	"github.com/joeshaw/envdecode"
	_ "github.com/joho/godotenv/autoload"
)

// Config holds everything the SDK needs to reach the three services. Only
// the base URL has a default; each client validates the fields it needs so
// wallet-only callers can leave the identity and metadata settings unset.
type Config struct {
	BaseURL string `env:"CAVOS_BASE_URL,default=https://services.cavos.xyz/api/v1/external"`

	Auth0Domain           string `env:"AUTH0_DOMAIN"`
	Auth0ClientID         string `env:"AUTH0_CLIENT_ID"`
	Auth0ClientSecret     string `env:"AUTH0_CLIENT_SECRET"`
	Auth0MgmtClientID     string `env:"AUTH0_MGMT_CLIENT_ID"`
	Auth0MgmtClientSecret string `env:"AUTH0_MGMT_CLIENT_SECRET"`

	SupabaseURL     string `env:"SUPABASE_URL"`
	SupabaseAnonKey string `env:"SUPABASE_ANON_KEY"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode environment: %w", err)
	}
	return &cfg, nil
}
