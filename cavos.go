// Package cavos is the Go SDK for the Cavos wallet platform. It wraps three
// collaborators behind one facade: the wallet-provider gateway, the Auth0
// tenant that owns user identities, and the Supabase metadata store that maps
// organizations and users to wallet records.
//
// The facade is stateless. Every operation performs its remote calls fresh,
// holds no cross-call cache, and returns either a complete aggregated result
// or a single descriptive error; partial results are never exposed. Callers
// own session persistence and proactive token refresh.
package cavos

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/cavos-labs/cavos-go/auth0"
	"github.com/cavos-labs/cavos-go/httpapi"
	"github.com/cavos-labs/cavos-go/internal/config"
	"github.com/cavos-labs/cavos-go/metadata"
	"github.com/cavos-labs/cavos-go/wallet"
)

// DefaultNetwork is the network new wallets deploy to when none is given.
const DefaultNetwork = "sepolia"

// Config carries the coordinates of the three services.
type Config struct {
	// BaseURL of the wallet-provider gateway. Empty selects production.
	BaseURL string

	Auth0Domain           string
	Auth0ClientID         string
	Auth0ClientSecret     string
	Auth0MgmtClientID     string
	Auth0MgmtClientSecret string

	SupabaseURL     string
	SupabaseAnonKey string
}

// ConfigFromEnv builds a Config from the process environment (and a local
// .env file when present).
func ConfigFromEnv() (*Config, error) {
	env, err := config.Load()
	if err != nil {
		return nil, err
	}
	return &Config{
		BaseURL:               env.BaseURL,
		Auth0Domain:           env.Auth0Domain,
		Auth0ClientID:         env.Auth0ClientID,
		Auth0ClientSecret:     env.Auth0ClientSecret,
		Auth0MgmtClientID:     env.Auth0MgmtClientID,
		Auth0MgmtClientSecret: env.Auth0MgmtClientSecret,
		SupabaseURL:           env.SupabaseURL,
		SupabaseAnonKey:       env.SupabaseAnonKey,
	}, nil
}

// Service is the high-level facade. Sign-up and sign-in are orchestrated
// client-side: the SDK resolves the organization, drives Auth0 with the
// management credentials, and deploys or reads wallets itself.
type Service struct {
	gateway *wallet.Client
	idp     *auth0.Client
	store   *metadata.Store
	log     zerolog.Logger
}

// Option configures a Service.
type Option func(*serviceOptions)

type serviceOptions struct {
	httpClient *http.Client
	log        zerolog.Logger
	logSet     bool
}

// WithHTTPClient replaces the HTTP client used for gateway and identity
// calls, which tests use to stub the network.
func WithHTTPClient(h *http.Client) Option {
	return func(o *serviceOptions) { o.httpClient = h }
}

// WithLogger attaches a logger to every client.
func WithLogger(log zerolog.Logger) Option {
	return func(o *serviceOptions) { o.log = log; o.logSet = true }
}

// NewService wires the three clients from cfg.
func NewService(cfg Config, opts ...Option) (*Service, error) {
	if cfg.Auth0Domain == "" {
		return nil, fmt.Errorf("cavos: Auth0 domain is required")
	}
	if cfg.SupabaseURL == "" || cfg.SupabaseAnonKey == "" {
		return nil, fmt.Errorf("cavos: Supabase URL and anon key are required")
	}

	o := serviceOptions{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	var gatewayOpts []httpapi.Option
	var idpOpts []auth0.Option
	if o.httpClient != nil {
		gatewayOpts = append(gatewayOpts, httpapi.WithHTTPClient(o.httpClient))
		idpOpts = append(idpOpts, auth0.WithHTTPClient(o.httpClient))
	}
	if o.logSet {
		gatewayOpts = append(gatewayOpts, httpapi.WithLogger(o.log))
		idpOpts = append(idpOpts, auth0.WithLogger(o.log))
	}

	idp, err := auth0.New(auth0.Config{
		Domain:           cfg.Auth0Domain,
		ClientID:         cfg.Auth0ClientID,
		ClientSecret:     cfg.Auth0ClientSecret,
		MgmtClientID:     cfg.Auth0MgmtClientID,
		MgmtClientSecret: cfg.Auth0MgmtClientSecret,
	}, idpOpts...)
	if err != nil {
		return nil, err
	}

	store, err := metadata.New(cfg.SupabaseURL, cfg.SupabaseAnonKey, metadata.WithLogger(o.log))
	if err != nil {
		return nil, err
	}

	return &Service{
		gateway: wallet.New(cfg.BaseURL, gatewayOpts...),
		idp:     idp,
		store:   store,
		log:     o.log,
	}, nil
}

// Wallet exposes the low-level gateway client for direct wallet operations.
func (s *Service) Wallet() *wallet.Client {
	return s.gateway
}
