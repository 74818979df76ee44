// Package auth0 is the identity-provider client used by the sign-up and
// sign-in orchestrations: management-API calls with a machine-to-machine
// token, the password grant for end users, and token revocation.
package auth0

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/cavos-labs/cavos-go/httpapi"
)

// Connection is the database connection new identities are created in.
const Connection = "Username-Password-Authentication"

// Config carries the tenant coordinates and both credential pairs: the
// regular application (password grant, revocation) and the machine-to-machine
// application (management API).
type Config struct {
	// Domain is the tenant domain, e.g. "example.us.auth0.com". A full URL is
	// accepted too, which test setups use to point at a local server.
	Domain           string
	ClientID         string
	ClientSecret     string
	MgmtClientID     string
	MgmtClientSecret string
}

// Client talks to one Auth0 tenant.
type Client struct {
	cfg        Config
	baseURL    string
	api        *httpapi.Client
	httpClient *http.Client
	log        zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client used for every call, including the
// oauth2 token exchanges.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New creates a tenant client.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.Domain == "" {
		return nil, fmt.Errorf("auth0: domain is required")
	}
	baseURL := cfg.Domain
	if !strings.Contains(baseURL, "://") {
		baseURL = "https://" + baseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	c := &Client{
		cfg:        cfg,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.api = httpapi.NewClient(baseURL, httpapi.WithHTTPClient(c.httpClient), httpapi.WithLogger(c.log))
	return c, nil
}

// ManagementToken mints a machine-to-machine token for the management API
// via the client-credentials grant.
func (c *Client) ManagementToken(ctx context.Context) (string, error) {
	if c.cfg.MgmtClientID == "" || c.cfg.MgmtClientSecret == "" {
		return "", fmt.Errorf("auth0: management credentials not configured")
	}
	cc := clientcredentials.Config{
		ClientID:     c.cfg.MgmtClientID,
		ClientSecret: c.cfg.MgmtClientSecret,
		TokenURL:     c.baseURL + "/oauth/token",
		AuthStyle:    oauth2.AuthStyleInParams,
		EndpointParams: url.Values{
			"audience": {c.baseURL + "/api/v2/"},
		},
	}
	tok, err := cc.Token(context.WithValue(ctx, oauth2.HTTPClient, c.httpClient))
	if err != nil {
		return "", fmt.Errorf("management token: %w", err)
	}
	return tok.AccessToken, nil
}

// CreateUser creates an identity in the tenant's database connection.
func (c *Client) CreateUser(ctx context.Context, mgmtToken, email, password string) (*User, error) {
	var out User
	err := c.api.Do(ctx, httpapi.Request{
		Method: http.MethodPost,
		Path:   "/api/v2/users",
		Body: map[string]string{
			"email":      email,
			"password":   password,
			"connection": Connection,
		},
		Bearer: mgmtToken,
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &out, nil
}

// AddOrganizationMember adds a user to an Auth0 organization.
func (c *Client) AddOrganizationMember(ctx context.Context, mgmtToken, auth0OrgID, userID string) error {
	err := c.api.Do(ctx, httpapi.Request{
		Method: http.MethodPost,
		Path:   "/api/v2/organizations/" + auth0OrgID + "/members",
		Body:   map[string][]string{"members": {userID}},
		Bearer: mgmtToken,
	}, nil)
	if err != nil {
		return fmt.Errorf("add organization member: %w", err)
	}
	return nil
}

// DeleteUser removes an identity. The sign-up compensator uses this to clean
// up when a later step fails.
func (c *Client) DeleteUser(ctx context.Context, mgmtToken, userID string) error {
	err := c.api.Do(ctx, httpapi.Request{
		Method: http.MethodDelete,
		Path:   "/api/v2/users/" + url.PathEscape(userID),
		Bearer: mgmtToken,
	}, nil)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// PasswordGrant exchanges end-user credentials for session tokens. A token
// response without a usable access token reports ErrInvalidCredentials.
func (c *Client) PasswordGrant(ctx context.Context, email, password string) (*TokenSet, error) {
	conf := &oauth2.Config{
		ClientID:     c.cfg.ClientID,
		ClientSecret: c.cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  c.baseURL + "/oauth/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
		Scopes: []string{"openid", "profile", "email", "offline_access"},
	}
	tok, err := conf.PasswordCredentialsToken(context.WithValue(ctx, oauth2.HTTPClient, c.httpClient), email, password)
	if err != nil {
		var rErr *oauth2.RetrieveError
		if errors.As(err, &rErr) {
			return nil, fmt.Errorf("%w: %s", httpapi.ErrInvalidCredentials, strings.TrimSpace(string(rErr.Body)))
		}
		return nil, fmt.Errorf("password grant: %w", err)
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("%w: token response had no access token", httpapi.ErrInvalidCredentials)
	}

	set := &TokenSet{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Expiry:       tok.Expiry,
	}
	if id, ok := tok.Extra("id_token").(string); ok {
		set.IDToken = id
	}
	return set, nil
}

// UserInfo fetches the profile behind an access token.
func (c *Client) UserInfo(ctx context.Context, accessToken string) (*Profile, error) {
	var out Profile
	err := c.api.Do(ctx, httpapi.Request{
		Method: http.MethodGet,
		Path:   "/userinfo",
		Bearer: accessToken,
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("userinfo: %w", err)
	}
	return &out, nil
}

// RevokeToken revokes a refresh token using the application credentials. The
// revocation endpoint's response body is ignored on success.
func (c *Client) RevokeToken(ctx context.Context, token string) error {
	err := c.api.Do(ctx, httpapi.Request{
		Method: http.MethodPost,
		Path:   "/oauth/revoke",
		Body: map[string]string{
			"client_id":     c.cfg.ClientID,
			"client_secret": c.cfg.ClientSecret,
			"token":         token,
		},
	}, nil)
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}
