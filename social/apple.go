// Package social drives the Apple sign-in flow: it fetches the provider's
// redirect URL and hands it to a Navigator, and it decodes the user data the
// callback delivers to the caller's redirect target.
package social

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"github.com/pkg/browser"
	"github.com/rs/zerolog"
)

// Navigator sends the user agent to a URL. Which implementation fits depends
// on the runtime environment, not on the flow itself.
type Navigator interface {
	Navigate(url string) error
}

// BrowserNavigator opens the system browser.
type BrowserNavigator struct{}

func (BrowserNavigator) Navigate(u string) error {
	return browser.OpenURL(u)
}

// LogNavigator logs the URL instead of opening anything, for headless
// environments where the operator forwards it to the user.
type LogNavigator struct {
	Log zerolog.Logger
}

func (n LogNavigator) Navigate(u string) error {
	n.Log.Info().Str("url", u).Msg("open this URL to continue Apple sign-in")
	return nil
}

// LoginURLFetcher is the slice of the gateway client the flow needs.
type LoginURLFetcher interface {
	AppleLoginURL(ctx context.Context, network, orgToken string) (string, error)
}

// Flow starts an Apple sign-in.
type Flow struct {
	Gateway   LoginURLFetcher
	OrgToken  string
	Network   string
	Navigator Navigator
}

// Start fetches the redirect URL, tags it with a fresh state parameter, and
// navigates to it. The state value is returned so the caller can match the
// callback.
func (f *Flow) Start(ctx context.Context) (string, error) {
	if f.Gateway == nil {
		return "", fmt.Errorf("apple sign-in: gateway client is required")
	}
	nav := f.Navigator
	if nav == nil {
		nav = BrowserNavigator{}
	}

	loginURL, err := f.Gateway.AppleLoginURL(ctx, f.Network, f.OrgToken)
	if err != nil {
		return "", err
	}

	u, err := url.Parse(loginURL)
	if err != nil {
		return "", fmt.Errorf("apple sign-in: parse login url: %w", err)
	}
	state := uuid.NewString()
	q := u.Query()
	q.Set("state", state)
	u.RawQuery = q.Encode()

	if err := nav.Navigate(u.String()); err != nil {
		return "", fmt.Errorf("apple sign-in: navigate: %w", err)
	}
	return state, nil
}

// CallbackData is the record the callback appends to the caller's redirect
// target as the user_data query parameter.
type CallbackData struct {
	UserID    string          `json:"user_id"`
	Email     string          `json:"email"`
	Wallet    json.RawMessage `json:"wallet"`
	CreatedAt string          `json:"created_at"`
}

// ParseCallback extracts the URL-encoded JSON user_data parameter from the
// final redirect URL.
func ParseCallback(rawURL string) (*CallbackData, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse callback url: %w", err)
	}
	payload := u.Query().Get("user_data")
	if payload == "" {
		return nil, fmt.Errorf("callback url has no user_data parameter")
	}
	var data CallbackData
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		return nil, fmt.Errorf("decode user_data: %w", err)
	}
	return &data, nil
}
