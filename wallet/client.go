// Package wallet is the low-level client for the Cavos wallet-provider
// gateway. Every method is a single HTTP call: inputs are forwarded verbatim
// and 2xx response payloads are returned as decoded, without transformation.
package wallet

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"

	"github.com/cavos-labs/cavos-go/httpapi"
)

// ProductionBaseURL is the public gateway endpoint.
const ProductionBaseURL = "https://services.cavos.xyz/api/v1/external"

// DefaultNetwork is used by reads when no network is given.
const DefaultNetwork = "mainnet"

// Client talks to the wallet-provider gateway.
type Client struct {
	api *httpapi.Client
}

// New creates a gateway client. An empty baseURL selects the production
// endpoint.
func New(baseURL string, opts ...httpapi.Option) *Client {
	if baseURL == "" {
		baseURL = ProductionBaseURL
	}
	return &Client{api: httpapi.NewClient(baseURL, opts...)}
}

// Deploy deploys a new wallet on the given network, authenticated with the
// caller's API key.
func (c *Client) Deploy(ctx context.Context, network, apiKey string) (*DeployedWallet, error) {
	var out DeployedWallet
	err := c.api.Do(ctx, httpapi.Request{
		Method: http.MethodPost,
		Path:   "/deploy",
		Body:   map[string]string{"network": network},
		Bearer: apiKey,
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("deployWallet failed: %w", err)
	}
	return &out, nil
}

// Execute submits a batch of calls for execution. The result is returned
// exactly as the provider sent it.
func (c *Client) Execute(ctx context.Context, req ExecuteRequest, apiKey string) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.api.Do(ctx, httpapi.Request{
		Method: http.MethodPost,
		Path:   "/execute",
		Body:   req,
		Bearer: apiKey,
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("executeAction failed: %w", err)
	}
	return out, nil
}

// TransactionTransfers lists the transfers of a transaction. No
// authentication is attached. An empty network defaults to mainnet.
func (c *Client) TransactionTransfers(ctx context.Context, txHash, network string) (json.RawMessage, error) {
	if network == "" {
		network = DefaultNetwork
	}
	q := url.Values{}
	q.Set("txHash", txHash)
	q.Set("network", network)

	var out json.RawMessage
	err := c.api.Do(ctx, httpapi.Request{
		Method: http.MethodGet,
		Path:   "/tx",
		Query:  q,
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("getTransactionTransfers failed: %w", err)
	}
	return out, nil
}

// WalletCounts returns the number of deployed wallets per network. No
// authentication is attached.
func (c *Client) WalletCounts(ctx context.Context) (map[string]int, error) {
	var out map[string]int
	err := c.api.Do(ctx, httpapi.Request{
		Method: http.MethodGet,
		Path:   "/wallets/count",
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("getWalletCounts failed: %w", err)
	}
	return out, nil
}

// FormatAmount asks the provider to split a decimal amount into the uint256
// low/high representation. Zero decimals defaults to 18. The SDK performs no
// arithmetic of its own.
func (c *Client) FormatAmount(ctx context.Context, amount string, decimals int) (*Uint256, error) {
	if decimals == 0 {
		decimals = 18
	}
	var out struct {
		Uint256 Uint256 `json:"uint256"`
	}
	err := c.api.Do(ctx, httpapi.Request{
		Method: http.MethodPost,
		Path:   "/format",
		Body:   map[string]any{"amount": amount, "decimals": decimals},
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("formatAmount failed: %w", err)
	}
	return &out.Uint256, nil
}

// DeleteUser removes a user from the calling organization. The gateway takes
// the user id in the DELETE body.
func (c *Client) DeleteUser(ctx context.Context, userID, orgSecret string) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.api.Do(ctx, httpapi.Request{
		Method: http.MethodDelete,
		Path:   "/orgs/users",
		Body:   map[string]string{"user_id": userID},
		Bearer: orgSecret,
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("deleteUser failed: %w", err)
	}
	return out, nil
}

// =============================================================================
// Raw gateway auth bindings
// =============================================================================
//
// These bind the gateway's own auth endpoints, where the remote service runs
// the whole flow in one call. The cavos.Service facade orchestrates the flow
// client-side instead and only uses Refresh from this group; the rest are
// exposed for callers that want the gateway-delegated behavior explicitly.

// Register creates an identity and deploys its wallet in one gateway call.
func (c *Client) Register(ctx context.Context, email, password, network, orgSecret string) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.api.Do(ctx, httpapi.Request{
		Method: http.MethodPost,
		Path:   "/auth/register",
		Body:   map[string]string{"email": email, "password": password, "network": network},
		Bearer: orgSecret,
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("register failed: %w", err)
	}
	return out, nil
}

// Login authenticates a user through the gateway.
func (c *Client) Login(ctx context.Context, email, password, orgSecret string) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.api.Do(ctx, httpapi.Request{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Body:   map[string]string{"email": email, "password": password},
		Bearer: orgSecret,
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	return out, nil
}

// Refresh exchanges a refresh token for new session tokens plus wallet info.
func (c *Client) Refresh(ctx context.Context, refreshToken, orgSecret string) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.api.Do(ctx, httpapi.Request{
		Method: http.MethodPost,
		Path:   "/auth/refresh",
		Body:   map[string]string{"refresh_token": refreshToken},
		Bearer: orgSecret,
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("refreshToken failed: %w", err)
	}
	return out, nil
}

// Logout asks the gateway for a logout redirect URL. No authentication is
// attached; the access token travels in the body.
func (c *Client) Logout(ctx context.Context, accessToken string) (*LogoutResult, error) {
	var out LogoutResult
	err := c.api.Do(ctx, httpapi.Request{
		Method: http.MethodPost,
		Path:   "/auth/logout",
		Body:   map[string]string{"access_token": accessToken},
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("logout failed: %w", err)
	}
	return &out, nil
}

// AppleLoginURL fetches the redirect URL that starts the Apple sign-in flow
// for the given network, authenticated with the organization token.
func (c *Client) AppleLoginURL(ctx context.Context, network, orgToken string) (string, error) {
	q := url.Values{}
	if network != "" {
		q.Set("network", network)
	}
	var out json.RawMessage
	err := c.api.Do(ctx, httpapi.Request{
		Method: http.MethodGet,
		Path:   "/auth/apple",
		Query:  q,
		Bearer: orgToken,
	}, &out)
	if err != nil {
		return "", fmt.Errorf("appleLogin failed: %w", err)
	}
	// The gateway has answered with both {url} and {data:{url}} shapes.
	for _, key := range []string{"url", "data.url", "redirect_url"} {
		if v := gjson.GetBytes(out, key); v.Exists() && v.String() != "" {
			return v.String(), nil
		}
	}
	return "", fmt.Errorf("appleLogin failed: %w: no url in response", httpapi.ErrMalformedResponse)
}
