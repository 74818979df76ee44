package social

import (
	"context"
	"net/url"
	"strings"
	"testing"
)

type fakeFetcher struct {
	url     string
	err     error
	network string
	token   string
}

func (f *fakeFetcher) AppleLoginURL(_ context.Context, network, orgToken string) (string, error) {
	f.network = network
	f.token = orgToken
	return f.url, f.err
}

type captureNavigator struct {
	visited string
}

func (n *captureNavigator) Navigate(u string) error {
	n.visited = u
	return nil
}

func TestStartNavigatesWithStateParameter(t *testing.T) {
	fetcher := &fakeFetcher{url: "https://appleid.apple.com/auth/authorize?client_id=abc"}
	nav := &captureNavigator{}
	flow := &Flow{Gateway: fetcher, OrgToken: "org-token", Network: "sepolia", Navigator: nav}

	state, err := flow.Start(context.Background())
	if err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if state == "" {
		t.Fatal("empty state")
	}
	if fetcher.network != "sepolia" || fetcher.token != "org-token" {
		t.Errorf("fetcher called with network=%q token=%q", fetcher.network, fetcher.token)
	}

	u, err := url.Parse(nav.visited)
	if err != nil {
		t.Fatalf("parse visited url: %v", err)
	}
	if u.Query().Get("state") != state {
		t.Errorf("visited state = %q, want %q", u.Query().Get("state"), state)
	}
	if u.Query().Get("client_id") != "abc" {
		t.Errorf("original query dropped: %s", nav.visited)
	}
}

func TestStartRequiresGateway(t *testing.T) {
	flow := &Flow{}
	if _, err := flow.Start(context.Background()); err == nil {
		t.Fatal("Start() succeeded without a gateway client")
	}
}

func TestParseCallback(t *testing.T) {
	payload := `{"user_id":"auth0|u1","email":"test@example.com","wallet":{"address":"0xabc"},"created_at":"2026-02-01T00:00:00Z"}`
	cb := "https://app.example.com/done?user_data=" + url.QueryEscape(payload)

	data, err := ParseCallback(cb)
	if err != nil {
		t.Fatalf("ParseCallback() error: %v", err)
	}
	if data.UserID != "auth0|u1" || data.Email != "test@example.com" {
		t.Errorf("data = %+v", data)
	}
	if !strings.Contains(string(data.Wallet), `"address":"0xabc"`) {
		t.Errorf("wallet = %s", data.Wallet)
	}
}

func TestParseCallbackMissingUserData(t *testing.T) {
	if _, err := ParseCallback("https://app.example.com/done"); err == nil {
		t.Fatal("ParseCallback() accepted a url without user_data")
	}
}

func TestParseCallbackBadJSON(t *testing.T) {
	cb := "https://app.example.com/done?user_data=" + url.QueryEscape("not json")
	if _, err := ParseCallback(cb); err == nil {
		t.Fatal("ParseCallback() accepted malformed user_data")
	}
}
