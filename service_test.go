package cavos

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cavos-labs/cavos-go/httpapi"
)

// testBackend fakes the wallet gateway, the Auth0 tenant, and the Supabase
// project behind one Service, counting requests per path.
type testBackend struct {
	t *testing.T

	gateway  *httptest.Server
	idp      *httptest.Server
	supabase *httptest.Server

	mu     sync.Mutex
	hits   map[string]int
	tables map[string]string

	deployStatus  int
	revokeStatus  int
	passwordGrant string // JSON body for grant_type=password
}

func newTestBackend(t *testing.T) *testBackend {
	t.Helper()
	b := &testBackend{
		t:            t,
		hits:         map[string]int{},
		tables:       map[string]string{},
		deployStatus: http.StatusOK,
		revokeStatus: http.StatusOK,
		passwordGrant: `{"access_token":"user-at","id_token":"user-idt","refresh_token":"user-rt",
			"token_type":"Bearer","expires_in":3600}`,
	}

	b.gateway = httptest.NewServer(http.HandlerFunc(b.serveGateway))
	b.idp = httptest.NewServer(http.HandlerFunc(b.serveIDP))
	b.supabase = httptest.NewServer(http.HandlerFunc(b.serveSupabase))
	t.Cleanup(b.gateway.Close)
	t.Cleanup(b.idp.Close)
	t.Cleanup(b.supabase.Close)
	return b
}

func (b *testBackend) record(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hits[key]++
}

func (b *testBackend) count(key string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[key]
}

func (b *testBackend) totalIDPCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for key, c := range b.hits {
		if strings.HasPrefix(key, "idp:") {
			n += c
		}
	}
	return n
}

func (b *testBackend) serveGateway(w http.ResponseWriter, r *http.Request) {
	b.record("gateway:" + r.URL.Path)
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/deploy":
		if b.deployStatus != http.StatusOK {
			w.WriteHeader(b.deployStatus)
			w.Write([]byte(`{"message":"deployment rejected"}`))
			return
		}
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		json.NewEncoder(w).Encode(map[string]string{
			"address":     "0xdeployed",
			"public_key":  "0xpub",
			"private_key": "0xpriv",
			"network":     req["network"],
		})
	case "/auth/refresh":
		w.Write([]byte(`{"user":{"user_id":"auth0|u1","email":"test@example.com"},
			"session":{"access_token":"refreshed-at","refresh_token":"refreshed-rt"},
			"wallet":{"address":"0xdeployed","network":"sepolia"},
			"organization":{"org_id":"org_123","auth0_orgid":"org_test_123"}}`))
	default:
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"no route"}`))
	}
}

func (b *testBackend) serveIDP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.URL.Path == "/oauth/token":
		r.ParseForm()
		switch r.PostForm.Get("grant_type") {
		case "client_credentials":
			b.record("idp:mgmt-token")
			w.Write([]byte(`{"access_token":"mgmt-at","token_type":"Bearer","expires_in":86400}`))
		case "password":
			b.record("idp:password-grant")
			if b.passwordGrant == "" {
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(`{"error":"invalid_grant","error_description":"Wrong email or password."}`))
				return
			}
			w.Write([]byte(b.passwordGrant))
		default:
			b.t.Errorf("unexpected grant_type %q", r.PostForm.Get("grant_type"))
			w.WriteHeader(http.StatusBadRequest)
		}
	case r.URL.Path == "/api/v2/users" && r.Method == http.MethodPost:
		b.record("idp:create-user")
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{
			"user_id":    "auth0|u1",
			"email":      req["email"],
			"created_at": "2026-02-01T00:00:00Z",
		})
	case strings.HasPrefix(r.URL.Path, "/api/v2/users/") && r.Method == http.MethodDelete:
		b.record("idp:delete-user")
		w.WriteHeader(http.StatusNoContent)
	case strings.HasSuffix(r.URL.Path, "/members") && r.Method == http.MethodPost:
		b.record("idp:add-member")
		w.WriteHeader(http.StatusNoContent)
	case r.URL.Path == "/userinfo":
		b.record("idp:userinfo")
		w.Write([]byte(`{"sub":"auth0|u1","email":"test@example.com","name":"Test User"}`))
	case r.URL.Path == "/oauth/revoke":
		b.record("idp:revoke")
		if b.revokeStatus != http.StatusOK {
			w.WriteHeader(b.revokeStatus)
			w.Write([]byte(`{"error":"invalid_request"}`))
			return
		}
		w.Write([]byte(`{}`))
	default:
		b.t.Errorf("unexpected identity-provider request %s %s", r.Method, r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
	}
}

func (b *testBackend) serveSupabase(w http.ResponseWriter, r *http.Request) {
	table := strings.TrimPrefix(r.URL.Path, "/rest/v1/")
	b.record("supabase:" + table)
	b.mu.Lock()
	resp, ok := b.tables[table]
	b.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.Write([]byte(`[]`))
		return
	}
	w.Write([]byte(resp))
}

func (b *testBackend) service(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(Config{
		BaseURL:               b.gateway.URL,
		Auth0Domain:           b.idp.URL,
		Auth0ClientID:         "app-id",
		Auth0ClientSecret:     "app-secret",
		Auth0MgmtClientID:     "m2m-id",
		Auth0MgmtClientSecret: "m2m-secret",
		SupabaseURL:           b.supabase.URL,
		SupabaseAnonKey:       "anon-key",
	})
	require.NoError(t, err)
	return svc
}

func withOrg(b *testBackend) *testBackend {
	b.tables["orgs"] = `[{"org_id":"org_123","auth0_org_id":"org_test_123","id":7}]`
	return b
}

func TestSignUpMissingOrganizationShortCircuits(t *testing.T) {
	b := newTestBackend(t) // no orgs row
	svc := b.service(t)

	_, err := svc.SignUp(context.Background(), "test@example.com", "pw", "org_unknown", "sepolia")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "signUp failed:"), "got %q", err.Error())
	assert.Contains(t, err.Error(), "Organization not found")
	require.ErrorIs(t, err, httpapi.ErrOrganizationNotFound)

	assert.Zero(t, b.totalIDPCalls(), "identity provider was called after a failed org lookup")
	assert.Zero(t, b.count("gateway:/deploy"), "wallet provider was called after a failed org lookup")
}

func TestSignUpDeploysWalletAndMergesResult(t *testing.T) {
	b := withOrg(newTestBackend(t))
	svc := b.service(t)

	res, err := svc.SignUp(context.Background(), "test@example.com", "pw", "org_123", "sepolia")
	require.NoError(t, err)

	assert.Equal(t, "auth0|u1", res.User.ID)
	assert.Equal(t, "test@example.com", res.User.Email)
	require.NotNil(t, res.Wallet)
	assert.Equal(t, "0xdeployed", res.Wallet.Address)
	assert.Equal(t, "sepolia", res.Wallet.Network)
	assert.Equal(t, "auth0|u1", res.Wallet.OwnerID)
	assert.Equal(t, OrganizationInfo{OrgID: "org_123", Auth0OrgID: "org_test_123"}, res.Organization)

	assert.Equal(t, 1, b.count("idp:mgmt-token"))
	assert.Equal(t, 1, b.count("idp:create-user"))
	assert.Equal(t, 1, b.count("idp:add-member"))
	assert.Equal(t, 1, b.count("gateway:/deploy"))
	assert.Zero(t, b.count("idp:delete-user"))
}

func TestSignUpDefaultsNetworkToSepolia(t *testing.T) {
	b := withOrg(newTestBackend(t))
	svc := b.service(t)

	res, err := svc.SignUp(context.Background(), "test@example.com", "pw", "org_123", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultNetwork, res.Wallet.Network)
}

func TestSignUpDeployFailureCleansUpIdentity(t *testing.T) {
	b := withOrg(newTestBackend(t))
	b.deployStatus = http.StatusInternalServerError
	svc := b.service(t)

	_, err := svc.SignUp(context.Background(), "test@example.com", "pw", "org_123", "sepolia")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "signUp failed")
	assert.Contains(t, err.Error(), "deployWallet failed")

	assert.Equal(t, 1, b.count("idp:delete-user"), "created identity was not cleaned up")
}

func TestSignInInvalidCredentialsStopsBeforeWalletLookup(t *testing.T) {
	b := withOrg(newTestBackend(t))
	b.passwordGrant = "" // token endpoint rejects
	svc := b.service(t)

	_, err := svc.SignIn(context.Background(), "test@example.com", "bad-pw", "org_123")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "signIn failed:"), "got %q", err.Error())
	assert.Contains(t, err.Error(), "Invalid credentials")
	require.ErrorIs(t, err, httpapi.ErrInvalidCredentials)

	assert.Zero(t, b.count("supabase:wallets"), "wallet lookup attempted after failed token exchange")
	assert.Zero(t, b.count("idp:userinfo"))
}

func TestSignInWalletNotFoundNamesSubject(t *testing.T) {
	b := withOrg(newTestBackend(t)) // no wallets row
	svc := b.service(t)

	_, err := svc.SignIn(context.Background(), "test@example.com", "pw", "org_123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Wallet not found for user: auth0|u1")
	require.ErrorIs(t, err, httpapi.ErrWalletNotFound)
}

func TestSignInMergesUserWalletExternalWalletAndOrganization(t *testing.T) {
	b := withOrg(newTestBackend(t))
	b.tables["wallets"] = `[{"user_id":"auth0|u1","address":"0xdeployed","public_key":"0xpub","private_key":"0xpriv","network":"sepolia"}]`
	b.tables["external_wallets"] = `[{"org_id":7,"address":"0xext","network":"mainnet"}]`
	svc := b.service(t)

	res, err := svc.SignIn(context.Background(), "test@example.com", "pw", "org_123")
	require.NoError(t, err)

	assert.Equal(t, "auth0|u1", res.User.ID)
	require.NotNil(t, res.Session)
	assert.Equal(t, "user-at", res.Session.AccessToken)
	assert.Equal(t, "user-rt", res.Session.RefreshToken)
	assert.Positive(t, res.Session.ExpiresIn)
	assert.Equal(t, "0xdeployed", res.Wallet.Address)
	require.NotNil(t, res.ExternalWallet)
	assert.Equal(t, "0xext", res.ExternalWallet.Address)
	assert.Equal(t, OrganizationInfo{OrgID: "org_123", Auth0OrgID: "org_test_123"}, res.Organization)
}

func TestSignInWithoutExternalWalletCarriesNil(t *testing.T) {
	b := withOrg(newTestBackend(t))
	b.tables["wallets"] = `[{"user_id":"auth0|u1","address":"0xdeployed","network":"sepolia"}]`
	svc := b.service(t)

	res, err := svc.SignIn(context.Background(), "test@example.com", "pw", "org_123")
	require.NoError(t, err)
	assert.Nil(t, res.ExternalWallet)
}

func TestRefreshTokenIsGatewayPassThrough(t *testing.T) {
	b := newTestBackend(t)
	svc := b.service(t)

	res, err := svc.RefreshToken(context.Background(), "refresh-1", "org-secret")
	require.NoError(t, err)
	require.NotNil(t, res.Session)
	assert.Equal(t, "refreshed-at", res.Session.AccessToken)
	assert.Equal(t, "0xdeployed", res.Wallet.Address)
	assert.Equal(t, 1, b.count("gateway:/auth/refresh"))
	assert.Zero(t, b.totalIDPCalls())
}

func TestSignOutReturnsFixedConfirmation(t *testing.T) {
	b := newTestBackend(t)
	svc := b.service(t)

	res, err := svc.SignOut(context.Background(), "user-rt")
	require.NoError(t, err)
	assert.Equal(t, &SignOutResult{Success: true, Message: "User signed out successfully"}, res)
	assert.Equal(t, 1, b.count("idp:revoke"))
}

func TestSignOutRevocationFailurePropagates(t *testing.T) {
	b := newTestBackend(t)
	b.revokeStatus = http.StatusBadRequest
	svc := b.service(t)

	_, err := svc.SignOut(context.Background(), "user-rt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "signOut failed")
}

// Full lifecycle: sign up, sign in with the same identity, sign out.
func TestLifecycleSignUpSignInSignOut(t *testing.T) {
	b := withOrg(newTestBackend(t))
	b.tables["wallets"] = `[{"user_id":"auth0|u1","address":"0xdeployed","public_key":"0xpub","private_key":"0xpriv","network":"sepolia"}]`
	b.tables["external_wallets"] = `[{"org_id":7,"address":"0xext","network":"mainnet"}]`
	svc := b.service(t)
	ctx := context.Background()

	up, err := svc.SignUp(ctx, "test@example.com", "pw", "org_123", "sepolia")
	require.NoError(t, err)
	require.NotNil(t, up.Wallet)
	assert.Equal(t, "org_test_123", up.Organization.Auth0OrgID)

	in, err := svc.SignIn(ctx, "test@example.com", "pw", "org_123")
	require.NoError(t, err)
	assert.Equal(t, up.User.ID, in.User.ID)
	require.NotNil(t, in.Session)
	require.NotNil(t, in.ExternalWallet)

	out, err := svc.SignOut(ctx, in.Session.AccessToken)
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, "User signed out successfully", out.Message)
}

func TestNewServiceValidatesConfig(t *testing.T) {
	_, err := NewService(Config{SupabaseURL: "https://p.supabase.co", SupabaseAnonKey: "k"})
	assert.Error(t, err, "missing Auth0 domain accepted")

	_, err = NewService(Config{Auth0Domain: "tenant.us.auth0.com"})
	assert.Error(t, err, "missing Supabase settings accepted")
}
