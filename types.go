package cavos

import "github.com/cavos-labs/cavos-go/metadata"

// User is the identity record carried in aggregated results.
type User struct {
	ID        string `json:"user_id"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Wallet is the wallet record carried in aggregated results. Key material is
// forwarded as received from the provider or the metadata store.
type Wallet struct {
	Address    string `json:"address"`
	PublicKey  string `json:"public_key"`
	PrivateKey string `json:"private_key"`
	OwnerID    string `json:"owner_id,omitempty"`
	Network    string `json:"network"`
}

// OrganizationInfo is the organization descriptor merged into aggregated
// results.
type OrganizationInfo struct {
	OrgID      string `json:"org_id"`
	Auth0OrgID string `json:"auth0_orgid"`
}

// AuthResult is the composite returned by the orchestration calls: identity
// record, session tokens, wallet record, the organization's optional external
// wallet (nil when it has none), and the organization descriptor. It is
// assembled fresh on every call and never cached.
type AuthResult struct {
	User           *User                    `json:"user"`
	Session        *Session                 `json:"session,omitempty"`
	Wallet         *Wallet                  `json:"wallet"`
	ExternalWallet *metadata.ExternalWallet `json:"external_wallet,omitempty"`
	Organization   OrganizationInfo         `json:"organization"`
}

// SignOutResult confirms a sign-out.
type SignOutResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
