package metadata

// Organization maps a caller-supplied org id to its identity-provider
// organization and the internal numeric row id.
type Organization struct {
	OrgID      string `json:"org_id"`
	Auth0OrgID string `json:"auth0_org_id"`
	ID         int64  `json:"id"`
}

// Wallet is a user's wallet record as stored in the metadata tables.
type Wallet struct {
	UserID     string `json:"user_id"`
	Address    string `json:"address"`
	PublicKey  string `json:"public_key"`
	PrivateKey string `json:"private_key"`
	Network    string `json:"network"`
}

// ExternalWallet is an organization-level wallet managed outside the
// provider. Not every organization has one.
type ExternalWallet struct {
	OrgID     int64  `json:"org_id"`
	Address   string `json:"address"`
	Network   string `json:"network"`
	CreatedAt string `json:"created_at,omitempty"`
}
