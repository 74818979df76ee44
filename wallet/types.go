package wallet

import "encoding/json"

// DeployedWallet is the wallet record returned by the provider. Key material
// is forwarded exactly as received; the SDK never derives or validates it.
type DeployedWallet struct {
	Address    string `json:"address"`
	PublicKey  string `json:"public_key"`
	PrivateKey string `json:"private_key"`
	OwnerID    string `json:"owner_id,omitempty"`
	Network    string `json:"network"`
}

// ExecuteRequest describes a transaction execution. Calls is passed through
// verbatim as the provider's call array.
type ExecuteRequest struct {
	Network  string          `json:"network"`
	Calls    json.RawMessage `json:"calls"`
	Address  string          `json:"address"`
	HashedPk string          `json:"hashedPk"`
}

// Uint256 is the 256-bit split representation the downstream chain expects.
type Uint256 struct {
	Low  string `json:"low"`
	High string `json:"high"`
}

// LogoutResult carries the redirect URL returned by the gateway logout
// endpoint.
type LogoutResult struct {
	RedirectURL string `json:"redirect_url"`
}
