package cavos

import "github.com/cavos-labs/cavos-go/httpapi"

// Sentinel errors re-exported from httpapi so callers can match them with
// errors.Is without importing the transport package.
var (
	ErrOrganizationNotFound = httpapi.ErrOrganizationNotFound
	ErrInvalidCredentials   = httpapi.ErrInvalidCredentials
	ErrWalletNotFound       = httpapi.ErrWalletNotFound
	ErrMalformedResponse    = httpapi.ErrMalformedResponse
)
