package httpapi

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// Sentinel errors shared by every Cavos client. The message text is part of
// the SDK contract: callers match on these phrases across language bindings.
var (
	ErrOrganizationNotFound = errors.New("Organization not found")
	ErrInvalidCredentials   = errors.New("Invalid credentials")
	ErrWalletNotFound       = errors.New("Wallet not found")
	ErrMalformedResponse    = errors.New("malformed response")
)

// TransportError reports a request for which no response was received.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("no response received for %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// APIError reports a non-2xx upstream response. Body holds the raw error
// payload as received.
type APIError struct {
	Status int
	Body   []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream returned status %d: %s", e.Status, e.ErrorBody())
}

// ErrorBody returns the decoded error payload verbatim, or "{}" when the body
// itself is not valid JSON.
func (e *APIError) ErrorBody() string {
	if len(e.Body) == 0 || !gjson.ValidBytes(e.Body) {
		return "{}"
	}
	return string(e.Body)
}

// Message extracts the human-readable message from the error payload, trying
// the field names the upstream services use.
func (e *APIError) Message() string {
	for _, key := range []string{"message", "error_description", "error", "msg"} {
		if v := gjson.GetBytes(e.Body, key); v.Exists() && v.Type == gjson.String {
			return v.String()
		}
	}
	return ""
}
