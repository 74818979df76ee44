package cavos

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cavos-labs/cavos-go/auth0"
)

// Session holds the tokens produced by the identity provider. The SDK does
// not persist or refresh them; callers store the set and call RefreshToken
// before expiry.
type Session struct {
	AccessToken  string `json:"access_token"`
	IDToken      string `json:"id_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
}

// ExpiresAt reads the exp claim from the access token without verifying the
// signature. The zero time is returned when the token is opaque or carries
// no expiry; verification belongs to the services, not the SDK.
func (s *Session) ExpiresAt() time.Time {
	if s == nil || s.AccessToken == "" {
		return time.Time{}
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.AccessToken, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

// sessionFromTokenSet converts an identity-provider token set.
func sessionFromTokenSet(set *auth0.TokenSet) *Session {
	s := &Session{
		AccessToken:  set.AccessToken,
		IDToken:      set.IDToken,
		RefreshToken: set.RefreshToken,
		TokenType:    set.TokenType,
	}
	if !set.Expiry.IsZero() {
		if remaining := time.Until(set.Expiry); remaining > 0 {
			s.ExpiresIn = int64(remaining.Seconds())
		}
	}
	return s
}
