package cavos

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpiresAtReadsExpClaim(t *testing.T) {
	exp := time.Now().Add(2 * time.Hour).Truncate(time.Second)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "auth0|u1",
		"exp": exp.Unix(),
	})
	signed, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	s := &Session{AccessToken: signed}
	assert.True(t, s.ExpiresAt().Equal(exp), "ExpiresAt() = %v, want %v", s.ExpiresAt(), exp)
}

func TestExpiresAtOpaqueTokenIsZero(t *testing.T) {
	s := &Session{AccessToken: "not-a-jwt"}
	assert.True(t, s.ExpiresAt().IsZero())

	var nilSession *Session
	assert.True(t, nilSession.ExpiresAt().IsZero())
}

func TestExpiresAtTokenWithoutExpIsZero(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "auth0|u1"})
	signed, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	s := &Session{AccessToken: signed}
	assert.True(t, s.ExpiresAt().IsZero())
}
