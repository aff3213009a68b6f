package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTokenRoundTrip verifies an issued token yields its subject.
func TestTokenRoundTrip(t *testing.T) {
	issuer, err := NewTokenIssuer("secret", time.Minute)
	require.NoError(t, err)

	token, expires, err := issuer.Issue("alice")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), expires, 2*time.Second)

	subject, err := issuer.Subject(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", subject)
}

// TestTokenExpired verifies expired tokens are rejected.
func TestTokenExpired(t *testing.T) {
	issuer, err := NewTokenIssuer("secret", time.Minute)
	require.NoError(t, err)

	now := time.Now()
	issuer.now = func() time.Time { return now }
	token, _, err := issuer.Issue("alice")
	require.NoError(t, err)

	issuer.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, err = issuer.Subject(token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

// TestTokenRejectsForeignSignature verifies tokens signed with another key
// or algorithm are rejected.
func TestTokenRejectsForeignSignature(t *testing.T) {
	issuer, err := NewTokenIssuer("secret", time.Minute)
	require.NoError(t, err)
	other, err := NewTokenIssuer("other", time.Minute)
	require.NoError(t, err)

	token, _, err := other.Issue("alice")
	require.NoError(t, err)
	_, err = issuer.Subject(token)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = issuer.Subject(unsigned)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

// TestTokenRejectsGarbage verifies malformed bearer strings are rejected.
func TestTokenRejectsGarbage(t *testing.T) {
	issuer, err := NewTokenIssuer("secret", time.Minute)
	require.NoError(t, err)

	for _, token := range []string{"", "alice", "a.b.c"} {
		_, err := issuer.Subject(token)
		assert.ErrorIs(t, err, ErrUnauthenticated, token)
	}
}

// TestNewTokenIssuerValidation verifies constructor input checks.
func TestNewTokenIssuerValidation(t *testing.T) {
	_, err := NewTokenIssuer("", time.Minute)
	assert.Error(t, err)
	_, err = NewTokenIssuer("secret", 0)
	assert.Error(t, err)
}

// TestRandomSecret verifies generated secrets are long and distinct.
func TestRandomSecret(t *testing.T) {
	a, err := RandomSecret()
	require.NoError(t, err)
	b, err := RandomSecret()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}
