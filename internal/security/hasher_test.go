package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cheapParams keeps argon2 fast in tests.
var cheapParams = HashParams{Time: 1, MemoryKiB: 1024, Threads: 1, KeyLen: 32}

func newTestHasher(t *testing.T, key string) *Hasher {
	t.Helper()
	h, err := NewHasher(key, cheapParams)
	require.NoError(t, err)
	return h
}

// TestHasherRoundTrip verifies a derived credential verifies against its
// own secret only.
func TestHasherRoundTrip(t *testing.T) {
	h := newTestHasher(t, "webhooker")

	for _, secret := range []string{"ragamuffin", "", "pässwörd", "a much longer secret with spaces"} {
		credential := h.Derive(secret)
		assert.True(t, h.Verify(secret, credential), "secret %q", secret)
		assert.False(t, h.Verify(secret+"x", credential), "secret %q", secret)
	}
	assert.False(t, h.Verify("alpha", h.Derive("beta")))
}

// TestHasherDeterministic verifies Derive is stable for a fixed key and
// differs across keys.
func TestHasherDeterministic(t *testing.T) {
	a := newTestHasher(t, "key-one")
	b := newTestHasher(t, "key-one")
	c := newTestHasher(t, "key-two")

	assert.Equal(t, a.Derive("secret"), b.Derive("secret"))
	assert.NotEqual(t, a.Derive("secret"), c.Derive("secret"))
	assert.False(t, c.Verify("secret", a.Derive("secret")))
}

// TestHasherOutputLength verifies the credential is hex of KeyLen bytes.
func TestHasherOutputLength(t *testing.T) {
	h := newTestHasher(t, "webhooker")
	assert.Len(t, h.Derive("x"), 64)
	assert.Regexp(t, "^[0-9a-f]+$", h.Derive("x"))
}

// TestHasherRejectsMalformedCredential verifies odd inputs never verify.
func TestHasherRejectsMalformedCredential(t *testing.T) {
	h := newTestHasher(t, "webhooker")
	assert.False(t, h.Verify("secret", ""))
	assert.False(t, h.Verify("secret", "not-hex"))
	assert.False(t, h.Verify("secret", h.Derive("secret")[:10]))
}

// TestNewHasherValidation verifies constructor input checks.
func TestNewHasherValidation(t *testing.T) {
	_, err := NewHasher("", cheapParams)
	assert.ErrorIs(t, err, errEmptyKey)

	bad := cheapParams
	bad.Threads = 0
	_, err = NewHasher("key", bad)
	assert.ErrorIs(t, err, errInvalidParams)

	_, err = NewHasher("key", DefaultHashParams())
	assert.NoError(t, err)
}
