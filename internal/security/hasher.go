package security

import (
	"crypto/subtle"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/argon2"
)

// HashParams are the argon2id cost parameters.
type HashParams struct {
	Time      uint32
	MemoryKiB uint32
	Threads   uint8
	KeyLen    uint32
}

// DefaultHashParams returns the parameters used when none are configured.
func DefaultHashParams() HashParams {
	return HashParams{Time: 1, MemoryKiB: 64 * 1024, Threads: 4, KeyLen: 32}
}

var (
	errEmptyKey      = errors.New("security: hash key must not be empty")
	errInvalidParams = errors.New("security: hash parameters must be positive")
)

// Hasher derives credentials from secrets with argon2id, using a
// process-wide key as the salt. Derive is deterministic for a given key and
// parameter set, so a stored credential can be verified by recomputation.
type Hasher struct {
	key    []byte
	params HashParams
}

// NewHasher returns a Hasher keyed with key.
func NewHasher(key string, params HashParams) (*Hasher, error) {
	if key == "" {
		return nil, errEmptyKey
	}
	if params.Time == 0 || params.MemoryKiB == 0 || params.Threads == 0 || params.KeyLen == 0 {
		return nil, errInvalidParams
	}
	return &Hasher{key: []byte(key), params: params}, nil
}

// Derive returns the hex-encoded credential for secret.
func (h *Hasher) Derive(secret string) string {
	sum := argon2.IDKey([]byte(secret), h.key, h.params.Time, h.params.MemoryKiB, h.params.Threads, h.params.KeyLen)
	return hex.EncodeToString(sum)
}

// Verify reports whether secret derives to credential. The comparison runs
// in constant time.
func (h *Hasher) Verify(secret, credential string) bool {
	derived := h.Derive(secret)
	return subtle.ConstantTimeCompare([]byte(derived), []byte(credential)) == 1
}
