package security

import "errors"

var (
	// ErrUnauthenticated means the bearer token or password did not resolve
	// to a known identity.
	ErrUnauthenticated = errors.New("security: not authenticated")
	// ErrForbidden means the identity exists but is disabled.
	ErrForbidden = errors.New("security: identity disabled")
)
