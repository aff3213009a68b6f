// Package security derives and verifies credentials, issues bearer tokens
// and resolves a bearer token to an enabled identity.
package security
