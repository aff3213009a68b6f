// Package store persists identities and hooks.
//
// Two implementations share the Store interface: Postgres, backed by a pgx
// connection pool with goose migrations, and Memory, an in-process store
// used for development and tests. Open selects one from a URL.
package store
