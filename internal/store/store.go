package store

import (
	"context"
	"errors"
	"fmt"
	"net/url"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrDuplicate is returned when a unique constraint would be violated.
	ErrDuplicate = errors.New("store: duplicate")
)

// IdentityStore resolves and creates identities.
type IdentityStore interface {
	LookupIdentity(ctx context.Context, name string) (*Identity, error)
	GetIdentity(ctx context.Context, id int64) (*Identity, error)
	// CreateIdentity inserts identity and assigns its ID.
	CreateIdentity(ctx context.Context, identity *Identity) error
	// PutIdentity inserts identity with the ID it already carries.
	PutIdentity(ctx context.Context, identity *Identity) error
}

// HookStore manages hooks.
type HookStore interface {
	CreateHook(ctx context.Context, hook *Hook) error
	GetHook(ctx context.Context, id int64) (*Hook, error)
	ListHooks(ctx context.Context, ownerID int64) ([]Hook, error)
	ListAllHooks(ctx context.Context) ([]Hook, error)
	UpdateHook(ctx context.Context, hook *Hook) error
	DeleteHook(ctx context.Context, id int64) error
}

// Store is the full persistence surface used by the server.
type Store interface {
	IdentityStore
	HookStore
	Ping(ctx context.Context) error
	Close()
}

// Open returns the Store selected by rawURL. An empty URL or the memory
// scheme selects the in-process store; postgres and postgresql select the
// pgx-backed store.
func Open(ctx context.Context, rawURL string) (Store, error) {
	if rawURL == "" {
		return NewMemory(), nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	switch u.Scheme {
	case "memory":
		return NewMemory(), nil
	case "postgres", "postgresql":
		return NewPostgres(ctx, rawURL)
	default:
		return nil, fmt.Errorf("unsupported database scheme %q", u.Scheme)
	}
}

type migrator interface {
	Migrate(ctx context.Context) (int64, error)
}

// Migrate brings the schema of s up to date and returns the resulting
// schema version. Stores without a schema report version 0.
func Migrate(ctx context.Context, s Store) (int64, error) {
	m, ok := s.(migrator)
	if !ok {
		return 0, nil
	}
	return m.Migrate(ctx)
}
