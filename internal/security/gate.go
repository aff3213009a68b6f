package security

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Tyrowin/webhooker/internal/store"
)

// IdentityLookup resolves an identity by name.
type IdentityLookup interface {
	LookupIdentity(ctx context.Context, name string) (*store.Identity, error)
}

// Gate decides whether a request may proceed. It never modifies identities.
type Gate struct {
	identities IdentityLookup
	tokens     *TokenIssuer
	hasher     *Hasher
}

// NewGate wires a Gate from its collaborators.
func NewGate(identities IdentityLookup, tokens *TokenIssuer, hasher *Hasher) *Gate {
	return &Gate{identities: identities, tokens: tokens, hasher: hasher}
}

// Authenticate resolves a bearer token to an enabled identity.
//
// An invalid token or an unknown identity yields ErrUnauthenticated, a
// disabled identity ErrForbidden. Store failures are returned wrapped.
func (g *Gate) Authenticate(ctx context.Context, bearer string) (*store.Identity, error) {
	name, err := g.tokens.Subject(bearer)
	if err != nil {
		return nil, err
	}
	return g.resolve(ctx, name)
}

// Login checks a name and password pair and returns the enabled identity.
func (g *Gate) Login(ctx context.Context, name, password string) (*store.Identity, error) {
	identity, err := g.identities.LookupIdentity(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		// Spend the same work as a real check.
		g.hasher.Verify(password, "")
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("lookup identity: %w", err)
	}
	if !g.hasher.Verify(password, identity.PasswordHash) {
		return nil, ErrUnauthenticated
	}
	if identity.Disabled {
		return nil, ErrForbidden
	}
	return identity, nil
}

// IssueToken returns a bearer token for identity.
func (g *Gate) IssueToken(identity *store.Identity) (string, time.Time, error) {
	return g.tokens.Issue(identity.Name)
}

func (g *Gate) resolve(ctx context.Context, name string) (*store.Identity, error) {
	identity, err := g.identities.LookupIdentity(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("lookup identity: %w", err)
	}
	if identity.Disabled {
		return nil, ErrForbidden
	}
	return identity, nil
}
