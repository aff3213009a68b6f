package store

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
)

const (
	// BootstrapID is the ID of the administrative identity created on first run.
	BootstrapID int64 = 0
	// BootstrapName is the name of the administrative identity.
	BootstrapName = "superuser"
)

// Deriver turns a secret into a stored credential.
type Deriver interface {
	Derive(secret string) string
}

// EnsureBootstrapIdentity creates the administrative identity when it does
// not exist yet. An empty password generates a random one, which is logged
// once. An existing identity is never modified. The result reports whether
// an identity was created.
func EnsureBootstrapIdentity(ctx context.Context, s IdentityStore, hasher Deriver, password string, logger *slog.Logger) (bool, error) {
	_, err := s.GetIdentity(ctx, BootstrapID)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return false, fmt.Errorf("look up bootstrap identity: %w", err)
	}

	generated := password == ""
	if generated {
		password, err = randomPassword()
		if err != nil {
			return false, err
		}
	}

	identity := &Identity{
		ID:           BootstrapID,
		Name:         BootstrapName,
		Superuser:    true,
		PasswordHash: hasher.Derive(password),
	}
	if err := s.PutIdentity(ctx, identity); err != nil {
		if errors.Is(err, ErrDuplicate) {
			logger.Warn("bootstrap identity not created, name or id already in use", slog.String("username", BootstrapName))
			return false, nil
		}
		return false, fmt.Errorf("create bootstrap identity: %w", err)
	}

	if generated {
		logger.Info("no superuser account found, generated a new one",
			slog.String("username", BootstrapName),
			slog.String("password", password))
	} else {
		logger.Info("no superuser account found, created one with the configured password",
			slog.String("username", BootstrapName))
	}
	return true, nil
}

func randomPassword() (string, error) {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate password: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
