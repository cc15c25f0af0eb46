package auth

import (
	"context"

	"github.com/jsandh/splitbook/internal/models"
)

// Authenticator defines the interface for authentication implementations.
// This abstraction allows swapping between different auth methods (password,
// passkeys, OAuth, etc.) without changing the request layer.
type Authenticator interface {
	// Register creates a new user account with the given credential.
	Register(ctx context.Context, username, email, credential string) (*models.User, error)

	// Authenticate verifies the user's credentials and returns the user if
	// successful.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks if the credential meets the
	// implementation's requirements.
	ValidateCredential(credential string) error

	// HashCredential validates and hashes a credential for storage, e.g.
	// when a user changes their password.
	HashCredential(credential string) (string, error)
}
