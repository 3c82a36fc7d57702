package ports

import (
	"context"

	"github.com/inkpress/production-system/internal/core/domain"
)

// SessionStore tracks revoked session tokens (Redis-backed in production).
type SessionStore interface {
	// Revoke marks a token id as terminated until its natural expiry.
	Revoke(ctx context.Context, tokenID string, ttlSeconds int64) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// AuthService implements registration, login and session verification.
type AuthService interface {
	Register(ctx context.Context, name, email, password, role, customerID string) (*domain.User, error)
	// Login authenticates the user and issues a signed token for the given
	// channel. The user's stored role must match the channel's required role.
	Login(ctx context.Context, channel domain.Channel, email, password string) (string, *domain.User, error)
	// Logout revokes the presented token. Unknown or malformed tokens are a
	// no-op, not an error.
	Logout(ctx context.Context, token string) error
	// Verify is the defence-in-depth check behind sensitive endpoints: it
	// parses the token presented on channel, checks revocation, loads the
	// bound user from the credential store, and requires the stored role to
	// still match the channel. Every failure mode yields
	// domain.ErrNotAuthenticated.
	Verify(ctx context.Context, channel domain.Channel, token string) (*domain.Principal, error)
}
