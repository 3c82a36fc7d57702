package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/inkpress/production-system/internal/core/domain"
	"github.com/inkpress/production-system/internal/core/ports"
)

// SessionClaims is the payload of every channel token: one signed credential
// shape shared by all three actor classes, distinguished by the role claim.
type SessionClaims struct {
	Role       string `json:"role"`
	CustomerID string `json:"customer_id,omitempty"`
	jwt.RegisteredClaims
}

// AuthService implements registration, login and session verification.
type AuthService struct {
	users     ports.UserRepository
	sessions  ports.SessionStore
	jwtSecret string
	tokenTTL  time.Duration
	logger    zerolog.Logger
}

func NewAuthService(users ports.UserRepository, sessions ports.SessionStore, jwtSecret string, tokenTTL time.Duration, logger zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		users:     users,
		sessions:  sessions,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		logger:    logger,
	}
}

// Register provisions a new user account.
func (s *AuthService) Register(ctx context.Context, name, email, password, role, customerID string) (*domain.User, error) {
	if name == "" || email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if !domain.ValidRole(role) {
		return nil, domain.ErrInvalidCredentials
	}
	if role == domain.RoleCustomer && customerID == "" {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CustomerID:   customerID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	return s.users.Create(ctx, user)
}

// Login authenticates the user and issues a signed token for the channel.
// A valid password with the wrong role for the channel is rejected the same
// way as a bad password.
func (s *AuthService) Login(ctx context.Context, channel domain.Channel, email, password string) (string, *domain.User, error) {
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}
	if user.Role != channel.RequiredRole() {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Str("channel", string(channel)).Msg("user logged in")
	return token, user, nil
}

// Logout revokes the presented token until its natural expiry. Malformed or
// already-expired tokens are a no-op.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.parseToken(token)
	if err != nil {
		return nil
	}

	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining <= 0 || claims.ID == "" {
		return nil
	}

	if err := s.sessions.Revoke(ctx, claims.ID, int64(remaining.Seconds())+1); err != nil {
		s.logger.Warn().Err(err).Msg("failed to revoke session token")
		return err
	}
	return nil
}

// Verify re-validates a presented token against the credential store. Any
// failure — missing token, bad signature, expiry, revocation, unknown user,
// or a stored role that no longer matches the channel — collapses to
// domain.ErrNotAuthenticated so callers cannot tell which check failed.
func (s *AuthService) Verify(ctx context.Context, channel domain.Channel, token string) (*domain.Principal, error) {
	if token == "" {
		return nil, domain.ErrNotAuthenticated
	}

	claims, err := s.parseToken(token)
	if err != nil {
		return nil, domain.ErrNotAuthenticated
	}

	if claims.ID != "" {
		revoked, err := s.sessions.IsRevoked(ctx, claims.ID)
		if err != nil {
			s.logger.Warn().Err(err).Msg("revocation check failed")
			return nil, domain.ErrNotAuthenticated
		}
		if revoked {
			return nil, domain.ErrNotAuthenticated
		}
	}

	user, err := s.users.FindByID(ctx, claims.Subject)
	if err != nil {
		return nil, domain.ErrNotAuthenticated
	}
	if user.Role != channel.RequiredRole() {
		return nil, domain.ErrNotAuthenticated
	}

	return &domain.Principal{
		UserID:     user.ID,
		Role:       user.Role,
		Channel:    channel,
		CustomerID: user.CustomerID,
	}, nil
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	now := time.Now().UTC()
	claims := SessionClaims{
		Role:       user.Role,
		CustomerID: user.CustomerID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        newTokenID(),
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

func (s *AuthService) parseToken(token string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, domain.ErrNotAuthenticated
	}
	if claims.ExpiresAt == nil {
		return nil, domain.ErrNotAuthenticated
	}
	return claims, nil
}

// newTokenID returns a random 128-bit hex token id for revocation tracking.
func newTokenID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return hex.EncodeToString([]byte(time.Now().UTC().Format(time.RFC3339Nano)))
	}
	return hex.EncodeToString(b)
}
