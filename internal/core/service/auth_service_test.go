package service

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/inkpress/production-system/internal/core/domain"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	byID   map[string]*domain.User
	nextID int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[string]*domain.User)}
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.byID {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.nextID++
	clone := *user
	clone.ID = "user_" + strconv.Itoa(r.nextID)
	r.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.byID {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

type stubSessionStore struct {
	revoked map[string]bool
	err     error
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{revoked: make(map[string]bool)}
}

func (s *stubSessionStore) Revoke(_ context.Context, tokenID string, _ int64) error {
	if s.err != nil {
		return s.err
	}
	s.revoked[tokenID] = true
	return nil
}

func (s *stubSessionStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.revoked[tokenID], nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func newAuthSvc(repo *stubUserRepo, sessions *stubSessionStore) *AuthService {
	return NewAuthService(repo, sessions, "secret", time.Hour, zerolog.Nop())
}

func registered(t *testing.T, svc *AuthService, role string) *domain.User {
	t.Helper()
	customerID := ""
	if role == domain.RoleCustomer {
		customerID = "cust_1"
	}
	user, err := svc.Register(context.Background(), "Alex", role+"@example.com", "s3cret-pass", role, customerID)
	if err != nil {
		t.Fatalf("register %s: %v", role, err)
	}
	return user
}

// ---------------------------------------------------------------------------
// Register / Login
// ---------------------------------------------------------------------------

func TestAuthService_Register_HashesPassword(t *testing.T) {
	svc := newAuthSvc(newStubUserRepo(), newStubSessionStore())

	user := registered(t, svc, domain.RoleEmployee)
	if user.PasswordHash == "s3cret-pass" {
		t.Fatalf("password must be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret-pass")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc := newAuthSvc(newStubUserRepo(), newStubSessionStore())
	ctx := context.Background()

	if _, err := svc.Register(ctx, "", "a@example.com", "pass", domain.RoleAdmin, ""); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for missing name, got %v", err)
	}
	if _, err := svc.Register(ctx, "Bob", "b@example.com", "pass", "superuser", ""); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for bad role, got %v", err)
	}
	if _, err := svc.Register(ctx, "Cara", "c@example.com", "pass", domain.RoleCustomer, ""); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for customer without customer id, got %v", err)
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	svc := newAuthSvc(newStubUserRepo(), newStubSessionStore())
	registered(t, svc, domain.RoleAdmin)

	_, err := svc.Register(context.Background(), "Twin", "admin@example.com", "pass", domain.RoleAdmin, "")
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Login_WrongChannelRejected(t *testing.T) {
	svc := newAuthSvc(newStubUserRepo(), newStubSessionStore())
	registered(t, svc, domain.RoleEmployee)

	// Correct password, wrong channel: indistinguishable from a bad password.
	_, _, err := svc.Login(context.Background(), domain.ChannelAdmin, "employee@example.com", "s3cret-pass")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_UnknownUserIndistinguishable(t *testing.T) {
	svc := newAuthSvc(newStubUserRepo(), newStubSessionStore())

	_, _, err := svc.Login(context.Background(), domain.ChannelAdmin, "ghost@example.com", "pass")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Verify
// ---------------------------------------------------------------------------

func TestAuthService_Verify_HappyPath(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthSvc(repo, newStubSessionStore())
	user := registered(t, svc, domain.RoleAdmin)

	token, _, err := svc.Login(context.Background(), domain.ChannelAdmin, user.Email, "s3cret-pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	principal, err := svc.Verify(context.Background(), domain.ChannelAdmin, token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if principal.UserID != user.ID || principal.Role != domain.RoleAdmin || principal.Channel != domain.ChannelAdmin {
		t.Fatalf("unexpected principal: %+v", principal)
	}
}

func TestAuthService_Verify_FailClosed(t *testing.T) {
	svc := newAuthSvc(newStubUserRepo(), newStubSessionStore())
	ctx := context.Background()

	if _, err := svc.Verify(ctx, domain.ChannelAdmin, ""); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("missing token: expected ErrNotAuthenticated, got %v", err)
	}
	if _, err := svc.Verify(ctx, domain.ChannelAdmin, "not-a-token"); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("garbage token: expected ErrNotAuthenticated, got %v", err)
	}
}

// A token issued to an admin whose stored role has since changed must no
// longer verify on the admin channel.
func TestAuthService_Verify_DemotedUserRejected(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthSvc(repo, newStubSessionStore())
	user := registered(t, svc, domain.RoleAdmin)

	token, _, err := svc.Login(context.Background(), domain.ChannelAdmin, user.Email, "s3cret-pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	repo.byID[user.ID].Role = domain.RoleEmployee // demotion after issuance

	if _, err := svc.Verify(context.Background(), domain.ChannelAdmin, token); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated after demotion, got %v", err)
	}
}

func TestAuthService_Verify_DeletedUserRejected(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthSvc(repo, newStubSessionStore())
	user := registered(t, svc, domain.RoleEmployee)

	token, _, err := svc.Login(context.Background(), domain.ChannelStaff, user.Email, "s3cret-pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	delete(repo.byID, user.ID)

	if _, err := svc.Verify(context.Background(), domain.ChannelStaff, token); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated for missing user, got %v", err)
	}
}

func TestAuthService_Logout_RevokesToken(t *testing.T) {
	repo := newStubUserRepo()
	sessions := newStubSessionStore()
	svc := newAuthSvc(repo, sessions)
	user := registered(t, svc, domain.RoleAdmin)

	token, _, err := svc.Login(context.Background(), domain.ChannelAdmin, user.Email, "s3cret-pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.Logout(context.Background(), token); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := svc.Verify(context.Background(), domain.ChannelAdmin, token); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated after logout, got %v", err)
	}
}

func TestAuthService_Logout_MalformedTokenNoOp(t *testing.T) {
	svc := newAuthSvc(newStubUserRepo(), newStubSessionStore())
	if err := svc.Logout(context.Background(), "garbage"); err != nil {
		t.Fatalf("malformed token must be a no-op, got %v", err)
	}
}
