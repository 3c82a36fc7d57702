package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/inkpress/production-system/internal/core/domain"
)

type stubAuth struct {
	principal *domain.Principal
	err       error
	gotToken  string
}

func (s *stubAuth) Register(context.Context, string, string, string, string, string) (*domain.User, error) {
	return nil, nil
}

func (s *stubAuth) Login(context.Context, domain.Channel, string, string) (string, *domain.User, error) {
	return "", nil, nil
}

func (s *stubAuth) Logout(context.Context, string) error { return nil }

func (s *stubAuth) Verify(_ context.Context, _ domain.Channel, token string) (*domain.Principal, error) {
	s.gotToken = token
	if s.err != nil {
		return nil, s.err
	}
	return s.principal, nil
}

func adminScope(t *testing.T) Scope {
	t.Helper()
	for _, s := range DefaultScopes() {
		if s.Channel == domain.ChannelAdmin {
			return s
		}
	}
	t.Fatal("no admin scope configured")
	return Scope{}
}

func TestVerify_SetsPrincipal(t *testing.T) {
	auth := &stubAuth{principal: &domain.Principal{UserID: "u1", Role: domain.RoleAdmin, Channel: domain.ChannelAdmin}}
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/admin/jobs", nil)
	req.AddCookie(&http.Cookie{Name: CookieAdmin, Value: "tok"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen *domain.Principal
	handler := Verify(auth, adminScope(t))(func(c echo.Context) error {
		seen, _ = c.Get(PrincipalKey).(*domain.Principal)
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if auth.gotToken != "tok" {
		t.Fatalf("expected token from cookie, got %q", auth.gotToken)
	}
	if seen == nil || seen.UserID != "u1" {
		t.Fatalf("principal not set on context: %+v", seen)
	}
}

func TestVerify_RejectsOnFailure(t *testing.T) {
	auth := &stubAuth{err: domain.ErrNotAuthenticated}
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/admin/jobs", nil)
	req.AddCookie(&http.Cookie{Name: CookieAdmin, Value: "revoked"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Verify(auth, adminScope(t))(func(c echo.Context) error {
		t.Fatal("next must not run")
		return nil
	})
	err := handler(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}

func TestVerify_MissingCookieBecomesEmptyToken(t *testing.T) {
	auth := &stubAuth{err: domain.ErrNotAuthenticated, gotToken: "sentinel"}
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/admin/jobs", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Verify(auth, adminScope(t))(func(c echo.Context) error { return nil })
	if err := handler(c); err == nil {
		t.Fatal("expected error without cookie")
	}
	if auth.gotToken != "" {
		t.Fatalf("expected empty token passed to verifier, got %q", auth.gotToken)
	}
}
