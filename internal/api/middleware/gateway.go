package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/inkpress/production-system/internal/api/metrics"
	"github.com/inkpress/production-system/internal/core/domain"
)

// Session cookie names, one per channel.
const (
	CookieAdmin  = "inkpress_admin_session"
	CookieStaff  = "inkpress_staff_session"
	CookiePortal = "inkpress_portal_session"
)

// Scope binds a path prefix to its session channel, cookie and login page.
type Scope struct {
	Channel    domain.Channel
	PathPrefix string
	CookieName string
	LoginPath  string
}

// DefaultScopes returns the three credential scopes of the system.
func DefaultScopes() []Scope {
	return []Scope{
		{Channel: domain.ChannelAdmin, PathPrefix: "/admin", CookieName: CookieAdmin, LoginPath: "/admin/login"},
		{Channel: domain.ChannelStaff, PathPrefix: "/staff", CookieName: CookieStaff, LoginPath: "/staff/login"},
		{Channel: domain.ChannelPortal, PathPrefix: "/portal", CookieName: CookiePortal, LoginPath: "/portal/login"},
	}
}

// publicPaths bypass the gateway's credential requirement unconditionally:
// login/logout entry points, health probes, metrics, and auth sub-routes.
var publicPaths = []string{
	"/health",
	"/metrics",
	"/auth/",
	"/admin/login",
	"/admin/logout",
	"/staff/login",
	"/staff/logout",
	"/portal/login",
	"/portal/logout",
}

// Gateway is the outer access check that runs on every request. It classifies
// the path, and for a scoped path requires only that the scope's session
// cookie is present — no parsing, no store access — redirecting to the
// scope's login page when it is absent. Paths outside every scope are
// forwarded; endpoint-level verification is the actual security boundary.
func Gateway(scopes []Scope) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path

			if isPublicPath(path) {
				return next(c)
			}

			scope, ok := classify(scopes, path)
			if !ok {
				return next(c)
			}

			if _, err := c.Cookie(scope.CookieName); err != nil {
				metrics.GatewayRedirectsTotal.WithLabelValues(string(scope.Channel)).Inc()
				return c.Redirect(http.StatusFound, scope.LoginPath)
			}

			return next(c)
		}
	}
}

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p || strings.HasSuffix(p, "/") && strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func classify(scopes []Scope, path string) (Scope, bool) {
	for _, s := range scopes {
		if path == s.PathPrefix || strings.HasPrefix(path, s.PathPrefix+"/") {
			return s, true
		}
	}
	return Scope{}, false
}
