package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/inkpress/production-system/internal/core/domain"
	"github.com/inkpress/production-system/internal/core/ports"
)

// PrincipalKey is the echo context key under which Verify stores the
// authenticated principal.
const PrincipalKey = "principal"

// Verify is the defence-in-depth check behind sensitive endpoints. Unlike the
// gateway's presence check, it parses the scope's token, consults the
// credential store, and requires the bound user's stored role to still match
// the channel. All failures surface as 401 without distinguishing the cause.
func Verify(auth ports.AuthService, scope Scope) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := ""
			if cookie, err := c.Cookie(scope.CookieName); err == nil {
				token = cookie.Value
			}

			principal, err := auth.Verify(c.Request().Context(), scope.Channel, token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, domain.ErrNotAuthenticated.Error())
			}

			c.Set(PrincipalKey, principal)
			return next(c)
		}
	}
}
