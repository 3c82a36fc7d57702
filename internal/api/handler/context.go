package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/inkpress/production-system/internal/api/middleware"
	"github.com/inkpress/production-system/internal/core/domain"
)

// ctxPrincipal extracts the principal injected by the Verify middleware and
// performs a fast-fail check before any service call: a nil principal means
// the middleware did not run on this route, which is a wiring bug surfaced as
// 401 rather than a panic deeper down.
func ctxPrincipal(c echo.Context) (*domain.Principal, error) {
	principal, _ := c.Get(middleware.PrincipalKey).(*domain.Principal)
	if principal == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
	}
	return principal, nil
}
