package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/inkpress/production-system/internal/api/middleware"
	"github.com/inkpress/production-system/internal/core/domain"
	"github.com/inkpress/production-system/internal/core/ports"
)

// AuthHandler handles registration and the per-scope login/logout endpoints.
type AuthHandler struct {
	authService ports.AuthService
	sessionTTL  time.Duration
}

func NewAuthHandler(authService ports.AuthService, sessionTTL time.Duration) *AuthHandler {
	return &AuthHandler{authService: authService, sessionTTL: sessionTTL}
}

type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// Register creates a new user account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User details"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	user, err := h.authService.Register(c.Request().Context(), req.Name, req.Email, req.Password, req.Role, req.CustomerID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toUserResponse(user))
}

// Login returns a handler for one scope's login endpoint. On success the
// scope's session cookie is set; the token is not returned in the body.
//
// @Summary      Log in to a scope
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  userResponse
// @Failure      401   {object}  errorResponse
// @Router       /{scope}/login [post]
func (h *AuthHandler) Login(scope middleware.Scope) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req loginRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
		}
		if err := c.Validate(&req); err != nil {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}

		token, user, err := h.authService.Login(c.Request().Context(), scope.Channel, req.Email, req.Password)
		if err != nil {
			return err
		}

		c.SetCookie(&http.Cookie{
			Name:     scope.CookieName,
			Value:    token,
			Path:     "/",
			Expires:  time.Now().Add(h.sessionTTL),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		return c.JSON(http.StatusOK, toUserResponse(user))
	}
}

// Logout returns a handler for one scope's logout endpoint: the presented
// token is revoked server-side and the cookie cleared.
//
// @Summary      Log out of a scope
// @Tags         auth
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /{scope}/logout [post]
func (h *AuthHandler) Logout(scope middleware.Scope) echo.HandlerFunc {
	return func(c echo.Context) error {
		if cookie, err := c.Cookie(scope.CookieName); err == nil {
			if err := h.authService.Logout(c.Request().Context(), cookie.Value); err != nil {
				return err
			}
		}

		c.SetCookie(&http.Cookie{
			Name:     scope.CookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
		})

		return c.JSON(http.StatusOK, map[string]string{"status": "logged out"})
	}
}
