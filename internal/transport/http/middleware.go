package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/njprem/TravelAgency_BackEnd/internal/domain"
	"github.com/njprem/TravelAgency_BackEnd/internal/service"
	"github.com/njprem/TravelAgency_BackEnd/internal/util"
)

const contextUserKey = "auth.user"

// Authenticator resolves a bearer token to an active user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

func RequireAuth(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if strings.TrimSpace(authHeader) == "" {
				return c.JSON(http.StatusUnauthorized, util.Error("missing authorization header"))
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return c.JSON(http.StatusUnauthorized, util.Error("invalid authorization header"))
			}
			user, err := auth.Authenticate(c.Request().Context(), strings.TrimSpace(parts[1]))
			switch {
			case err == nil:
			case errors.Is(err, service.ErrAccountInactive):
				return c.JSON(http.StatusForbidden, util.Error(err.Error()))
			case errors.Is(err, service.ErrStoreUnavailable):
				return c.JSON(http.StatusServiceUnavailable, util.Error(genericFailure))
			default:
				return c.JSON(http.StatusUnauthorized, util.Error("invalid or expired token"))
			}
			c.Set(contextUserKey, user)
			return next(c)
		}
	}
}

// RequireAdmin must run after RequireAuth.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := CurrentUser(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
			}
			if !user.IsAdmin() {
				return c.JSON(http.StatusForbidden, util.Error("admin privileges required"))
			}
			return next(c)
		}
	}
}

func CurrentUser(c echo.Context) (*domain.User, bool) {
	user, ok := c.Get(contextUserKey).(*domain.User)
	return user, ok && user != nil
}
