package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/recipe_api/internal/logging"
	"github.com/Skotchmaster/recipe_api/internal/models"
	"github.com/Skotchmaster/recipe_api/internal/service"
)

const (
	Scheme  = "Token"
	userKey = "auth_user"
)

type Resolver interface {
	Resolve(ctx context.Context, key string) (*models.User, error)
}

// TokenAuth resolves "Authorization: Token <key>" to a user before the
// handler runs. Requests without a valid token stop here with 401.
func TokenAuth(r Resolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			l := logging.FromContext(ctx)

			key, ok := tokenFromHeader(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				l.Warn("auth_failed", "status", 401, "reason", "missing token")
				return unauthorized(c, "Authentication credentials were not provided.")
			}

			user, err := r.Resolve(ctx, key)
			if err != nil {
				if errors.Is(err, service.ErrUnauthenticated) {
					l.Warn("auth_failed", "status", 401, "reason", "invalid token")
					return unauthorized(c, "Invalid token.")
				}
				l.Error("auth_failed", "status", 500, "reason", "cannot resolve token", "error", err)
				return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
			}

			l = l.With("user_id", user.ID)
			c.SetRequest(c.Request().WithContext(logging.IntoContext(ctx, l)))
			c.Set(userKey, user)
			return next(c)
		}
	}
}

// CurrentUser returns the caller resolved by TokenAuth.
func CurrentUser(c echo.Context) (*models.User, bool) {
	u, ok := c.Get(userKey).(*models.User)
	return u, ok && u != nil
}

func tokenFromHeader(h string) (string, bool) {
	scheme, key, found := strings.Cut(strings.TrimSpace(h), " ")
	if !found || !strings.EqualFold(scheme, Scheme) {
		return "", false
	}
	key = strings.TrimSpace(key)
	if key == "" || strings.Contains(key, " ") {
		return "", false
	}
	return key, true
}

func unauthorized(c echo.Context, msg string) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, Scheme)
	return echo.NewHTTPError(http.StatusUnauthorized, msg)
}
