package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/recipe_api/internal/service"
)

const msgBadCredentials = "Unable to authenticate with provided credentials."

// failure logs err under event and turns it into the matching HTTP error.
func failure(l *slog.Logger, event string, err error) error {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		l.Warn(event, "status", 400, "reason", "validation", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, ve.Fields)
	case errors.Is(err, service.ErrInvalidCredentials):
		l.Warn(event, "status", 400, "reason", "invalid credentials")
		return echo.NewHTTPError(http.StatusBadRequest, map[string][]string{
			"non_field_errors": {msgBadCredentials},
		})
	case errors.Is(err, service.ErrValidation):
		l.Warn(event, "status", 400, "reason", "validation", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUnauthenticated):
		l.Warn(event, "status", 401, "reason", "unauthenticated")
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token.")
	case errors.Is(err, service.ErrNotFound):
		l.Warn(event, "status", 404, "reason", "not found", "error", err)
		return notFound()
	case errors.Is(err, service.ErrNotAllowed):
		l.Warn(event, "status", 405, "reason", "method not allowed")
		return echo.ErrMethodNotAllowed
	default:
		l.Error(event, "status", 500, "reason", "internal error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

func invalidBody(l *slog.Logger, event string, err error) error {
	l.Warn(event, "status", 400, "reason", "invalid body", "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
}

func notFound() error {
	return echo.NewHTTPError(http.StatusNotFound, "Not found.")
}
