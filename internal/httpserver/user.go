package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/recipe_api/internal/logging"
	authmw "github.com/Skotchmaster/recipe_api/internal/middleware/auth"
	"github.com/Skotchmaster/recipe_api/internal/service"
	"github.com/Skotchmaster/recipe_api/internal/transport"
)

type UserHTTP struct {
	Svc *service.UserService
}

func (h *UserHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.create")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(l, "user_create_error", err)
	}

	user, err := h.Svc.Register(ctx, req)
	if err != nil {
		return failure(l, "user_create_error", err)
	}

	l.Info("user_create_success", "user_id", user.ID)
	return c.JSON(http.StatusCreated, transport.NewUserResponse(user))
}

func (h *UserHTTP) Token(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.token")

	var req transport.TokenRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(l, "token_issue_error", err)
	}

	token, err := h.Svc.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return failure(l, "token_issue_error", err)
	}

	l.Info("token_issue_success")
	return c.JSON(http.StatusOK, transport.TokenResponse{Token: token})
}

func (h *UserHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.me")

	caller, ok := authmw.CurrentUser(c)
	if !ok {
		return failure(l, "me_error", service.ErrUnauthenticated)
	}

	user, err := h.Svc.Profile(ctx, caller.ID)
	if err != nil {
		return failure(l, "me_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewUserResponse(user))
}

func (h *UserHTTP) UpdateMe(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.update_me")

	caller, ok := authmw.CurrentUser(c)
	if !ok {
		return failure(l, "me_update_error", service.ErrUnauthenticated)
	}

	var req transport.ProfileRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(l, "me_update_error", err)
	}

	partial := c.Request().Method == http.MethodPatch
	user, err := h.Svc.UpdateProfile(ctx, caller.ID, req, partial)
	if err != nil {
		return failure(l, "me_update_error", err)
	}

	l.Info("me_update_success")
	return c.JSON(http.StatusOK, transport.NewUserResponse(user))
}
