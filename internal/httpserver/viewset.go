package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/recipe_api/internal/logging"
	authmw "github.com/Skotchmaster/recipe_api/internal/middleware/auth"
	"github.com/Skotchmaster/recipe_api/internal/service"
	"github.com/Skotchmaster/recipe_api/internal/util"
)

// Viewset serves one owner-scoped resource kind over HTTP. Only the routes of
// allowed Actions are registered, so any other method on a known path answers 405.
// Shape picks the response body per action.
type Viewset[M any, W any] struct {
	Name    string
	Actions service.Actions
	Svc     service.Resource[M, W]
	Shape   func(service.Action, *M) any
}

func (v *Viewset[M, W]) Register(g *echo.Group, prefix string, mw ...echo.MiddlewareFunc) {
	if v.Actions.Allows(service.ActionList) {
		g.GET(prefix, v.List, mw...)
	}
	if v.Actions.Allows(service.ActionCreate) {
		g.POST(prefix, v.Create, mw...)
	}
	if v.Actions.Allows(service.ActionRetrieve) {
		g.GET(prefix+"/:id", v.Retrieve, mw...)
	}
	if v.Actions.Allows(service.ActionUpdate) {
		g.PUT(prefix+"/:id", v.Update, mw...)
	}
	if v.Actions.Allows(service.ActionPartialUpdate) {
		g.PATCH(prefix+"/:id", v.Update, mw...)
	}
	if v.Actions.Allows(service.ActionDestroy) {
		g.DELETE(prefix+"/:id", v.Destroy, mw...)
	}
}

func (v *Viewset[M, W]) begin(c echo.Context, action service.Action) (uint, error) {
	l := logging.FromContext(c.Request().Context())
	if !v.Actions.Allows(action) {
		return 0, failure(l, v.Name+"_"+string(action)+"_error", service.ErrNotAllowed)
	}
	caller, ok := authmw.CurrentUser(c)
	if !ok {
		return 0, failure(l, v.Name+"_"+string(action)+"_error", service.ErrUnauthenticated)
	}
	return caller.ID, nil
}

// pathID reads :id. A malformed id cannot name any record, so it is a 404.
func pathID(c echo.Context) (uint, bool) {
	id, err := util.ParseID(c.Param("id"))
	return id, err == nil
}

func (v *Viewset[M, W]) List(c echo.Context) error {
	owner, err := v.begin(c, service.ActionList)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", v.Name+".list")

	items, err := v.Svc.List(ctx, owner, c.QueryParams())
	if err != nil {
		return failure(l, v.Name+"_list_error", err)
	}

	out := make([]any, 0, len(items))
	for i := range items {
		out = append(out, v.Shape(service.ActionList, &items[i]))
	}
	return c.JSON(http.StatusOK, out)
}

func (v *Viewset[M, W]) Retrieve(c echo.Context) error {
	owner, err := v.begin(c, service.ActionRetrieve)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", v.Name+".retrieve")

	id, ok := pathID(c)
	if !ok {
		l.Warn(v.Name+"_retrieve_error", "status", 404, "reason", "malformed id")
		return notFound()
	}

	item, err := v.Svc.Get(ctx, owner, id)
	if err != nil {
		return failure(l, v.Name+"_retrieve_error", err)
	}
	return c.JSON(http.StatusOK, v.Shape(service.ActionRetrieve, item))
}

func (v *Viewset[M, W]) Create(c echo.Context) error {
	owner, err := v.begin(c, service.ActionCreate)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", v.Name+".create")

	var req W
	if err := c.Bind(&req); err != nil {
		return invalidBody(l, v.Name+"_create_error", err)
	}

	item, err := v.Svc.Create(ctx, owner, req)
	if err != nil {
		return failure(l, v.Name+"_create_error", err)
	}

	l.Info(v.Name + "_create_success")
	return c.JSON(http.StatusCreated, v.Shape(service.ActionCreate, item))
}

// Update serves PUT (all required fields) and PATCH (only the given ones).
func (v *Viewset[M, W]) Update(c echo.Context) error {
	action := service.ActionUpdate
	if c.Request().Method == http.MethodPatch {
		action = service.ActionPartialUpdate
	}
	owner, err := v.begin(c, action)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", v.Name+"."+string(action))
	event := v.Name + "_" + string(action) + "_error"

	id, ok := pathID(c)
	if !ok {
		l.Warn(event, "status", 404, "reason", "malformed id")
		return notFound()
	}

	var req W
	if err := c.Bind(&req); err != nil {
		return invalidBody(l, event, err)
	}

	item, err := v.Svc.Update(ctx, owner, id, req, action == service.ActionPartialUpdate)
	if err != nil {
		return failure(l, event, err)
	}

	l.Info(v.Name+"_"+string(action)+"_success", "id", id)
	return c.JSON(http.StatusOK, v.Shape(action, item))
}

func (v *Viewset[M, W]) Destroy(c echo.Context) error {
	owner, err := v.begin(c, service.ActionDestroy)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", v.Name+".destroy")

	id, ok := pathID(c)
	if !ok {
		l.Warn(v.Name+"_destroy_error", "status", 404, "reason", "malformed id")
		return notFound()
	}

	if err := v.Svc.Delete(ctx, owner, id); err != nil {
		return failure(l, v.Name+"_destroy_error", err)
	}

	l.Info(v.Name+"_destroy_success", "id", id)
	return c.NoContent(http.StatusNoContent)
}
