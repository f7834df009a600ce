package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/recipe_api/internal/logging"
	authmw "github.com/Skotchmaster/recipe_api/internal/middleware/auth"
	"github.com/Skotchmaster/recipe_api/internal/models"
	"github.com/Skotchmaster/recipe_api/internal/service"
	"github.com/Skotchmaster/recipe_api/internal/transport"
	"github.com/Skotchmaster/recipe_api/internal/util"
)

func NewRecipeViewset(svc service.Resource[models.Recipe, transport.RecipeRequest]) *Viewset[models.Recipe, transport.RecipeRequest] {
	return &Viewset[models.Recipe, transport.RecipeRequest]{
		Name:    "recipe",
		Actions: service.AllActions,
		Svc:     svc,
		Shape:   recipeShape,
	}
}

func NewTagViewset(svc service.Resource[models.Tag, transport.AttrRequest]) *Viewset[models.Tag, transport.AttrRequest] {
	return &Viewset[models.Tag, transport.AttrRequest]{
		Name:    "tag",
		Actions: service.AttributeActions,
		Svc:     svc,
		Shape: func(_ service.Action, t *models.Tag) any {
			return transport.NewTagResponse(t)
		},
	}
}

func NewIngredientViewset(svc service.Resource[models.Ingredient, transport.AttrRequest]) *Viewset[models.Ingredient, transport.AttrRequest] {
	return &Viewset[models.Ingredient, transport.AttrRequest]{
		Name:    "ingredient",
		Actions: service.AttributeActions,
		Svc:     svc,
		Shape: func(_ service.Action, i *models.Ingredient) any {
			return transport.NewIngredientResponse(i)
		},
	}
}

func recipeShape(action service.Action, r *models.Recipe) any {
	if action == service.ActionList {
		return transport.NewRecipeSummary(r)
	}
	return transport.NewRecipeDetail(r)
}

type SearchHTTP struct {
	Svc *service.RecipeService
}

func (h *SearchHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "recipe.search")

	caller, ok := authmw.CurrentUser(c)
	if !ok {
		return failure(l, "recipe_search_error", service.ErrUnauthenticated)
	}

	page := util.ClampPage(util.ParseIntDefault(c.QueryParam("page"), 1))
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	res, err := h.Svc.Search(ctx, caller.ID, c.QueryParam("q"), offset, limit)
	if err != nil {
		return failure(l, "recipe_search_error", err)
	}

	data := make([]transport.RecipeSummary, 0, len(res.Recipes))
	for i := range res.Recipes {
		data = append(data, transport.NewRecipeSummary(&res.Recipes[i]))
	}

	l.Info("recipe_search_success", "source", res.Source, "total", res.Total)
	return c.JSON(http.StatusOK, transport.SearchResponse{
		Data: data,
		Meta: transport.SearchMeta{
			Page:       page,
			Size:       limit,
			Total:      res.Total,
			TotalPages: util.TotalPages(res.Total, limit),
			HasPrev:    page > 1,
			HasNext:    int64(offset+limit) < res.Total,
			Source:     res.Source,
		},
	})
}
