package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"github.com/Skotchmaster/recipe_api/internal/db"
	authmw "github.com/Skotchmaster/recipe_api/internal/middleware/auth"
	loggingmw "github.com/Skotchmaster/recipe_api/internal/middleware/logging"
	"github.com/Skotchmaster/recipe_api/internal/models"
	"github.com/Skotchmaster/recipe_api/internal/service"
	"github.com/Skotchmaster/recipe_api/internal/transport"
)

type Deps struct {
	DB          *gorm.DB
	Users       *service.UserService
	Recipes     *service.RecipeService
	Tags        service.Resource[models.Tag, transport.AttrRequest]
	Ingredients service.Resource[models.Ingredient, transport.AttrRequest]
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx, d.DB); err != nil {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})

	requireToken := authmw.TokenAuth(d.Users)
	users := &UserHTTP{Svc: d.Users}

	api := e.Group("/api")

	user := api.Group("/user")
	user.POST("/create", users.Create)
	user.POST("/token", users.Token)
	user.GET("/me", users.Me, requireToken)
	user.PUT("/me", users.UpdateMe, requireToken)
	user.PATCH("/me", users.UpdateMe, requireToken)

	// auth stays per route so unknown methods on known paths answer 405
	recipe := api.Group("/recipe")

	search := &SearchHTTP{Svc: d.Recipes}
	recipe.GET("/recipes/search", search.Search, requireToken)

	NewRecipeViewset(d.Recipes).Register(recipe, "/recipes", requireToken)
	NewTagViewset(d.Tags).Register(recipe, "/tags", requireToken)
	NewIngredientViewset(d.Ingredients).Register(recipe, "/ingredients", requireToken)
}

// New builds the echo instance with the shared middleware stack.
func New(logger *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	return e
}
