package httpserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/recipe_api/internal/db/dbtest"
	"github.com/Skotchmaster/recipe_api/internal/logging"
	"github.com/Skotchmaster/recipe_api/internal/repo"
	"github.com/Skotchmaster/recipe_api/internal/service"
)

type testEnv struct {
	T    *testing.T
	E    *echo.Echo
	DB   *gorm.DB
	Repo *repo.GormRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	gdb := dbtest.New(t)
	r := repo.New(gdb)

	e := New(logging.NewWithWriter(io.Discard, "error"))
	Register(e, &Deps{
		DB:          gdb,
		Users:       &service.UserService{Repo: r, Events: service.NoopPublisher{}},
		Recipes:     &service.RecipeService{Repo: r, Events: service.NoopPublisher{}},
		Tags:        service.NewTagService(repo.NewTagRepo(gdb)),
		Ingredients: service.NewIngredientService(repo.NewIngredientRepo(gdb)),
	})

	return &testEnv{T: t, E: e, DB: gdb, Repo: r}
}

func (env *testEnv) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	env.T.Helper()

	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(env.T, err)
		rd = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Token "+token)
	}

	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

// login registers a user and returns a fresh token for it.
func (env *testEnv) login(email string) string {
	env.T.Helper()

	rec := env.do(http.MethodPost, "/api/user/create", map[string]string{
		"email":    email,
		"password": "testpass123",
		"name":     "Test Name",
	}, "")
	require.Equal(env.T, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(http.MethodPost, "/api/user/token", map[string]string{
		"email":    email,
		"password": "testpass123",
	}, "")
	require.Equal(env.T, http.StatusOK, rec.Code, rec.Body.String())

	var resp map[string]string
	require.NoError(env.T, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(env.T, resp["token"])
	return resp["token"]
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func recipePath(id any) string {
	return fmt.Sprintf("/api/recipe/recipes/%v", id)
}
