package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/recipe_api/internal/db/dbtest"
	"github.com/Skotchmaster/recipe_api/internal/models"
	"github.com/Skotchmaster/recipe_api/internal/repo"
	"github.com/Skotchmaster/recipe_api/internal/transport"
)

type sentEvent struct {
	Topic string
	Key   string
	Event any
}

type fakePublisher struct {
	mu   sync.Mutex
	sent []sentEvent
	err  error
}

func (p *fakePublisher) Publish(_ context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, sentEvent{Topic: topic, Key: key, Event: event})
	return p.err
}

func (p *fakePublisher) Events() []sentEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]sentEvent(nil), p.sent...)
}

type fakeIndexer struct {
	indexed map[uint]models.Recipe
	hits    []uint
	err     error
}

func newFakeIndexer() *fakeIndexer {
	return &fakeIndexer{indexed: make(map[uint]models.Recipe)}
}

func (f *fakeIndexer) IndexRecipe(_ context.Context, r *models.Recipe) error {
	f.indexed[r.ID] = *r
	return f.err
}

func (f *fakeIndexer) DeleteRecipe(_ context.Context, id uint) error {
	delete(f.indexed, id)
	return f.err
}

func (f *fakeIndexer) Search(context.Context, uint, string, int, int) ([]uint, int64, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.hits, int64(len(f.hits)), nil
}

var errBroker = errors.New("broker down")

type testEnv struct {
	Repo    *repo.GormRepo
	Events  *fakePublisher
	Users   *UserService
	Recipes *RecipeService
	Tags    *AttributeService[models.Tag]
	Ings    *AttributeService[models.Ingredient]
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	gdb := dbtest.New(t)
	r := repo.New(gdb)
	events := &fakePublisher{}
	return &testEnv{
		Repo:    r,
		Events:  events,
		Users:   &UserService{Repo: r, Events: events},
		Recipes: &RecipeService{Repo: r, Events: events},
		Tags:    NewTagService(repo.NewTagRepo(gdb)),
		Ings:    NewIngredientService(repo.NewIngredientRepo(gdb)),
	}
}

func (env *testEnv) register(t *testing.T, email string) *models.User {
	t.Helper()
	u, err := env.Users.Register(context.Background(), transport.RegisterRequest{
		Email:    email,
		Password: "testpass123",
		Name:     "Test",
	})
	require.NoError(t, err)
	return u
}

func ptr[T any](v T) *T { return &v }

func itoa(id uint) string { return strconv.FormatUint(uint64(id), 10) }
