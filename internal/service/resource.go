package service

import (
	"context"
	"net/url"

	"github.com/Skotchmaster/recipe_api/internal/models"
)

type Action string

const (
	ActionList          Action = "list"
	ActionRetrieve      Action = "retrieve"
	ActionCreate        Action = "create"
	ActionUpdate        Action = "update"
	ActionPartialUpdate Action = "partial_update"
	ActionDestroy       Action = "destroy"
)

type Actions map[Action]bool

func NewActions(list ...Action) Actions {
	a := make(Actions, len(list))
	for _, act := range list {
		a[act] = true
	}
	return a
}

func (a Actions) Allows(act Action) bool { return a[act] }

var (
	AllActions       = NewActions(ActionList, ActionRetrieve, ActionCreate, ActionUpdate, ActionPartialUpdate, ActionDestroy)
	AttributeActions = NewActions(ActionList, ActionUpdate, ActionPartialUpdate, ActionDestroy)
)

// Resource is an owner-scoped collection of M written through W payloads.
// Every call carries the owner; records of other owners are ErrNotFound.
type Resource[M any, W any] interface {
	List(ctx context.Context, owner uint, query url.Values) ([]M, error)
	Get(ctx context.Context, owner, id uint) (*M, error)
	Create(ctx context.Context, owner uint, req W) (*M, error)
	Update(ctx context.Context, owner, id uint, req W, partial bool) (*M, error)
	Delete(ctx context.Context, owner, id uint) error
}

// Publisher sends domain events. Failures are logged by the caller, never returned to clients.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, event any) error
}

// Indexer mirrors recipes into the full-text index.
type Indexer interface {
	IndexRecipe(ctx context.Context, r *models.Recipe) error
	DeleteRecipe(ctx context.Context, id uint) error
	Search(ctx context.Context, owner uint, query string, from, size int) ([]uint, int64, error)
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, string, any) error { return nil }
