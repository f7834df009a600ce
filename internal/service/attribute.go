package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/Skotchmaster/recipe_api/internal/logging"
	"github.com/Skotchmaster/recipe_api/internal/models"
	"github.com/Skotchmaster/recipe_api/internal/repo"
	"github.com/Skotchmaster/recipe_api/internal/transport"
)

const msgNameTaken = "You already have an entry with this name."

// AttributeService manages one per-user vocabulary (tags or ingredients).
// Entries are only created through recipe writes.
type AttributeService[T repo.Attribute] struct {
	Repo *repo.AttrRepo[T]
	Kind string
	// Recipes and Index are set when full-text search is configured; linked
	// recipes are reindexed after a rename or delete.
	Recipes *repo.GormRepo
	Index   Indexer
}

var (
	_ Resource[models.Tag, transport.AttrRequest]        = (*AttributeService[models.Tag])(nil)
	_ Resource[models.Ingredient, transport.AttrRequest] = (*AttributeService[models.Ingredient])(nil)
)

func NewTagService(r *repo.AttrRepo[models.Tag]) *AttributeService[models.Tag] {
	return &AttributeService[models.Tag]{Repo: r, Kind: "tag"}
}

func NewIngredientService(r *repo.AttrRepo[models.Ingredient]) *AttributeService[models.Ingredient] {
	return &AttributeService[models.Ingredient]{Repo: r, Kind: "ingredient"}
}

func (s *AttributeService[T]) List(ctx context.Context, owner uint, query url.Values) ([]T, error) {
	assigned, err := parseFlag(query.Get("assigned_only"))
	if err != nil {
		return nil, fieldError("assigned_only", "Must be 0 or 1.")
	}
	return s.Repo.List(ctx, owner, assigned)
}

func (s *AttributeService[T]) Get(ctx context.Context, owner, id uint) (*T, error) {
	item, err := s.Repo.Get(ctx, owner, id)
	if err != nil {
		return nil, storeErr(err, s.Kind)
	}
	return item, nil
}

func (s *AttributeService[T]) Create(context.Context, uint, transport.AttrRequest) (*T, error) {
	return nil, fmt.Errorf("%w: %s create", ErrNotAllowed, s.Kind)
}

func (s *AttributeService[T]) Update(ctx context.Context, owner, id uint, req transport.AttrRequest, partial bool) (*T, error) {
	if _, err := s.Repo.Get(ctx, owner, id); err != nil {
		return nil, storeErr(err, s.Kind)
	}
	if req.Name == nil {
		if partial {
			return s.Get(ctx, owner, id)
		}
		return nil, fieldError("name", msgRequired)
	}

	name := strings.TrimSpace(*req.Name)
	switch {
	case name == "":
		return nil, fieldError("name", msgBlank)
	case utf8.RuneCountInString(name) > MaxFieldLength:
		return nil, fieldError("name", msgTooLong)
	}

	taken, err := s.Repo.NameTaken(ctx, owner, name, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fieldError("name", msgNameTaken)
	}

	item, err := s.Repo.Update(ctx, owner, id, name)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fieldError("name", msgNameTaken)
		}
		return nil, storeErr(err, s.Kind)
	}

	s.reindexLinked(ctx, owner, s.linkedRecipes(ctx, owner, id))
	return item, nil
}

func (s *AttributeService[T]) Delete(ctx context.Context, owner, id uint) error {
	linked := s.linkedRecipes(ctx, owner, id)
	if err := s.Repo.Delete(ctx, owner, id); err != nil {
		return storeErr(err, s.Kind)
	}
	s.reindexLinked(ctx, owner, linked)
	return nil
}

func (s *AttributeService[T]) linkedRecipes(ctx context.Context, owner, id uint) []uint {
	if s.Index == nil || s.Recipes == nil {
		return nil
	}
	ids, err := s.Repo.RecipeIDs(ctx, owner, id)
	if err != nil {
		logging.FromContext(ctx).Warn("linked_recipes_failed", "kind", s.Kind, "id", id, "error", err)
		return nil
	}
	return ids
}

func (s *AttributeService[T]) reindexLinked(ctx context.Context, owner uint, ids []uint) {
	if len(ids) == 0 {
		return
	}
	l := logging.FromContext(ctx)
	ictx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()

	for _, rid := range ids {
		rec, err := s.Recipes.GetRecipe(ictx, owner, rid)
		if err == nil {
			err = s.Index.IndexRecipe(ictx, rec)
		}
		if err != nil {
			l.Warn("index_recipe_failed", "recipe_id", rid, "kind", s.Kind, "error", err)
		}
	}
}

func parseFlag(v string) (bool, error) {
	if v == "" {
		return false, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 || n > 1 {
		return false, errors.New("invalid flag")
	}
	return n == 1, nil
}
