package service

import (
	"context"
	"math"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Skotchmaster/recipe_api/internal/logging"
	"github.com/Skotchmaster/recipe_api/internal/models"
	"github.com/Skotchmaster/recipe_api/internal/repo"
	"github.com/Skotchmaster/recipe_api/internal/transport"
	"github.com/Skotchmaster/recipe_api/internal/util"
)

const MaxPrice = 999.99

const (
	msgNegative     = "Ensure this value is greater than or equal to 0."
	msgPriceTooHigh = "Ensure that there are no more than 5 digits in total."
	msgPriceDigits  = "Ensure that there are no more than 2 decimal places."
	msgInvalidIDs   = "Enter a comma separated list of ids."
	msgNotANumber   = "A valid number is required."
)

const (
	SourceIndex    = "elasticsearch"
	SourceDatabase = "database"
)

type RecipeService struct {
	Repo   *repo.GormRepo
	Events Publisher
	// Index is nil when full-text search is not configured.
	Index Indexer
}

var _ Resource[models.Recipe, transport.RecipeRequest] = (*RecipeService)(nil)

type SearchResult struct {
	Recipes []models.Recipe
	Total   int64
	Source  string
}

func (s *RecipeService) List(ctx context.Context, owner uint, query url.Values) ([]models.Recipe, error) {
	var f repo.RecipeFilter
	var err error

	ve := &ValidationError{}
	if f.TagIDs, err = util.ParseIDs(query.Get("tags")); err != nil {
		ve.Add("tags", msgInvalidIDs)
	}
	if f.IngredientIDs, err = util.ParseIDs(query.Get("ingredients")); err != nil {
		ve.Add("ingredients", msgInvalidIDs)
	}
	if err := ve.Err(); err != nil {
		return nil, err
	}

	return s.Repo.ListRecipes(ctx, owner, f)
}

func (s *RecipeService) Get(ctx context.Context, owner, id uint) (*models.Recipe, error) {
	rec, err := s.Repo.GetRecipe(ctx, owner, id)
	if err != nil {
		return nil, storeErr(err, "recipe")
	}
	return rec, nil
}

func (s *RecipeService) Create(ctx context.Context, owner uint, req transport.RecipeRequest) (*models.Recipe, error) {
	ch, err := recipeChanges(req, false)
	if err != nil {
		return nil, err
	}

	rec := &models.Recipe{}
	applyFields(rec, ch.Fields)

	created, err := s.Repo.CreateRecipe(ctx, owner, rec, ch.Tags, ch.Ingredients)
	if err != nil {
		return nil, err
	}

	s.reindex(ctx, created)
	publish(ctx, s.Events, TopicRecipeEvents, recipeKey(created.ID), RecipeEvent{
		Type:     EventRecipeCreated,
		UserID:   owner,
		RecipeID: created.ID,
		Title:    created.Title,
	})
	return created, nil
}

func (s *RecipeService) Update(ctx context.Context, owner, id uint, req transport.RecipeRequest, partial bool) (*models.Recipe, error) {
	ch, err := recipeChanges(req, partial)
	if err != nil {
		return nil, err
	}

	updated, err := s.Repo.UpdateRecipe(ctx, owner, id, ch)
	if err != nil {
		return nil, storeErr(err, "recipe")
	}

	s.reindex(ctx, updated)
	publish(ctx, s.Events, TopicRecipeEvents, recipeKey(id), RecipeEvent{
		Type:     EventRecipeUpdated,
		UserID:   owner,
		RecipeID: id,
		Title:    updated.Title,
	})
	return updated, nil
}

func (s *RecipeService) Delete(ctx context.Context, owner, id uint) error {
	if err := s.Repo.DeleteRecipe(ctx, owner, id); err != nil {
		return storeErr(err, "recipe")
	}

	if s.Index != nil {
		ictx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
		defer cancel()
		if err := s.Index.DeleteRecipe(ictx, id); err != nil {
			logging.FromContext(ctx).Warn("unindex_recipe_failed", "recipe_id", id, "error", err)
		}
	}
	publish(ctx, s.Events, TopicRecipeEvents, recipeKey(id), RecipeEvent{
		Type:     EventRecipeDeleted,
		UserID:   owner,
		RecipeID: id,
	})
	return nil
}

// Search looks recipes up through the index when there is one and falls back
// to a title match in the store otherwise. Index hits are re-read with the
// owner filter.
func (s *RecipeService) Search(ctx context.Context, owner uint, query string, offset, limit int) (*SearchResult, error) {
	query = strings.TrimSpace(query)

	if s.Index != nil {
		ids, total, err := s.Index.Search(ctx, owner, query, offset, limit)
		if err == nil {
			recipes, err := s.Repo.RecipesByIDs(ctx, owner, ids)
			if err != nil {
				return nil, err
			}
			// hits whose rows are gone or not the owner's
			if stale := int64(len(ids) - len(recipes)); stale > 0 {
				total = max(total-stale, int64(offset+len(recipes)))
			}
			return &SearchResult{Recipes: recipes, Total: total, Source: SourceIndex}, nil
		}
		logging.FromContext(ctx).Warn("search_index_failed", "reason", "falling back to database", "error", err)
	}

	recipes, total, err := s.Repo.SearchRecipesByTitle(ctx, owner, query, offset, limit)
	if err != nil {
		return nil, err
	}
	return &SearchResult{Recipes: recipes, Total: total, Source: SourceDatabase}, nil
}

func (s *RecipeService) reindex(ctx context.Context, rec *models.Recipe) {
	if s.Index == nil {
		return
	}
	ictx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()
	if err := s.Index.IndexRecipe(ictx, rec); err != nil {
		logging.FromContext(ctx).Warn("index_recipe_failed", "recipe_id", rec.ID, "error", err)
	}
}

func recipeKey(id uint) string { return strconv.FormatUint(uint64(id), 10) }

func recipeChanges(req transport.RecipeRequest, partial bool) (repo.RecipeChanges, error) {
	ve := &ValidationError{}
	ch := repo.RecipeChanges{Fields: make(map[string]any)}

	if !partial {
		if req.Title == nil {
			ve.Add("title", msgRequired)
		}
		if req.TimeMinutes == nil {
			ve.Add("time_minutes", msgRequired)
		}
		if req.Price == nil {
			ve.Add("price", msgRequired)
		}
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		switch {
		case title == "":
			ve.Add("title", msgBlank)
		case utf8.RuneCountInString(title) > MaxFieldLength:
			ve.Add("title", msgTooLong)
		}
		ch.Fields["title"] = title
	}
	if req.TimeMinutes != nil {
		if *req.TimeMinutes < 0 {
			ve.Add("time_minutes", msgNegative)
		}
		ch.Fields["time_minutes"] = *req.TimeMinutes
	}
	if req.Price != nil {
		price := float64(*req.Price)
		switch {
		case math.IsNaN(price) || math.IsInf(price, 0):
			ve.Add("price", msgNotANumber)
		case price < 0:
			ve.Add("price", msgNegative)
		case price > MaxPrice:
			ve.Add("price", msgPriceTooHigh)
		case math.Abs(price*100-math.Round(price*100)) > 1e-6:
			ve.Add("price", msgPriceDigits)
		default:
			ch.Fields["price"] = math.Round(price*100) / 100
		}
	}
	if req.Link != nil {
		link := strings.TrimSpace(*req.Link)
		if utf8.RuneCountInString(link) > MaxFieldLength {
			ve.Add("link", msgTooLong)
		}
		ch.Fields["link"] = link
	}
	if req.Description != nil {
		ch.Fields["description"] = *req.Description
	}
	if req.Tags != nil {
		ch.SetTags = true
		ch.Tags = attributeNames(ve, "tags", *req.Tags)
	}
	if req.Ingredients != nil {
		ch.SetIngredients = true
		ch.Ingredients = attributeNames(ve, "ingredients", *req.Ingredients)
	}

	if err := ve.Err(); err != nil {
		return repo.RecipeChanges{}, err
	}
	return ch, nil
}

func attributeNames(ve *ValidationError, field string, items []transport.NameRequest) []string {
	names := make([]string, 0, len(items))
	for _, it := range items {
		name := strings.TrimSpace(it.Name)
		switch {
		case name == "":
			ve.Add(field, "name: "+msgBlank)
		case utf8.RuneCountInString(name) > MaxFieldLength:
			ve.Add(field, "name: "+msgTooLong)
		default:
			names = append(names, name)
		}
	}
	return names
}

func applyFields(rec *models.Recipe, fields map[string]any) {
	if v, ok := fields["title"].(string); ok {
		rec.Title = v
	}
	if v, ok := fields["time_minutes"].(int); ok {
		rec.TimeMinutes = v
	}
	if v, ok := fields["price"].(float64); ok {
		rec.Price = v
	}
	if v, ok := fields["link"].(string); ok {
		rec.Link = v
	}
	if v, ok := fields["description"].(string); ok {
		rec.Description = v
	}
}
