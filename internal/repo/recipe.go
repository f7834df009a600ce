package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/recipe_api/internal/models"
)

// RecipeFilter narrows a recipe listing. Ids inside one list are OR-ed,
// the two lists are AND-ed.
type RecipeFilter struct {
	TagIDs        []uint
	IngredientIDs []uint
}

// RecipeChanges carries a partial recipe update. Fields holds column values,
// SetTags/SetIngredients tell whether the matching name list replaces the
// current set (an empty list clears it).
type RecipeChanges struct {
	Fields         map[string]any
	Tags           []string
	Ingredients    []string
	SetTags        bool
	SetIngredients bool
}

func (r *GormRepo) ListRecipes(ctx context.Context, owner uint, f RecipeFilter) ([]models.Recipe, error) {
	q := r.DB.WithContext(ctx).Model(&models.Recipe{}).Where("user_id = ?", owner)
	if len(f.TagIDs) > 0 {
		q = q.Where("id IN (?)", r.DB.Table("recipe_tags").Select("recipe_id").Where("tag_id IN ?", f.TagIDs))
	}
	if len(f.IngredientIDs) > 0 {
		q = q.Where("id IN (?)", r.DB.Table("recipe_ingredients").Select("recipe_id").Where("ingredient_id IN ?", f.IngredientIDs))
	}

	recipes := make([]models.Recipe, 0)
	if err := q.Order("id DESC").Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

func (r *GormRepo) GetRecipe(ctx context.Context, owner, id uint) (*models.Recipe, error) {
	return getRecipe(r.DB.WithContext(ctx), owner, id)
}

func getRecipe(tx *gorm.DB, owner, id uint) (*models.Recipe, error) {
	var rec models.Recipe
	err := tx.
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("name DESC, id DESC") }).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("name DESC, id DESC") }).
		Where("id = ? AND user_id = ?", id, owner).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// CreateRecipe stores rec for owner. Any UserID already set on rec is overwritten.
func (r *GormRepo) CreateRecipe(ctx context.Context, owner uint, rec *models.Recipe, tagNames, ingredientNames []string) (*models.Recipe, error) {
	rec.ID = 0
	rec.UserID = owner
	rec.Tags = nil
	rec.Ingredients = nil

	var out *models.Recipe
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(rec).Error; err != nil {
			return err
		}
		if len(tagNames) > 0 {
			if err := replaceTags(tx, owner, rec, tagNames); err != nil {
				return err
			}
		}
		if len(ingredientNames) > 0 {
			if err := replaceIngredients(tx, owner, rec, ingredientNames); err != nil {
				return err
			}
		}
		var err error
		out, err = getRecipe(tx, owner, rec.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormRepo) UpdateRecipe(ctx context.Context, owner, id uint, ch RecipeChanges) (*models.Recipe, error) {
	var out *models.Recipe
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec models.Recipe
		if err := tx.Where("id = ? AND user_id = ?", id, owner).First(&rec).Error; err != nil {
			return err
		}

		if len(ch.Fields) > 0 {
			delete(ch.Fields, "user_id")
			delete(ch.Fields, "id")
			if err := tx.Model(&rec).Omit(clause.Associations).Updates(ch.Fields).Error; err != nil {
				return err
			}
		}
		if ch.SetTags {
			if err := replaceTags(tx, owner, &rec, ch.Tags); err != nil {
				return err
			}
		}
		if ch.SetIngredients {
			if err := replaceIngredients(tx, owner, &rec, ch.Ingredients); err != nil {
				return err
			}
		}

		var err error
		out, err = getRecipe(tx, owner, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormRepo) DeleteRecipe(ctx context.Context, owner, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec models.Recipe
		if err := tx.Where("id = ? AND user_id = ?", id, owner).First(&rec).Error; err != nil {
			return err
		}
		return tx.Select("Tags", "Ingredients").Delete(&rec).Error
	})
}

// RecipesByIDs loads the owner's recipes among ids and keeps the order of ids.
// Ids that are missing or belong to someone else are skipped.
func (r *GormRepo) RecipesByIDs(ctx context.Context, owner uint, ids []uint) ([]models.Recipe, error) {
	out := make([]models.Recipe, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var found []models.Recipe
	if err := r.DB.WithContext(ctx).Where("user_id = ? AND id IN ?", owner, ids).Find(&found).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Recipe, len(found))
	for _, rec := range found {
		byID[rec.ID] = rec
	}
	for _, id := range ids {
		if rec, ok := byID[id]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *GormRepo) SearchRecipesByTitle(ctx context.Context, owner uint, query string, offset, limit int) ([]models.Recipe, int64, error) {
	q := r.DB.WithContext(ctx).Model(&models.Recipe{}).Where("user_id = ?", owner)
	if query = strings.TrimSpace(query); query != "" {
		q = q.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(query)+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	recipes := make([]models.Recipe, 0)
	if err := q.Order("id DESC").Offset(offset).Limit(limit).Find(&recipes).Error; err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

func replaceTags(tx *gorm.DB, owner uint, rec *models.Recipe, names []string) error {
	if len(names) == 0 {
		return tx.Model(rec).Association("Tags").Clear()
	}
	tags, err := getOrCreate[models.Tag](tx, owner, names)
	if err != nil {
		return err
	}
	return tx.Model(rec).Association("Tags").Replace(tags)
}

func replaceIngredients(tx *gorm.DB, owner uint, rec *models.Recipe, names []string) error {
	if len(names) == 0 {
		return tx.Model(rec).Association("Ingredients").Clear()
	}
	ings, err := getOrCreate[models.Ingredient](tx, owner, names)
	if err != nil {
		return err
	}
	return tx.Model(rec).Association("Ingredients").Replace(ings)
}
