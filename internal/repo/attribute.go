package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/recipe_api/internal/models"
)

type Attribute interface {
	models.Tag | models.Ingredient
}

// AttrRepo serves the owner-scoped per-user vocabularies (tags, ingredients).
// JoinTable/JoinKey name the recipe link table used by assigned-only listing
// and by Delete.
type AttrRepo[T Attribute] struct {
	DB        *gorm.DB
	JoinTable string
	JoinKey   string
}

func NewTagRepo(db *gorm.DB) *AttrRepo[models.Tag] {
	return &AttrRepo[models.Tag]{DB: db, JoinTable: "recipe_tags", JoinKey: "tag_id"}
}

func NewIngredientRepo(db *gorm.DB) *AttrRepo[models.Ingredient] {
	return &AttrRepo[models.Ingredient]{DB: db, JoinTable: "recipe_ingredients", JoinKey: "ingredient_id"}
}

func (r *AttrRepo[T]) List(ctx context.Context, owner uint, assignedOnly bool) ([]T, error) {
	q := r.DB.WithContext(ctx).Model(new(T)).Where("user_id = ?", owner)
	if assignedOnly {
		q = q.Where("id IN (?)", r.DB.Table(r.JoinTable).Select(r.JoinKey))
	}

	items := make([]T, 0)
	if err := q.Order("name DESC, id DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *AttrRepo[T]) Get(ctx context.Context, owner, id uint) (*T, error) {
	var item T
	if err := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, owner).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *AttrRepo[T]) NameTaken(ctx context.Context, owner uint, name string, exceptID uint) (bool, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(new(T)).
		Where("user_id = ? AND name = ? AND id <> ?", owner, name, exceptID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *AttrRepo[T]) Update(ctx context.Context, owner, id uint, name string) (*T, error) {
	res := r.DB.WithContext(ctx).Model(new(T)).
		Where("id = ? AND user_id = ?", id, owner).
		Update("name", name)
	if res.Error != nil {
		return nil, res.Error
	}
	return r.Get(ctx, owner, id)
}

// RecipeIDs lists the owner's recipes linked to the item.
func (r *AttrRepo[T]) RecipeIDs(ctx context.Context, owner, id uint) ([]uint, error) {
	ids := make([]uint, 0)
	err := r.DB.WithContext(ctx).Table(r.JoinTable).
		Joins("JOIN recipes ON recipes.id = "+r.JoinTable+".recipe_id").
		Where(r.JoinTable+"."+r.JoinKey+" = ? AND recipes.user_id = ?", id, owner).
		Order("recipes.id").
		Pluck("recipes.id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Delete removes the item and its recipe links. The recipes stay.
func (r *AttrRepo[T]) Delete(ctx context.Context, owner, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item T
		if err := tx.Where("id = ? AND user_id = ?", id, owner).First(&item).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM "+r.JoinTable+" WHERE "+r.JoinKey+" = ?", id).Error; err != nil {
			return err
		}
		res := tx.Where("id = ? AND user_id = ?", id, owner).Delete(new(T))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// GetOrCreate resolves names to the owner's items, creating missing ones.
func (r *AttrRepo[T]) GetOrCreate(ctx context.Context, owner uint, names []string) ([]T, error) {
	var out []T
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		out, err = getOrCreate[T](tx, owner, names)
		return err
	})
	return out, err
}

func getOrCreate[T Attribute](tx *gorm.DB, owner uint, names []string) ([]T, error) {
	names = dedupe(names)
	out := make([]T, 0, len(names))
	for _, name := range names {
		var item T
		if err := tx.Where(map[string]any{"user_id": owner, "name": name}).FirstOrCreate(&item).Error; err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}
