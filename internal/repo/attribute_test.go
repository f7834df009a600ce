package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/recipe_api/internal/models"
)

func TestAttrRepo_ListOrderAndScope(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	ctx := context.Background()
	alice := mustUser(t, r, "alice@example.com")
	bob := mustUser(t, r, "bob@example.com")
	tags := NewTagRepo(r.DB)

	_, err := tags.GetOrCreate(ctx, alice.ID, []string{"A", "B"})
	require.NoError(t, err)
	_, err = tags.GetOrCreate(ctx, bob.ID, []string{"C"})
	require.NoError(t, err)

	list, err := tags.List(ctx, alice.ID, false)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "B", list[0].Name)
	assert.Equal(t, "A", list[1].Name)

	list, err = tags.List(ctx, bob.ID, false)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "C", list[0].Name)
}

func TestAttrRepo_GetOrCreateIsPerOwner(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	ctx := context.Background()
	alice := mustUser(t, r, "alice@example.com")
	bob := mustUser(t, r, "bob@example.com")
	ings := NewIngredientRepo(r.DB)

	a, err := ings.GetOrCreate(ctx, alice.ID, []string{"Salt"})
	require.NoError(t, err)
	again, err := ings.GetOrCreate(ctx, alice.ID, []string{"Salt"})
	require.NoError(t, err)
	b, err := ings.GetOrCreate(ctx, bob.ID, []string{"Salt"})
	require.NoError(t, err)

	assert.Equal(t, a[0].ID, again[0].ID)
	assert.NotEqual(t, a[0].ID, b[0].ID)
	assert.Equal(t, bob.ID, b[0].UserID)
}

func TestAttrRepo_AssignedOnly(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	ctx := context.Background()
	u := mustUser(t, r, "chef@example.com")
	ings := NewIngredientRepo(r.DB)

	_, err := r.CreateRecipe(ctx, u.ID, &models.Recipe{Title: "Toast"}, nil, []string{"Bread"})
	require.NoError(t, err)
	_, err = ings.GetOrCreate(ctx, u.ID, []string{"Butter"})
	require.NoError(t, err)

	all, err := ings.List(ctx, u.ID, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	assigned, err := ings.List(ctx, u.ID, true)
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, "Bread", assigned[0].Name)
}

func TestAttrRepo_UpdateAndDelete(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	ctx := context.Background()
	alice := mustUser(t, r, "alice@example.com")
	bob := mustUser(t, r, "bob@example.com")
	tags := NewTagRepo(r.DB)

	rec, err := r.CreateRecipe(ctx, alice.ID, &models.Recipe{Title: "Curry"}, []string{"Spicy"}, nil)
	require.NoError(t, err)
	tagID := rec.Tags[0].ID

	_, err = tags.Update(ctx, bob.ID, tagID, "Mine")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	got, err := tags.Update(ctx, alice.ID, tagID, "Hot")
	require.NoError(t, err)
	assert.Equal(t, "Hot", got.Name)

	taken, err := tags.NameTaken(ctx, alice.ID, "Hot", 0)
	require.NoError(t, err)
	assert.True(t, taken)
	taken, err = tags.NameTaken(ctx, bob.ID, "Hot", 0)
	require.NoError(t, err)
	assert.False(t, taken)

	assert.ErrorIs(t, tags.Delete(ctx, bob.ID, tagID), gorm.ErrRecordNotFound)
	require.NoError(t, tags.Delete(ctx, alice.ID, tagID))

	_, err = tags.Get(ctx, alice.ID, tagID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	after, err := r.GetRecipe(ctx, alice.ID, rec.ID)
	require.NoError(t, err)
	assert.Empty(t, after.Tags)
}

func TestAttrRepo_RecipeIDs(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	ctx := context.Background()
	alice := mustUser(t, r, "alice@example.com")
	bob := mustUser(t, r, "bob@example.com")
	ings := NewIngredientRepo(r.DB)

	first, err := r.CreateRecipe(ctx, alice.ID, &models.Recipe{Title: "Toast"}, nil, []string{"Bread"})
	require.NoError(t, err)
	second, err := r.CreateRecipe(ctx, alice.ID, &models.Recipe{Title: "Sandwich"}, nil, []string{"Bread", "Ham"})
	require.NoError(t, err)
	_, err = r.CreateRecipe(ctx, bob.ID, &models.Recipe{Title: "Bob toast"}, nil, []string{"Bread"})
	require.NoError(t, err)

	ids, err := ings.RecipeIDs(ctx, alice.ID, first.Ingredients[0].ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{first.ID, second.ID}, ids)

	ids, err = ings.RecipeIDs(ctx, bob.ID, first.Ingredients[0].ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
