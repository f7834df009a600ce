package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/Skotchmaster/recipe_api/internal/models"
)

type RegisterRequest struct {
	Email    string `json:"email"    form:"email"`
	Password string `json:"password" form:"password"`
	Name     string `json:"name"     form:"name"`
}

type TokenRequest struct {
	Email    string `json:"email"    form:"email"`
	Password string `json:"password" form:"password"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type ProfileRequest struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Name     *string `json:"name"`
}

type UserResponse struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{Email: u.Email, Name: u.Name}
}

// Amount accepts a JSON number or a quoted decimal ("5.25").
type Amount float64

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("amount %q is not a finite number", b)
	}
	*a = Amount(v)
	return nil
}

type NameRequest struct {
	Name string `json:"name"`
}

// RecipeRequest is the body of recipe create, update and partial update.
// Absent keys stay nil. Owner keys in the body are not part of the struct
// and are dropped by the decoder.
type RecipeRequest struct {
	Title       *string        `json:"title"`
	TimeMinutes *int           `json:"time_minutes"`
	Price       *Amount        `json:"price"`
	Link        *string        `json:"link"`
	Description *string        `json:"description"`
	Tags        *[]NameRequest `json:"tags"`
	Ingredients *[]NameRequest `json:"ingredients"`
}

type AttrRequest struct {
	Name *string `json:"name"`
}

type AttrResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func NewTagResponse(t *models.Tag) AttrResponse {
	return AttrResponse{ID: t.ID, Name: t.Name}
}

func NewIngredientResponse(i *models.Ingredient) AttrResponse {
	return AttrResponse{ID: i.ID, Name: i.Name}
}

type RecipeSummary struct {
	ID          uint        `json:"id"`
	Title       string      `json:"title"`
	TimeMinutes int         `json:"time_minutes"`
	Price       json.Number `json:"price"`
	Link        string      `json:"link"`
}

type RecipeDetail struct {
	RecipeSummary
	Description string         `json:"description"`
	Tags        []AttrResponse `json:"tags"`
	Ingredients []AttrResponse `json:"ingredients"`
}

func NewRecipeSummary(r *models.Recipe) RecipeSummary {
	return RecipeSummary{
		ID:          r.ID,
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Price:       json.Number(strconv.FormatFloat(r.Price, 'f', 2, 64)),
		Link:        r.Link,
	}
}

func NewRecipeDetail(r *models.Recipe) RecipeDetail {
	d := RecipeDetail{
		RecipeSummary: NewRecipeSummary(r),
		Description:   r.Description,
		Tags:          make([]AttrResponse, 0, len(r.Tags)),
		Ingredients:   make([]AttrResponse, 0, len(r.Ingredients)),
	}
	for i := range r.Tags {
		d.Tags = append(d.Tags, NewTagResponse(&r.Tags[i]))
	}
	for i := range r.Ingredients {
		d.Ingredients = append(d.Ingredients, NewIngredientResponse(&r.Ingredients[i]))
	}
	return d
}

type SearchMeta struct {
	Page       int    `json:"page"`
	Size       int    `json:"size"`
	Total      int64  `json:"total"`
	TotalPages int64  `json:"total_pages"`
	HasPrev    bool   `json:"has_prev"`
	HasNext    bool   `json:"has_next"`
	Source     string `json:"source"`
}

type SearchResponse struct {
	Data []RecipeSummary `json:"data"`
	Meta SearchMeta      `json:"meta"`
}
