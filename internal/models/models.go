package models

import "time"

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"          json:"id"`
	Email        string    `gorm:"uniqueIndex;size:255;not null"     json:"email"`
	PasswordHash string    `gorm:"not null"                          json:"-"`
	Name         string    `gorm:"size:255;not null;default:''"      json:"name"`
	IsActive     bool      `gorm:"not null;default:true"             json:"-"`
	IsStaff      bool      `gorm:"not null;default:false"            json:"-"`
	CreatedAt    time.Time `                                         json:"-"`
	UpdatedAt    time.Time `                                         json:"-"`
}

// Token is the opaque credential of a user. A user holds at most one.
type Token struct {
	Key       string    `gorm:"primaryKey;size:40"`
	UserID    uint      `gorm:"uniqueIndex;not null"`
	User      User      `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

type Recipe struct {
	ID          uint         `gorm:"primaryKey;autoIncrement"          json:"id"`
	UserID      uint         `gorm:"index;not null"                    json:"-"`
	Title       string       `gorm:"size:255;not null"                 json:"title"`
	TimeMinutes int          `gorm:"not null;default:0"                json:"time_minutes"`
	Price       float64      `gorm:"not null;default:0"                json:"price"`
	Link        string       `gorm:"size:255;not null;default:''"      json:"link"`
	Description string       `gorm:"type:text;not null;default:''"     json:"description"`
	Tags        []Tag        `gorm:"many2many:recipe_tags;"            json:"tags"`
	Ingredients []Ingredient `gorm:"many2many:recipe_ingredients;"     json:"ingredients"`
	CreatedAt   time.Time    `                                         json:"-"`
	UpdatedAt   time.Time    `                                         json:"-"`
}

type Tag struct {
	ID     uint   `gorm:"primaryKey;autoIncrement"                       json:"id"`
	UserID uint   `gorm:"uniqueIndex:idx_tag_user_name;not null"         json:"-"`
	Name   string `gorm:"uniqueIndex:idx_tag_user_name;size:255;not null" json:"name"`
}

type Ingredient struct {
	ID     uint   `gorm:"primaryKey;autoIncrement"                              json:"id"`
	UserID uint   `gorm:"uniqueIndex:idx_ingredient_user_name;not null"         json:"-"`
	Name   string `gorm:"uniqueIndex:idx_ingredient_user_name;size:255;not null" json:"name"`
}

// All lists every model handled by AutoMigrate.
func All() []any {
	return []any{&User{}, &Token{}, &Tag{}, &Ingredient{}, &Recipe{}}
}
