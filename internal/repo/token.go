package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/recipe_api/internal/models"
)

// ReplaceToken drops the current token of the user, if any, and stores key
// in its place within one transaction.
func (r *GormRepo) ReplaceToken(ctx context.Context, userID uint, key string) (*models.Token, error) {
	tok := models.Token{Key: key, UserID: userID}
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.Token{}).Error; err != nil {
			return err
		}
		return tx.Omit("User").Create(&tok).Error
	})
	if err != nil {
		return nil, err
	}
	return &tok, nil
}

func (r *GormRepo) UserByToken(ctx context.Context, key string) (*models.User, error) {
	var tok models.Token
	if err := r.DB.WithContext(ctx).Preload("User").Where(&models.Token{Key: key}).First(&tok).Error; err != nil {
		return nil, err
	}
	return &tok.User, nil
}

func (r *GormRepo) TokenOf(ctx context.Context, userID uint) (*models.Token, error) {
	var tok models.Token
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&tok).Error; err != nil {
		return nil, err
	}
	return &tok, nil
}
