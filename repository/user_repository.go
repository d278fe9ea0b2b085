package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/travel-point/api-go/models"
	"gorm.io/gorm"
)

// ErrUserNotFound is returned when no active user has the requested id.
var ErrUserNotFound = errors.New("user not found")

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Interests returns the stored interest keywords of a user.
func (r *UserRepository) Interests(ctx context.Context, userID uint) ([]string, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Select("id", "interests").
		Where("id = ? AND is_active = ?", userID, true).
		Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load interests for user %d: %w", userID, err)
	}
	return []string(user.Interests), nil
}
