package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/kirana/app/models"
)

// ErrNotFound is returned by every repository lookup that matches nothing.
var ErrNotFound = errors.New("record not found")

// UserRepository handles database operations for User.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail looks up a user by their email address.
func (r *UserRepository) FindByEmail(email string) (models.User, error) {
	var user models.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return user, ErrNotFound
	}
	if err != nil {
		return user, fmt.Errorf("user: find by email: %w", err)
	}
	return user, nil
}

// FindByID looks up a user by primary key.
func (r *UserRepository) FindByID(id uint) (models.User, error) {
	var user models.User
	err := r.db.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return user, ErrNotFound
	}
	if err != nil {
		return user, fmt.Errorf("user: find %d: %w", id, err)
	}
	return user, nil
}

// Create persists a new user record.
func (r *UserRepository) Create(user *models.User) error {
	if err := r.db.Create(user).Error; err != nil {
		return fmt.Errorf("user: create: %w", err)
	}
	return nil
}
