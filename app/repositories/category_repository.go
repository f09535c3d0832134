package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/kirana/app/models"
)

// CategoryRepository handles database operations for Category.
type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// All returns every category ordered by name.
func (r *CategoryRepository) All() ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.Order("name").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("category: list: %w", err)
	}
	return categories, nil
}

// Find looks up a category by primary key.
func (r *CategoryRepository) Find(id uint) (models.Category, error) {
	var category models.Category
	err := r.db.First(&category, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return category, ErrNotFound
	}
	if err != nil {
		return category, fmt.Errorf("category: find %d: %w", id, err)
	}
	return category, nil
}

// Create persists a new category.
func (r *CategoryRepository) Create(category *models.Category) error {
	if err := r.db.Create(category).Error; err != nil {
		return fmt.Errorf("category: create: %w", err)
	}
	return nil
}

// Update persists changes to an existing category.
func (r *CategoryRepository) Update(category *models.Category) error {
	if err := r.db.Save(category).Error; err != nil {
		return fmt.Errorf("category: update: %w", err)
	}
	return nil
}

// Delete soft-deletes a category.
func (r *CategoryRepository) Delete(id uint) error {
	if err := r.db.Delete(&models.Category{}, id).Error; err != nil {
		return fmt.Errorf("category: delete %d: %w", id, err)
	}
	return nil
}

// ActiveProductCount counts the active products referencing a category.
func (r *CategoryRepository) ActiveProductCount(id uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Product{}).
		Where("category_id = ? AND is_active = ?", id, true).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("category: count products for %d: %w", id, err)
	}
	return count, nil
}
