package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/kirana/app/models"
)

// ProductRepository handles database operations for Product. Listing
// methods only ever return active products; administrative lookups use
// Find, which sees inactive rows too.
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) active() *gorm.DB {
	return r.db.Preload("Category").Where("is_active = ?", true)
}

// ListActive returns active products, optionally filtered by category,
// newest first.
func (r *ProductRepository) ListActive(categoryID uint) ([]models.Product, error) {
	q := r.active().Order("created_at DESC")
	if categoryID != 0 {
		q = q.Where("category_id = ?", categoryID)
	}

	var products []models.Product
	if err := q.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("product: list: %w", err)
	}
	return products, nil
}

// PageActive returns one page of active products plus the total matching
// count, optionally filtered by category, newest first.
func (r *ProductRepository) PageActive(categoryID uint, page, perPage int) ([]models.Product, int64, error) {
	base := func() *gorm.DB {
		q := r.active()
		if categoryID != 0 {
			q = q.Where("category_id = ?", categoryID)
		}
		return q
	}

	var total int64
	if err := base().Model(&models.Product{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("product: count: %w", err)
	}

	var products []models.Product
	err := base().
		Order("created_at DESC").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&products).Error
	if err != nil {
		return nil, 0, fmt.Errorf("product: page: %w", err)
	}
	return products, total, nil
}

// Featured returns the newest limit active products.
func (r *ProductRepository) Featured(limit int) ([]models.Product, error) {
	var products []models.Product
	err := r.active().Order("created_at DESC").Limit(limit).Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("product: featured: %w", err)
	}
	return products, nil
}

// Search returns active products whose name or description contains q,
// case-insensitively.
func (r *ProductRepository) Search(q string) ([]models.Product, error) {
	pattern := "%" + q + "%"

	var products []models.Product
	err := r.active().
		Where("LOWER(name) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?)", pattern, pattern).
		Order("created_at DESC").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("product: search: %w", err)
	}
	return products, nil
}

// FindActive looks up an active product by primary key. Inactive and
// missing products are indistinguishable to callers.
func (r *ProductRepository) FindActive(id uint) (models.Product, error) {
	var product models.Product
	err := r.active().First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return product, ErrNotFound
	}
	if err != nil {
		return product, fmt.Errorf("product: find %d: %w", id, err)
	}
	return product, nil
}

// Find looks up any product by primary key, active or not.
func (r *ProductRepository) Find(id uint) (models.Product, error) {
	var product models.Product
	err := r.db.Preload("Category").First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return product, ErrNotFound
	}
	if err != nil {
		return product, fmt.Errorf("product: find %d: %w", id, err)
	}
	return product, nil
}

// Create persists a new product.
func (r *ProductRepository) Create(product *models.Product) error {
	if err := r.db.Create(product).Error; err != nil {
		return fmt.Errorf("product: create: %w", err)
	}
	return nil
}

// Update persists changes to an existing product.
func (r *ProductRepository) Update(product *models.Product) error {
	if err := r.db.Save(product).Error; err != nil {
		return fmt.Errorf("product: update: %w", err)
	}
	return nil
}

// Delete soft-deletes a product.
func (r *ProductRepository) Delete(id uint) error {
	if err := r.db.Delete(&models.Product{}, id).Error; err != nil {
		return fmt.Errorf("product: delete %d: %w", id, err)
	}
	return nil
}
