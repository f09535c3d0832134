package services

import (
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/kirana/app/models"
	"github.com/shashiranjanraj/kirana/app/repositories"
	"github.com/shashiranjanraj/kirana/pkg/cache"
	"github.com/shashiranjanraj/kirana/pkg/logger"
	"github.com/shashiranjanraj/kirana/pkg/storage"
)

// Cache keys for the hot catalogue listings. Every catalogue write blows
// them all away; the lists are cheap to rebuild and correctness beats
// granular invalidation here.
const (
	cacheKeyCategories = "catalog:categories"
	cacheKeyFeatured   = "catalog:featured"
	catalogCacheTTL    = 5 * time.Minute
	featuredCount      = 8
)

// CategoryInput is the payload for category create/update.
type CategoryInput struct {
	Name        string `json:"name" validate:"required,min=2,max=255"`
	Description string `json:"description"`
}

// ProductInput is the payload for product create/update.
type ProductInput struct {
	Name        string `json:"name" validate:"required,min=2,max=255"`
	Description string `json:"description"`
	Price       string `json:"price" validate:"required,numeric"`
	CategoryID  uint   `json:"category_id" validate:"required"`
	Stock       int    `json:"stock" validate:"gte=0"`
	IsActive    *bool  `json:"is_active"`
}

// CatalogService manages categories and products. Reads go through the
// repositories (and Redis for the hot lists); writes are admin-only and
// invalidate the cache.
type CatalogService struct {
	categories *repositories.CategoryRepository
	products   *repositories.ProductRepository
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{
		categories: repositories.NewCategoryRepository(db),
		products:   repositories.NewProductRepository(db),
	}
}

// ── Categories ───────────────────────────────────────────────────────────────

func (s *CatalogService) Categories() ([]models.Category, error) {
	var cached []models.Category
	if cache.Get(cacheKeyCategories, &cached) {
		return cached, nil
	}

	categories, err := s.categories.All()
	if err != nil {
		return nil, err
	}

	_ = cache.Set(cacheKeyCategories, categories, catalogCacheTTL)
	return categories, nil
}

func (s *CatalogService) Category(id uint) (models.Category, error) {
	category, err := s.categories.Find(id)
	if errors.Is(err, repositories.ErrNotFound) {
		return category, ErrNotFound
	}
	return category, err
}

// CategoryProductCount counts the active products in a category; it backs
// the products_count field of the category representation.
func (s *CatalogService) CategoryProductCount(id uint) int64 {
	count, err := s.categories.ActiveProductCount(id)
	if err != nil {
		logger.Warn("catalog: product count", "category_id", id, "error", err)
		return 0
	}
	return count
}

func (s *CatalogService) CreateCategory(in CategoryInput) (models.Category, error) {
	category := models.Category{Name: in.Name, Description: in.Description}
	if err := s.categories.Create(&category); err != nil {
		return category, err
	}
	s.invalidate()
	return category, nil
}

func (s *CatalogService) UpdateCategory(id uint, in CategoryInput) (models.Category, error) {
	category, err := s.Category(id)
	if err != nil {
		return category, err
	}

	category.Name = in.Name
	category.Description = in.Description
	if err := s.categories.Update(&category); err != nil {
		return category, err
	}
	s.invalidate()
	return category, nil
}

// DeleteCategory removes a category. Deletion is restricted: a category
// still referenced by active products cannot go away.
func (s *CatalogService) DeleteCategory(id uint) error {
	if _, err := s.Category(id); err != nil {
		return err
	}

	count, err := s.categories.ActiveProductCount(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryInUse
	}

	if err := s.categories.Delete(id); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

// CategoryProducts lists the active products of one category.
func (s *CatalogService) CategoryProducts(id uint) ([]models.Product, error) {
	if _, err := s.Category(id); err != nil {
		return nil, err
	}
	return s.products.ListActive(id)
}

// ── Products ─────────────────────────────────────────────────────────────────

// Products lists active products, optionally filtered by category.
func (s *CatalogService) Products(categoryID uint) ([]models.Product, error) {
	return s.products.ListActive(categoryID)
}

// ProductsPage returns one page of active products plus the total count.
func (s *CatalogService) ProductsPage(categoryID uint, page, perPage int) ([]models.Product, int64, error) {
	return s.products.PageActive(categoryID, page, perPage)
}

// Featured returns the newest eight active products.
func (s *CatalogService) Featured() ([]models.Product, error) {
	var cached []models.Product
	if cache.Get(cacheKeyFeatured, &cached) {
		return cached, nil
	}

	products, err := s.products.Featured(featuredCount)
	if err != nil {
		return nil, err
	}

	_ = cache.Set(cacheKeyFeatured, products, catalogCacheTTL)
	return products, nil
}

// Search matches q as a substring of name or description. An empty query
// returns the full active listing, matching the original behaviour.
func (s *CatalogService) Search(q string) ([]models.Product, error) {
	if q == "" {
		return s.products.ListActive(0)
	}
	return s.products.Search(q)
}

// Product returns one active product; inactive and missing are both 404.
func (s *CatalogService) Product(id uint) (models.Product, error) {
	product, err := s.products.FindActive(id)
	if errors.Is(err, repositories.ErrNotFound) {
		return product, ErrNotFound
	}
	return product, err
}

func (s *CatalogService) CreateProduct(in ProductInput) (models.Product, error) {
	price, err := parsePrice(in.Price)
	if err != nil {
		return models.Product{}, err
	}

	if _, err := s.Category(in.CategoryID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.Product{}, validationErrorf("category %d not found", in.CategoryID)
		}
		return models.Product{}, err
	}

	product := models.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       price,
		CategoryID:  in.CategoryID,
		Stock:       in.Stock,
		IsActive:    true,
	}
	if in.IsActive != nil {
		product.IsActive = *in.IsActive
	}

	if err := s.products.Create(&product); err != nil {
		return product, err
	}
	s.invalidate()
	return product, nil
}

func (s *CatalogService) UpdateProduct(id uint, in ProductInput) (models.Product, error) {
	product, err := s.products.Find(id)
	if errors.Is(err, repositories.ErrNotFound) {
		return product, ErrNotFound
	}
	if err != nil {
		return product, err
	}

	price, err := parsePrice(in.Price)
	if err != nil {
		return product, err
	}

	if in.CategoryID != product.CategoryID {
		if _, err := s.Category(in.CategoryID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return product, validationErrorf("category %d not found", in.CategoryID)
			}
			return product, err
		}
	}

	product.Name = in.Name
	product.Description = in.Description
	product.Price = price
	product.CategoryID = in.CategoryID
	product.Stock = in.Stock
	if in.IsActive != nil {
		product.IsActive = *in.IsActive
	}

	if err := s.products.Update(&product); err != nil {
		return product, err
	}
	s.invalidate()
	return product, nil
}

func (s *CatalogService) DeleteProduct(id uint) error {
	if _, err := s.products.Find(id); errors.Is(err, repositories.ErrNotFound) {
		return ErrNotFound
	} else if err != nil {
		return err
	}

	if err := s.products.Delete(id); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

// AttachImage stores an uploaded product image on the configured disk and
// records its path on the product.
func (s *CatalogService) AttachImage(id uint, filename string, content []byte) (models.Product, error) {
	product, err := s.products.Find(id)
	if errors.Is(err, repositories.ErrNotFound) {
		return product, ErrNotFound
	}
	if err != nil {
		return product, err
	}

	dst := fmt.Sprintf("products/%d/%d%s", product.ID, time.Now().UnixNano(), path.Ext(filename))
	if err := storage.Put(dst, content); err != nil {
		return product, fmt.Errorf("catalog: store image: %w", err)
	}

	product.Image = dst
	if err := s.products.Update(&product); err != nil {
		return product, err
	}
	s.invalidate()
	return product, nil
}

func (s *CatalogService) invalidate() {
	if err := cache.Del(cacheKeyCategories, cacheKeyFeatured); err != nil {
		logger.Warn("catalog: cache invalidation", "error", err)
	}
}

func parsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, validationErrorf("price %q is not a valid amount", raw)
	}
	if price.IsNegative() {
		return decimal.Zero, validationErrorf("price must not be negative")
	}
	return price.Round(2), nil
}
