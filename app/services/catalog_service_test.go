package services_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/kirana/app/models"
	"github.com/shashiranjanraj/kirana/app/services"
)

func TestCreateProductValidatesPriceAndCategory(t *testing.T) {
	db := newTestDB(t)
	category := createCategory(t, db, "Electronics")
	svc := services.NewCatalogService(db)

	_, err := svc.CreateProduct(services.ProductInput{
		Name: "Widget", Price: "not-a-price", CategoryID: category.ID, Stock: 5,
	})
	assert.True(t, services.IsValidation(err))

	_, err = svc.CreateProduct(services.ProductInput{
		Name: "Widget", Price: "-5.00", CategoryID: category.ID, Stock: 5,
	})
	assert.True(t, services.IsValidation(err))

	_, err = svc.CreateProduct(services.ProductInput{
		Name: "Widget", Price: "10.00", CategoryID: 9999, Stock: 5,
	})
	assert.True(t, services.IsValidation(err))

	product, err := svc.CreateProduct(services.ProductInput{
		Name: "Widget", Price: "10.999", CategoryID: category.ID, Stock: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, "11.00", product.Price.StringFixed(2))
	assert.True(t, product.IsActive)
}

func TestProductShowIsActiveOnly(t *testing.T) {
	db := newTestDB(t)
	category := createCategory(t, db, "Electronics")
	active := createProduct(t, db, category.ID, "Active", "10.00", 5)
	inactive := createProduct(t, db, category.ID, "Inactive", "10.00", 5)
	require.NoError(t, db.Model(&models.Product{}).
		Where("id = ?", inactive.ID).
		Update("is_active", false).Error)

	svc := services.NewCatalogService(db)

	got, err := svc.Product(active.ID)
	require.NoError(t, err)
	assert.Equal(t, active.ID, got.ID)

	_, err = svc.Product(inactive.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)

	listing, err := svc.Products(0)
	require.NoError(t, err)
	assert.Len(t, listing, 1)
}

func TestProductsFilterByCategory(t *testing.T) {
	db := newTestDB(t)
	electronics := createCategory(t, db, "Electronics")
	books := createCategory(t, db, "Books")
	createProduct(t, db, electronics.ID, "Widget", "10.00", 5)
	createProduct(t, db, books.ID, "Novel", "12.00", 5)
	createProduct(t, db, books.ID, "Atlas", "30.00", 5)

	svc := services.NewCatalogService(db)

	all, err := svc.Products(0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	onlyBooks, err := svc.Products(books.ID)
	require.NoError(t, err)
	assert.Len(t, onlyBooks, 2)
}

func TestSearchMatchesNameAndDescription(t *testing.T) {
	db := newTestDB(t)
	category := createCategory(t, db, "Books")
	createProduct(t, db, category.ID, "Go in Practice", "40.00", 5)

	atlas := models.Product{
		Name:        "World Atlas",
		Description: "Maps for the practical traveller",
		Price:       decimal.RequireFromString("30.00"),
		CategoryID:  category.ID,
		Stock:       5,
		IsActive:    true,
	}
	require.NoError(t, db.Create(&atlas).Error)

	svc := services.NewCatalogService(db)

	results, err := svc.Search("practi")
	require.NoError(t, err)
	assert.Len(t, results, 2)

	results, err = svc.Search("atlas")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "World Atlas", results[0].Name)

	// Empty query falls back to the full active listing.
	results, err = svc.Search("")
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestDeleteCategoryRestrictedWhileInUse(t *testing.T) {
	db := newTestDB(t)
	category := createCategory(t, db, "Electronics")
	product := createProduct(t, db, category.ID, "Widget", "10.00", 5)

	svc := services.NewCatalogService(db)

	err := svc.DeleteCategory(category.ID)
	assert.ErrorIs(t, err, services.ErrCategoryInUse)

	// Deactivating the last product releases the category.
	require.NoError(t, db.Model(&models.Product{}).
		Where("id = ?", product.ID).
		Update("is_active", false).Error)
	require.NoError(t, svc.DeleteCategory(category.ID))

	_, err = svc.Category(category.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestDeleteProductSoftDeletes(t *testing.T) {
	db := newTestDB(t)
	category := createCategory(t, db, "Electronics")
	product := createProduct(t, db, category.ID, "Widget", "10.00", 5)

	svc := services.NewCatalogService(db)
	require.NoError(t, svc.DeleteProduct(product.ID))

	_, err := svc.Product(product.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)

	// The row survives for order history.
	var count int64
	db.Unscoped().Model(&models.Product{}).Where("id = ?", product.ID).Count(&count)
	assert.EqualValues(t, 1, count)

	err = svc.DeleteProduct(9999)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestFeaturedReturnsNewestActive(t *testing.T) {
	db := newTestDB(t)
	category := createCategory(t, db, "Electronics")
	for i := 0; i < 10; i++ {
		createProduct(t, db, category.ID, "Widget", "10.00", 5)
	}

	featured, err := services.NewCatalogService(db).Featured()
	require.NoError(t, err)
	assert.Len(t, featured, 8)
}
