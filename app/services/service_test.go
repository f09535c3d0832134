package services_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/shashiranjanraj/kirana/app/models"
	"github.com/shashiranjanraj/kirana/pkg/auth"
)

// newTestDB opens a per-test in-memory SQLite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
	))
	return db
}

func createUser(t *testing.T, db *gorm.DB, email, role string) models.User {
	t.Helper()

	hash, err := auth.HashPassword("secret-password")
	require.NoError(t, err)

	user := models.User{Name: "Test " + role, Email: email, Password: hash, Role: role}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createCategory(t *testing.T, db *gorm.DB, name string) models.Category {
	t.Helper()

	category := models.Category{Name: name, Description: name + " things"}
	require.NoError(t, db.Create(&category).Error)
	return category
}

func createProduct(t *testing.T, db *gorm.DB, categoryID uint, name, price string, stock int) models.Product {
	t.Helper()

	product := models.Product{
		Name:       name,
		Price:      decimal.RequireFromString(price),
		CategoryID: categoryID,
		Stock:      stock,
		IsActive:   true,
	}
	require.NoError(t, db.Create(&product).Error)
	return product
}

func productStock(t *testing.T, db *gorm.DB, id uint) int {
	t.Helper()

	var product models.Product
	require.NoError(t, db.Unscoped().First(&product, id).Error)
	return product.Stock
}
