package seeders

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/kirana/app/models"
	"github.com/shashiranjanraj/kirana/pkg/auth"
)

func init() {
	Register("admin_user", SeedAdminUser)
	Register("catalog", SeedCatalog)
}

// SeedAdminUser creates the initial admin account if none exists.
// Override the defaults with ADMIN_EMAIL / ADMIN_PASSWORD before first boot.
func SeedAdminUser(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword("admin12345")
	if err != nil {
		return err
	}

	admin := models.User{
		Name:     "Admin",
		Email:    "admin@kirana.shop",
		Password: hash,
		Role:     models.RoleAdmin,
	}
	return db.Create(&admin).Error
}

// SeedCatalog fills an empty database with a small demo catalogue.
func SeedCatalog(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Category{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	type item struct {
		name  string
		desc  string
		price string
		stock int
	}

	catalog := []struct {
		category    string
		description string
		products    []item
	}{
		{
			category:    "Electronics",
			description: "Phones, audio and accessories",
			products: []item{
				{"Wireless Earbuds", "Bluetooth 5.3 earbuds with charging case", "49.99", 120},
				{"Smart Watch", "Fitness tracking watch with heart-rate monitor", "89.99", 60},
				{"USB-C Charger 65W", "GaN fast charger with two ports", "29.99", 200},
			},
		},
		{
			category:    "Clothing",
			description: "Everyday apparel",
			products: []item{
				{"Cotton T-Shirt", "Plain crew-neck tee, 100% cotton", "12.50", 300},
				{"Denim Jacket", "Classic fit denim jacket", "59.00", 45},
			},
		},
		{
			category:    "Books",
			description: "Fiction and non-fiction",
			products: []item{
				{"The Pragmatic Programmer", "20th anniversary edition", "39.95", 80},
				{"Clean Architecture", "A craftsman's guide to software structure", "34.99", 50},
			},
		},
		{
			category:    "Home & Kitchen",
			description: "Cookware and home essentials",
			products: []item{
				{"Cast Iron Skillet", "Pre-seasoned 10 inch skillet", "24.99", 70},
				{"French Press", "Borosilicate glass, 1 litre", "18.75", 90},
			},
		},
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for _, c := range catalog {
			category := models.Category{Name: c.category, Description: c.description}
			if err := tx.Create(&category).Error; err != nil {
				return err
			}

			for _, p := range c.products {
				price, err := decimal.NewFromString(p.price)
				if err != nil {
					return err
				}
				product := models.Product{
					Name:        p.name,
					Description: p.desc,
					Price:       price,
					CategoryID:  category.ID,
					Stock:       p.stock,
					IsActive:    true,
				}
				if err := tx.Create(&product).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}
