package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Category groups products. Categories with active products cannot be
// deleted; the service layer enforces this.
type Category struct {
	gorm.Model
	Name        string    `gorm:"size:255;not null;index" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Products    []Product `gorm:"foreignKey:CategoryID" json:"-"`
}

// Product is a sellable catalogue entry. Stock is the number of units
// currently available; it is mutated only by order placement, order
// cancellation, and direct administrative edits.
type Product struct {
	gorm.Model
	Name        string          `gorm:"size:255;not null;index" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	CategoryID  uint            `gorm:"not null;index" json:"category_id"`
	Category    Category        `json:"-"`
	Stock       int             `gorm:"not null;default:0" json:"stock"`
	Image       string          `gorm:"size:512" json:"image"`
	IsActive    bool            `gorm:"not null;default:true" json:"is_active"`
}

// InStock reports whether at least one unit is available.
func (p Product) InStock() bool {
	return p.Stock > 0
}
