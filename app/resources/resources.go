// Package resources shapes models into their public JSON representations.
// Anything derived (subtotal, in_stock, products_count) is computed here so
// the models stay free of presentation concerns.
package resources

import (
	"time"

	"github.com/shashiranjanraj/kirana/app/models"
)

// Map is the generic JSON object shape every transformer returns.
type Map = map[string]interface{}

func ts(t time.Time) string { return t.UTC().Format(time.RFC3339) }

// User renders the public account representation.
func User(u models.User) Map {
	return Map{
		"id":    u.ID,
		"name":  u.Name,
		"email": u.Email,
		"role":  u.Role,
	}
}

// Category renders a category with its active product count.
func Category(c models.Category, productsCount int64) Map {
	return Map{
		"id":             c.ID,
		"name":           c.Name,
		"description":    c.Description,
		"products_count": productsCount,
		"created_at":     ts(c.CreatedAt),
	}
}

// Product renders a product. category_name is resolved from the preloaded
// association when present.
func Product(p models.Product) Map {
	return Map{
		"id":            p.ID,
		"name":          p.Name,
		"description":   p.Description,
		"price":         p.Price,
		"category":      p.CategoryID,
		"category_name": p.Category.Name,
		"stock":         p.Stock,
		"image":         p.Image,
		"is_active":     p.IsActive,
		"in_stock":      p.InStock(),
		"created_at":    ts(p.CreatedAt),
		"updated_at":    ts(p.UpdatedAt),
	}
}

// Products renders a product slice.
func Products(products []models.Product) []Map {
	out := make([]Map, 0, len(products))
	for _, p := range products {
		out = append(out, Product(p))
	}
	return out
}

// OrderItem renders one order line with its derived subtotal.
func OrderItem(i models.OrderItem) Map {
	return Map{
		"id":           i.ID,
		"product":      i.ProductID,
		"product_name": i.Product.Name,
		"quantity":     i.Quantity,
		"price":        i.Price,
		"subtotal":     i.Subtotal(),
	}
}

// Order renders the full order representation, items included.
func Order(o models.Order) Map {
	items := make([]Map, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItem(item))
	}

	return Map{
		"id":               o.ID,
		"user":             o.UserID,
		"user_name":        o.User.Name,
		"status":           o.Status,
		"total_amount":     o.TotalAmount,
		"shipping_address": o.ShippingAddress,
		"phone_number":     o.PhoneNumber,
		"items":            items,
		"created_at":       ts(o.CreatedAt),
		"updated_at":       ts(o.UpdatedAt),
	}
}

// Orders renders an order slice.
func Orders(orders []models.Order) []Map {
	out := make([]Map, 0, len(orders))
	for _, o := range orders {
		out = append(out, Order(o))
	}
	return out
}
