package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order statuses. An order starts as pending; the only self-service
// transition is pending → cancelled. Staff move orders forward through
// the fulfilment states.
const (
	OrderPending    = "pending"
	OrderProcessing = "processing"
	OrderShipped    = "shipped"
	OrderDelivered  = "delivered"
	OrderCancelled  = "cancelled"
)

// orderTransitions is the set of legal status changes. Delivered and
// cancelled are terminal.
var orderTransitions = map[string][]string{
	OrderPending:    {OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled},
	OrderProcessing: {OrderShipped, OrderDelivered, OrderCancelled},
	OrderShipped:    {OrderDelivered},
	OrderDelivered:  {},
	OrderCancelled:  {},
}

// ValidOrderStatus reports whether s names a known order status.
func ValidOrderStatus(s string) bool {
	_, ok := orderTransitions[s]
	return ok
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to string) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Order is a placed order together with its line items. TotalAmount is
// computed once at placement and never recomputed; items are immutable
// after creation.
type Order struct {
	gorm.Model
	UserID          uint            `gorm:"not null;index" json:"user_id"`
	User            User            `json:"-"`
	Status          string          `gorm:"size:50;not null;default:pending;index" json:"status"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	ShippingAddress string          `gorm:"type:text;not null" json:"shipping_address"`
	PhoneNumber     string          `gorm:"size:20;not null" json:"phone_number"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID" json:"items"`
}

// IsPending reports whether the order can still be cancelled by its owner.
func (o Order) IsPending() bool {
	return o.Status == OrderPending
}

// OrderItem is one line of an order. Price is a snapshot of the product
// price at placement time and never changes afterwards.
type OrderItem struct {
	gorm.Model
	OrderID   uint            `gorm:"not null;index" json:"order_id"`
	ProductID uint            `gorm:"not null;index" json:"product_id"`
	Product   Product         `json:"-"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
}

// Subtotal is quantity × unit price snapshot. Derived, never stored.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
