package models_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/kirana/app/models"
)

func TestValidOrderStatus(t *testing.T) {
	for _, s := range []string{
		models.OrderPending, models.OrderProcessing, models.OrderShipped,
		models.OrderDelivered, models.OrderCancelled,
	} {
		assert.True(t, models.ValidOrderStatus(s), s)
	}

	assert.False(t, models.ValidOrderStatus("refunded"))
	assert.False(t, models.ValidOrderStatus(""))
	assert.False(t, models.ValidOrderStatus("Pending"))
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{models.OrderPending, models.OrderProcessing, true},
		{models.OrderPending, models.OrderShipped, true},
		{models.OrderPending, models.OrderDelivered, true},
		{models.OrderPending, models.OrderCancelled, true},
		{models.OrderProcessing, models.OrderShipped, true},
		{models.OrderProcessing, models.OrderDelivered, true},
		{models.OrderProcessing, models.OrderCancelled, true},
		{models.OrderShipped, models.OrderDelivered, true},

		{models.OrderShipped, models.OrderCancelled, false},
		{models.OrderShipped, models.OrderProcessing, false},
		{models.OrderDelivered, models.OrderCancelled, false},
		{models.OrderDelivered, models.OrderPending, false},
		{models.OrderCancelled, models.OrderPending, false},
		{models.OrderCancelled, models.OrderProcessing, false},
		{models.OrderProcessing, models.OrderPending, false},
		{models.OrderPending, models.OrderPending, false},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, models.CanTransition(c.from, c.to), "%s -> %s", c.from, c.to)
	}
}

func TestOrderIsPending(t *testing.T) {
	assert.True(t, models.Order{Status: models.OrderPending}.IsPending())
	assert.False(t, models.Order{Status: models.OrderShipped}.IsPending())
	assert.False(t, models.Order{Status: models.OrderCancelled}.IsPending())
}

func TestOrderItemSubtotal(t *testing.T) {
	item := models.OrderItem{
		Quantity: 3,
		Price:    decimal.RequireFromString("19.99"),
	}
	assert.Equal(t, "59.97", item.Subtotal().StringFixed(2))
}

func TestProductInStock(t *testing.T) {
	assert.True(t, models.Product{Stock: 1}.InStock())
	assert.False(t, models.Product{Stock: 0}.InStock())
}

func TestUserRoles(t *testing.T) {
	assert.False(t, models.User{Role: models.RoleUser}.IsStaff())
	assert.True(t, models.User{Role: models.RoleStaff}.IsStaff())
	assert.True(t, models.User{Role: models.RoleAdmin}.IsStaff())
	assert.True(t, models.User{Role: models.RoleAdmin}.IsAdmin())
	assert.False(t, models.User{Role: models.RoleStaff}.IsAdmin())
}
