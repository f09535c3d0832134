package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/kirana/app/models"
	"github.com/shashiranjanraj/kirana/app/services"
)

func placeOrder(t *testing.T, db *gorm.DB, actor models.User, items ...services.OrderItemInput) *models.Order {
	t.Helper()

	order, err := services.NewOrderService(db).Place(actor, services.PlaceOrderInput{
		ShippingAddress: "12 Main Street",
		PhoneNumber:     "5551234567",
		Items:           items,
	})
	require.NoError(t, err)
	return order
}

func TestPlaceOrderComputesTotalAndDecrementsStock(t *testing.T) {
	db := newTestDB(t)
	buyer := createUser(t, db, "buyer@example.com", models.RoleUser)
	category := createCategory(t, db, "Electronics")
	product := createProduct(t, db, category.ID, "Widget", "100.00", 10)

	order := placeOrder(t, db, buyer, services.OrderItemInput{ProductID: product.ID, Quantity: 3})

	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, buyer.ID, order.UserID)
	assert.Equal(t, "300.00", order.TotalAmount.StringFixed(2))
	require.Len(t, order.Items, 1)
	assert.Equal(t, "100.00", order.Items[0].Price.StringFixed(2))
	assert.Equal(t, 3, order.Items[0].Quantity)
	assert.Equal(t, 7, productStock(t, db, product.ID))
}

func TestPlaceOrderSumsMultipleItems(t *testing.T) {
	db := newTestDB(t)
	buyer := createUser(t, db, "buyer@example.com", models.RoleUser)
	category := createCategory(t, db, "Books")
	first := createProduct(t, db, category.ID, "First", "19.99", 5)
	second := createProduct(t, db, category.ID, "Second", "5.50", 5)

	order := placeOrder(t, db, buyer,
		services.OrderItemInput{ProductID: first.ID, Quantity: 2},
		services.OrderItemInput{ProductID: second.ID, Quantity: 4},
	)

	// 2 * 19.99 + 4 * 5.50
	assert.Equal(t, "61.98", order.TotalAmount.StringFixed(2))
	assert.Equal(t, 3, productStock(t, db, first.ID))
	assert.Equal(t, 1, productStock(t, db, second.ID))
}

func TestPlaceOrderPriceSnapshotSurvivesCatalogueEdit(t *testing.T) {
	db := newTestDB(t)
	buyer := createUser(t, db, "buyer@example.com", models.RoleUser)
	category := createCategory(t, db, "Books")
	product := createProduct(t, db, category.ID, "Hardcover", "30.00", 10)

	order := placeOrder(t, db, buyer, services.OrderItemInput{ProductID: product.ID, Quantity: 1})

	require.NoError(t, db.Model(&models.Product{}).
		Where("id = ?", product.ID).
		Update("price", "99.00").Error)

	var reloaded models.Order
	require.NoError(t, db.Preload("Items").First(&reloaded, order.ID).Error)
	assert.Equal(t, "30.00", reloaded.Items[0].Price.StringFixed(2))
	assert.Equal(t, "30.00", reloaded.TotalAmount.StringFixed(2))
}

func TestPlaceOrderRejectsEmptyAndMalformedItems(t *testing.T) {
	db := newTestDB(t)
	buyer := createUser(t, db, "buyer@example.com", models.RoleUser)
	svc := services.NewOrderService(db)

	in := services.PlaceOrderInput{ShippingAddress: "a", PhoneNumber: "1"}
	_, err := svc.Place(buyer, in)
	assert.True(t, services.IsValidation(err))

	in.Items = []services.OrderItemInput{{ProductID: 1, Quantity: 0}}
	_, err = svc.Place(buyer, in)
	assert.True(t, services.IsValidation(err))

	in.Items = []services.OrderItemInput{{ProductID: 0, Quantity: 2}}
	_, err = svc.Place(buyer, in)
	assert.True(t, services.IsValidation(err))
}

func TestPlaceOrderUnknownOrInactiveProduct(t *testing.T) {
	db := newTestDB(t)
	buyer := createUser(t, db, "buyer@example.com", models.RoleUser)
	category := createCategory(t, db, "Books")
	inactive := createProduct(t, db, category.ID, "Retired", "10.00", 5)
	require.NoError(t, db.Model(&models.Product{}).
		Where("id = ?", inactive.ID).
		Update("is_active", false).Error)

	svc := services.NewOrderService(db)

	_, err := svc.Place(buyer, services.PlaceOrderInput{
		ShippingAddress: "a", PhoneNumber: "1",
		Items: []services.OrderItemInput{{ProductID: 9999, Quantity: 1}},
	})
	assert.True(t, services.IsValidation(err))
	assert.Contains(t, err.Error(), "not found")

	// Inactive reads exactly like missing.
	_, err = svc.Place(buyer, services.PlaceOrderInput{
		ShippingAddress: "a", PhoneNumber: "1",
		Items: []services.OrderItemInput{{ProductID: inactive.ID, Quantity: 1}},
	})
	assert.True(t, services.IsValidation(err))
	assert.Contains(t, err.Error(), "not found")
}

func TestPlaceOrderInsufficientStockLeavesNothingBehind(t *testing.T) {
	db := newTestDB(t)
	buyer := createUser(t, db, "buyer@example.com", models.RoleUser)
	category := createCategory(t, db, "Books")
	plenty := createProduct(t, db, category.ID, "Plenty", "10.00", 100)
	scarce := createProduct(t, db, category.ID, "Scarce", "10.00", 2)

	_, err := services.NewOrderService(db).Place(buyer, services.PlaceOrderInput{
		ShippingAddress: "a", PhoneNumber: "1",
		Items: []services.OrderItemInput{
			{ProductID: plenty.ID, Quantity: 5},
			{ProductID: scarce.ID, Quantity: 3},
		},
	})
	require.Error(t, err)
	assert.True(t, services.IsValidation(err))
	assert.Contains(t, err.Error(), "Scarce")

	// The transaction rolled back: no orders, no items, stock untouched.
	var orders, items int64
	db.Model(&models.Order{}).Count(&orders)
	db.Model(&models.OrderItem{}).Count(&items)
	assert.Zero(t, orders)
	assert.Zero(t, items)
	assert.Equal(t, 100, productStock(t, db, plenty.ID))
	assert.Equal(t, 2, productStock(t, db, scarce.ID))
}

func TestCancelRestoresStockOnce(t *testing.T) {
	db := newTestDB(t)
	buyer := createUser(t, db, "buyer@example.com", models.RoleUser)
	category := createCategory(t, db, "Electronics")
	product := createProduct(t, db, category.ID, "Widget", "100.00", 10)

	order := placeOrder(t, db, buyer, services.OrderItemInput{ProductID: product.ID, Quantity: 3})
	require.Equal(t, 7, productStock(t, db, product.ID))

	svc := services.NewOrderService(db)
	cancelled, err := svc.Cancel(buyer, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, cancelled.Status)
	assert.Equal(t, 10, productStock(t, db, product.ID))

	// A second cancel must not restock again.
	_, err = svc.Cancel(buyer, order.ID)
	assert.ErrorIs(t, err, services.ErrInvalidState)
	assert.Equal(t, 10, productStock(t, db, product.ID))
}

func TestCancelChecksExistenceBeforeOwnership(t *testing.T) {
	db := newTestDB(t)
	buyer := createUser(t, db, "buyer@example.com", models.RoleUser)
	stranger := createUser(t, db, "stranger@example.com", models.RoleUser)
	staff := createUser(t, db, "staff@example.com", models.RoleStaff)
	category := createCategory(t, db, "Electronics")
	product := createProduct(t, db, category.ID, "Widget", "10.00", 10)

	svc := services.NewOrderService(db)

	_, err := svc.Cancel(buyer, 424242)
	assert.ErrorIs(t, err, services.ErrNotFound)

	order := placeOrder(t, db, buyer, services.OrderItemInput{ProductID: product.ID, Quantity: 1})

	// A stranger cannot cancel someone else's pending order.
	_, err = svc.Cancel(stranger, order.ID)
	assert.ErrorIs(t, err, services.ErrForbidden)

	// Staff can.
	cancelled, err := svc.Cancel(staff, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, cancelled.Status)
	assert.Equal(t, 10, productStock(t, db, product.ID))
}

func TestCancelRejectsNonPending(t *testing.T) {
	db := newTestDB(t)
	buyer := createUser(t, db, "buyer@example.com", models.RoleUser)
	staff := createUser(t, db, "staff@example.com", models.RoleStaff)
	category := createCategory(t, db, "Electronics")
	product := createProduct(t, db, category.ID, "Widget", "10.00", 10)

	order := placeOrder(t, db, buyer, services.OrderItemInput{ProductID: product.ID, Quantity: 2})

	svc := services.NewOrderService(db)
	_, err := svc.UpdateStatus(staff, order.ID, models.OrderShipped)
	require.NoError(t, err)

	_, err = svc.Cancel(buyer, order.ID)
	assert.ErrorIs(t, err, services.ErrInvalidState)
	assert.Equal(t, 8, productStock(t, db, product.ID))
}

func TestUpdateStatusEnforcesRoleAndTransitions(t *testing.T) {
	db := newTestDB(t)
	buyer := createUser(t, db, "buyer@example.com", models.RoleUser)
	staff := createUser(t, db, "staff@example.com", models.RoleStaff)
	category := createCategory(t, db, "Electronics")
	product := createProduct(t, db, category.ID, "Widget", "10.00", 10)

	order := placeOrder(t, db, buyer, services.OrderItemInput{ProductID: product.ID, Quantity: 1})
	svc := services.NewOrderService(db)

	_, err := svc.UpdateStatus(buyer, order.ID, models.OrderProcessing)
	assert.ErrorIs(t, err, services.ErrForbidden)

	_, err = svc.UpdateStatus(staff, order.ID, "refunded")
	assert.True(t, services.IsValidation(err))

	_, err = svc.UpdateStatus(staff, 424242, models.OrderProcessing)
	assert.ErrorIs(t, err, services.ErrNotFound)

	updated, err := svc.UpdateStatus(staff, order.ID, models.OrderProcessing)
	require.NoError(t, err)
	assert.Equal(t, models.OrderProcessing, updated.Status)

	updated, err = svc.UpdateStatus(staff, order.ID, models.OrderShipped)
	require.NoError(t, err)
	assert.Equal(t, models.OrderShipped, updated.Status)

	// Shipped orders cannot be cancelled, even by staff.
	_, err = svc.UpdateStatus(staff, order.ID, models.OrderCancelled)
	assert.ErrorIs(t, err, services.ErrInvalidState)

	updated, err = svc.UpdateStatus(staff, order.ID, models.OrderDelivered)
	require.NoError(t, err)
	assert.Equal(t, models.OrderDelivered, updated.Status)

	// Delivered is terminal.
	_, err = svc.UpdateStatus(staff, order.ID, models.OrderProcessing)
	assert.ErrorIs(t, err, services.ErrInvalidState)
}

func TestUpdateStatusToCancelledRestocks(t *testing.T) {
	db := newTestDB(t)
	buyer := createUser(t, db, "buyer@example.com", models.RoleUser)
	staff := createUser(t, db, "staff@example.com", models.RoleStaff)
	category := createCategory(t, db, "Electronics")
	product := createProduct(t, db, category.ID, "Widget", "10.00", 10)

	order := placeOrder(t, db, buyer, services.OrderItemInput{ProductID: product.ID, Quantity: 4})
	require.Equal(t, 6, productStock(t, db, product.ID))

	svc := services.NewOrderService(db)
	_, err := svc.UpdateStatus(staff, order.ID, models.OrderProcessing)
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(staff, order.ID, models.OrderCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, updated.Status)
	assert.Equal(t, 10, productStock(t, db, product.ID))
}

func TestGetHidesForeignOrdersFromNonStaff(t *testing.T) {
	db := newTestDB(t)
	buyer := createUser(t, db, "buyer@example.com", models.RoleUser)
	stranger := createUser(t, db, "stranger@example.com", models.RoleUser)
	staff := createUser(t, db, "staff@example.com", models.RoleStaff)
	category := createCategory(t, db, "Electronics")
	product := createProduct(t, db, category.ID, "Widget", "10.00", 10)

	order := placeOrder(t, db, buyer, services.OrderItemInput{ProductID: product.ID, Quantity: 1})
	svc := services.NewOrderService(db)

	_, err := svc.Get(stranger, order.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)

	got, err := svc.Get(buyer, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	got, err = svc.Get(staff, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
}

func TestListScopesByRole(t *testing.T) {
	db := newTestDB(t)
	buyer := createUser(t, db, "buyer@example.com", models.RoleUser)
	other := createUser(t, db, "other@example.com", models.RoleUser)
	staff := createUser(t, db, "staff@example.com", models.RoleStaff)
	category := createCategory(t, db, "Electronics")
	product := createProduct(t, db, category.ID, "Widget", "10.00", 100)

	placeOrder(t, db, buyer, services.OrderItemInput{ProductID: product.ID, Quantity: 1})
	placeOrder(t, db, buyer, services.OrderItemInput{ProductID: product.ID, Quantity: 2})
	placeOrder(t, db, other, services.OrderItemInput{ProductID: product.ID, Quantity: 3})

	svc := services.NewOrderService(db)

	mine, err := svc.List(buyer)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	all, err := svc.List(staff)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	// my_orders stays scoped to the caller even for staff.
	staffOwn, err := svc.ListMine(staff)
	require.NoError(t, err)
	assert.Len(t, staffOwn, 0)
}
