package services

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/kirana/app/models"
	"github.com/shashiranjanraj/kirana/pkg/event"
	"github.com/shashiranjanraj/kirana/pkg/logger"
	"github.com/shashiranjanraj/kirana/pkg/metrics"
)

// Event names fired after a successful commit. Listeners (websocket hub,
// confirmation mail job) are registered at boot.
const (
	EventOrderCreated       = "order.created"
	EventOrderCancelled     = "order.cancelled"
	EventOrderStatusChanged = "order.status_changed"
)

// OrderItemInput is one requested line of a new order.
type OrderItemInput struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// PlaceOrderInput is the payload for order placement.
type PlaceOrderInput struct {
	ShippingAddress string           `json:"shipping_address" validate:"required"`
	PhoneNumber     string           `json:"phone_number" validate:"required,max=20"`
	Items           []OrderItemInput `json:"items"`
}

// OrderService implements order placement, cancellation and status
// management. All stock mutations happen inside a single transaction per
// operation; a failed validation never leaves partial state behind.
type OrderService struct {
	db *gorm.DB
}

func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{db: db}
}

// Place validates the requested items against the active catalogue, computes
// the order total from price snapshots, and persists the order, its items
// and the stock decrements atomically.
//
// Validation is fail-fast in input order: the first offending item decides
// the error message. All items are validated before anything is written, so
// the usual failure modes never even open a write.
func (s *OrderService) Place(actor models.User, in PlaceOrderInput) (*models.Order, error) {
	if len(in.Items) == 0 {
		return nil, validationErrorf("order must contain at least one item")
	}
	for _, item := range in.Items {
		if item.ProductID == 0 || item.Quantity <= 0 {
			return nil, validationErrorf("each item must have a product_id and a quantity greater than 0")
		}
	}

	var order models.Order

	err := s.db.Transaction(func(tx *gorm.DB) error {
		type line struct {
			product  models.Product
			quantity int
		}

		total := decimal.Zero
		lines := make([]line, 0, len(in.Items))

		for _, item := range in.Items {
			var product models.Product
			err := tx.Where("id = ? AND is_active = ?", item.ProductID, true).First(&product).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Inactive and missing products are indistinguishable to the caller.
				return validationErrorf("product %d not found", item.ProductID)
			}
			if err != nil {
				return fmt.Errorf("order: load product %d: %w", item.ProductID, err)
			}

			if product.Stock < item.Quantity {
				return validationErrorf("insufficient stock for %s", product.Name)
			}

			total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
			lines = append(lines, line{product: product, quantity: item.Quantity})
		}

		order = models.Order{
			UserID:          actor.ID,
			Status:          models.OrderPending,
			TotalAmount:     total,
			ShippingAddress: in.ShippingAddress,
			PhoneNumber:     in.PhoneNumber,
		}
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("order: create: %w", err)
		}

		for _, l := range lines {
			item := models.OrderItem{
				OrderID:   order.ID,
				ProductID: l.product.ID,
				Quantity:  l.quantity,
				Price:     l.product.Price, // price snapshot, immune to later catalogue edits
			}
			if err := tx.Create(&item).Error; err != nil {
				return fmt.Errorf("order: create item: %w", err)
			}

			// Atomic conditional decrement: the stock >= quantity guard makes
			// concurrent placements against the same product safe without an
			// explicit row lock. Zero rows affected means another transaction
			// took the stock between our read and this write.
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", l.product.ID, l.quantity).
				Update("stock", gorm.Expr("stock - ?", l.quantity))
			if res.Error != nil {
				return fmt.Errorf("order: decrement stock for product %d: %w", l.product.ID, res.Error)
			}
			if res.RowsAffected == 0 {
				metrics.StockConflicts.Inc()
				return validationErrorf("insufficient stock for %s", l.product.Name)
			}
		}

		return tx.Preload("Items.Product").Preload("User").First(&order, order.ID).Error
	})
	if err != nil {
		return nil, err
	}

	metrics.OrdersPlaced.Inc()
	logger.Info("order placed", "order_id", order.ID, "user_id", actor.ID, "total", order.TotalAmount)
	event.Fire(EventOrderCreated, order)

	return &order, nil
}

// Cancel moves a pending order to cancelled and restores every item's
// quantity to its product's stock. Restoration and the status flip commit in
// one transaction; stock is restored before the flip is persisted.
//
// Non-staff callers may only cancel their own orders.
func (s *OrderService) Cancel(actor models.User, orderID uint) (*models.Order, error) {
	var order models.Order

	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Preload("Items.Product").Preload("User").First(&order, orderID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("order: load %d: %w", orderID, err)
		}

		if !order.IsPending() {
			return ErrInvalidState
		}
		if order.UserID != actor.ID && !actor.IsStaff() {
			return ErrForbidden
		}

		if err := restoreStock(tx, order.Items); err != nil {
			return err
		}

		if err := tx.Model(&order).Update("status", models.OrderCancelled).Error; err != nil {
			return fmt.Errorf("order: save %d: %w", orderID, err)
		}
		order.Status = models.OrderCancelled

		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.OrdersCancelled.Inc()
	logger.Info("order cancelled", "order_id", order.ID, "by_user", actor.ID)
	event.Fire(EventOrderCancelled, order)

	return &order, nil
}

// UpdateStatus is the staff path for moving an order through fulfilment.
// Transitions are validated against the state machine; moving to cancelled
// restores stock exactly like the self-service cancel path, so the stock
// invariant holds regardless of which path cancels.
func (s *OrderService) UpdateStatus(actor models.User, orderID uint, status string) (*models.Order, error) {
	if !actor.IsStaff() {
		return nil, ErrForbidden
	}
	if !models.ValidOrderStatus(status) {
		return nil, validationErrorf("unknown status %q", status)
	}

	var order models.Order

	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Preload("Items.Product").Preload("User").First(&order, orderID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("order: load %d: %w", orderID, err)
		}

		if !models.CanTransition(order.Status, status) {
			return ErrInvalidState
		}

		if status == models.OrderCancelled {
			if err := restoreStock(tx, order.Items); err != nil {
				return err
			}
		}

		if err := tx.Model(&order).Update("status", status).Error; err != nil {
			return fmt.Errorf("order: save %d: %w", orderID, err)
		}
		order.Status = status

		return nil
	})
	if err != nil {
		return nil, err
	}

	if status == models.OrderCancelled {
		metrics.OrdersCancelled.Inc()
	}
	logger.Info("order status changed", "order_id", order.ID, "status", status, "by_user", actor.ID)
	event.Fire(EventOrderStatusChanged, order)

	return &order, nil
}

// Get returns a single order. Staff may read any order; everyone else only
// their own. A foreign order is reported as not found, not forbidden.
func (s *OrderService) Get(actor models.User, orderID uint) (*models.Order, error) {
	q := s.db.Preload("Items.Product").Preload("User")
	if !actor.IsStaff() {
		q = q.Where("user_id = ?", actor.ID)
	}

	var order models.Order
	err := q.First(&order, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("order: load %d: %w", orderID, err)
	}
	return &order, nil
}

// List returns all orders for staff, or the actor's own orders otherwise,
// newest first.
func (s *OrderService) List(actor models.User) ([]models.Order, error) {
	q := s.db.Preload("Items.Product").Preload("User").Order("created_at DESC")
	if !actor.IsStaff() {
		q = q.Where("user_id = ?", actor.ID)
	}

	var orders []models.Order
	if err := q.Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("order: list: %w", err)
	}
	return orders, nil
}

// ListMine returns the actor's own orders regardless of role, newest first.
func (s *OrderService) ListMine(actor models.User) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.Preload("Items.Product").Preload("User").
		Where("user_id = ?", actor.ID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("order: list mine: %w", err)
	}
	return orders, nil
}

// restoreStock puts every item's quantity back onto its product. The
// restore is unconditional: the product may meanwhile be inactive or even
// soft-deleted, the units still return to its row.
func restoreStock(tx *gorm.DB, items []models.OrderItem) error {
	for _, item := range items {
		res := tx.Unscoped().Model(&models.Product{}).
			Where("id = ?", item.ProductID).
			Update("stock", gorm.Expr("stock + ?", item.Quantity))
		if res.Error != nil {
			return fmt.Errorf("order: restore stock for product %d: %w", item.ProductID, res.Error)
		}
	}
	return nil
}
