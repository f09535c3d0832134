// Package jobs defines the background jobs processed by the queue workers.
package jobs

import (
	"fmt"

	"github.com/shashiranjanraj/kirana/app/models"
	"github.com/shashiranjanraj/kirana/app/services"
	"github.com/shashiranjanraj/kirana/pkg/event"
	"github.com/shashiranjanraj/kirana/pkg/logger"
	"github.com/shashiranjanraj/kirana/pkg/mail"
	"github.com/shashiranjanraj/kirana/pkg/queue"
)

// OrderConfirmationJob emails the buyer after an order commits. It is
// dispatched from the order.created listener, never inline with the request.
type OrderConfirmationJob struct {
	OrderID uint   `json:"order_id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Total   string `json:"total"`
}

func (j OrderConfirmationJob) Handle() error {
	if j.Email == "" {
		return nil
	}

	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Your order #%d has been placed. Order total: %s.</p><p>We will let you know when it ships.</p>",
		j.Name, j.OrderID, j.Total,
	)

	err := mail.To(j.Email).
		Subject(fmt.Sprintf("Order #%d confirmed", j.OrderID)).
		Body(body).
		Send()
	if err != nil {
		return fmt.Errorf("order confirmation #%d: %w", j.OrderID, err)
	}
	return nil
}

// Register makes every job type known to the queue so workers can decode
// payloads. Call once at boot, before StartWorkers.
func Register() {
	queue.Register("jobs.OrderConfirmationJob", func() queue.Job { return &OrderConfirmationJob{} })
}

// ListenOrderEvents subscribes the mail job to order placement. The event
// payload is the committed order with its user preloaded.
func ListenOrderEvents() {
	event.Listen(services.EventOrderCreated, func(payload interface{}) {
		order, ok := payload.(models.Order)
		if !ok {
			return
		}
		job := OrderConfirmationJob{
			OrderID: order.ID,
			Email:   order.User.Email,
			Name:    order.User.Name,
			Total:   order.TotalAmount.StringFixed(2),
		}
		if err := queue.Dispatch(job); err != nil {
			logger.Error("jobs: dispatch order confirmation", "order_id", order.ID, "error", err)
		}
	})
}
