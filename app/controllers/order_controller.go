package controllers

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/kirana/app/resources"
	"github.com/shashiranjanraj/kirana/app/services"
	"github.com/shashiranjanraj/kirana/pkg/response"
)

type OrderController struct {
	orders *services.OrderService
}

func NewOrderController(db *gorm.DB) *OrderController {
	return &OrderController{orders: services.NewOrderService(db)}
}

// Store places a new order for the authenticated user.
func (c *OrderController) Store(w http.ResponseWriter, r *http.Request) {
	var in services.PlaceOrderInput
	if !bindJSON(w, r, &in) {
		return
	}

	order, err := c.orders.Place(principal(r), in)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	response.Created(w, resources.Order(*order))
}

// Index lists every order for staff, the caller's own orders otherwise.
func (c *OrderController) Index(w http.ResponseWriter, r *http.Request) {
	orders, err := c.orders.List(principal(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	response.Success(w, resources.Orders(orders))
}

// Mine lists the caller's own orders regardless of role.
func (c *OrderController) Mine(w http.ResponseWriter, r *http.Request) {
	orders, err := c.orders.ListMine(principal(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	response.Success(w, resources.Orders(orders))
}

func (c *OrderController) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		response.NotFound(w)
		return
	}

	order, err := c.orders.Get(principal(r), id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	response.Success(w, resources.Order(*order))
}

// Cancel moves a pending order to cancelled and restores its stock.
func (c *OrderController) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		response.NotFound(w)
		return
	}

	order, err := c.orders.Cancel(principal(r), id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	response.Success(w, resources.Order(*order))
}

type updateStatusInput struct {
	Status string `json:"status" validate:"required"`
}

// UpdateStatus is the staff endpoint for moving an order through fulfilment.
func (c *OrderController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		response.NotFound(w)
		return
	}

	var in updateStatusInput
	if !bindJSON(w, r, &in) {
		return
	}

	order, err := c.orders.UpdateStatus(principal(r), id, in.Status)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	response.Success(w, resources.Order(*order))
}
