// Package handler exposes the order workflow over HTTP using gin.
package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/salushop/orders/internal/domain/order"
)

// OrderService is the slice of the order workflow the transport layer needs.
type OrderService interface {
	PlaceOrder(ctx context.Context, req order.PlaceOrderRequest) (*order.Order, error)
	GetOrder(ctx context.Context, id int64) (*order.Order, error)
}

// Handler binds requests, runs the wire-level validation sequence, and maps
// workflow errors to HTTP responses. All business logic lives in the service.
type Handler struct {
	orders OrderService
}

// New constructs a Handler around the given order service.
func New(orders OrderService) *Handler {
	return &Handler{orders: orders}
}

// Register attaches the API routes to the router.
func (h *Handler) Register(r gin.IRouter) {
	r.POST("/orders/", h.CreateOrder)
	r.GET("/orders/:id/", h.GetOrder)
}
