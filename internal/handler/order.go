package handler

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/salushop/orders/internal/domain/order"
)

// Wire-level validation messages. The checks run in a fixed sequence and the
// first failure wins.
const (
	msgCustomerRequired = "Customer ID is required."
	msgItemsRequired    = "At least one item is required."
	msgInvalidData      = "Invalid data."
	msgNegativeQuantity = "Item quantity cannot be negative."
	msgWentWrong        = "Something went wrong."
	msgCreated          = "Order created successfully and payment confirmed."
)

// createOrderRequest mirrors the POST /orders/ body. Pointers distinguish
// absent fields from zero values; quantity binds as a float so that
// non-integer values can be rejected explicitly rather than at decode time.
type createOrderRequest struct {
	CustomerID *int64        `json:"customer_id"`
	Items      []itemRequest `json:"items"`
}

type itemRequest struct {
	Item     *int64   `json:"item"`
	Quantity *float64 `json:"quantity"`
}

// fieldError is a single field-structured validation failure.
type fieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CreateOrder handles POST /orders/.
func (h *Handler) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidData})
		return
	}

	if req.CustomerID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgCustomerRequired})
		return
	}
	if len(req.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgItemsRequired})
		return
	}

	lines := make([]order.LineRequest, len(req.Items))
	for i, it := range req.Items {
		if it.Item == nil || it.Quantity == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidData})
			return
		}
		q := *it.Quantity
		if q != math.Trunc(q) {
			c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidData})
			return
		}
		// Zero is a valid quantity; only negatives are rejected.
		if q < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": msgNegativeQuantity})
			return
		}
		lines[i] = order.LineRequest{ItemID: *it.Item, Quantity: int(q)}
	}

	o, err := h.orders.PlaceOrder(c.Request.Context(), order.PlaceOrderRequest{
		CustomerID: *req.CustomerID,
		Lines:      lines,
	})
	if err != nil {
		h.writeOrderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, createOrderResponse{
		OrderID:    o.ID,
		Status:     string(o.Status),
		TotalPrice: o.TotalPrice,
		CustomerID: o.CustomerID,
		Message:    msgCreated,
	})
}

// GetOrder handles GET /orders/:id/.
func (h *Handler) GetOrder(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}

	o, err := h.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
			return
		}
		zctx.From(c.Request.Context()).Error("Get order", zap.Int64("order_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, newOrderView(o))
}

// writeOrderError maps workflow errors to wire responses. Referential errors
// become field-structured 400s; pricing failures become the generic
// validation-style message; everything else is a 500.
func (h *Handler) writeOrderError(c *gin.Context, err error) {
	var cnf *order.CustomerNotFoundError
	if errors.As(err, &cnf) {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []fieldError{{
			Field:   "customer_id",
			Code:    "does_not_exist",
			Message: cnf.Error(),
		}}})
		return
	}

	var inf *order.ItemNotFoundError
	if errors.As(err, &inf) {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []fieldError{{
			Field:   fmt.Sprintf("items[%d].item", inf.Index),
			Code:    "does_not_exist",
			Message: inf.Error(),
		}}})
		return
	}

	var perr *order.PricingError
	if errors.As(err, &perr) {
		zctx.From(c.Request.Context()).Error("Order pricing failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": msgWentWrong})
		return
	}

	zctx.From(c.Request.Context()).Error("Place order", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
