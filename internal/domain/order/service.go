package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/salushop/orders/internal/domain/catalog"
	"github.com/salushop/orders/internal/domain/customer"
	"github.com/salushop/orders/internal/domain/discount"
	"github.com/salushop/orders/internal/notify"
	"github.com/salushop/orders/internal/payment"
)

// CustomerNotFoundError indicates the referenced customer does not exist.
type CustomerNotFoundError struct {
	CustomerID int64
}

func (e *CustomerNotFoundError) Error() string {
	return fmt.Sprintf("customer %d does not exist", e.CustomerID)
}

// ItemNotFoundError indicates a line references an item that does not exist.
// Index is the position of the offending line in the request.
type ItemNotFoundError struct {
	Index  int
	ItemID int64
}

func (e *ItemNotFoundError) Error() string {
	return fmt.Sprintf("item %d does not exist", e.ItemID)
}

// PricingError wraps a failure while pricing or persisting the priced order.
// The transaction is rolled back, so no partial rows survive it.
type PricingError struct {
	Err error
}

func (e *PricingError) Error() string { return "pricing order: " + e.Err.Error() }
func (e *PricingError) Unwrap() error { return e.Err }

// LineRequest is one (item, quantity) entry of a placement request.
// Quantity has already passed shape validation: zero is allowed, negative
// values are rejected at the transport boundary.
type LineRequest struct {
	ItemID   int64
	Quantity int
}

// PlaceOrderRequest holds the input for placing an order.
type PlaceOrderRequest struct {
	CustomerID int64
	Lines      []LineRequest
}

// Service orchestrates order placement: referential validation, the atomic
// persist-and-price transition, payment, and notification.
type Service struct {
	customers customer.Repository
	catalog   catalog.Repository
	engine    *discount.Engine
	orders    Repository
	payments  payment.Processor
	notifier  notify.Notifier
	now       func() time.Time
}

// NewService creates the order workflow service.
func NewService(
	customers customer.Repository,
	cat catalog.Repository,
	engine *discount.Engine,
	orders Repository,
	payments payment.Processor,
	notifier notify.Notifier,
) *Service {
	return &Service{
		customers: customers,
		catalog:   cat,
		engine:    engine,
		orders:    orders,
		payments:  payments,
		notifier:  notifier,
		now:       time.Now,
	}
}

// PlaceOrder runs the full placement workflow and returns the confirmed
// order. Referential failures surface as typed errors for the transport
// layer to shape; pricing/persistence failures surface as *PricingError.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*Order, error) {
	cust, err := s.customers.GetByID(ctx, req.CustomerID)
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			return nil, &CustomerNotFoundError{CustomerID: req.CustomerID}
		}
		return nil, errors.Wrap(err, "get customer")
	}

	// Batch fetch all referenced items in a single query.
	ids := make([]int64, len(req.Lines))
	for i, l := range req.Lines {
		ids[i] = l.ItemID
	}
	fetched, err := s.catalog.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get items")
	}
	byID := make(map[int64]catalog.Item, len(fetched))
	for _, it := range fetched {
		byID[it.ID] = it
	}

	lines := make([]discount.Line, len(req.Lines))
	for i, l := range req.Lines {
		it, ok := byID[l.ItemID]
		if !ok {
			return nil, &ItemNotFoundError{Index: i, ItemID: l.ItemID}
		}
		lines[i] = discount.Line{
			ItemID:    it.ID,
			ItemName:  it.Name,
			BasePrice: it.BasePrice,
			Quantity:  l.Quantity,
		}
	}

	// The order being placed counts toward the loyalty tier, so the ledger
	// is bumped before pricing. The increment is a single atomic
	// update-and-read on the customer row.
	count, err := s.customers.IncrementOrderCount(ctx, cust.ID)
	if err != nil {
		return nil, errors.Wrap(err, "increment order count")
	}

	createdAt := s.now()
	priced := s.engine.Price(ctx, discount.Input{
		Lines:              lines,
		CustomerOrderCount: count,
		OrderYear:          createdAt.Year(),
	})

	o := &Order{
		CustomerID:          cust.ID,
		Status:              StatusPriced,
		PriceBeforeDiscount: priced.PriceBeforeDiscount,
		TotalPrice:          priced.TotalPrice,
		DiscountReason:      priced.Reason,
		CreatedAt:           createdAt,
		Items:               make([]Item, len(priced.Lines)),
	}
	for i, pl := range priced.Lines {
		o.Items[i] = Item{
			ItemID:         pl.ItemID,
			ItemName:       pl.ItemName,
			Quantity:       pl.Quantity,
			ItemBasePrice:  pl.BasePrice,
			ItemGrossCost:  pl.GrossCost,
			DiscountReason: pl.Reason,
		}
	}

	if err := s.orders.CreatePriced(ctx, o); err != nil {
		return nil, &PricingError{Err: err}
	}

	// Payment is synchronous and always succeeds in this system; the failure
	// branch exists for the state machine's sake.
	if err := s.payments.Charge(ctx, o.ID, o.TotalPrice); err != nil {
		if uerr := s.orders.UpdateStatus(ctx, o.ID, StatusFailed); uerr != nil {
			zctx.From(ctx).Error("Mark order failed", zap.Int64("order_id", o.ID), zap.Error(uerr))
		}
		return nil, errors.Wrap(err, "charge order")
	}

	if err := s.orders.UpdateStatus(ctx, o.ID, StatusConfirmed); err != nil {
		return nil, errors.Wrap(err, "confirm order")
	}
	o.Status = StatusConfirmed

	s.notifier.OrderConfirmed(ctx, o.ID, o.TotalPrice)

	return o, nil
}

// GetOrder returns the full order aggregate for the given id.
func (s *Service) GetOrder(ctx context.Context, id int64) (*Order, error) {
	return s.orders.GetByID(ctx, id)
}
