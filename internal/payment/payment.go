// Package payment holds the payment gateway boundary. The only implementation
// in this service is an in-process stub that always succeeds.
package payment

import (
	"context"

	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Processor charges a customer for an order.
type Processor interface {
	Charge(ctx context.Context, orderID int64, amount decimal.Decimal) error
}

// Mock is a synchronous Processor that always succeeds, standing in for a
// real gateway integration.
type Mock struct{}

// NewMock returns the always-succeeding processor.
func NewMock() *Mock { return &Mock{} }

// Charge logs the payment and reports success.
func (Mock) Charge(ctx context.Context, orderID int64, amount decimal.Decimal) error {
	zctx.From(ctx).Info("Payment successful",
		zap.Int64("order_id", orderID),
		zap.String("amount", amount.String()),
		zap.String("reference", uuid.New().String()),
	)
	return nil
}
