// Package notify holds the customer notification boundary. The only
// implementation in this service is an in-process stub.
package notify

import (
	"context"

	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Notifier informs a customer about order lifecycle events.
type Notifier interface {
	OrderConfirmed(ctx context.Context, orderID int64, total decimal.Decimal)
}

// Mock logs the notification instead of delivering it.
type Mock struct{}

// NewMock returns the logging notifier.
func NewMock() *Mock { return &Mock{} }

// OrderConfirmed logs a confirmation message for the order.
func (Mock) OrderConfirmed(ctx context.Context, orderID int64, total decimal.Decimal) {
	zctx.From(ctx).Info("Notification sent",
		zap.Int64("order_id", orderID),
		zap.String("total_price", total.String()),
	)
}
