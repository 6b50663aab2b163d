package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of an order. Creation is a single atomic
// Draft→Priced transition (the order is never visible in Draft); payment
// moves it to Confirmed, a payment failure to Failed.
type Status string

const (
	StatusDraft     Status = "Draft"
	StatusPriced    Status = "Priced"
	StatusConfirmed Status = "Confirmed"
	StatusFailed    Status = "Failed"
)

// ErrNotFound is returned when a requested order does not exist.
var ErrNotFound = errors.New("order not found")

// Order is the aggregate for a single purchase: the order row plus its line
// items. Totals and discount reasons are filled in by the pricing engine
// before the aggregate is persisted.
type Order struct {
	ID                  int64
	CustomerID          int64
	Status              Status
	PriceBeforeDiscount decimal.Decimal
	TotalPrice          decimal.Decimal
	DiscountReason      string
	CreatedAt           time.Time
	Items               []Item
}

// Item is one line of an order. ItemBasePrice and ItemGrossCost are snapshots
// computed at creation time; they freeze the price even if the catalog later
// changes.
type Item struct {
	ID             int64
	ItemID         int64
	ItemName       string
	Quantity       int
	ItemBasePrice  decimal.Decimal
	ItemGrossCost  decimal.Decimal
	DiscountReason string
}

// Repository defines persistence operations for orders.
type Repository interface {
	// CreatePriced inserts the order and all of its line items in a single
	// transaction and assigns the generated ids to the aggregate.
	CreatePriced(ctx context.Context, o *Order) error
	UpdateStatus(ctx context.Context, id int64, st Status) error
	GetByID(ctx context.Context, id int64) (*Order, error)
}
