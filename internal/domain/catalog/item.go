package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested item does not exist.
var ErrNotFound = errors.New("item not found")

// Item is a catalog entry available for purchase. BasePrice is the unit price
// before any discount; orders snapshot it at creation time.
type Item struct {
	ID        int64
	Name      string
	BasePrice decimal.Decimal
}

// Repository defines read operations for the catalog. The catalog is never
// mutated during order processing.
type Repository interface {
	GetByIDs(ctx context.Context, ids []int64) ([]Item, error)
}
