package customer

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested customer does not exist.
var ErrNotFound = errors.New("customer not found")

// Customer is a buyer on record. OrderCount tracks how many orders the
// customer has placed and drives the loyalty discount tier.
type Customer struct {
	ID         int64
	Name       string
	Email      string
	OrderCount int
}

// Repository defines persistence operations on the customer ledger.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Customer, error)
	// IncrementOrderCount atomically bumps the customer's order count by one
	// and returns the new value.
	IncrementOrderCount(ctx context.Context, id int64) (int, error)
}
