package offer

import (
	"context"
	"time"
)

// Offer is a date-ranged seasonal discount record.
type Offer struct {
	ID     int64
	Start  time.Time
	End    time.Time
	Reason string
}

// Repository provides date-based lookup of seasonal offers.
type Repository interface {
	// FindForDate returns the offers whose [Start, End] range covers the
	// given calendar day.
	FindForDate(ctx context.Context, day time.Time) ([]Offer, error)
}
