package discount

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salushop/orders/internal/domain/offer"
)

// --- Mock implementations ---

type mockOfferRepo struct {
	offers []offer.Offer
	err    error
}

func (m *mockOfferRepo) FindForDate(_ context.Context, _ time.Time) ([]offer.Offer, error) {
	return m.offers, m.err
}

// --- Helpers ---

// newTestEngine pins the engine clock so seasonal eligibility is
// deterministic.
func newTestEngine(today time.Time) *Engine {
	e := NewEngine(&mockOfferRepo{})
	e.now = func() time.Time { return today }
	return e
}

func line(id int64, name, price string, qty int) Line {
	return Line{
		ItemID:    id,
		ItemName:  name,
		BasePrice: decimal.RequireFromString(price),
		Quantity:  qty,
	}
}

// --- Tests ---

func TestPrice_NoDiscounts(t *testing.T) {
	e := newTestEngine(time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC))

	res := e.Price(context.Background(), Input{
		Lines: []Line{
			line(1, "Standing Desk", "1000.00", 2),
			line(2, "Desk Lamp", "500.00", 1),
		},
		CustomerOrderCount: 1,
		OrderYear:          2026,
	})

	assert.True(t, decimal.RequireFromString("2500.00").Equal(res.PriceBeforeDiscount))
	assert.True(t, decimal.RequireFromString("2500.00").Equal(res.TotalPrice))
	assert.Empty(t, res.Reason)
	require.Len(t, res.Lines, 2)
	assert.Empty(t, res.Lines[0].Reason)
	assert.True(t, decimal.RequireFromString("2000.00").Equal(res.Lines[0].GrossCost))
}

func TestPrice_AllThreeDiscountsStack(t *testing.T) {
	// 12x1000 + 1x500 = 12500 before discounts. The volume cut takes 1200
	// off, the seasonal factor and loyalty factor then multiply in order:
	// 11300 * 0.85 * 0.95 = 9124.75.
	e := newTestEngine(time.Date(2026, time.November, 20, 12, 0, 0, 0, time.UTC))

	res := e.Price(context.Background(), Input{
		Lines: []Line{
			line(1, "Standing Desk", "1000.00", 12),
			line(2, "Desk Lamp", "500.00", 1),
		},
		CustomerOrderCount: 7,
		OrderYear:          2026,
	})

	assert.True(t, decimal.RequireFromString("12500.00").Equal(res.PriceBeforeDiscount))
	assert.True(t, decimal.RequireFromString("9124.75").Equal(res.TotalPrice))
	assert.Equal(t, "Seasonal Discount of 15%.Loyalty Discount of 5%.", res.Reason)

	require.Len(t, res.Lines, 2)
	assert.Equal(t, "Volume based discount of 10% for item Standing Desk", res.Lines[0].Reason)
	assert.True(t, decimal.RequireFromString("10800.00").Equal(res.Lines[0].GrossCost))
	assert.Empty(t, res.Lines[1].Reason)
	assert.True(t, decimal.RequireFromString("500.00").Equal(res.Lines[1].GrossCost))
}

func TestPrice_VolumeBoundary(t *testing.T) {
	e := newTestEngine(time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC))

	// Exactly 10 units does not qualify.
	res := e.Price(context.Background(), Input{
		Lines:     []Line{line(1, "Desk Lamp", "500.00", 10)},
		OrderYear: 2026,
	})
	assert.Empty(t, res.Lines[0].Reason)
	assert.True(t, decimal.RequireFromString("5000.00").Equal(res.TotalPrice))

	// 11 units does.
	res = e.Price(context.Background(), Input{
		Lines:     []Line{line(1, "Desk Lamp", "500.00", 11)},
		OrderYear: 2026,
	})
	assert.Equal(t, "Volume based discount of 10% for item Desk Lamp", res.Lines[0].Reason)
	assert.True(t, decimal.RequireFromString("4950.00").Equal(res.TotalPrice))
	assert.True(t, decimal.RequireFromString("5500.00").Equal(res.PriceBeforeDiscount))
}

func TestPrice_VolumeAppliesPerLine(t *testing.T) {
	e := newTestEngine(time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC))

	res := e.Price(context.Background(), Input{
		Lines: []Line{
			line(1, "Standing Desk", "1000.00", 11),
			line(2, "Desk Lamp", "500.00", 12),
			line(3, "Cable Tray", "19.95", 1),
		},
		OrderYear: 2026,
	})

	require.Len(t, res.Lines, 3)
	assert.NotEmpty(t, res.Lines[0].Reason)
	assert.NotEmpty(t, res.Lines[1].Reason)
	assert.Empty(t, res.Lines[2].Reason)
	// 11000*0.9 + 6000*0.9 + 19.95
	assert.True(t, decimal.RequireFromString("15319.95").Equal(res.TotalPrice))
}

func TestPrice_SeasonalWindowBoundaries(t *testing.T) {
	in := Input{
		Lines:     []Line{line(1, "Desk Lamp", "100.00", 1)},
		OrderYear: 2026,
	}

	tests := []struct {
		name     string
		today    time.Time
		inSeason bool
	}{
		{"day before window", time.Date(2026, time.November, 9, 23, 59, 0, 0, time.UTC), false},
		{"first day of window", time.Date(2026, time.November, 10, 0, 0, 0, 0, time.UTC), true},
		{"last day of window", time.Date(2026, time.December, 31, 23, 59, 0, 0, time.UTC), true},
		{"day after window", time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := newTestEngine(tt.today).Price(context.Background(), in)
			if tt.inSeason {
				assert.True(t, decimal.RequireFromString("85.00").Equal(res.TotalPrice))
				assert.Equal(t, "Seasonal Discount of 15%.", res.Reason)
			} else {
				assert.True(t, decimal.RequireFromString("100.00").Equal(res.TotalPrice))
				assert.Empty(t, res.Reason)
			}
		})
	}
}

func TestPrice_SeasonalWindowUsesOrderYear(t *testing.T) {
	// An order created in January is never in season during November of the
	// following calendar year: the window belongs to the creation year.
	e := newTestEngine(time.Date(2026, time.November, 20, 12, 0, 0, 0, time.UTC))

	res := e.Price(context.Background(), Input{
		Lines:     []Line{line(1, "Desk Lamp", "100.00", 1)},
		OrderYear: 2025,
	})

	assert.True(t, decimal.RequireFromString("100.00").Equal(res.TotalPrice))
	assert.Empty(t, res.Reason)
}

func TestPrice_LoyaltyBoundary(t *testing.T) {
	e := newTestEngine(time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC))
	in := Input{
		Lines:     []Line{line(1, "Desk Lamp", "100.00", 1)},
		OrderYear: 2026,
	}

	// A count of exactly 5 (including this order) does not qualify.
	in.CustomerOrderCount = 5
	res := e.Price(context.Background(), in)
	assert.True(t, decimal.RequireFromString("100.00").Equal(res.TotalPrice))
	assert.Empty(t, res.Reason)

	// A count of 6 does.
	in.CustomerOrderCount = 6
	res = e.Price(context.Background(), in)
	assert.True(t, decimal.RequireFromString("95.00").Equal(res.TotalPrice))
	assert.Equal(t, "Loyalty Discount of 5%.", res.Reason)
}

func TestPrice_ZeroQuantityLine(t *testing.T) {
	e := newTestEngine(time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC))

	res := e.Price(context.Background(), Input{
		Lines: []Line{
			line(1, "Standing Desk", "1000.00", 0),
			line(2, "Desk Lamp", "500.00", 1),
		},
		OrderYear: 2026,
	})

	require.Len(t, res.Lines, 2)
	assert.True(t, decimal.Zero.Equal(res.Lines[0].GrossCost))
	assert.Empty(t, res.Lines[0].Reason)
	assert.True(t, decimal.RequireFromString("500.00").Equal(res.TotalPrice))
}

func TestPrice_NoLines(t *testing.T) {
	e := newTestEngine(time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC))

	res := e.Price(context.Background(), Input{OrderYear: 2026})

	assert.Empty(t, res.Lines)
	assert.True(t, decimal.Zero.Equal(res.PriceBeforeDiscount))
	assert.True(t, decimal.Zero.Equal(res.TotalPrice))
}

func TestPrice_OfferLookupFailureDoesNotBlockSeason(t *testing.T) {
	// The registry is consulted best-effort; a lookup error must not change
	// the pricing outcome.
	e := NewEngine(&mockOfferRepo{err: context.DeadlineExceeded})
	e.now = func() time.Time {
		return time.Date(2026, time.December, 1, 12, 0, 0, 0, time.UTC)
	}

	res := e.Price(context.Background(), Input{
		Lines:     []Line{line(1, "Desk Lamp", "100.00", 1)},
		OrderYear: 2026,
	})

	assert.True(t, decimal.RequireFromString("85.00").Equal(res.TotalPrice))
	assert.Equal(t, "Seasonal Discount of 15%.", res.Reason)
}
