package discount

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/salushop/orders/internal/domain/offer"
)

// Discount rule parameters. The three rules compose multiplicatively in a
// fixed order: volume per line, then seasonal on the running total, then
// loyalty. Changing the order changes the numeric result.
var (
	volumeRate     = decimal.RequireFromString("0.10")
	seasonalFactor = decimal.RequireFromString("0.85")
	loyaltyFactor  = decimal.RequireFromString("0.95")
)

const (
	// volumeMinQuantity is the per-line quantity above which (strictly) the
	// volume discount applies.
	volumeMinQuantity = 10
	// loyaltyMinOrders is the order count above which (strictly, counted
	// after the per-order increment) the loyalty discount applies.
	loyaltyMinOrders = 5
)

// Line is one order line before pricing.
type Line struct {
	ItemID    int64
	ItemName  string
	BasePrice decimal.Decimal
	Quantity  int
}

// PricedLine is a line with its computed price snapshot. GrossCost is the
// line subtotal after any volume discount; Reason is empty when none applied.
type PricedLine struct {
	Line
	GrossCost decimal.Decimal
	Reason    string
}

// Input carries everything Price needs. CustomerOrderCount must already
// include the order being priced.
type Input struct {
	Lines              []Line
	CustomerOrderCount int
	OrderYear          int
}

// Result is the complete pricing of an order. No intermediate rounding is
// performed; values carry full decimal precision and are constrained to two
// fractional digits only by the storage column type.
type Result struct {
	Lines               []PricedLine
	PriceBeforeDiscount decimal.Decimal
	TotalPrice          decimal.Decimal
	Reason              string
}

// Engine prices orders. It is deterministic given a clock; tests pin now.
type Engine struct {
	offers offer.Repository
	now    func() time.Time
}

// NewEngine creates an Engine backed by the given seasonal offer registry.
// The registry may be nil, in which case no offer lookup is attempted.
func NewEngine(offers offer.Repository) *Engine {
	return &Engine{offers: offers, now: time.Now}
}

// Price computes the order totals and per-line snapshots, accumulating
// human-readable discount narratives along the way.
func (e *Engine) Price(ctx context.Context, in Input) Result {
	res := Result{Lines: make([]PricedLine, 0, len(in.Lines))}

	total := decimal.Zero
	for _, l := range in.Lines {
		total = total.Add(l.BasePrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	res.PriceBeforeDiscount = total

	// Volume rule: each qualifying line is reduced by 10% and the same cut
	// comes off the running order total.
	for _, l := range in.Lines {
		pl := PricedLine{Line: l}
		subtotal := l.BasePrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
		if l.Quantity > volumeMinQuantity {
			cut := subtotal.Mul(volumeRate)
			pl.GrossCost = subtotal.Sub(cut)
			pl.Reason = fmt.Sprintf("Volume based discount of 10%% for item %s", l.ItemName)
			total = total.Sub(cut)
		} else {
			pl.GrossCost = subtotal
		}
		res.Lines = append(res.Lines, pl)
	}

	if e.inSeason(ctx, in.OrderYear) {
		total = total.Mul(seasonalFactor)
		res.Reason += "Seasonal Discount of 15%."
	}

	if in.CustomerOrderCount > loyaltyMinOrders {
		total = total.Mul(loyaltyFactor)
		res.Reason += "Loyalty Discount of 5%."
	}

	res.TotalPrice = total
	return res
}

// inSeason reports whether today falls inside the seasonal window of the
// order's creation year. Eligibility uses the fixed 10 Nov – 31 Dec window;
// rows in the offer registry are looked up best-effort for the log line only.
// TODO: drive the window from seasonal_discounts rows once product confirms
// the stored dates are authoritative.
func (e *Engine) inSeason(ctx context.Context, year int) bool {
	now := e.now()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	start := time.Date(year, time.November, 10, 0, 0, 0, 0, now.Location())
	end := time.Date(year, time.December, 31, 0, 0, 0, 0, now.Location())

	if day.Before(start) || day.After(end) {
		return false
	}

	if e.offers != nil {
		if offers, err := e.offers.FindForDate(ctx, day); err == nil && len(offers) > 0 {
			zctx.From(ctx).Debug("Seasonal offer active",
				zap.Int64("offer_id", offers[0].ID),
				zap.String("reason", offers[0].Reason),
			)
		}
	}
	return true
}
