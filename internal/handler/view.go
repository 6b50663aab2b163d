package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/salushop/orders/internal/domain/order"
)

// createOrderResponse is the POST /orders/ success body.
type createOrderResponse struct {
	OrderID    int64           `json:"order_id"`
	Status     string          `json:"status"`
	TotalPrice decimal.Decimal `json:"total_price"`
	CustomerID int64           `json:"customer_id"`
	Message    string          `json:"message"`
}

// orderItemView is the per-line projection of the retrieval response.
// ItemTotalCostWithoutDiscount is included only when the line carries a
// discount reason.
type orderItemView struct {
	Quantity                     int              `json:"quantity"`
	Item                         string           `json:"item"`
	ItemBasePrice                decimal.Decimal  `json:"item_base_price"`
	ItemGrossCost                decimal.Decimal  `json:"item_gross_cost"`
	DiscountReason               *string          `json:"discount_reason"`
	ItemTotalCostWithoutDiscount *decimal.Decimal `json:"item_total_cost_without_discount,omitempty"`
}

// orderView is the GET /orders/:id/ projection. DiscountedAmount is derived
// at read time, never stored.
type orderView struct {
	ID                  int64           `json:"id"`
	OrderItems          []orderItemView `json:"order_items"`
	Status              string          `json:"status"`
	TotalPrice          decimal.Decimal `json:"total_price"`
	CreatedAt           time.Time       `json:"created_at"`
	DiscountReason      *string         `json:"discount_reason"`
	PriceBeforeDiscount decimal.Decimal `json:"price_before_discount"`
	DiscountedAmount    decimal.Decimal `json:"discounted_amount"`
}

func newOrderView(o *order.Order) orderView {
	items := make([]orderItemView, len(o.Items))
	for i, it := range o.Items {
		v := orderItemView{
			Quantity:       it.Quantity,
			Item:           it.ItemName,
			ItemBasePrice:  it.ItemBasePrice,
			ItemGrossCost:  it.ItemGrossCost,
			DiscountReason: nullableString(it.DiscountReason),
		}
		if it.DiscountReason != "" {
			subtotal := it.ItemBasePrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
			v.ItemTotalCostWithoutDiscount = &subtotal
		}
		items[i] = v
	}

	return orderView{
		ID:                  o.ID,
		OrderItems:          items,
		Status:              string(o.Status),
		TotalPrice:          o.TotalPrice,
		CreatedAt:           o.CreatedAt,
		DiscountReason:      nullableString(o.DiscountReason),
		PriceBeforeDiscount: o.PriceBeforeDiscount,
		DiscountedAmount:    o.PriceBeforeDiscount.Sub(o.TotalPrice),
	}
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
