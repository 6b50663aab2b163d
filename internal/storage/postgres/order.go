package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/salushop/orders/internal/domain/order"
)

const (
	insertOrderSQL = `INSERT INTO orders
		(customer_id, status, price_before_discount, total_price, discount_reason, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6) RETURNING id`

	insertOrderItemSQL = `INSERT INTO order_items
		(order_id, item_id, quantity, item_base_price, item_gross_cost, discount_reason)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, '')) RETURNING id`

	updateOrderStatusSQL = `UPDATE orders SET status = $2 WHERE id = $1`

	getOrderSQL = `SELECT id, customer_id, status, price_before_discount, total_price,
		COALESCE(discount_reason, ''), created_at FROM orders WHERE id = $1`

	getOrderItemsSQL = `SELECT oi.id, oi.item_id, i.name, oi.quantity,
		oi.item_base_price, oi.item_gross_cost, COALESCE(oi.discount_reason, '')
		FROM order_items oi JOIN items i ON i.id = oi.item_id
		WHERE oi.order_id = $1 ORDER BY oi.id`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// CreatePriced inserts the order row and all line items in one transaction.
// Generated ids are written back into the aggregate. A failure rolls the
// whole insert back, so no partially priced order is ever visible.
func (r *OrderRepository) CreatePriced(ctx context.Context, o *order.Order) error {
	return withTx(ctx, r.pool, func(ctx context.Context) error {
		tx := txFromContext(ctx)

		err := tx.QueryRow(ctx, insertOrderSQL,
			o.CustomerID, o.Status, o.PriceBeforeDiscount, o.TotalPrice,
			o.DiscountReason, o.CreatedAt,
		).Scan(&o.ID)
		if err != nil {
			return fmt.Errorf("inserting order: %w", err)
		}

		for i := range o.Items {
			it := &o.Items[i]
			err := tx.QueryRow(ctx, insertOrderItemSQL,
				o.ID, it.ItemID, it.Quantity,
				it.ItemBasePrice, it.ItemGrossCost, it.DiscountReason,
			).Scan(&it.ID)
			if err != nil {
				return fmt.Errorf("inserting order item %d: %w", it.ItemID, err)
			}
		}
		return nil
	})
}

// UpdateStatus moves the order to the given lifecycle state.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id int64, st order.Status) error {
	tag, err := r.pool.Exec(ctx, updateOrderStatusSQL, id, st)
	if err != nil {
		return fmt.Errorf("updating order %d status: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// GetByID returns the order aggregate with its line items and item names.
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	var o order.Order
	var status string
	err := r.pool.QueryRow(ctx, getOrderSQL, id).Scan(
		&o.ID, &o.CustomerID, &status,
		&o.PriceBeforeDiscount, &o.TotalPrice, &o.DiscountReason, &o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %d: %w", id, err)
	}
	o.Status = order.Status(status)

	rows, err := r.pool.Query(ctx, getOrderItemsSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %d items: %w", id, err)
	}
	o.Items, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (order.Item, error) {
		var it order.Item
		err := row.Scan(&it.ID, &it.ItemID, &it.ItemName, &it.Quantity,
			&it.ItemBasePrice, &it.ItemGrossCost, &it.DiscountReason)
		return it, err
	})
	if err != nil {
		return nil, fmt.Errorf("collecting order %d items: %w", id, err)
	}

	return &o, nil
}
