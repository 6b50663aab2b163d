package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/salushop/orders/internal/domain/customer"
)

const (
	getCustomerSQL = `SELECT id, name, email, order_count FROM customers WHERE id = $1`

	incrementOrderCountSQL = `UPDATE customers SET order_count = order_count + 1
		WHERE id = $1 RETURNING order_count`
)

var _ customer.Repository = (*CustomerRepository)(nil)

// CustomerRepository implements customer.Repository backed by PostgreSQL.
type CustomerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository returns a CustomerRepository that uses the given pool.
func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

// GetByID returns a single customer by its identifier.
func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*customer.Customer, error) {
	var c customer.Customer
	err := r.pool.QueryRow(ctx, getCustomerSQL, id).
		Scan(&c.ID, &c.Name, &c.Email, &c.OrderCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, customer.ErrNotFound
		}
		return nil, fmt.Errorf("getting customer %d: %w", id, err)
	}
	return &c, nil
}

// IncrementOrderCount bumps the customer's order count in a single
// update-and-read statement and returns the new value.
func (r *CustomerRepository) IncrementOrderCount(ctx context.Context, id int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, incrementOrderCountSQL, id).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, customer.ErrNotFound
		}
		return 0, fmt.Errorf("incrementing order count for customer %d: %w", id, err)
	}
	return count, nil
}
