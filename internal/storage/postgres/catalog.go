package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/salushop/orders/internal/domain/catalog"
)

const getItemsByIDsSQL = `SELECT id, name, base_price FROM items WHERE id = ANY($1)`

var _ catalog.Repository = (*CatalogRepository)(nil)

// CatalogRepository implements catalog.Repository backed by PostgreSQL.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository returns a CatalogRepository that uses the given pool.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// GetByIDs returns items matching any of the given IDs.
func (r *CatalogRepository) GetByIDs(ctx context.Context, ids []int64) ([]catalog.Item, error) {
	rows, err := r.pool.Query(ctx, getItemsByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("getting items by ids: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.Item, error) {
		var it catalog.Item
		err := row.Scan(&it.ID, &it.Name, &it.BasePrice)
		return it, err
	})
}
