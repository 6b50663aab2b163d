package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/salushop/orders/internal/domain/offer"
)

const findOffersForDateSQL = `SELECT id, offer_start, offer_end, COALESCE(reason, '')
	FROM seasonal_discounts WHERE offer_start <= $1 AND offer_end >= $1 ORDER BY id`

var _ offer.Repository = (*OfferRepository)(nil)

// OfferRepository implements offer.Repository backed by PostgreSQL.
type OfferRepository struct {
	pool *pgxpool.Pool
}

// NewOfferRepository returns an OfferRepository that uses the given pool.
func NewOfferRepository(pool *pgxpool.Pool) *OfferRepository {
	return &OfferRepository{pool: pool}
}

// FindForDate returns the offers whose date range covers the given day.
func (r *OfferRepository) FindForDate(ctx context.Context, day time.Time) ([]offer.Offer, error) {
	rows, err := r.pool.Query(ctx, findOffersForDateSQL, day)
	if err != nil {
		return nil, fmt.Errorf("finding offers for %s: %w", day.Format(time.DateOnly), err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (offer.Offer, error) {
		var o offer.Offer
		err := row.Scan(&o.ID, &o.Start, &o.End, &o.Reason)
		return o, err
	})
}
