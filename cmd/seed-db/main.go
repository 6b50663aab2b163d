// Binary seed-db loads customers, items, and seasonal discount windows into
// PostgreSQL from JSON files. Files ending in .gz are transparently
// decompressed. Seeding is idempotent: rows are upserted on their natural
// keys so the tool can run against an already seeded database.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/salushop/orders/internal/storage/postgres"
)

type customerJSON struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	OrderCount int    `json:"order_count" validate:"gte=0"`
}

type itemJSON struct {
	Name      string          `json:"name" validate:"required"`
	BasePrice decimal.Decimal `json:"base_price"`
}

type offerJSON struct {
	OfferStart string `json:"offer_start" validate:"required,datetime=2006-01-02"`
	OfferEnd   string `json:"offer_end" validate:"required,datetime=2006-01-02"`
	Reason     string `json:"reason"`
}

func main() {
	var (
		databaseURL   string
		customersFile string
		itemsFile     string
		offersFile    string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&customersFile, "customers-file", "db/seed/customers.json", "path to customers JSON file (.gz supported)")
	flag.StringVar(&itemsFile, "items-file", "db/seed/items.json", "path to items JSON file (.gz supported)")
	flag.StringVar(&offersFile, "offers-file", "db/seed/offers.json", "path to seasonal discounts JSON file (.gz supported)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, customersFile, itemsFile, offersFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, customersFile, itemsFile, offersFile string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	validate := validator.New()

	// The three tables have no cross references, so they seed concurrently.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return errors.Wrap(seedCustomers(gctx, pool, validate, customersFile), "seed customers")
	})
	g.Go(func() error {
		return errors.Wrap(seedItems(gctx, pool, validate, itemsFile), "seed items")
	})
	g.Go(func() error {
		return errors.Wrap(seedOffers(gctx, pool, validate, offersFile), "seed seasonal discounts")
	})
	return g.Wait()
}

// readJSONFile decodes the JSON document at path into v, decompressing first
// when the file name ends in .gz.
func readJSONFile(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "open file")
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		zr, err := pgzip.NewReader(f)
		if err != nil {
			return errors.Wrap(err, "open gzip stream")
		}
		defer zr.Close()
		r = zr
	}

	if err := json.NewDecoder(r).Decode(v); err != nil {
		return errors.Wrap(err, "parse JSON")
	}
	return nil
}

func seedCustomers(ctx context.Context, pool *pgxpool.Pool, validate *validator.Validate, path string) error {
	slog.Info("reading customers file", slog.String("path", path))

	var customers []customerJSON
	if err := readJSONFile(path, &customers); err != nil {
		return err
	}

	slog.Info("upserting customers", slog.Int("count", len(customers)))

	for _, c := range customers {
		if err := validate.Struct(c); err != nil {
			return errors.Wrapf(err, "invalid customer %q", c.Email)
		}

		_, err := pool.Exec(ctx, `
			INSERT INTO customers (name, email, order_count)
			VALUES ($1, $2, $3)
			ON CONFLICT (email) DO UPDATE
			SET name = EXCLUDED.name, order_count = EXCLUDED.order_count`,
			c.Name, c.Email, c.OrderCount,
		)
		if err != nil {
			return errors.Wrapf(err, "upsert customer %q", c.Email)
		}

		slog.Info("upserted customer", slog.String("email", c.Email), slog.String("name", c.Name))
	}
	return nil
}

func seedItems(ctx context.Context, pool *pgxpool.Pool, validate *validator.Validate, path string) error {
	slog.Info("reading items file", slog.String("path", path))

	var items []itemJSON
	if err := readJSONFile(path, &items); err != nil {
		return err
	}

	slog.Info("upserting items", slog.Int("count", len(items)))

	for _, it := range items {
		if err := validate.Struct(it); err != nil {
			return errors.Wrapf(err, "invalid item %q", it.Name)
		}
		if it.BasePrice.IsNegative() {
			return errors.Errorf("invalid item %q: negative base price %s", it.Name, it.BasePrice)
		}

		_, err := pool.Exec(ctx, `
			INSERT INTO items (name, base_price)
			VALUES ($1, $2)
			ON CONFLICT (name) DO UPDATE
			SET base_price = EXCLUDED.base_price`,
			it.Name, it.BasePrice,
		)
		if err != nil {
			return errors.Wrapf(err, "upsert item %q", it.Name)
		}

		slog.Info("upserted item", slog.String("name", it.Name), slog.String("base_price", it.BasePrice.String()))
	}
	return nil
}

func seedOffers(ctx context.Context, pool *pgxpool.Pool, validate *validator.Validate, path string) error {
	slog.Info("reading seasonal discounts file", slog.String("path", path))

	var offers []offerJSON
	if err := readJSONFile(path, &offers); err != nil {
		return err
	}

	slog.Info("upserting seasonal discounts", slog.Int("count", len(offers)))

	for _, o := range offers {
		if err := validate.Struct(o); err != nil {
			return errors.Wrapf(err, "invalid seasonal discount %s..%s", o.OfferStart, o.OfferEnd)
		}

		_, err := pool.Exec(ctx, `
			INSERT INTO seasonal_discounts (offer_start, offer_end, reason)
			VALUES ($1, $2, NULLIF($3, ''))
			ON CONFLICT (offer_start, offer_end) DO UPDATE
			SET reason = EXCLUDED.reason`,
			o.OfferStart, o.OfferEnd, o.Reason,
		)
		if err != nil {
			return errors.Wrapf(err, "upsert seasonal discount %s..%s", o.OfferStart, o.OfferEnd)
		}

		slog.Info("upserted seasonal discount",
			slog.String("start", o.OfferStart), slog.String("end", o.OfferEnd))
	}
	return nil
}
