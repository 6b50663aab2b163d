package order

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salushop/orders/internal/domain/catalog"
	"github.com/salushop/orders/internal/domain/customer"
	"github.com/salushop/orders/internal/domain/discount"
)

// --- Mock implementations ---

type mockCustomerRepo struct {
	byID       map[int64]*customer.Customer
	getErr     error
	incErr     error
	increments []int64
}

func (m *mockCustomerRepo) GetByID(_ context.Context, id int64) (*customer.Customer, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	c, ok := m.byID[id]
	if !ok {
		return nil, customer.ErrNotFound
	}
	return c, nil
}

func (m *mockCustomerRepo) IncrementOrderCount(_ context.Context, id int64) (int, error) {
	if m.incErr != nil {
		return 0, m.incErr
	}
	m.increments = append(m.increments, id)
	m.byID[id].OrderCount++
	return m.byID[id].OrderCount, nil
}

type mockCatalogRepo struct {
	byID map[int64]catalog.Item
	err  error
}

func (m *mockCatalogRepo) GetByIDs(_ context.Context, ids []int64) ([]catalog.Item, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []catalog.Item
	seen := make(map[int64]bool)
	for _, id := range ids {
		if it, ok := m.byID[id]; ok && !seen[id] {
			out = append(out, it)
			seen[id] = true
		}
	}
	return out, nil
}

type mockOrderRepo struct {
	created   *Order
	createErr error

	statuses  []Status
	statusErr error

	stored *Order
}

func (m *mockOrderRepo) CreatePriced(_ context.Context, o *Order) error {
	if m.createErr != nil {
		return m.createErr
	}
	o.ID = 42
	m.created = o
	return nil
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, _ int64, st Status) error {
	if m.statusErr != nil {
		return m.statusErr
	}
	m.statuses = append(m.statuses, st)
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id int64) (*Order, error) {
	if m.stored == nil || m.stored.ID != id {
		return nil, ErrNotFound
	}
	return m.stored, nil
}

type mockProcessor struct {
	err     error
	charges []decimal.Decimal
}

func (m *mockProcessor) Charge(_ context.Context, _ int64, amount decimal.Decimal) error {
	if m.err != nil {
		return m.err
	}
	m.charges = append(m.charges, amount)
	return nil
}

type mockNotifier struct {
	confirmed []int64
}

func (m *mockNotifier) OrderConfirmed(_ context.Context, orderID int64, _ decimal.Decimal) {
	m.confirmed = append(m.confirmed, orderID)
}

// --- Helpers ---

type fixture struct {
	customers *mockCustomerRepo
	catalog   *mockCatalogRepo
	orders    *mockOrderRepo
	payments  *mockProcessor
	notifier  *mockNotifier
	svc       *Service
}

func newFixture() *fixture {
	f := &fixture{
		customers: &mockCustomerRepo{byID: map[int64]*customer.Customer{
			1: {ID: 1, Name: "Ada Marsh", Email: "ada.marsh@example.com", OrderCount: 0},
			2: {ID: 2, Name: "Lionel Okafor", Email: "l.okafor@example.com", OrderCount: 6},
		}},
		catalog: &mockCatalogRepo{byID: map[int64]catalog.Item{
			10: {ID: 10, Name: "Standing Desk", BasePrice: decimal.RequireFromString("1000.00")},
			11: {ID: 11, Name: "Desk Lamp", BasePrice: decimal.RequireFromString("500.00")},
		}},
		orders:   &mockOrderRepo{},
		payments: &mockProcessor{},
		notifier: &mockNotifier{},
	}
	engine := discount.NewEngine(nil)
	f.svc = NewService(f.customers, f.catalog, engine, f.orders, f.payments, f.notifier)
	// Out of the seasonal window so only volume and loyalty can fire.
	f.svc.now = func() time.Time {
		return time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC)
	}
	return f
}

// --- Tests ---

func TestPlaceOrder_CustomerNotFound(t *testing.T) {
	f := newFixture()

	_, err := f.svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		CustomerID: 99,
		Lines:      []LineRequest{{ItemID: 10, Quantity: 1}},
	})

	var cnf *CustomerNotFoundError
	require.ErrorAs(t, err, &cnf)
	assert.Equal(t, int64(99), cnf.CustomerID)
	assert.Empty(t, f.customers.increments)
}

func TestPlaceOrder_ItemNotFound(t *testing.T) {
	f := newFixture()

	_, err := f.svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		CustomerID: 1,
		Lines: []LineRequest{
			{ItemID: 10, Quantity: 1},
			{ItemID: 404, Quantity: 2},
		},
	})

	var inf *ItemNotFoundError
	require.ErrorAs(t, err, &inf)
	assert.Equal(t, int64(404), inf.ItemID)
	assert.Equal(t, 1, inf.Index)
	// Referential checks run before the ledger is touched.
	assert.Empty(t, f.customers.increments)
	assert.Nil(t, f.orders.created)
}

func TestPlaceOrder_Success(t *testing.T) {
	f := newFixture()

	o, err := f.svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		CustomerID: 1,
		Lines: []LineRequest{
			{ItemID: 10, Quantity: 2},
			{ItemID: 11, Quantity: 1},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(42), o.ID)
	assert.Equal(t, StatusConfirmed, o.Status)
	assert.True(t, decimal.RequireFromString("2500.00").Equal(o.PriceBeforeDiscount))
	assert.True(t, decimal.RequireFromString("2500.00").Equal(o.TotalPrice))
	assert.Empty(t, o.DiscountReason)

	require.Len(t, o.Items, 2)
	assert.Equal(t, "Standing Desk", o.Items[0].ItemName)
	assert.True(t, decimal.RequireFromString("1000.00").Equal(o.Items[0].ItemBasePrice))
	assert.True(t, decimal.RequireFromString("2000.00").Equal(o.Items[0].ItemGrossCost))

	// Persisted as Priced, then moved to Confirmed after the charge.
	require.NotNil(t, f.orders.created)
	assert.Equal(t, StatusPriced, f.orders.created.Status)
	assert.Equal(t, []Status{StatusConfirmed}, f.orders.statuses)

	assert.Equal(t, []int64{1}, f.customers.increments)
	require.Len(t, f.payments.charges, 1)
	assert.True(t, decimal.RequireFromString("2500.00").Equal(f.payments.charges[0]))
	assert.Equal(t, []int64{42}, f.notifier.confirmed)
}

func TestPlaceOrder_LoyaltyCountsThisOrder(t *testing.T) {
	f := newFixture()

	// Customer 2 has placed 6 orders; with this one the count reaches 7 and
	// the loyalty discount fires.
	o, err := f.svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		CustomerID: 2,
		Lines:      []LineRequest{{ItemID: 11, Quantity: 1}},
	})

	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("475.00").Equal(o.TotalPrice))
	assert.Equal(t, "Loyalty Discount of 5%.", o.DiscountReason)
	assert.Equal(t, 7, f.customers.byID[2].OrderCount)
}

func TestPlaceOrder_CreateFailureIsPricingError(t *testing.T) {
	f := newFixture()
	f.orders.createErr = errors.New("db write failed")

	_, err := f.svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		CustomerID: 1,
		Lines:      []LineRequest{{ItemID: 10, Quantity: 1}},
	})

	var perr *PricingError
	require.ErrorAs(t, err, &perr)
	assert.ErrorIs(t, err, f.orders.createErr)
	assert.Empty(t, f.payments.charges)
	assert.Empty(t, f.notifier.confirmed)
}

func TestPlaceOrder_PaymentFailureMarksOrderFailed(t *testing.T) {
	f := newFixture()
	f.payments.err = errors.New("gateway unavailable")

	_, err := f.svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		CustomerID: 1,
		Lines:      []LineRequest{{ItemID: 10, Quantity: 1}},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "charge order")
	assert.Equal(t, []Status{StatusFailed}, f.orders.statuses)
	assert.Empty(t, f.notifier.confirmed)
}

func TestGetOrder(t *testing.T) {
	f := newFixture()
	f.orders.stored = &Order{ID: 7, Status: StatusConfirmed}

	o, err := f.svc.GetOrder(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), o.ID)

	_, err = f.svc.GetOrder(context.Background(), 8)
	require.ErrorIs(t, err, ErrNotFound)
}
