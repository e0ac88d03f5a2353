package order

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/eshop-backend/internal/modules/catalog"
	"github.com/georgemunganga/eshop-backend/internal/modules/user"
	"github.com/georgemunganga/eshop-backend/internal/platform/events"
	"github.com/georgemunganga/eshop-backend/internal/platform/store"
)

type fixture struct {
	repo    *memRepo
	catalog *fakeCatalog
	users   fakeUsers
	pub     *recordingPublisher
	kitchen *catalog.Category
	ann     *user.User
	clock   time.Time
}

func newFixture() *fixture {
	f := &fixture{
		repo:    newMemRepo(),
		catalog: newFakeCatalog(),
		users:   fakeUsers{},
		pub:     &recordingPublisher{},
		clock:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	f.kitchen = f.catalog.addCategory("Kitchen")
	f.ann = &user.User{ID: store.NewID(), Name: "Ann"}
	f.users[f.ann.ID] = f.ann
	return f
}

func (f *fixture) service(opts ...Option) Service {
	base := []Option{WithPublisher(f.pub), withClock(func() time.Time { return f.clock })}
	return NewService(f.repo, f.catalog, f.users, append(base, opts...)...)
}

func (f *fixture) request(items ...LineRequest) PlaceOrderRequest {
	return PlaceOrderRequest{
		OrderItems:       items,
		ShippingAddress1: "1 Main St",
		City:             "Lusaka",
		Zip:              "10101",
		Country:          "ZM",
		Phone:            "+260000000",
		User:             f.ann.ID,
	}
}

func TestTotal(t *testing.T) {
	lines := []line{
		{Contribution: decimal.NewFromFloat(0.1).Mul(decimal.NewFromInt(3))},
		{Contribution: decimal.NewFromFloat(0.2)},
	}
	assert.Equal(t, 0.5, total(lines))
	assert.Equal(t, 0.0, total(nil))
}

func TestPlaceOrderTotalsAndPreservesOrder(t *testing.T) {
	f := newFixture()
	a := f.catalog.addProduct("a", 19.99, f.kitchen)
	b := f.catalog.addProduct("b", 5.01, f.kitchen)
	c := f.catalog.addProduct("c", 0.1, f.kitchen)
	// Earlier entries finish last.
	f.catalog.delay[a.ID] = 30 * time.Millisecond
	f.catalog.delay[b.ID] = 15 * time.Millisecond

	req := f.request(
		LineRequest{Product: a.ID, Quantity: 3},
		LineRequest{Product: b.ID, Quantity: 2},
		LineRequest{Product: c.ID, Quantity: 10},
	)
	o, err := f.service().PlaceOrder(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 70.99, o.TotalPrice)
	assert.Equal(t, DefaultStatus, o.Status)
	assert.Equal(t, f.clock, o.DateOrdered)
	require.Len(t, o.OrderItems, 3)

	items, err := f.repo.GetLineItemsByIDs(context.Background(), o.OrderItems)
	require.NoError(t, err)
	byID := map[string]*LineItem{}
	for _, li := range items {
		byID[li.ID] = li
	}
	for i, want := range req.OrderItems {
		got := byID[o.OrderItems[i]]
		require.NotNil(t, got)
		assert.Equal(t, want.Product, got.Product)
		assert.Equal(t, want.Quantity, got.Quantity)
	}

	stored, err := f.repo.GetOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.OrderItems, stored.OrderItems)
	assert.Equal(t, []string{events.OrderCreated}, f.pub.types())
}

func TestPlaceOrderIgnoresClientPriceAndHonoursStatusAndDate(t *testing.T) {
	f := newFixture()
	p := f.catalog.addProduct("p", 2.5, nil)
	req := f.request(LineRequest{Product: p.ID, Quantity: 4})
	req.Status = "Shipped"
	when := time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC)
	req.DateOrdered = &when

	o, err := f.service().PlaceOrder(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 10.0, o.TotalPrice)
	assert.Equal(t, "Shipped", o.Status)
	assert.Equal(t, when, o.DateOrdered)
}

func TestPlaceOrderValidation(t *testing.T) {
	f := newFixture()
	p := f.catalog.addProduct("p", 1, nil)
	good := LineRequest{Product: p.ID, Quantity: 1}

	cases := map[string]func(*PlaceOrderRequest){
		"no items":          func(r *PlaceOrderRequest) { r.OrderItems = nil },
		"bad product id":    func(r *PlaceOrderRequest) { r.OrderItems = []LineRequest{{Product: "x", Quantity: 1}} },
		"zero quantity":     func(r *PlaceOrderRequest) { r.OrderItems = []LineRequest{{Product: p.ID}} },
		"negative quantity": func(r *PlaceOrderRequest) { r.OrderItems = []LineRequest{{Product: p.ID, Quantity: -2}} },
		"quantity over cap": func(r *PlaceOrderRequest) { r.OrderItems = []LineRequest{{Product: p.ID, Quantity: 51}} },
		"bad user":          func(r *PlaceOrderRequest) { r.User = "nobody" },
		"missing address":   func(r *PlaceOrderRequest) { r.ShippingAddress1 = " " },
		"missing city":      func(r *PlaceOrderRequest) { r.City = "" },
		"missing zip":       func(r *PlaceOrderRequest) { r.Zip = "" },
		"missing country":   func(r *PlaceOrderRequest) { r.Country = "" },
		"missing phone":     func(r *PlaceOrderRequest) { r.Phone = "" },
	}
	svc := f.service(WithMaxLineQuantity(50))
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := f.request(good)
			mutate(&req)
			_, err := svc.PlaceOrder(context.Background(), req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
	assert.Zero(t, f.repo.lineItemCount(), "validation must happen before any write")
	n, _ := f.repo.CountOrders(context.Background())
	assert.Zero(t, n)
}

func TestPlaceOrderUnknownProductCreatesNoOrder(t *testing.T) {
	f := newFixture()
	a := f.catalog.addProduct("a", 1, nil)
	b := f.catalog.addProduct("b", 2, nil)
	req := f.request(
		LineRequest{Product: a.ID, Quantity: 1},
		LineRequest{Product: b.ID, Quantity: 1},
		LineRequest{Product: store.NewID(), Quantity: 1},
	)

	_, err := f.service(WithConcurrency(1)).PlaceOrder(context.Background(), req)
	assert.ErrorIs(t, err, ErrValidation)

	n, _ := f.repo.CountOrders(context.Background())
	assert.Zero(t, n)
	// Without compensation the line items written for known products stay behind.
	assert.Equal(t, 2, f.repo.lineItemCount())
	assert.Empty(t, f.pub.types())
}

func TestPlaceOrderStopsAfterFirstFailedEntry(t *testing.T) {
	f := newFixture()
	a := f.catalog.addProduct("a", 1, nil)
	req := f.request(
		LineRequest{Product: store.NewID(), Quantity: 1},
		LineRequest{Product: a.ID, Quantity: 1},
		LineRequest{Product: a.ID, Quantity: 2},
		LineRequest{Product: a.ID, Quantity: 3},
	)

	_, err := f.service(WithConcurrency(1)).PlaceOrder(context.Background(), req)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "unknown product")
	assert.Zero(t, f.repo.lineItemCount())

	n, _ := f.repo.CountOrders(context.Background())
	assert.Zero(t, n)
}

func TestMaterializeSkipsEntriesAfterCancel(t *testing.T) {
	f := newFixture()
	a := f.catalog.addProduct("a", 1, nil)
	m := &materializer{repo: f.repo, prices: NewPriceResolver(f.catalog), concurrency: 1}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	lines, err := m.materialize(ctx, []LineRequest{{Product: a.ID, Quantity: 1}, {Product: a.ID, Quantity: 1}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, created(lines))
	assert.Zero(t, f.repo.lineItemCount())
}

func TestPlaceOrderCompensation(t *testing.T) {
	t.Run("unknown product", func(t *testing.T) {
		f := newFixture()
		a := f.catalog.addProduct("a", 1, nil)
		req := f.request(
			LineRequest{Product: a.ID, Quantity: 1},
			LineRequest{Product: store.NewID(), Quantity: 1},
		)
		_, err := f.service(WithCompensation(true)).PlaceOrder(context.Background(), req)
		assert.ErrorIs(t, err, ErrValidation)
		assert.Zero(t, f.repo.lineItemCount())
	})

	t.Run("order persistence fails", func(t *testing.T) {
		f := newFixture()
		a := f.catalog.addProduct("a", 1, nil)
		f.repo.failCreateOrder = errBoom
		req := f.request(LineRequest{Product: a.ID, Quantity: 1}, LineRequest{Product: a.ID, Quantity: 2})

		_, err := f.service(WithCompensation(true)).PlaceOrder(context.Background(), req)
		assert.ErrorIs(t, err, errBoom)
		assert.NotErrorIs(t, err, ErrValidation)
		assert.Zero(t, f.repo.lineItemCount())
	})

	t.Run("disabled leaves line items", func(t *testing.T) {
		f := newFixture()
		a := f.catalog.addProduct("a", 1, nil)
		f.repo.failCreateOrder = errBoom
		_, err := f.service().PlaceOrder(context.Background(), f.request(LineRequest{Product: a.ID, Quantity: 1}))
		assert.ErrorIs(t, err, errBoom)
		assert.Equal(t, 1, f.repo.lineItemCount())
	})
}

func TestPublishFailureDoesNotFailRequest(t *testing.T) {
	f := newFixture()
	f.pub.err = errBoom
	p := f.catalog.addProduct("p", 1, nil)

	o, err := f.service().PlaceOrder(context.Background(), f.request(LineRequest{Product: p.ID, Quantity: 1}))
	require.NoError(t, err)
	assert.NotEmpty(t, o.ID)
}

func TestGetOrderHydratesFullProducts(t *testing.T) {
	f := newFixture()
	p := f.catalog.addProduct("Mug", 4, f.kitchen)
	svc := f.service()
	o, err := svc.PlaceOrder(context.Background(), f.request(LineRequest{Product: p.ID, Quantity: 2}))
	require.NoError(t, err)

	v, err := svc.GetOrder(context.Background(), o.ID)
	require.NoError(t, err)
	require.Len(t, v.OrderItems, 1)
	li := v.OrderItems[0]
	assert.Equal(t, 2, li.Quantity)
	require.NotNil(t, li.Product)
	require.NotNil(t, li.Product.Product)
	assert.Equal(t, "Mug", li.Product.Name)
	assert.Equal(t, 4.0, li.Product.Price)
	require.NotNil(t, li.Product.Category)
	assert.Equal(t, "Kitchen", li.Product.Category.Name)
	assert.Equal(t, &UserRef{ID: f.ann.ID, Name: "Ann"}, v.User)
	assert.Equal(t, 8.0, v.TotalPrice)
}

func TestGetOrderDanglingReferencesAreNull(t *testing.T) {
	f := newFixture()
	p := f.catalog.addProduct("gone", 1, f.kitchen)
	svc := f.service()
	o, err := svc.PlaceOrder(context.Background(), f.request(LineRequest{Product: p.ID, Quantity: 1}))
	require.NoError(t, err)

	delete(f.catalog.products, p.ID)
	delete(f.users, f.ann.ID)

	v, err := svc.GetOrder(context.Background(), o.ID)
	require.NoError(t, err)
	require.Len(t, v.OrderItems, 1)
	assert.Nil(t, v.OrderItems[0].Product)
	assert.Nil(t, v.User)
}

func TestGetOrderErrors(t *testing.T) {
	svc := newFixture().service()

	_, err := svc.GetOrder(context.Background(), "not-an-id")
	assert.ErrorIs(t, err, ErrInvalidID)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.GetOrder(context.Background(), store.NewID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListOrdersNewestFirstWithSummaryProducts(t *testing.T) {
	f := newFixture()
	p := f.catalog.addProduct("Mug", 3, f.kitchen)
	svc := f.service()

	var ids []string
	for i := 0; i < 3; i++ {
		f.clock = f.clock.Add(time.Hour)
		o, err := svc.PlaceOrder(context.Background(), f.request(LineRequest{Product: p.ID, Quantity: 1}))
		require.NoError(t, err)
		ids = append(ids, o.ID)
	}

	list, err := svc.ListOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{list[0].ID, list[1].ID, list[2].ID})
	for i := 1; i < len(list); i++ {
		assert.True(t, list[i-1].DateOrdered.After(list[i].DateOrdered))
	}

	data, err := json.Marshal(list[0].OrderItems[0].Product)
	require.NoError(t, err)
	var product map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &product))
	assert.ElementsMatch(t, []string{"id", "price", "category"}, keys(product))
	assert.Equal(t, "Ann", list[0].User.Name)
}

func TestListOrdersEmpty(t *testing.T) {
	list, err := newFixture().service().ListOrders(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestCountAndTotalSales(t *testing.T) {
	f := newFixture()
	svc := f.service()
	ctx := context.Background()

	n, err := svc.CountOrders(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	total, err := svc.TotalSales(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)

	p := f.catalog.addProduct("p", 2.25, nil)
	_, err = svc.PlaceOrder(ctx, f.request(LineRequest{Product: p.ID, Quantity: 2}))
	require.NoError(t, err)
	_, err = svc.PlaceOrder(ctx, f.request(LineRequest{Product: p.ID, Quantity: 1}))
	require.NoError(t, err)

	n, _ = svc.CountOrders(ctx)
	assert.Equal(t, int64(2), n)
	total, _ = svc.TotalSales(ctx)
	assert.InDelta(t, 6.75, total, 1e-9)
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture()
	p := f.catalog.addProduct("p", 1, nil)
	svc := f.service()
	ctx := context.Background()
	o, err := svc.PlaceOrder(ctx, f.request(LineRequest{Product: p.ID, Quantity: 1}))
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, o.ID, UpdateStatusRequest{Status: "Shipped"})
	require.NoError(t, err)
	assert.Equal(t, "Shipped", updated.Status)
	assert.Equal(t, o.TotalPrice, updated.TotalPrice)
	assert.Equal(t, o.OrderItems, updated.OrderItems)

	_, err = svc.UpdateStatus(ctx, o.ID, UpdateStatusRequest{Status: "  "})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.UpdateStatus(ctx, "bad", UpdateStatusRequest{Status: "x"})
	assert.ErrorIs(t, err, ErrInvalidID)
	_, err = svc.UpdateStatus(ctx, store.NewID(), UpdateStatusRequest{Status: "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, []string{events.OrderCreated, events.OrderStatusUpdated}, f.pub.types())
}

func TestDeleteOrderCascades(t *testing.T) {
	f := newFixture()
	p := f.catalog.addProduct("p", 1, nil)
	svc := f.service()
	ctx := context.Background()
	o, err := svc.PlaceOrder(ctx, f.request(
		LineRequest{Product: p.ID, Quantity: 1},
		LineRequest{Product: p.ID, Quantity: 2},
		LineRequest{Product: p.ID, Quantity: 3},
	))
	require.NoError(t, err)

	res, err := svc.DeleteOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Empty(t, res.FailedItems)

	left, err := f.repo.GetLineItemsByIDs(ctx, o.OrderItems)
	require.NoError(t, err)
	assert.Empty(t, left)

	_, err = svc.DeleteOrder(ctx, o.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, f.pub.types(), events.OrderDeleted)
}

func TestDeleteMissingOrderTouchesNoLineItems(t *testing.T) {
	f := newFixture()
	svc := f.service()

	_, err := svc.DeleteOrder(context.Background(), store.NewID())
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.DeleteOrder(context.Background(), "zzz")
	assert.ErrorIs(t, err, ErrInvalidID)
	assert.Zero(t, f.repo.deleteLineCalls)
}

func TestDeleteOrderPartialChildFailure(t *testing.T) {
	f := newFixture()
	p := f.catalog.addProduct("p", 1, nil)
	svc := f.service()
	ctx := context.Background()
	o, err := svc.PlaceOrder(ctx, f.request(
		LineRequest{Product: p.ID, Quantity: 1},
		LineRequest{Product: p.ID, Quantity: 1},
		LineRequest{Product: p.ID, Quantity: 1},
	))
	require.NoError(t, err)
	stuck := o.OrderItems[1]
	f.repo.failDeleteLine[stuck] = errBoom

	res, err := svc.DeleteOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{stuck}, res.FailedItems)
	assert.Equal(t, 3, f.repo.deleteLineCalls)

	left, _ := f.repo.GetLineItemsByIDs(ctx, o.OrderItems)
	require.Len(t, left, 1)
	assert.Equal(t, stuck, left[0].ID)

	_, err = svc.GetOrder(ctx, o.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func keys(m map[string]interface{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
