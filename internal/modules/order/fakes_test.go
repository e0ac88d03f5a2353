package order

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/georgemunganga/eshop-backend/internal/modules/catalog"
	"github.com/georgemunganga/eshop-backend/internal/modules/user"
	"github.com/georgemunganga/eshop-backend/internal/platform/events"
	"github.com/georgemunganga/eshop-backend/internal/platform/store"
)

var errBoom = errors.New("boom")

// memRepo is an in-memory Repository with failure injection.
type memRepo struct {
	mu        sync.Mutex
	lineItems map[string]*LineItem
	orders    map[string]*Order

	failCreateOrder error
	failDeleteLine  map[string]error
	deleteLineCalls int
}

func newMemRepo() *memRepo {
	return &memRepo{
		lineItems:      map[string]*LineItem{},
		orders:         map[string]*Order{},
		failDeleteLine: map[string]error{},
	}
}

func (m *memRepo) CreateLineItem(_ context.Context, li *LineItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	li.ID = store.NewID()
	cp := *li
	m.lineItems[li.ID] = &cp
	return nil
}

func (m *memRepo) GetLineItemsByIDs(_ context.Context, ids []string) ([]*LineItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*LineItem{}
	for _, id := range ids {
		if li, ok := m.lineItems[id]; ok {
			cp := *li
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memRepo) DeleteLineItem(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteLineCalls++
	if err := m.failDeleteLine[id]; err != nil {
		return err
	}
	if _, ok := m.lineItems[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.lineItems, id)
	return nil
}

func (m *memRepo) CreateOrder(_ context.Context, o *Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreateOrder != nil {
		return m.failCreateOrder
	}
	o.ID = store.NewID()
	m.orders[o.ID] = cloneOrder(o)
	return nil
}

func (m *memRepo) GetOrder(_ context.Context, id string) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.orders[id]; ok {
		return cloneOrder(o), nil
	}
	return nil, store.ErrNotFound
}

func (m *memRepo) ListOrders(_ context.Context) ([]*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*Order{}
	for _, o := range m.orders {
		out = append(out, cloneOrder(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateOrdered.After(out[j].DateOrdered) })
	return out, nil
}

func (m *memRepo) UpdateStatus(_ context.Context, id, status string) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	o.Status = status
	return cloneOrder(o), nil
}

func (m *memRepo) DeleteOrder(_ context.Context, id string) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	delete(m.orders, id)
	return o, nil
}

func (m *memRepo) CountOrders(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.orders)), nil
}

func (m *memRepo) TotalSales(_ context.Context) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum float64
	for _, o := range m.orders {
		sum += o.TotalPrice
	}
	return sum, nil
}

func (m *memRepo) lineItemCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.lineItems)
}

func cloneOrder(o *Order) *Order {
	cp := *o
	cp.OrderItems = append([]string(nil), o.OrderItems...)
	return &cp
}

// fakeCatalog serves products and categories; delay slows individual
// product lookups so completion order differs from submission order.
type fakeCatalog struct {
	products   map[string]*catalog.Product
	categories map[string]*catalog.Category
	delay      map[string]time.Duration
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		products:   map[string]*catalog.Product{},
		categories: map[string]*catalog.Category{},
		delay:      map[string]time.Duration{},
	}
}

func (f *fakeCatalog) addCategory(name string) *catalog.Category {
	c := &catalog.Category{ID: store.NewID(), Name: name}
	f.categories[c.ID] = c
	return c
}

func (f *fakeCatalog) addProduct(name string, price float64, category *catalog.Category) *catalog.Product {
	p := &catalog.Product{ID: store.NewID(), Name: name, Price: price, Images: []string{}}
	if category != nil {
		p.Category = category.ID
	}
	f.products[p.ID] = p
	return p
}

func (f *fakeCatalog) GetProduct(ctx context.Context, id string) (*catalog.Product, error) {
	if d := f.delay[id]; d > 0 {
		time.Sleep(d)
	}
	if p, ok := f.products[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeCatalog) GetProductsByIDs(_ context.Context, ids []string) ([]*catalog.Product, error) {
	out := []*catalog.Product{}
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeCatalog) GetCategoriesByIDs(_ context.Context, ids []string) ([]*catalog.Category, error) {
	out := []*catalog.Category{}
	for _, id := range ids {
		if c, ok := f.categories[id]; ok {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeUsers map[string]*user.User

func (f fakeUsers) GetByIDs(_ context.Context, ids []string) ([]*user.User, error) {
	out := []*user.User{}
	for _, id := range ids {
		if u, ok := f[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}
