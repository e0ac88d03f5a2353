package order

import (
	"context"
	"strings"
	"time"

	"github.com/georgemunganga/eshop-backend/internal/platform/events"
	"github.com/georgemunganga/eshop-backend/internal/platform/logging"
	"github.com/georgemunganga/eshop-backend/internal/platform/store"
)

// DefaultMaxLineQuantity caps the quantity of a single cart entry.
const DefaultMaxLineQuantity = 10000

// Service defines the order lifecycle business logic.
type Service interface {
	// PlaceOrder materializes the cart into line items, prices them from the
	// catalog and persists the order referencing them.
	PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*Order, error)

	// GetOrder returns one order with line items, full products, categories
	// and the user name expanded.
	GetOrder(ctx context.Context, id string) (*OrderView, error)

	// ListOrders returns every order, newest first, with product id, price
	// and category expanded.
	ListOrders(ctx context.Context) ([]*OrderView, error)

	CountOrders(ctx context.Context) (int64, error)
	TotalSales(ctx context.Context) (float64, error)

	// UpdateStatus changes the status only; no other field is writable.
	UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (*Order, error)

	// DeleteOrder removes the order and then each of its line items.
	DeleteOrder(ctx context.Context, id string) (*DeleteResult, error)
}

// Option configures the order service.
type Option func(*service)

// WithPublisher sends lifecycle events to p.
func WithPublisher(p events.Publisher) Option {
	return func(s *service) { s.publisher = p }
}

// WithMaxLineQuantity sets the largest quantity accepted for one cart entry.
func WithMaxLineQuantity(n int) Option {
	return func(s *service) {
		if n > 0 {
			s.maxQuantity = n
		}
	}
}

// WithCompensation makes PlaceOrder delete the line items it already
// created when a later step fails.
func WithCompensation(enabled bool) Option {
	return func(s *service) { s.compensate = enabled }
}

// WithConcurrency bounds the per-request fan-out over line items.
func WithConcurrency(n int) Option {
	return func(s *service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

func withClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

type service struct {
	repo        Repository
	publisher   events.Publisher
	maxQuantity int
	compensate  bool
	concurrency int
	now         func() time.Time

	lines   *materializer
	orders  *aggregator
	reader  *hydrator
	cascade *cascader
}

// NewService creates a new order service.
func NewService(repo Repository, products ProductReader, users UserReader, opts ...Option) Service {
	s := &service{
		repo:        repo,
		publisher:   events.Noop{},
		maxQuantity: DefaultMaxLineQuantity,
		concurrency: 8,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.lines = &materializer{repo: repo, prices: NewPriceResolver(products), concurrency: s.concurrency}
	s.orders = &aggregator{repo: repo}
	s.reader = &hydrator{repo: repo, products: products, users: users}
	s.cascade = &cascader{repo: repo, concurrency: s.concurrency}
	return s
}

func (s *service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*Order, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	start := time.Now()

	lines, err := s.lines.materialize(ctx, req.OrderItems)
	if err != nil {
		s.abandon(ctx, "materialize", lines, err)
		return nil, err
	}

	o := &Order{
		ShippingAddress1: strings.TrimSpace(req.ShippingAddress1),
		ShippingAddress2: strings.TrimSpace(req.ShippingAddress2),
		City:             strings.TrimSpace(req.City),
		Zip:              strings.TrimSpace(req.Zip),
		Country:          strings.TrimSpace(req.Country),
		Phone:            strings.TrimSpace(req.Phone),
		Status:           DefaultStatus,
		User:             req.User,
		DateOrdered:      s.now().UTC().Truncate(time.Millisecond),
	}
	if st := strings.TrimSpace(req.Status); st != "" {
		o.Status = st
	}
	if req.DateOrdered != nil && !req.DateOrdered.IsZero() {
		o.DateOrdered = req.DateOrdered.UTC().Truncate(time.Millisecond)
	}

	if err := s.orders.aggregate(ctx, o, lines); err != nil {
		s.abandon(ctx, "aggregate", lines, err)
		return nil, err
	}

	logging.Log(logging.Fields{
		Service:    "order",
		OrderID:    o.ID,
		Step:       "place",
		Status:     "ok",
		Items:      len(lines),
		DurationMS: logging.Since(start),
	})
	s.publish(ctx, events.New(events.OrderCreated, o.ID, map[string]any{
		"user":       o.User,
		"totalPrice": o.TotalPrice,
		"orderItems": o.OrderItems,
	}))
	return o, nil
}

// validate checks the whole request before anything is written.
func (s *service) validate(req PlaceOrderRequest) error {
	if len(req.OrderItems) == 0 {
		return invalid("orderItems must contain at least one entry")
	}
	for i, item := range req.OrderItems {
		if !store.IsValidID(item.Product) {
			return invalid("orderItems[%d]: invalid product id %q", i, item.Product)
		}
		if item.Quantity < 1 || item.Quantity > s.maxQuantity {
			return invalid("orderItems[%d]: quantity must be between 1 and %d", i, s.maxQuantity)
		}
	}
	if !store.IsValidID(req.User) {
		return invalid("invalid user id %q", req.User)
	}
	required := []struct{ name, value string }{
		{"shippingAddress1", req.ShippingAddress1},
		{"city", req.City},
		{"zip", req.Zip},
		{"country", req.Country},
		{"phone", req.Phone},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return invalid("%s is required", f.name)
		}
	}
	return nil
}

// abandon records the line items a failed creation left behind and, when
// compensation is on, removes them.
func (s *service) abandon(ctx context.Context, step string, lines []line, cause error) {
	orphans := created(lines)
	f := logging.Fields{
		Service: "order",
		Step:    step,
		Status:  "failed",
		Orphans: orphans,
		Message: cause.Error(),
	}
	if s.compensate && len(orphans) > 0 {
		failed := s.cascade.deleteChildren(context.WithoutCancel(ctx), "", orphans)
		f.Status = "compensated"
		f.Orphans = failed
	}
	logging.Log(f)
}

func (s *service) GetOrder(ctx context.Context, id string) (*OrderView, error) {
	if !store.IsValidID(id) {
		return nil, ErrInvalidID
	}
	o, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := s.reader.hydrate(ctx, []*Order{o}, true)
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (s *service) ListOrders(ctx context.Context) ([]*OrderView, error) {
	orders, err := s.repo.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	return s.reader.hydrate(ctx, orders, false)
}

func (s *service) CountOrders(ctx context.Context) (int64, error) {
	return s.repo.CountOrders(ctx)
}

func (s *service) TotalSales(ctx context.Context) (float64, error) {
	return s.repo.TotalSales(ctx)
}

func (s *service) UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (*Order, error) {
	if !store.IsValidID(id) {
		return nil, ErrInvalidID
	}
	status := strings.TrimSpace(req.Status)
	if status == "" {
		return nil, invalid("status is required")
	}
	o, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.New(events.OrderStatusUpdated, o.ID, map[string]any{"status": o.Status}))
	return o, nil
}

func (s *service) DeleteOrder(ctx context.Context, id string) (*DeleteResult, error) {
	if !store.IsValidID(id) {
		return nil, ErrInvalidID
	}
	o, err := s.cascade.deleteParent(ctx, id)
	if err != nil {
		return nil, err
	}
	// The parent is gone; finish the children even if the client disconnects.
	failed := s.cascade.deleteChildren(context.WithoutCancel(ctx), o.ID, o.OrderItems)

	s.publish(ctx, events.New(events.OrderDeleted, o.ID, map[string]any{
		"orderItems":  o.OrderItems,
		"failedItems": failed,
	}))
	return &DeleteResult{Order: o, FailedItems: failed}, nil
}

// publish is best-effort: a broker failure never fails the request.
func (s *service) publish(ctx context.Context, e events.Event) {
	if err := s.publisher.Publish(context.WithoutCancel(ctx), e); err != nil {
		logging.Log(logging.Fields{
			Service: "order",
			OrderID: e.OrderID,
			Step:    "publish",
			Status:  "failed",
			Message: err.Error(),
		})
	}
}
