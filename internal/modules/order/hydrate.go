package order

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/georgemunganga/eshop-backend/internal/modules/catalog"
	"github.com/georgemunganga/eshop-backend/internal/platform/store"
)

// OrderView is an order with its references expanded for reading.
// Dangling references are rendered as null.
type OrderView struct {
	ID               string      `json:"id"`
	OrderItems       []*LineView `json:"orderItems"`
	ShippingAddress1 string      `json:"shippingAddress1"`
	ShippingAddress2 string      `json:"shippingAddress2"`
	City             string      `json:"city"`
	Zip              string      `json:"zip"`
	Country          string      `json:"country"`
	Phone            string      `json:"phone"`
	Status           string      `json:"status"`
	TotalPrice       float64     `json:"totalPrice"`
	User             *UserRef    `json:"user"`
	DateOrdered      time.Time   `json:"dateOrdered"`
}

type LineView struct {
	ID       string       `json:"id"`
	Product  *ProductView `json:"product"`
	Quantity int          `json:"quantity"`
}

// ProductView carries the full product on single-order reads and only
// id, price and category on list reads, where the embedded Product is nil.
type ProductView struct {
	*catalog.Product
	ID       string            `json:"id"`
	Price    float64           `json:"price"`
	Category *catalog.Category `json:"category"`
}

type UserRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type hydrator struct {
	repo     Repository
	products ProductReader
	users    UserReader
}

// hydrate expands orders with one batch lookup per referenced collection.
// full selects the single-order product shape.
func (h *hydrator) hydrate(ctx context.Context, orders []*Order, full bool) ([]*OrderView, error) {
	var lineIDs, userIDs []string
	for _, o := range orders {
		lineIDs = append(lineIDs, o.OrderItems...)
		userIDs = append(userIDs, o.User)
	}

	var (
		lines = map[string]*LineItem{}
		users = map[string]*UserRef{}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		found, err := h.repo.GetLineItemsByIDs(gctx, store.Unique(lineIDs))
		for _, li := range found {
			lines[li.ID] = li
		}
		return err
	})
	g.Go(func() error {
		found, err := h.users.GetByIDs(gctx, store.Unique(userIDs))
		for _, u := range found {
			users[u.ID] = &UserRef{ID: u.ID, Name: u.Name}
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	productIDs := make([]string, 0, len(lines))
	for _, li := range lines {
		productIDs = append(productIDs, li.Product)
	}
	products, err := h.productViews(ctx, store.Unique(productIDs), full)
	if err != nil {
		return nil, err
	}

	views := make([]*OrderView, 0, len(orders))
	for _, o := range orders {
		v := &OrderView{
			ID:               o.ID,
			OrderItems:       make([]*LineView, 0, len(o.OrderItems)),
			ShippingAddress1: o.ShippingAddress1,
			ShippingAddress2: o.ShippingAddress2,
			City:             o.City,
			Zip:              o.Zip,
			Country:          o.Country,
			Phone:            o.Phone,
			Status:           o.Status,
			TotalPrice:       o.TotalPrice,
			User:             users[o.User],
			DateOrdered:      o.DateOrdered,
		}
		for _, id := range o.OrderItems {
			li, ok := lines[id]
			if !ok {
				v.OrderItems = append(v.OrderItems, nil)
				continue
			}
			v.OrderItems = append(v.OrderItems, &LineView{ID: li.ID, Product: products[li.Product], Quantity: li.Quantity})
		}
		views = append(views, v)
	}
	return views, nil
}

func (h *hydrator) productViews(ctx context.Context, ids []string, full bool) (map[string]*ProductView, error) {
	out := make(map[string]*ProductView, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	products, err := h.products.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	categoryIDs := make([]string, 0, len(products))
	for _, p := range products {
		categoryIDs = append(categoryIDs, p.Category)
	}
	categories := map[string]*catalog.Category{}
	if ids := store.Unique(categoryIDs); len(ids) > 0 {
		found, err := h.products.GetCategoriesByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, c := range found {
			categories[c.ID] = c
		}
	}

	for _, p := range products {
		v := &ProductView{ID: p.ID, Price: p.Price, Category: categories[p.Category]}
		if full {
			v.Product = p
		}
		out[p.ID] = v
	}
	return out, nil
}
