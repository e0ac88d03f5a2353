package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/georgemunganga/eshop-backend/internal/platform/store"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const orderColumns = `id, order_items, shipping_address1, shipping_address2, city, zip, country,
	phone, status, total_price, user_id, date_ordered`

// ── line items ───────────────────────────────────────────────────────────────

func (r *postgresRepo) CreateLineItem(ctx context.Context, li *LineItem) error {
	id := store.NewID()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO order_items (id, product_id, quantity) VALUES ($1, $2, $3)`,
		id, li.Product, li.Quantity)
	if err != nil {
		return fmt.Errorf("insert order_item: %w", err)
	}
	li.ID = id
	return nil
}

func (r *postgresRepo) GetLineItemsByIDs(ctx context.Context, ids []string) ([]*LineItem, error) {
	if len(ids) == 0 {
		return []*LineItem{}, nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, product_id, quantity FROM order_items WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*LineItem{}
	for rows.Next() {
		li := &LineItem{}
		if err := rows.Scan(&li.ID, &li.Product, &li.Quantity); err != nil {
			return nil, err
		}
		items = append(items, li)
	}
	return items, rows.Err()
}

func (r *postgresRepo) DeleteLineItem(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM order_items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ── orders ───────────────────────────────────────────────────────────────────

func (r *postgresRepo) CreateOrder(ctx context.Context, o *Order) error {
	id := store.NewID()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		id, pq.Array(o.OrderItems), o.ShippingAddress1, o.ShippingAddress2, o.City, o.Zip,
		o.Country, o.Phone, o.Status, o.TotalPrice, o.User, o.DateOrdered)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	o.ID = id
	return nil
}

func scanOrder(scan func(...interface{}) error) (*Order, error) {
	o := &Order{}
	err := scan(
		&o.ID, pq.Array(&o.OrderItems), &o.ShippingAddress1, &o.ShippingAddress2,
		&o.City, &o.Zip, &o.Country, &o.Phone, &o.Status, &o.TotalPrice,
		&o.User, &o.DateOrdered)
	if err != nil {
		return nil, err
	}
	if o.OrderItems == nil {
		o.OrderItems = []string{}
	}
	o.DateOrdered = o.DateOrdered.UTC()
	return o, nil
}

func (r *postgresRepo) GetOrder(ctx context.Context, id string) (*Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id).Scan)
	return o, noRows(err)
}

func (r *postgresRepo) ListOrders(ctx context.Context) ([]*Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders ORDER BY date_ordered DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []*Order{}
	for rows.Next() {
		o, err := scanOrder(rows.Scan)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id, status string) (*Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx,
		`UPDATE orders SET status = $1 WHERE id = $2 RETURNING `+orderColumns, status, id).Scan)
	return o, noRows(err)
}

func (r *postgresRepo) DeleteOrder(ctx context.Context, id string) (*Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx,
		`DELETE FROM orders WHERE id = $1 RETURNING `+orderColumns, id).Scan)
	return o, noRows(err)
}

func (r *postgresRepo) CountOrders(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&n)
	return n, err
}

func (r *postgresRepo) TotalSales(ctx context.Context) (float64, error) {
	var total float64
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(total_price), 0) FROM orders`).Scan(&total)
	return total, err
}

// ── helpers ──────────────────────────────────────────────────────────────────

func noRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}
