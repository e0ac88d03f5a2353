package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"
)

// NewPostgres opens a pooled connection to dsn and applies the schema.
func NewPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open DB: %w", err)
	}

	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	log.Println("[DB] Connected to PostgreSQL successfully")
	return db, nil
}

// Records keep document semantics: ids are 24-hex strings and there are no
// foreign keys, so dangling references behave as they do in the document store.
const schema = `
CREATE TABLE IF NOT EXISTS categories (
    id    TEXT PRIMARY KEY,
    name  TEXT NOT NULL,
    icon  TEXT NOT NULL DEFAULT '',
    color TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS products (
    id               TEXT PRIMARY KEY,
    name             TEXT NOT NULL,
    description      TEXT NOT NULL DEFAULT '',
    rich_description TEXT NOT NULL DEFAULT '',
    image            TEXT NOT NULL DEFAULT '',
    images           TEXT[] NOT NULL DEFAULT '{}',
    brand            TEXT NOT NULL DEFAULT '',
    price            DOUBLE PRECISION NOT NULL DEFAULT 0,
    category_id      TEXT NOT NULL,
    count_in_stock   INTEGER NOT NULL DEFAULT 0,
    rating           DOUBLE PRECISION NOT NULL DEFAULT 0,
    num_reviews      INTEGER NOT NULL DEFAULT 0,
    is_featured      BOOLEAN NOT NULL DEFAULT FALSE,
    date_created     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_products_category ON products(category_id);

CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    name          TEXT NOT NULL,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    street        TEXT NOT NULL DEFAULT '',
    apartment     TEXT NOT NULL DEFAULT '',
    city          TEXT NOT NULL DEFAULT '',
    zip           TEXT NOT NULL DEFAULT '',
    country       TEXT NOT NULL DEFAULT '',
    phone         TEXT NOT NULL DEFAULT '',
    is_admin      BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS order_items (
    id         TEXT PRIMARY KEY,
    product_id TEXT NOT NULL,
    quantity   INTEGER NOT NULL CHECK (quantity > 0)
);

CREATE TABLE IF NOT EXISTS orders (
    id                TEXT PRIMARY KEY,
    order_items       TEXT[] NOT NULL,
    shipping_address1 TEXT NOT NULL,
    shipping_address2 TEXT NOT NULL DEFAULT '',
    city              TEXT NOT NULL,
    zip               TEXT NOT NULL,
    country           TEXT NOT NULL,
    phone             TEXT NOT NULL,
    status            TEXT NOT NULL DEFAULT 'Pending',
    total_price       DOUBLE PRECISION NOT NULL,
    user_id           TEXT NOT NULL,
    date_ordered      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_orders_date_ordered ON orders(date_ordered DESC);
`
