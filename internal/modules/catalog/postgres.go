package catalog

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

const productColumns = `id,name,description,rich_description,image,images,brand,price,category_id,
	count_in_stock,rating,num_reviews,is_featured,date_created`

// ── categories ───────────────────────────────────────────────────────────────

func (r *postgresRepo) CreateCategory(ctx context.Context, c *Category) error {
	c.ID = store.NewID()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (id, name, icon, color) VALUES ($1,$2,$3,$4)`,
		c.ID, c.Name, c.Icon, c.Color)
	return err
}

func (r *postgresRepo) GetCategory(ctx context.Context, id string) (*Category, error) {
	c := &Category{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, icon, color FROM categories WHERE id=$1`, id).
		Scan(&c.ID, &c.Name, &c.Icon, &c.Color)
	if err != nil {
		return nil, noRows(err)
	}
	return c, nil
}

func (r *postgresRepo) ListCategories(ctx context.Context) ([]*Category, error) {
	return r.queryCategories(ctx, `SELECT id, name, icon, color FROM categories ORDER BY name`)
}

func (r *postgresRepo) GetCategoriesByIDs(ctx context.Context, ids []string) ([]*Category, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.queryCategories(ctx,
		`SELECT id, name, icon, color FROM categories WHERE id = ANY($1)`, pq.Array(ids))
}

func (r *postgresRepo) queryCategories(ctx context.Context, query string, args ...interface{}) ([]*Category, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Category
	for rows.Next() {
		c := &Category{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Icon, &c.Color); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *postgresRepo) UpdateCategory(ctx context.Context, c *Category) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name=$1, icon=$2, color=$3 WHERE id=$4`,
		c.Name, c.Icon, c.Color, c.ID)
	return affected(res, err)
}

func (r *postgresRepo) DeleteCategory(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id=$1`, id)
	return affected(res, err)
}

// ── products ─────────────────────────────────────────────────────────────────

func (r *postgresRepo) CreateProduct(ctx context.Context, p *Product) error {
	p.ID = store.NewID()
	if p.Images == nil {
		p.Images = []string{}
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO products
		  (id, name, description, rich_description, image, images, brand, price, category_id,
		   count_in_stock, rating, num_reviews, is_featured)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING date_created`,
		p.ID, p.Name, p.Description, p.RichDescription, p.Image, pq.Array(p.Images), p.Brand,
		p.Price, p.Category, p.CountInStock, p.Rating, p.NumReviews, p.IsFeatured).
		Scan(&p.DateCreated)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func scanProduct(scan func(...interface{}) error) (*Product, error) {
	p := &Product{}
	var images []string
	err := scan(&p.ID, &p.Name, &p.Description, &p.RichDescription, &p.Image,
		pq.Array(&images), &p.Brand, &p.Price, &p.Category,
		&p.CountInStock, &p.Rating, &p.NumReviews, &p.IsFeatured, &p.DateCreated)
	if err != nil {
		return nil, err
	}
	if images == nil {
		images = []string{}
	}
	p.Images = images
	return p, nil
}

func (r *postgresRepo) GetProduct(ctx context.Context, id string) (*Product, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id)
	p, err := scanProduct(row.Scan)
	if err != nil {
		return nil, noRows(err)
	}
	return p, nil
}

func (r *postgresRepo) ListProducts(ctx context.Context, categoryIDs []string) ([]*Product, error) {
	if len(categoryIDs) > 0 {
		return r.queryProducts(ctx,
			`SELECT `+productColumns+` FROM products WHERE category_id = ANY($1) ORDER BY date_created DESC`,
			pq.Array(categoryIDs))
	}
	return r.queryProducts(ctx, `SELECT `+productColumns+` FROM products ORDER BY date_created DESC`)
}

func (r *postgresRepo) ListFeatured(ctx context.Context, limit int) ([]*Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE is_featured ORDER BY date_created DESC`
	if limit > 0 {
		return r.queryProducts(ctx, query+` LIMIT $1`, limit)
	}
	return r.queryProducts(ctx, query)
}

func (r *postgresRepo) GetProductsByIDs(ctx context.Context, ids []string) ([]*Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.queryProducts(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ANY($1)`, pq.Array(ids))
}

func (r *postgresRepo) queryProducts(ctx context.Context, query string, args ...interface{}) ([]*Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*Product
	for rows.Next() {
		p, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *postgresRepo) UpdateProduct(ctx context.Context, p *Product) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET name=$1, description=$2, rich_description=$3, image=$4, brand=$5, price=$6,
		    category_id=$7, count_in_stock=$8, rating=$9, num_reviews=$10, is_featured=$11
		WHERE id=$12`,
		p.Name, p.Description, p.RichDescription, p.Image, p.Brand, p.Price,
		p.Category, p.CountInStock, p.Rating, p.NumReviews, p.IsFeatured, p.ID)
	return affected(res, err)
}

func (r *postgresRepo) SetGallery(ctx context.Context, id string, images []string) (*Product, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE products SET images=$1 WHERE id=$2 RETURNING `+productColumns,
		pq.Array(images), id)
	p, err := scanProduct(row.Scan)
	if err != nil {
		return nil, noRows(err)
	}
	return p, nil
}

func (r *postgresRepo) DeleteProduct(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id=$1`, id)
	return affected(res, err)
}

func (r *postgresRepo) CountProducts(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n)
	return n, err
}

// ── helpers ──────────────────────────────────────────────────────────────────

func noRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func affected(res sql.Result, err error) error {
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
