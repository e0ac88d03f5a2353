package catalog

import "context"

// Repository defines data access for categories and products.
type Repository interface {
	CreateCategory(ctx context.Context, c *Category) error
	GetCategory(ctx context.Context, id string) (*Category, error)
	ListCategories(ctx context.Context) ([]*Category, error)
	// GetCategoriesByIDs returns the categories that exist among ids, in no particular order.
	GetCategoriesByIDs(ctx context.Context, ids []string) ([]*Category, error)
	UpdateCategory(ctx context.Context, c *Category) error
	DeleteCategory(ctx context.Context, id string) error

	CreateProduct(ctx context.Context, p *Product) error
	GetProduct(ctx context.Context, id string) (*Product, error)
	// ListProducts returns every product, or only those in categoryIDs when non-empty.
	ListProducts(ctx context.Context, categoryIDs []string) ([]*Product, error)
	// ListFeatured returns featured products; limit <= 0 means no limit.
	ListFeatured(ctx context.Context, limit int) ([]*Product, error)
	// GetProductsByIDs returns the products that exist among ids, in no particular order.
	GetProductsByIDs(ctx context.Context, ids []string) ([]*Product, error)
	UpdateProduct(ctx context.Context, p *Product) error
	SetGallery(ctx context.Context, id string, images []string) (*Product, error)
	DeleteProduct(ctx context.Context, id string) error
	CountProducts(ctx context.Context) (int64, error)
}
