package order

import (
	"context"

	"github.com/georgemunganga/eshop-backend/internal/modules/catalog"
	"github.com/georgemunganga/eshop-backend/internal/modules/user"
)

// Repository defines data access for orders and their line items. Every
// write touches a single document; there are no multi-document transactions.
type Repository interface {
	CreateLineItem(ctx context.Context, li *LineItem) error
	// GetLineItemsByIDs returns the line items that exist among ids, in no particular order.
	GetLineItemsByIDs(ctx context.Context, ids []string) ([]*LineItem, error)
	DeleteLineItem(ctx context.Context, id string) error

	CreateOrder(ctx context.Context, o *Order) error
	GetOrder(ctx context.Context, id string) (*Order, error)
	// ListOrders returns every order, newest dateOrdered first.
	ListOrders(ctx context.Context) ([]*Order, error)
	// UpdateStatus sets the status and returns the updated order.
	UpdateStatus(ctx context.Context, id, status string) (*Order, error)
	// DeleteOrder removes the order and returns it as it was before removal.
	DeleteOrder(ctx context.Context, id string) (*Order, error)
	CountOrders(ctx context.Context) (int64, error)
	// TotalSales sums totalPrice across all orders; 0 when there are none.
	TotalSales(ctx context.Context) (float64, error)
}

// ProductReader is the slice of the catalog the order module reads.
// catalog.Repository satisfies it.
type ProductReader interface {
	GetProduct(ctx context.Context, id string) (*catalog.Product, error)
	GetProductsByIDs(ctx context.Context, ids []string) ([]*catalog.Product, error)
	GetCategoriesByIDs(ctx context.Context, ids []string) ([]*catalog.Category, error)
}

// UserReader resolves order owners. user.Repository satisfies it.
type UserReader interface {
	GetByIDs(ctx context.Context, ids []string) ([]*user.User, error)
}
