package order

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// PriceResolver looks up the authoritative unit price of a product. It never
// accepts a price from the caller.
type PriceResolver struct {
	products ProductReader
}

func NewPriceResolver(products ProductReader) PriceResolver {
	return PriceResolver{products: products}
}

// Resolve returns the current price of productID. A missing product yields
// an error wrapping store.ErrNotFound.
func (p PriceResolver) Resolve(ctx context.Context, productID string) (decimal.Decimal, error) {
	product, err := p.products.GetProduct(ctx, productID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("resolve price of %s: %w", productID, err)
	}
	return decimal.NewFromFloat(product.Price), nil
}
