package order

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

type aggregator struct {
	repo Repository
}

// total sums the line contributions without rounding.
func total(lines []line) float64 {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Contribution)
	}
	return sum.InexactFloat64()
}

// aggregate persists o referencing lines in their original order with the
// computed total.
func (a *aggregator) aggregate(ctx context.Context, o *Order, lines []line) error {
	o.OrderItems = make([]string, len(lines))
	for i, l := range lines {
		o.OrderItems[i] = l.ID
	}
	o.TotalPrice = total(lines)
	if err := a.repo.CreateOrder(ctx, o); err != nil {
		return fmt.Errorf("persist order: %w", err)
	}
	return nil
}
