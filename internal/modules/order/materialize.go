package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/georgemunganga/eshop-backend/internal/platform/store"
)

// line is a persisted line item and its contribution to the order total.
type line struct {
	ID           string
	Contribution decimal.Decimal
}

type materializer struct {
	repo        Repository
	prices      PriceResolver
	concurrency int
}

// materialize resolves prices and persists one line item per cart entry,
// concurrently. The result has the same order as items. Once any entry
// fails, entries that have not started yet are skipped.
//
// On failure the returned slice still holds every line item that was
// persisted before the group stopped (entries with an empty ID were not
// created), so the caller can report or remove them.
func (m *materializer) materialize(ctx context.Context, items []LineRequest) ([]line, error) {
	lines := make([]line, len(items))

	g, gctx := errgroup.WithContext(ctx)
	if m.concurrency > 0 {
		g.SetLimit(m.concurrency)
	}
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			price, err := m.prices.Resolve(gctx, item.Product)
			if errors.Is(err, store.ErrNotFound) {
				return invalid("unknown product %s", item.Product)
			}
			if err != nil {
				return err
			}

			if err := gctx.Err(); err != nil {
				return err
			}
			li := &LineItem{Product: item.Product, Quantity: item.Quantity}
			if err := m.repo.CreateLineItem(gctx, li); err != nil {
				return fmt.Errorf("persist line item: %w", err)
			}
			lines[i] = line{ID: li.ID, Contribution: price.Mul(decimal.NewFromInt(int64(item.Quantity)))}
			return nil
		})
	}
	return lines, g.Wait()
}

// created returns the ids of the line items that were persisted.
func created(lines []line) []string {
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		if l.ID != "" {
			ids = append(ids, l.ID)
		}
	}
	return ids
}
