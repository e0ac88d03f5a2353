package order

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/georgemunganga/eshop-backend/internal/platform/logging"
	"github.com/georgemunganga/eshop-backend/internal/platform/store"
)

// DeleteResult reports a completed order deletion. FailedItems lists line
// items that could not be removed and are now unreferenced.
type DeleteResult struct {
	Order       *Order   `json:"-"`
	FailedItems []string `json:"failedItems,omitempty"`
}

type cascader struct {
	repo        Repository
	concurrency int
}

// deleteParent removes the order itself. Nothing else is touched when it fails.
func (c *cascader) deleteParent(ctx context.Context, id string) (*Order, error) {
	return c.repo.DeleteOrder(ctx, id)
}

// deleteChildren attempts every line item independently; one failure does
// not stop the others. An item that is already gone counts as deleted.
func (c *cascader) deleteChildren(ctx context.Context, orderID string, ids []string) []string {
	start := time.Now()
	errs := make([]error, len(ids))

	var g errgroup.Group
	if c.concurrency > 0 {
		g.SetLimit(c.concurrency)
	}
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			if err := c.repo.DeleteLineItem(ctx, id); err != nil && !errors.Is(err, store.ErrNotFound) {
				errs[i] = err
			}
			return nil
		})
	}
	g.Wait()

	var failed []string
	var firstErr error
	for i, err := range errs {
		if err != nil {
			failed = append(failed, ids[i])
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	f := logging.Fields{
		Service:    "order",
		OrderID:    orderID,
		Step:       "cascade",
		Status:     "ok",
		Items:      len(ids),
		DurationMS: logging.Since(start),
	}
	if len(failed) > 0 {
		f.Status = "partial"
		f.Orphans = failed
		f.Message = firstErr.Error()
	}
	logging.Log(f)
	return failed
}
