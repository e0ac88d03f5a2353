// Package events publishes order lifecycle notifications. Publishing is
// best-effort: callers log failures and carry on.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	OrderCreated       = "order.created"
	OrderStatusUpdated = "order.status_updated"
	OrderDeleted       = "order.deleted"
)

type Event struct {
	EventID    string         `json:"event_id"`
	Type       string         `json:"type"`
	OrderID    string         `json:"order_id"`
	OccurredAt time.Time      `json:"occurred_at"`
	Payload    map[string]any `json:"payload,omitempty"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType, orderID string, payload map[string]any) Event {
	return Event{
		EventID:    uuid.NewString(),
		Type:       eventType,
		OrderID:    orderID,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Noop discards every event. Used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }
