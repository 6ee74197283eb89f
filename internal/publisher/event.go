package publisher

import (
	"context"
	"time"

	"github.com/fjod/shoes_shop/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EventOrderSaved   = "order.saved"
	EventOrderDeleted = "order.deleted"
)

type Event struct {
	ID         uuid.UUID       `json:"event_id"`
	Type       string          `json:"event_type"`
	OrderID    int64           `json:"order_id"`
	Total      decimal.Decimal `json:"total"`
	ItemCount  int             `json:"item_count"`
	OccurredAt time.Time       `json:"occurred_at"`
}

func NewOrderSaved(order *domain.Order) Event {
	return Event{
		ID:         uuid.New(),
		Type:       EventOrderSaved,
		OrderID:    order.ID,
		Total:      order.Total(),
		ItemCount:  len(order.Items),
		OccurredAt: time.Now().UTC(),
	}
}

func NewOrderDeleted(orderID int64) Event {
	return Event{
		ID:         uuid.New(),
		Type:       EventOrderDeleted,
		OrderID:    orderID,
		Total:      decimal.Zero,
		OccurredAt: time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher drops events. It is used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }
