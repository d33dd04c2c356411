package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Publisher publishes events to a message broker.
type Publisher interface {
	PublishEvent(ctx context.Context, topic string, key string, event any) error
	Close() error
}

type OrderLine struct {
	OrderID      int64           `json:"order_id"`
	ProductID    int64           `json:"product_id"`
	ProductName  string          `json:"product_name"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	StockApplied bool            `json:"stock_applied"`
}

// OrdersPlaced is emitted once per successful checkout confirmation.
type OrdersPlaced struct {
	EventID    string          `json:"event_id"`
	BuyerID    string          `json:"buyer_id"`
	SessionID  string          `json:"session_id,omitempty"`
	Lines      []OrderLine     `json:"lines"`
	Total      decimal.Decimal `json:"total"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// Nop drops every event. Used when no broker is configured.
type Nop struct{}

func (Nop) PublishEvent(context.Context, string, string, any) error { return nil }
func (Nop) Close() error                                            { return nil }
