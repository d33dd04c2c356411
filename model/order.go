package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is one purchased cart line. Orders are never updated once inserted.
type Order struct {
	ID           int64           `json:"id"`
	BuyerID      string          `json:"buyer_id"`
	BuyerName    string          `json:"buyer_name"`
	ProductID    int64           `json:"product_id"`
	ProductName  string          `json:"product_name"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	StockApplied bool            `json:"stock_applied"`
	SessionID    string          `json:"session_id,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Total is UnitPrice * Quantity.
func (o Order) Total() decimal.Decimal {
	return o.UnitPrice.Mul(decimal.NewFromInt(int64(o.Quantity)))
}
