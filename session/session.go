package session

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("checkout session not found")

// Line is the cart line as it was priced when the shopper was sent to pay.
type Line struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// Checkout is the snapshot behind one payment-gateway session. Only the latest
// snapshot per user is kept and it expires after the store's TTL.
type Checkout struct {
	ID         string    `json:"id"`
	GatewayRef string    `json:"gateway_ref"`
	UserID     string    `json:"user_id"`
	Lines      []Line    `json:"lines"`
	CreatedAt  time.Time `json:"created_at"`
}

func (c Checkout) Line(productID int64) (Line, bool) {
	for _, l := range c.Lines {
		if l.ProductID == productID {
			return l, true
		}
	}
	return Line{}, false
}

type Store interface {
	Save(ctx context.Context, c Checkout) error
	Get(ctx context.Context, userID string) (Checkout, error)
	Delete(ctx context.Context, userID string) error
}
