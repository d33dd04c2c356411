package payment

import (
	"context"
	"errors"
)

var ErrUnavailable = errors.New("payment gateway unavailable")

// LineItem is one priced row of a checkout session. UnitAmount is in minor
// currency units.
type LineItem struct {
	Currency   string
	UnitAmount int64
	Name       string
	Quantity   int64
}

type SessionRequest struct {
	ClientReference string
	LineItems       []LineItem
	SuccessURL      string
	CancelURL       string
}

// Session is the provider's answer: where to send the shopper and the
// provider-side handle for the session.
type Session struct {
	ID  string
	URL string
}

type Gateway interface {
	CreateSession(ctx context.Context, req SessionRequest) (Session, error)
}
