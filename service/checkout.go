package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	models "storefront/model"
	"storefront/payment"
	"storefront/session"
)

// BuildSession prices the caller's cart for the payment gateway and returns
// the gateway's redirect URL. The cart and inventory are not touched.
func (s *Service) BuildSession(ctx context.Context, p models.Principal) (string, error) {
	if err := requireUser(p); err != nil {
		return "", err
	}
	items, err := s.store.Cart().ListLines(ctx, p.ID)
	if err != nil {
		return "", fail(err, "An error occurred while preparing the payment.")
	}
	if len(items) == 0 {
		return "", models.Validation("No items in the cart to pay for.")
	}

	req := payment.SessionRequest{
		ClientReference: uuid.NewString(),
		LineItems:       make([]payment.LineItem, 0, len(items)),
		SuccessURL:      s.settings.SuccessURL,
		CancelURL:       s.settings.CancelURL,
	}
	snap := session.Checkout{ID: req.ClientReference, UserID: p.ID, CreatedAt: s.now()}
	for _, it := range items {
		if it.Product == nil {
			return "", models.NotFound("Product %d in the cart no longer exists.", it.ProductID)
		}
		if it.Product.Price.IsNegative() {
			return "", models.Validation("Invalid product price.")
		}
		req.LineItems = append(req.LineItems, payment.LineItem{
			Currency:   s.settings.Currency,
			UnitAmount: models.MinorUnits(it.Product.Price),
			Name:       it.Product.Name,
			Quantity:   int64(it.Quantity),
		})
		snap.Lines = append(snap.Lines, session.Line{
			ProductID: it.ProductID,
			Name:      it.Product.Name,
			UnitPrice: it.Product.Price,
			Quantity:  it.Quantity,
		})
	}

	sess, err := s.gateway.CreateSession(ctx, req)
	if err != nil {
		return "", models.Gateway(err, "The payment provider is unavailable, try again later.")
	}
	snap.GatewayRef = sess.ID

	if s.sessions != nil {
		if err := s.sessions.Save(ctx, snap); err != nil {
			slog.Warn("save checkout snapshot failed", "user_id", p.ID, "session_id", snap.ID, "err", err)
		}
	}
	s.metrics.SessionCreated()
	slog.Info("checkout session created", "user_id", p.ID, "session_id", snap.ID, "lines", len(snap.Lines))
	return sess.URL, nil
}
