package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront/events"
	models "storefront/model"
	"storefront/session"
	"storefront/store"
)

// Confirm turns the caller's cart into orders after the gateway reported a
// successful payment. Orders, stock decrements and cart deletions commit
// together. Calling it again once the cart is drained returns no orders.
// Concurrent calls for one user share a single run: only the caller that
// started it gets the orders, joined callers get an empty list. The run is
// detached from the caller, so a caller going away does not abort it.
func (s *Service) Confirm(ctx context.Context, p models.Principal) ([]models.Order, error) {
	if err := requireUser(p); err != nil {
		return nil, err
	}
	started := false
	ch := s.confirms.DoChan(p.ID, func() (any, error) {
		started = true
		return s.confirm(context.WithoutCancel(ctx), p)
	})
	select {
	case <-ctx.Done():
		return nil, models.Unavailable(ctx.Err(), "The request was cancelled before it finished, try again.")
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if !started {
			return []models.Order{}, nil
		}
		return res.Val.([]models.Order), nil
	}
}

func (s *Service) confirm(ctx context.Context, p models.Principal) ([]models.Order, error) {
	snap := s.snapshot(ctx, p.ID)
	now := s.now()

	var orders []models.Order
	err := s.store.Do(ctx, p.ID, func(tx store.Tx) error {
		orders = nil
		items, err := tx.Cart().ListLines(ctx, p.ID)
		if err != nil {
			return err
		}
		for _, it := range items {
			o := newOrder(p, it, snap, now)
			switch err := tx.Products().DecrementStock(ctx, it.ProductID, it.Quantity); {
			case err == nil:
				o.StockApplied = true
			case errors.Is(err, store.ErrNotFound):
				slog.Warn("product gone at confirmation, order recorded without stock decrement",
					"user_id", p.ID, "product_id", it.ProductID, "session_id", snap.ID)
			case errors.Is(err, store.ErrInsufficientStock):
				return s.stockConflict("Not enough stock left for %s to complete the order.", o.ProductName)
			default:
				return err
			}
			if err := tx.Orders().InsertOrder(ctx, &o); err != nil {
				return err
			}
			if err := tx.Cart().DeleteLine(ctx, p.ID, it.ProductID); err != nil {
				return err
			}
			orders = append(orders, o)
		}
		return nil
	})
	if err != nil {
		return nil, fail(err, "An error occurred while confirming the payment.")
	}
	if len(orders) == 0 {
		return []models.Order{}, nil
	}

	if s.sessions != nil && snap.ID != "" {
		if err := s.sessions.Delete(ctx, p.ID); err != nil {
			slog.Warn("delete checkout snapshot failed", "user_id", p.ID, "session_id", snap.ID, "err", err)
		}
	}
	s.publishPlaced(ctx, p, snap.ID, orders)
	s.metrics.OrdersConfirmed(len(orders))
	slog.Info("checkout confirmed", "user_id", p.ID, "session_id", snap.ID, "orders", len(orders))
	return orders, nil
}

// snapshot returns the latest checkout snapshot for userID, or a zero
// Checkout when there is none.
func (s *Service) snapshot(ctx context.Context, userID string) session.Checkout {
	if s.sessions == nil {
		return session.Checkout{}
	}
	snap, err := s.sessions.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			slog.Warn("load checkout snapshot failed", "user_id", userID, "err", err)
		}
		return session.Checkout{}
	}
	return snap
}

// newOrder prices a cart line with what the shopper saw at checkout, falling
// back to the live product when the line was not part of the snapshot.
func newOrder(p models.Principal, it models.CartItem, snap session.Checkout, now time.Time) models.Order {
	o := models.Order{
		BuyerID:   p.ID,
		BuyerName: p.Name,
		ProductID: it.ProductID,
		Quantity:  it.Quantity,
		SessionID: snap.ID,
		CreatedAt: now,
	}
	if l, ok := snap.Line(it.ProductID); ok {
		o.ProductName = l.Name
		o.UnitPrice = l.UnitPrice
	} else if it.Product != nil {
		o.ProductName = it.Product.Name
		o.UnitPrice = it.Product.Price
	}
	if o.ProductName == "" {
		o.ProductName = fmt.Sprintf("product #%d", it.ProductID)
	}
	return o
}

func (s *Service) publishPlaced(ctx context.Context, p models.Principal, sessionID string, orders []models.Order) {
	ev := events.OrdersPlaced{
		EventID:    uuid.NewString(),
		BuyerID:    p.ID,
		SessionID:  sessionID,
		Lines:      make([]events.OrderLine, 0, len(orders)),
		Total:      decimal.Zero,
		OccurredAt: s.now(),
	}
	for _, o := range orders {
		ev.Lines = append(ev.Lines, events.OrderLine{
			OrderID:      o.ID,
			ProductID:    o.ProductID,
			ProductName:  o.ProductName,
			Quantity:     o.Quantity,
			UnitPrice:    o.UnitPrice,
			StockApplied: o.StockApplied,
		})
		ev.Total = ev.Total.Add(o.Total())
	}
	if err := s.events.PublishEvent(ctx, s.settings.OrdersTopic, p.ID, ev); err != nil {
		slog.Warn("publish orders placed failed", "user_id", p.ID, "event_id", ev.EventID, "err", err)
	}
}
