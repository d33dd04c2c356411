package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"

	models "storefront/model"
	"storefront/store"
)

// AddToCart adds count units of a product to the caller's cart. Repeated adds
// for the same product accumulate; the running total may never exceed stock.
func (s *Service) AddToCart(ctx context.Context, p models.Principal, productID int64, count int) error {
	if err := requireUser(p); err != nil {
		return err
	}
	if count <= 0 {
		return models.Validation("Count must be greater than 0.")
	}

	err := s.store.Do(ctx, p.ID, func(tx store.Tx) error {
		prod, err := tx.Products().GetProduct(ctx, productID)
		if err != nil {
			return notFound(err, "Product not found.")
		}
		if count > prod.Stock {
			return s.stockConflict("Requested quantity exceeds available stock.")
		}

		line, err := tx.Cart().GetLine(ctx, p.ID, productID)
		if errors.Is(err, store.ErrNotFound) {
			return tx.Cart().InsertLine(ctx, models.CartLine{UserID: p.ID, ProductID: productID, Quantity: count})
		}
		if err != nil {
			return err
		}
		if line.Quantity+count > prod.Stock {
			return s.stockConflict("Total cart quantity exceeds available stock.")
		}
		line.Quantity += count
		return tx.Cart().UpdateLine(ctx, line)
	})
	if err != nil {
		return fail(err, "An error occurred while adding the product to the cart.")
	}
	slog.Debug("cart line added", "user_id", p.ID, "product_id", productID, "count", count)
	return nil
}

// GetItems returns the caller's cart. An empty cart is not an error.
func (s *Service) GetItems(ctx context.Context, p models.Principal) (CartView, error) {
	if err := requireUser(p); err != nil {
		return CartView{}, err
	}
	items, err := s.store.Cart().ListLines(ctx, p.ID)
	if err != nil {
		return CartView{}, fail(err, "An error occurred while retrieving the cart items.")
	}

	view := CartView{Items: make([]CartLineView, 0, len(items)), Total: decimal.Zero}
	for _, it := range items {
		line := CartLineView{CartItem: it, Subtotal: decimal.Zero}
		if it.Product != nil {
			line.Subtotal = it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		}
		view.Total = view.Total.Add(line.Subtotal)
		view.Items = append(view.Items, line)
	}
	return view, nil
}

func (s *Service) Increment(ctx context.Context, p models.Principal, productID int64) error {
	if err := requireUser(p); err != nil {
		return err
	}
	err := s.store.Do(ctx, p.ID, func(tx store.Tx) error {
		line, err := tx.Cart().GetLine(ctx, p.ID, productID)
		if err != nil {
			return notFound(err, "Cart item or product not found.")
		}
		prod, err := tx.Products().GetProduct(ctx, productID)
		if err != nil {
			return notFound(err, "Cart item or product not found.")
		}
		if line.Quantity+1 > prod.Stock {
			return s.stockConflict("Cannot exceed available stock.")
		}
		line.Quantity++
		return tx.Cart().UpdateLine(ctx, line)
	})
	return fail(err, "An error occurred while incrementing the cart item.")
}

// Decrement lowers a line by one and deletes it when it reaches zero.
func (s *Service) Decrement(ctx context.Context, p models.Principal, productID int64) error {
	if err := requireUser(p); err != nil {
		return err
	}
	err := s.store.Do(ctx, p.ID, func(tx store.Tx) error {
		line, err := tx.Cart().GetLine(ctx, p.ID, productID)
		if err != nil {
			return notFound(err, "Cart item not found.")
		}
		if line.Quantity <= 1 {
			return tx.Cart().DeleteLine(ctx, p.ID, productID)
		}
		line.Quantity--
		return tx.Cart().UpdateLine(ctx, line)
	})
	return fail(err, "An error occurred while decrementing the cart item.")
}

func (s *Service) Remove(ctx context.Context, p models.Principal, productID int64) error {
	if err := requireUser(p); err != nil {
		return err
	}
	err := s.store.Do(ctx, p.ID, func(tx store.Tx) error {
		return notFound(tx.Cart().DeleteLine(ctx, p.ID, productID), "Cart item not found.")
	})
	return fail(err, "An error occurred while deleting the cart item.")
}
