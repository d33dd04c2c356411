package store

import (
	"context"
	"fmt"

	models "storefront/model"
)

const orderSelect = `
	SELECT id, buyer_id, buyer_name, product_id, product_name, quantity, unit_price, stock_applied, session_id, created_at
	FROM orders`

type orderRepo struct {
	q queryer
}

// InsertOrder writes o and sets its id.
func (r orderRepo) InsertOrder(ctx context.Context, o *models.Order) error {
	err := r.q.QueryRowContext(ctx, `
		INSERT INTO orders (buyer_id, buyer_name, product_id, product_name, quantity, unit_price, stock_applied, session_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		o.BuyerID, o.BuyerName, o.ProductID, o.ProductName, o.Quantity, o.UnitPrice, o.StockApplied, o.SessionID, o.CreatedAt,
	).Scan(&o.ID)
	return translate(err, "insert order")
}

func (r orderRepo) ListOrders(ctx context.Context, buyerID string) ([]models.Order, error) {
	return r.list(ctx, orderSelect+` WHERE buyer_id = $1 ORDER BY created_at DESC, id DESC`, buyerID)
}

func (r orderRepo) ListAllOrders(ctx context.Context) ([]models.Order, error) {
	return r.list(ctx, orderSelect+` ORDER BY created_at DESC, id DESC`)
}

func (r orderRepo) list(ctx context.Context, query string, args ...any) ([]models.Order, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()
	out := []models.Order{}
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.BuyerID, &o.BuyerName, &o.ProductID, &o.ProductName,
			&o.Quantity, &o.UnitPrice, &o.StockApplied, &o.SessionID, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
