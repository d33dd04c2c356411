package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	models "storefront/model"
)

type cartRepo struct {
	q    queryer
	lock bool
}

func (r cartRepo) GetLine(ctx context.Context, userID string, productID int64) (models.CartLine, error) {
	query := `SELECT user_id, product_id, quantity FROM cart_lines WHERE user_id = $1 AND product_id = $2`
	if r.lock {
		query += ` FOR UPDATE`
	}
	var l models.CartLine
	err := r.q.QueryRowContext(ctx, query, userID, productID).Scan(&l.UserID, &l.ProductID, &l.Quantity)
	if err != nil {
		return models.CartLine{}, translate(err, fmt.Sprintf("cart line %d", productID))
	}
	return l, nil
}

// ListLines returns the user's lines with a snapshot of each product. The
// product side is a LEFT JOIN so a vanished product yields a nil Product.
func (r cartRepo) ListLines(ctx context.Context, userID string) ([]models.CartItem, error) {
	query := `
		SELECT l.user_id, l.product_id, l.quantity,
		       p.id, p.name, p.description, p.price, p.stock, p.category_id, p.created_at
		FROM cart_lines l
		LEFT JOIN products p ON p.id = l.product_id
		WHERE l.user_id = $1
		ORDER BY l.product_id`
	if r.lock {
		query += ` FOR UPDATE OF l`
	}
	rows, err := r.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart lines: %w", err)
	}
	defer rows.Close()

	out := []models.CartItem{}
	for rows.Next() {
		var (
			it       models.CartItem
			pid      sql.NullInt64
			name     sql.NullString
			desc     sql.NullString
			price    decimal.NullDecimal
			stock    sql.NullInt64
			category sql.NullInt64
			created  sql.NullTime
		)
		if err := rows.Scan(&it.UserID, &it.ProductID, &it.Quantity,
			&pid, &name, &desc, &price, &stock, &category, &created); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		if pid.Valid {
			it.Product = &models.Product{
				ID:          pid.Int64,
				Name:        name.String,
				Description: desc.String,
				Price:       price.Decimal,
				Stock:       int(stock.Int64),
				CategoryID:  category.Int64,
				CreatedAt:   created.Time,
			}
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r cartRepo) InsertLine(ctx context.Context, line models.CartLine) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO cart_lines (user_id, product_id, quantity) VALUES ($1, $2, $3)`,
		line.UserID, line.ProductID, line.Quantity)
	return translate(err, "insert cart line")
}

func (r cartRepo) UpdateLine(ctx context.Context, line models.CartLine) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE cart_lines SET quantity = $3 WHERE user_id = $1 AND product_id = $2`,
		line.UserID, line.ProductID, line.Quantity)
	return affectedOne(res, err, fmt.Sprintf("update cart line %d", line.ProductID))
}

func (r cartRepo) DeleteLine(ctx context.Context, userID string, productID int64) error {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM cart_lines WHERE user_id = $1 AND product_id = $2`, userID, productID)
	return affectedOne(res, err, fmt.Sprintf("delete cart line %d", productID))
}

func affectedOne(res sql.Result, err error, what string) error {
	if err != nil {
		return translate(err, what)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if ra == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}
