package store

import (
	"context"
	"errors"
	"fmt"

	models "storefront/model"
)

// ErrInsufficientStock returned when requested qty exceeds available stock.
var ErrInsufficientStock = errors.New("insufficient stock")

const productSelect = `
	SELECT p.id, p.name, p.description, p.price, p.stock, p.category_id, p.created_at, c.name
	FROM products p
	JOIN categories c ON c.id = p.category_id`

type productRepo struct {
	q    queryer
	lock bool
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (models.Product, error) {
	var p models.Product
	var categoryName string
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.CategoryID, &p.CreatedAt, &categoryName); err != nil {
		return models.Product{}, err
	}
	p.Category = &models.Category{ID: p.CategoryID, Name: categoryName}
	return p, nil
}

func (r productRepo) GetProduct(ctx context.Context, id int64) (models.Product, error) {
	query := productSelect + ` WHERE p.id = $1`
	if r.lock {
		query += ` FOR UPDATE OF p`
	}
	p, err := scanProduct(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return models.Product{}, translate(err, fmt.Sprintf("product %d", id))
	}
	return p, nil
}

func (r productRepo) CountProducts(ctx context.Context, q ProductQuery) (int, error) {
	where, args, err := q.whereClause()
	if err != nil {
		return 0, err
	}
	var n int
	query := `SELECT COUNT(*) FROM products p JOIN categories c ON c.id = p.category_id` + where
	if err := r.q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

func (r productRepo) FindProducts(ctx context.Context, q ProductQuery) ([]models.Product, error) {
	where, args, err := q.whereClause()
	if err != nil {
		return nil, err
	}
	query := productSelect + where + ` ORDER BY p.id`
	if q.Limit > 0 {
		args = append(args, q.Limit, q.Offset)
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	defer rows.Close()
	out := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CreateProduct inserts a product and fills in its id and creation time.
func (r productRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	err := r.q.QueryRowContext(ctx,
		`INSERT INTO products (name, description, price, stock, category_id) VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`,
		p.Name, p.Description, p.Price, p.Stock, p.CategoryID,
	).Scan(&p.ID, &p.CreatedAt)
	return translate(err, "create product")
}

// DecrementStock subtracts qty only if at least qty units remain; the check
// and the write are one statement, so concurrent callers cannot oversell.
func (r productRepo) DecrementStock(ctx context.Context, id int64, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("decrement quantity must be > 0, got %d", qty)
	}
	res, err := r.q.ExecContext(ctx, `UPDATE products SET stock = stock - $1 WHERE id = $2 AND stock >= $1`, qty, id)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if ra > 0 {
		return nil
	}

	var exists bool
	if err := r.q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if !exists {
		return fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	return fmt.Errorf("product %d: %w", id, ErrInsufficientStock)
}

// SetStock sets the absolute stock for a product (admin operation).
func (r productRepo) SetStock(ctx context.Context, id int64, stock int) error {
	if stock < 0 {
		return errors.New("stock cannot be negative")
	}
	res, err := r.q.ExecContext(ctx, `UPDATE products SET stock = $1 WHERE id = $2`, stock, id)
	if err != nil {
		return fmt.Errorf("set stock: %w", err)
	}
	ra, _ := res.RowsAffected()
	if ra == 0 {
		return fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	return nil
}

type categoryRepo struct {
	q queryer
}

func (r categoryRepo) GetCategory(ctx context.Context, id int64) (models.Category, error) {
	var c models.Category
	err := r.q.QueryRowContext(ctx, `SELECT id, name FROM categories WHERE id = $1`, id).Scan(&c.ID, &c.Name)
	if err != nil {
		return models.Category{}, translate(err, fmt.Sprintf("category %d", id))
	}
	return c, nil
}

func (r categoryRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()
	out := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
