package store

import (
	"context"
	"errors"

	models "storefront/model"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
	ErrCommit   = errors.New("commit failed")
)

// ProductStore never exposes a free-form stock write: stock moves through
// DecrementStock (checkout) or SetStock (admin).
type ProductStore interface {
	GetProduct(ctx context.Context, id int64) (models.Product, error)
	CountProducts(ctx context.Context, q ProductQuery) (int, error)
	FindProducts(ctx context.Context, q ProductQuery) ([]models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	DecrementStock(ctx context.Context, id int64, qty int) error
	SetStock(ctx context.Context, id int64, stock int) error
}

type CategoryStore interface {
	GetCategory(ctx context.Context, id int64) (models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
}

type CartStore interface {
	GetLine(ctx context.Context, userID string, productID int64) (models.CartLine, error)
	ListLines(ctx context.Context, userID string) ([]models.CartItem, error)
	InsertLine(ctx context.Context, line models.CartLine) error
	UpdateLine(ctx context.Context, line models.CartLine) error
	DeleteLine(ctx context.Context, userID string, productID int64) error
}

type OrderStore interface {
	InsertOrder(ctx context.Context, o *models.Order) error
	ListOrders(ctx context.Context, buyerID string) ([]models.Order, error)
	ListAllOrders(ctx context.Context) ([]models.Order, error)
}

// Tx exposes the stores bound to one unit of work.
type Tx interface {
	Products() ProductStore
	Cart() CartStore
	Orders() OrderStore
}

// UnitOfWork runs fn in a single transaction. Everything fn wrote becomes
// visible when fn returns nil and the commit succeeds; otherwise nothing does.
// Units for the same userID are serialized.
type UnitOfWork interface {
	Do(ctx context.Context, userID string, fn func(tx Tx) error) error
}

// Store gives read access outside a unit of work plus the unit-of-work boundary.
type Store interface {
	UnitOfWork
	Products() ProductStore
	Categories() CategoryStore
	Cart() CartStore
	Orders() OrderStore
	Close() error
}
