package service

import (
	"context"

	models "storefront/model"
)

// ServiceInterface is what the HTTP layer needs from the storefront core.
// Operations taking a Principal expect the caller to have authenticated it.
type ServiceInterface interface {
	ListProducts(ctx context.Context, f ProductFilter) (ProductPage, error)
	GetProduct(ctx context.Context, id int64) (models.Product, error)
	ListCategories(ctx context.Context) ([]models.Category, error)

	AddToCart(ctx context.Context, p models.Principal, productID int64, count int) error
	GetItems(ctx context.Context, p models.Principal) (CartView, error)
	Increment(ctx context.Context, p models.Principal, productID int64) error
	Decrement(ctx context.Context, p models.Principal, productID int64) error
	Remove(ctx context.Context, p models.Principal, productID int64) error

	BuildSession(ctx context.Context, p models.Principal) (string, error)
	Confirm(ctx context.Context, p models.Principal) ([]models.Order, error)

	ListMyOrders(ctx context.Context, p models.Principal) ([]models.Order, error)
	ListAllOrders(ctx context.Context, p models.Principal) ([]models.Order, error)

	CreateProduct(ctx context.Context, p models.Principal, in ProductInput) (models.Product, error)
	UpdateStock(ctx context.Context, p models.Principal, productID int64, stock int) error
}
