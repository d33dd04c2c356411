package service

import (
	"github.com/shopspring/decimal"

	models "storefront/model"
)

// ProductFilter is a catalog listing request. Empty strings and nil bounds
// mean "no filter". Page is 1-based.
type ProductFilter struct {
	Search   string
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Page     int
}

type ProductPage struct {
	Data        []models.Product `json:"data"`
	TotalPages  int              `json:"totalPages"`
	CurrentPage int              `json:"currentPage"`
}

type CartLineView struct {
	models.CartItem
	Subtotal decimal.Decimal `json:"subtotal"`
}

type CartView struct {
	Items []CartLineView  `json:"items"`
	Total decimal.Decimal `json:"total"`
}

// ProductInput is an admin request to create a product.
type ProductInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	CategoryID  int64           `json:"category_id"`
}
