package service

import (
	"context"
	"log/slog"
	"strings"

	models "storefront/model"
)

func (s *Service) CreateProduct(ctx context.Context, p models.Principal, in ProductInput) (models.Product, error) {
	if err := requireUser(p); err != nil {
		return models.Product{}, err
	}
	if !p.Can(models.CapManageStock) {
		return models.Product{}, models.Forbidden("You are not allowed to manage products.")
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return models.Product{}, models.Validation("name is required")
	}
	if in.Price.IsNegative() {
		return models.Product{}, models.Validation("price must be >= 0")
	}
	if in.Stock < 0 {
		return models.Product{}, models.Validation("stock cannot be negative")
	}

	cat, err := s.store.Categories().GetCategory(ctx, in.CategoryID)
	if err != nil {
		return models.Product{}, fail(notFound(err, "Category not found."), "An error occurred while creating the product.")
	}
	prod := models.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		CategoryID:  cat.ID,
	}
	if err := s.store.Products().CreateProduct(ctx, &prod); err != nil {
		return models.Product{}, fail(notFound(err, "Category not found."), "An error occurred while creating the product.")
	}
	prod.Category = &cat
	slog.Info("product created", "product_id", prod.ID, "by", p.ID)
	return prod, nil
}

// UpdateStock sets a product's absolute stock. Lines already in carts are
// re-checked against it on their next mutation.
func (s *Service) UpdateStock(ctx context.Context, p models.Principal, productID int64, stock int) error {
	if err := requireUser(p); err != nil {
		return err
	}
	if !p.Can(models.CapManageStock) {
		return models.Forbidden("You are not allowed to manage products.")
	}
	if stock < 0 {
		return models.Validation("stock cannot be negative")
	}
	if err := s.store.Products().SetStock(ctx, productID, stock); err != nil {
		return fail(notFound(err, "Product not found."), "An error occurred while updating the stock.")
	}
	slog.Info("stock updated", "product_id", productID, "stock", stock, "by", p.ID)
	return nil
}
