package service

import (
	"context"
	"strconv"
	"strings"

	models "storefront/model"
	"storefront/store"
)

const PageSize = 5

// ListProducts returns one page of the catalog. A page past the end is
// clamped to the last page; with no matches the page is empty and
// TotalPages is 0.
func (s *Service) ListProducts(ctx context.Context, f ProductFilter) (ProductPage, error) {
	if f.Page <= 0 {
		return ProductPage{}, models.Validation("Page number must be greater than 0.")
	}
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return ProductPage{}, models.Validation("Minimum price cannot be greater than maximum price.")
	}

	q := catalogQuery(f)
	total, err := s.store.Products().CountProducts(ctx, q)
	if err != nil {
		return ProductPage{}, fail(err, "An error occurred while retrieving the products.")
	}

	page := ProductPage{Data: []models.Product{}, TotalPages: totalPages(total), CurrentPage: f.Page}
	if page.TotalPages == 0 {
		return page, nil
	}
	if page.CurrentPage > page.TotalPages {
		page.CurrentPage = page.TotalPages
	}

	q.Limit = PageSize
	q.Offset = (page.CurrentPage - 1) * PageSize
	if page.Data, err = s.store.Products().FindProducts(ctx, q); err != nil {
		return ProductPage{}, fail(err, "An error occurred while retrieving the products.")
	}
	return page, nil
}

func totalPages(matches int) int {
	return (matches + PageSize - 1) / PageSize
}

func catalogQuery(f ProductFilter) store.ProductQuery {
	var q store.ProductQuery
	if search := strings.TrimSpace(f.Search); search != "" {
		q = q.Where(store.FieldName, store.OpContains, search)
	}
	if f.Category != "" {
		if id, err := strconv.ParseInt(f.Category, 10, 64); err == nil {
			q = q.Where(store.FieldCategoryID, store.OpEq, id)
		} else {
			q = q.Where(store.FieldCategoryName, store.OpEq, f.Category)
		}
	}
	if f.MinPrice != nil {
		q = q.Where(store.FieldPrice, store.OpGte, *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where(store.FieldPrice, store.OpLte, *f.MaxPrice)
	}
	return q
}

func (s *Service) GetProduct(ctx context.Context, id int64) (models.Product, error) {
	p, err := s.store.Products().GetProduct(ctx, id)
	if err != nil {
		return models.Product{}, fail(notFound(err, "Product not found."), "An error occurred while retrieving the product details.")
	}
	return p, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	cs, err := s.store.Categories().ListCategories(ctx)
	if err != nil {
		return nil, fail(err, "An error occurred while retrieving the categories.")
	}
	return cs, nil
}
