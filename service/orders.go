package service

import (
	"context"

	models "storefront/model"
)

func (s *Service) ListMyOrders(ctx context.Context, p models.Principal) ([]models.Order, error) {
	if err := requireUser(p); err != nil {
		return nil, err
	}
	orders, err := s.store.Orders().ListOrders(ctx, p.ID)
	if err != nil {
		return nil, fail(err, "An error occurred while retrieving the orders.")
	}
	if len(orders) == 0 {
		return nil, models.NotFound("No orders found for this user.")
	}
	return orders, nil
}

// ListAllOrders needs the orders:read-all capability.
func (s *Service) ListAllOrders(ctx context.Context, p models.Principal) ([]models.Order, error) {
	if err := requireUser(p); err != nil {
		return nil, err
	}
	if !p.Can(models.CapViewAllOrders) {
		return nil, models.Forbidden("You are not allowed to view all orders.")
	}
	orders, err := s.store.Orders().ListAllOrders(ctx)
	if err != nil {
		return nil, fail(err, "An error occurred while retrieving the orders.")
	}
	return orders, nil
}
