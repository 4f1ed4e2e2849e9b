package services

import (
	"context"

	"mini-shop/models"
	"mini-shop/repositories"
)

type OrderQuery struct {
	store repositories.Store
}

func NewOrderQuery(store repositories.Store) *OrderQuery {
	return &OrderQuery{store: store}
}

// List returns the user's orders, newest first.
func (q *OrderQuery) List(ctx context.Context, userID int) ([]models.Order, error) {
	return q.store.Orders().ListByUser(ctx, userID)
}

// GetByID does not distinguish a missing order from someone else's.
func (q *OrderQuery) GetByID(ctx context.Context, userID, orderID int) (*models.Order, error) {
	order, err := q.store.Orders().FindByIDForUser(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if err := ensureOwner(userID, order.UserID); err != nil {
		return nil, models.NotFound("Order")
	}
	return order, nil
}
