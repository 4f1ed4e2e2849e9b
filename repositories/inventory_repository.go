package repositories

import (
	"context"
	"errors"
	"time"

	"mini-shop/models"

	"github.com/jackc/pgx/v5"
)

type inventoryRepo struct {
	db DBTX
}

// Decrement is a single conditional UPDATE, so two concurrent callers can never
// both succeed against stock that only covers one of them.
func (r *inventoryRepo) Decrement(ctx context.Context, productID, quantity int) (int, error) {
	if quantity <= 0 {
		return 0, models.Validation("Quantity must be greater than zero")
	}

	var stock int
	err := r.db.QueryRow(ctx, `
		UPDATE products
		SET stock = stock - $1, updated_at = $2
		WHERE id = $3 AND stock >= $1
		RETURNING stock
	`, quantity, time.Now(), productID).Scan(&stock)
	if err == nil {
		return stock, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, classify(err, "decrement stock")
	}

	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists); err != nil {
		return 0, classify(err, "check product")
	}
	if !exists {
		return 0, models.ProductNotFound(productID)
	}
	return 0, models.OutOfStock(productID)
}
