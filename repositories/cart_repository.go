package repositories

import (
	"context"
	"time"

	"mini-shop/models"

	"github.com/shopspring/decimal"
)

type cartRepo struct {
	db DBTX
}

const cartItemSelect = `
	SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity, ci.created_at, ci.updated_at,
	       c.user_id, p.name, p.price::text, p.stock
	FROM cart_items ci
	JOIN carts c ON c.id = ci.cart_id
	JOIN products p ON p.id = ci.product_id
`

func scanCartItem(row interface{ Scan(dest ...any) error }) (*models.CartItem, error) {
	var item models.CartItem
	var snap models.ProductSnapshot
	var price string
	err := row.Scan(
		&item.ID, &item.CartID, &item.ProductID, &item.Quantity, &item.CreatedAt, &item.UpdatedAt,
		&item.UserID, &snap.Name, &price, &snap.Stock,
	)
	if err != nil {
		return nil, err
	}
	if snap.Price, err = decimal.NewFromString(price); err != nil {
		return nil, err
	}
	snap.ID = item.ProductID
	item.Product = &snap
	return &item, nil
}

func (r *cartRepo) FindByUser(ctx context.Context, userID int) (*models.Cart, error) {
	return r.load(ctx, userID, false)
}

func (r *cartRepo) LockByUser(ctx context.Context, userID int) (*models.Cart, error) {
	return r.load(ctx, userID, true)
}

func (r *cartRepo) load(ctx context.Context, userID int, lock bool) (*models.Cart, error) {
	query := `SELECT id, user_id, created_at, updated_at FROM carts WHERE user_id = $1`
	if lock {
		query += ` FOR UPDATE`
	}

	cart := &models.Cart{}
	err := r.db.QueryRow(ctx, query, userID).Scan(&cart.ID, &cart.UserID, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		return nil, classify(err, "Cart")
	}

	rows, err := r.db.Query(ctx, cartItemSelect+` WHERE ci.cart_id = $1 ORDER BY ci.id`, cart.ID)
	if err != nil {
		return nil, classify(err, "load cart items")
	}
	defer rows.Close()

	cart.Items = []models.CartItem{}
	for rows.Next() {
		item, err := scanCartItem(rows)
		if err != nil {
			return nil, classify(err, "scan cart item")
		}
		cart.Items = append(cart.Items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, "load cart items")
	}
	return cart, nil
}

func (r *cartRepo) GetOrCreate(ctx context.Context, userID int) (*models.Cart, error) {
	now := time.Now()
	_, err := r.db.Exec(ctx,
		`INSERT INTO carts (user_id, created_at, updated_at) VALUES ($1, $2, $2) ON CONFLICT (user_id) DO NOTHING`,
		userID, now)
	if err != nil {
		return nil, classify(err, "create cart")
	}

	cart := &models.Cart{Items: []models.CartItem{}}
	err = r.db.QueryRow(ctx,
		`SELECT id, user_id, created_at, updated_at FROM carts WHERE user_id = $1`, userID,
	).Scan(&cart.ID, &cart.UserID, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		return nil, classify(err, "Cart")
	}
	return cart, nil
}

func (r *cartRepo) FindItem(ctx context.Context, itemID int) (*models.CartItem, error) {
	item, err := scanCartItem(r.db.QueryRow(ctx, cartItemSelect+` WHERE ci.id = $1`, itemID))
	if err != nil {
		return nil, classify(err, "Cart item")
	}
	return item, nil
}

func (r *cartRepo) FindItemByProduct(ctx context.Context, cartID, productID int) (*models.CartItem, error) {
	item, err := scanCartItem(r.db.QueryRow(ctx,
		cartItemSelect+` WHERE ci.cart_id = $1 AND ci.product_id = $2`, cartID, productID))
	if err != nil {
		return nil, classify(err, "Cart item")
	}
	return item, nil
}

func (r *cartRepo) InsertItem(ctx context.Context, item *models.CartItem) error {
	query := `
		INSERT INTO cart_items (cart_id, product_id, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING id
	`
	var id int
	if err := r.db.QueryRow(ctx, query, item.CartID, item.ProductID, item.Quantity, time.Now()).Scan(&id); err != nil {
		return classify(err, "insert cart item")
	}

	stored, err := r.FindItem(ctx, id)
	if err != nil {
		return err
	}
	*item = *stored
	return nil
}

func (r *cartRepo) IncrementItem(ctx context.Context, itemID, delta int) (*models.CartItem, error) {
	return r.updateQuantity(ctx,
		`UPDATE cart_items SET quantity = quantity + $1, updated_at = $2 WHERE id = $3`, delta, itemID)
}

func (r *cartRepo) SetItemQuantity(ctx context.Context, itemID, quantity int) (*models.CartItem, error) {
	return r.updateQuantity(ctx,
		`UPDATE cart_items SET quantity = $1, updated_at = $2 WHERE id = $3`, quantity, itemID)
}

func (r *cartRepo) updateQuantity(ctx context.Context, query string, quantity, itemID int) (*models.CartItem, error) {
	tag, err := r.db.Exec(ctx, query, quantity, time.Now(), itemID)
	if err != nil {
		return nil, classify(err, "update cart item")
	}
	if tag.RowsAffected() == 0 {
		return nil, models.NotFound("Cart item")
	}
	return r.FindItem(ctx, itemID)
}

func (r *cartRepo) DeleteItem(ctx context.Context, itemID int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE id = $1`, itemID)
	if err != nil {
		return classify(err, "delete cart item")
	}
	if tag.RowsAffected() == 0 {
		return models.NotFound("Cart item")
	}
	return nil
}

func (r *cartRepo) ClearItems(ctx context.Context, cartID int) (int, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	if err != nil {
		return 0, classify(err, "clear cart")
	}
	return int(tag.RowsAffected()), nil
}
