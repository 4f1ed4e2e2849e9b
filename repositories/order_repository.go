package repositories

import (
	"context"
	"time"

	"mini-shop/models"

	"github.com/shopspring/decimal"
)

type orderRepo struct {
	db DBTX
}

func (r *orderRepo) Create(ctx context.Context, order *models.Order) error {
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	if order.Status == "" {
		order.Status = models.OrderStatusPending
	}

	err := r.db.QueryRow(ctx,
		`INSERT INTO orders (user_id, total, status, created_at) VALUES ($1, $2::numeric, $3, $4) RETURNING id`,
		order.UserID, order.Total.String(), string(order.Status), order.CreatedAt,
	).Scan(&order.ID)
	if err != nil {
		return classify(err, "create order")
	}

	itemQuery := `
		INSERT INTO order_items (order_id, product_id, quantity, price)
		VALUES ($1, $2, $3, $4::numeric)
		RETURNING id
	`
	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID
		err := r.db.QueryRow(ctx, itemQuery, order.ID, item.ProductID, item.Quantity, item.Price.String()).Scan(&item.ID)
		if err != nil {
			return classify(err, "create order item")
		}
	}
	return nil
}

func (r *orderRepo) ListByUser(ctx context.Context, userID int) ([]models.Order, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, total::text, status, created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, classify(err, "list orders")
	}

	orders := []models.Order{}
	index := map[int]int{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, classify(err, "scan order")
		}
		index[order.ID] = len(orders)
		orders = append(orders, *order)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, classify(err, "list orders")
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]int, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		o := &orders[index[item.OrderID]]
		o.Items = append(o.Items, item)
	}
	return orders, nil
}

func (r *orderRepo) FindByIDForUser(ctx context.Context, userID, orderID int) (*models.Order, error) {
	order, err := scanOrder(r.db.QueryRow(ctx, `
		SELECT id, user_id, total::text, status, created_at
		FROM orders
		WHERE id = $1 AND user_id = $2
	`, orderID, userID))
	if err != nil {
		return nil, classify(err, "Order")
	}

	items, err := r.loadItems(ctx, []int{order.ID})
	if err != nil {
		return nil, err
	}
	order.Items = append(order.Items, items...)
	return order, nil
}

func (r *orderRepo) loadItems(ctx context.Context, orderIDs []int) ([]models.OrderItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price::text, p.name, p.price::text
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ANY($1)
		ORDER BY oi.order_id, oi.id
	`, orderIDs)
	if err != nil {
		return nil, classify(err, "load order items")
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		var summary models.ProductSummary
		var price, currentPrice string
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &price, &summary.Name, &currentPrice); err != nil {
			return nil, classify(err, "scan order item")
		}
		if item.Price, err = decimal.NewFromString(price); err != nil {
			return nil, classify(err, "parse order item price")
		}
		if summary.Price, err = decimal.NewFromString(currentPrice); err != nil {
			return nil, classify(err, "parse product price")
		}
		summary.ID = item.ProductID
		item.Product = &summary
		items = append(items, item)
	}
	return items, classify(rows.Err(), "load order items")
}

func scanOrder(row interface{ Scan(dest ...any) error }) (*models.Order, error) {
	order := &models.Order{Items: []models.OrderItem{}}
	var total, status string
	if err := row.Scan(&order.ID, &order.UserID, &total, &status, &order.CreatedAt); err != nil {
		return nil, err
	}
	var err error
	if order.Total, err = decimal.NewFromString(total); err != nil {
		return nil, err
	}
	order.Status = models.OrderStatus(status)
	return order, nil
}
