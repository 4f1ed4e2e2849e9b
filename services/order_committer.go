package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"mini-shop/models"
	"mini-shop/repositories"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderNotifier tells a customer their order was placed.
type OrderNotifier interface {
	SendOrderConfirmation(ctx context.Context, to string, order *models.Order) error
}

// CacheInvalidator drops cached catalog reads after stock changes.
type CacheInvalidator interface {
	InvalidateCache(ctx context.Context)
}

const notifyTimeout = 30 * time.Second

// OrderCommitter turns a cart into an order in one unit of work.
type OrderCommitter struct {
	store    repositories.Store
	cache    CacheInvalidator
	notifier OrderNotifier
	logger   *zap.Logger

	wg sync.WaitGroup
}

type CommitterOption func(*OrderCommitter)

func WithCacheInvalidator(cache CacheInvalidator) CommitterOption {
	return func(c *OrderCommitter) { c.cache = cache }
}

func WithNotifier(notifier OrderNotifier) CommitterOption {
	return func(c *OrderCommitter) { c.notifier = notifier }
}

func NewOrderCommitter(store repositories.Store, logger *zap.Logger, opts ...CommitterOption) *OrderCommitter {
	c := &OrderCommitter{store: store, logger: logger}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Commit converts the user's cart into a pending order. Either every line's
// stock is decremented, the order is written and the cart is emptied, or
// nothing changes.
func (c *OrderCommitter) Commit(ctx context.Context, userID int) (*models.Order, error) {
	cart, err := c.store.Carts().FindByUser(ctx, userID)
	if models.KindOf(err) == models.KindNotFound {
		return nil, models.EmptyCart()
	}
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, models.EmptyCart()
	}

	var order *models.Order
	err = c.store.WithinTx(ctx, func(tx repositories.Store) error {
		// Re-read under the cart lock; a concurrent commit may have emptied it.
		locked, err := tx.Carts().LockByUser(ctx, userID)
		if models.KindOf(err) == models.KindNotFound {
			return models.EmptyCart()
		}
		if err != nil {
			return err
		}
		if len(locked.Items) == 0 {
			return models.EmptyCart()
		}

		order, err = c.placeOrder(ctx, tx, userID, locked.Items)
		if err != nil {
			return err
		}

		_, err = tx.Carts().ClearItems(ctx, locked.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	c.afterCommit(ctx, order)
	return order, nil
}

func (c *OrderCommitter) placeOrder(ctx context.Context, tx repositories.Store, userID int, lines []models.CartItem) (*models.Order, error) {
	lines = append([]models.CartItem(nil), lines...)
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })

	order := &models.Order{
		UserID: userID,
		Status: models.OrderStatusPending,
		Items:  make([]models.OrderItem, 0, len(lines)),
	}
	total := decimal.Zero

	for _, line := range lines {
		if line.Product == nil {
			return nil, models.ProductNotFound(line.ProductID)
		}

		if _, err := tx.Inventory().Decrement(ctx, line.ProductID, line.Quantity); err != nil {
			if models.KindOf(err) == models.KindOutOfStock {
				return nil, models.InsufficientStock(line.ProductID, line.Product.Name)
			}
			return nil, err
		}

		item := models.OrderItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     line.Product.Price,
			Product: &models.ProductSummary{
				ID:    line.ProductID,
				Name:  line.Product.Name,
				Price: line.Product.Price,
			},
		}
		total = total.Add(item.LineTotal())
		order.Items = append(order.Items, item)
	}
	order.Total = total

	if err := tx.Orders().Create(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (c *OrderCommitter) afterCommit(ctx context.Context, order *models.Order) {
	// The order is committed; a client hanging up must not skip the follow-ups.
	ctx = context.WithoutCancel(ctx)

	if c.cache != nil {
		c.cache.InvalidateCache(ctx)
	}
	if c.notifier == nil {
		return
	}

	user, err := c.store.Users().FindByID(ctx, order.UserID)
	if err != nil {
		c.logger.Warn("skip order confirmation", zap.Int("order_id", order.ID), zap.Error(err))
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		notifyCtx, cancel := context.WithTimeout(ctx, notifyTimeout)
		defer cancel()

		if err := c.notifier.SendOrderConfirmation(notifyCtx, user.Email, order); err != nil {
			c.logger.Error("send order confirmation",
				zap.Int("order_id", order.ID), zap.String("to", user.Email), zap.Error(err))
		}
	}()
}

// Wait blocks until pending confirmation emails have been handed off.
func (c *OrderCommitter) Wait() {
	c.wg.Wait()
}
