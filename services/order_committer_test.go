package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"mini-shop/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// Scenario 1.
func TestCommitConvertsCart(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	p := f.product(t, "P", "10.00", 5)
	f.add(t, 1, p.ID, 3)

	cart, err := f.carts.Get(ctx, 1)
	require.NoError(t, err)
	assert.True(t, cart.Total().Equal(dec("30.00")))

	order, err := f.committer.Commit(ctx, 1)
	require.NoError(t, err)
	assert.True(t, order.Total.Equal(dec("30.00")))
	assert.Equal(t, models.OrderStatusPending, order.Status)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 3, order.Items[0].Quantity)
	assert.True(t, order.Items[0].Price.Equal(dec("10.00")))
	require.NotNil(t, order.Items[0].Product)
	assert.Equal(t, "P", order.Items[0].Product.Name)

	assert.Equal(t, 2, f.stock(t, p.ID))

	cart, err = f.carts.Get(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

// Scenario 2.
func TestCommitEmptyCart(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	_, err := f.committer.Commit(ctx, 1)
	assert.True(t, errors.Is(err, models.ErrEmptyCart), "no cart at all")

	p := f.product(t, "P", "10.00", 5)
	f.add(t, 1, p.ID, 1)
	_, err = f.committer.Commit(ctx, 1)
	require.NoError(t, err)

	_, err = f.committer.Commit(ctx, 1)
	assert.True(t, errors.Is(err, models.ErrEmptyCart))
}

// Scenario 3.
func TestCommitRaceForLastUnit(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	q := f.product(t, "Q", "20.00", 1)
	f.add(t, 1, q.ID, 1)
	f.add(t, 2, q.ID, 1)

	results := make([]error, 2)
	orders := make([]*models.Order, 2)
	var g errgroup.Group
	for i := range results {
		i := i
		g.Go(func() error {
			orders[i], results[i] = f.committer.Commit(ctx, i+1)
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var won, lost int
	for i, err := range results {
		switch {
		case err == nil:
			won++
			assert.True(t, orders[i].Total.Equal(dec("20.00")))
		case errors.Is(err, models.ErrInsufficientStock):
			lost++
			var appErr *models.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, q.ID, appErr.ProductID)
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, 1, lost)
	assert.Equal(t, 0, f.stock(t, q.ID))
}

func TestCommitNeverOversells(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	p := f.product(t, "Limited", "99.99", 7)

	const buyers = 25
	for u := 1; u <= buyers; u++ {
		f.add(t, u, p.ID, 1)
	}

	var mu sync.Mutex
	var placed int
	var g errgroup.Group
	for u := 1; u <= buyers; u++ {
		u := u
		g.Go(func() error {
			_, err := f.committer.Commit(ctx, u)
			if errors.Is(err, models.ErrInsufficientStock) {
				return nil
			}
			if err != nil {
				return err
			}
			mu.Lock()
			placed++
			mu.Unlock()
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, 7, placed)
	assert.Equal(t, 0, f.stock(t, p.ID))
}

func TestCommitIsAtomic(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := f.product(t, "A", "5.00", 10)
	b := f.product(t, "B", "7.00", 3)
	f.add(t, 1, a.ID, 2)
	f.add(t, 1, b.ID, 3)

	// Someone else buys B after it went into the cart.
	_, err := f.store.Inventory().Decrement(ctx, b.ID, 2)
	require.NoError(t, err)

	_, err = f.committer.Commit(ctx, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInsufficientStock))
	assert.Equal(t, "Insufficient stock for B", err.Error())

	assert.Equal(t, 10, f.stock(t, a.ID))
	assert.Equal(t, 1, f.stock(t, b.ID))

	cart, err := f.carts.Get(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2)

	orders, err := f.orders.List(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestOrderPricesSurviveCatalogChanges(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := f.product(t, "A", "19.99", 10)
	b := f.product(t, "B", "0.10", 10)
	f.add(t, 1, a.ID, 3)
	f.add(t, 1, b.ID, 3)

	order, err := f.committer.Commit(ctx, 1)
	require.NoError(t, err)
	assert.True(t, order.Total.Equal(dec("60.27")))
	assert.True(t, order.Total.Equal(order.ItemsTotal()))

	newPrice := dec("25.00")
	_, err = f.products.Update(ctx, a.ID, models.UpdateProductRequest{Price: &newPrice})
	require.NoError(t, err)

	got, err := f.orders.GetByID(ctx, 1, order.ID)
	require.NoError(t, err)
	assert.True(t, got.Total.Equal(dec("60.27")))
	assert.True(t, got.Total.Equal(got.ItemsTotal()))
	for _, item := range got.Items {
		if item.ProductID == a.ID {
			assert.True(t, item.Price.Equal(dec("19.99")))
			assert.True(t, item.Product.Price.Equal(newPrice))
		}
	}
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent map[string]int
	err  error
}

func (n *recordingNotifier) SendOrderConfirmation(_ context.Context, to string, order *models.Order) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.sent == nil {
		n.sent = map[string]int{}
	}
	n.sent[to] = order.ID
	return n.err
}

type countingCache struct {
	mu       sync.Mutex
	calls    int
	detached bool
}

func (c *countingCache) InvalidateCache(ctx context.Context) {
	c.mu.Lock()
	c.calls++
	c.detached = ctx.Done() == nil && ctx.Err() == nil
	c.mu.Unlock()
}

func TestCommitNotifiesAfterSuccess(t *testing.T) {
	ctx := context.Background()
	notifier := &recordingNotifier{}
	cache := &countingCache{}
	f := newFixture(WithNotifier(notifier), WithCacheInvalidator(cache))

	user := &models.User{Email: "buyer@example.com", Password: "x", Role: models.RoleCustomer}
	require.NoError(t, f.store.Users().Create(ctx, user))
	p := f.product(t, "P", "1.00", 2)
	f.add(t, user.ID, p.ID, 1)

	order, err := f.committer.Commit(ctx, user.ID)
	require.NoError(t, err)
	f.committer.Wait()

	assert.Equal(t, order.ID, notifier.sent["buyer@example.com"])
	assert.Equal(t, 1, cache.calls)

	_, err = f.committer.Commit(ctx, user.ID)
	assert.True(t, errors.Is(err, models.ErrEmptyCart))
	f.committer.Wait()
	assert.Len(t, notifier.sent, 1)
	assert.Equal(t, 1, cache.calls)
}

func TestCommitNotifierFailureIsNotSurfaced(t *testing.T) {
	ctx := context.Background()
	notifier := &recordingNotifier{err: errors.New("smtp down")}
	f := newFixture(WithNotifier(notifier))

	user := &models.User{Email: "b@example.com", Password: "x", Role: models.RoleCustomer}
	require.NoError(t, f.store.Users().Create(ctx, user))
	p := f.product(t, "P", "1.00", 2)
	f.add(t, user.ID, p.ID, 1)

	_, err := f.committer.Commit(ctx, user.ID)
	require.NoError(t, err)
	f.committer.Wait()
}

func TestCommitFollowUpsOutliveRequestContext(t *testing.T) {
	cache := &countingCache{}
	f := newFixture(WithCacheInvalidator(cache))
	p := f.product(t, "P", "4.00", 3)
	f.add(t, 1, p.ID, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := f.committer.Commit(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, 1, cache.calls)
	assert.True(t, cache.detached, "cache invalidation must not be cancellable by the request")
}
