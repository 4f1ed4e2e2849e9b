package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"mini-shop/models"
	"mini-shop/repositories/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Scenario 5.
func TestGetByIDHidesOtherUsersOrders(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	p := f.product(t, "P", "2.00", 5)
	f.add(t, 2, p.ID, 1)

	order, err := f.committer.Commit(ctx, 2)
	require.NoError(t, err)

	_, err = f.orders.GetByID(ctx, 1, order.ID)
	assert.True(t, errors.Is(err, models.ErrNotFound))
	assert.False(t, errors.Is(err, models.ErrAccessDenied))

	_, err = f.orders.GetByID(ctx, 1, 12345)
	assert.True(t, errors.Is(err, models.ErrNotFound))

	got, err := f.orders.GetByID(ctx, 2, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
}

func TestListNewestFirst(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	store := memory.New(memory.WithClock(func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}))
	carts := NewCartService(store)
	committer := NewOrderCommitter(store, zap.NewNop())
	orders := NewOrderQuery(store)

	p := &models.Product{Name: "P", Price: dec("1.00"), Stock: 10}
	require.NoError(t, store.Products().Create(ctx, p))

	var ids []int
	for i := 0; i < 3; i++ {
		_, _, err := carts.Add(ctx, 1, p.ID, 1)
		require.NoError(t, err)
		order, err := committer.Commit(ctx, 1)
		require.NoError(t, err)
		ids = append(ids, order.ID)
	}

	list, err := orders.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []int{ids[2], ids[1], ids[0]}, []int{list[0].ID, list[1].ID, list[2].ID})

	other, err := orders.List(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, other)
}
