package repositories_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"mini-shop/models"
	"mini-shop/repositories"
	"mini-shop/services"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// openPgStore migrates a throwaway schema on DATABASE_URL and returns a store
// scoped to it. The schema is dropped when the test ends.
func openPgStore(t *testing.T) *repositories.PgStore {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()
	schema := fmt.Sprintf("shop_test_%d", time.Now().UnixNano())

	admin, err := pgx.Connect(ctx, dsn)
	require.NoError(t, err)
	_, err = admin.Exec(ctx, "CREATE SCHEMA "+schema)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = admin.Exec(context.Background(), "DROP SCHEMA "+schema+" CASCADE")
		_ = admin.Close(context.Background())
	})

	cfg, err := pgxpool.ParseConfig(dsn)
	require.NoError(t, err)
	cfg.ConnConfig.RuntimeParams["search_path"] = schema
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	ddl, err := os.ReadFile("../database/migration/000001_init.up.sql")
	require.NoError(t, err)
	_, err = pool.Exec(ctx, string(ddl))
	require.NoError(t, err)

	return repositories.NewPgStore(pool)
}

func seedPgProduct(t *testing.T, store repositories.Store, price string, stock int) *models.Product {
	t.Helper()
	p := &models.Product{Name: "Lamp", Price: decimal.RequireFromString(price), Stock: stock}
	require.NoError(t, store.Products().Create(context.Background(), p))
	return p
}

func seedPgUser(t *testing.T, store repositories.Store, email string) *models.User {
	t.Helper()
	u := &models.User{Email: email, Password: "x", Role: models.RoleCustomer}
	require.NoError(t, store.Users().Create(context.Background(), u))
	return u
}

func pgStock(t *testing.T, store repositories.Store, productID int) int {
	t.Helper()
	p, err := store.Products().FindByID(context.Background(), productID)
	require.NoError(t, err)
	return p.Stock
}

func TestPostgresDecrement(t *testing.T) {
	store := openPgStore(t)
	ctx := context.Background()
	p := seedPgProduct(t, store, "9.99", 2)

	left, err := store.Inventory().Decrement(ctx, p.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, left)

	_, err = store.Inventory().Decrement(ctx, p.ID, 1)
	assert.ErrorIs(t, err, models.ErrOutOfStock)

	_, err = store.Inventory().Decrement(ctx, p.ID+1000, 1)
	assert.ErrorIs(t, err, models.ErrNotFound)

	assert.Equal(t, 0, pgStock(t, store, p.ID))
}

func TestPostgresRollbackRestoresStock(t *testing.T) {
	store := openPgStore(t)
	ctx := context.Background()
	p := seedPgProduct(t, store, "4.00", 3)

	err := store.WithinTx(ctx, func(tx repositories.Store) error {
		if _, err := tx.Inventory().Decrement(ctx, p.ID, 2); err != nil {
			return err
		}
		return models.InsufficientStock(p.ID, p.Name)
	})
	require.ErrorIs(t, err, models.ErrInsufficientStock)
	assert.Equal(t, 3, pgStock(t, store, p.ID))
}

func TestPostgresLastUnitRace(t *testing.T) {
	store := openPgStore(t)
	ctx := context.Background()
	p := seedPgProduct(t, store, "19.90", 1)
	carts := services.NewCartService(store)
	committer := services.NewOrderCommitter(store, zap.NewNop())

	buyers := []*models.User{
		seedPgUser(t, store, "a@example.com"),
		seedPgUser(t, store, "b@example.com"),
	}
	for _, u := range buyers {
		_, _, err := carts.Add(ctx, u.ID, p.ID, 1)
		require.NoError(t, err)
	}

	errs := make([]error, len(buyers))
	var wg sync.WaitGroup
	for i, u := range buyers {
		i, u := i, u
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = committer.Commit(ctx, u.ID)
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, models.ErrInsufficientStock)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 0, pgStock(t, store, p.ID))

	orders := 0
	for _, u := range buyers {
		list, err := store.Orders().ListByUser(ctx, u.ID)
		require.NoError(t, err)
		orders += len(list)
		if len(list) == 1 {
			assert.True(t, list[0].Total.Equal(decimal.RequireFromString("19.90")))
		}
	}
	assert.Equal(t, 1, orders)
}
