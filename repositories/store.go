package repositories

import (
	"context"

	"mini-shop/models"
)

type ProductRepository interface {
	FindByID(ctx context.Context, id int) (*models.Product, error)
	List(ctx context.Context) ([]models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id int) error
}

type CartRepository interface {
	// FindByUser loads the user's cart with its items and their product snapshots.
	FindByUser(ctx context.Context, userID int) (*models.Cart, error)
	// LockByUser is FindByUser that also holds the cart row until the
	// surrounding transaction ends.
	LockByUser(ctx context.Context, userID int) (*models.Cart, error)
	GetOrCreate(ctx context.Context, userID int) (*models.Cart, error)
	FindItem(ctx context.Context, itemID int) (*models.CartItem, error)
	FindItemByProduct(ctx context.Context, cartID, productID int) (*models.CartItem, error)
	InsertItem(ctx context.Context, item *models.CartItem) error
	IncrementItem(ctx context.Context, itemID, delta int) (*models.CartItem, error)
	SetItemQuantity(ctx context.Context, itemID, quantity int) (*models.CartItem, error)
	DeleteItem(ctx context.Context, itemID int) error
	ClearItems(ctx context.Context, cartID int) (int, error)
}

type OrderRepository interface {
	// Create inserts the order and all of its items, filling in generated ids.
	Create(ctx context.Context, order *models.Order) error
	ListByUser(ctx context.Context, userID int) ([]models.Order, error)
	FindByIDForUser(ctx context.Context, userID, orderID int) (*models.Order, error)
}

// InventoryLedger is the only writer of product stock on the order path.
type InventoryLedger interface {
	// Decrement subtracts quantity from stock only if stock >= quantity and
	// returns the new stock. It fails with models.KindOutOfStock otherwise.
	Decrement(ctx context.Context, productID, quantity int) (int, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id int) (*models.User, error)
}

// Store groups the repositories over one backing store. Repositories obtained
// from the Store passed to WithinTx's callback run inside that transaction.
type Store interface {
	Products() ProductRepository
	Carts() CartRepository
	Orders() OrderRepository
	Inventory() InventoryLedger
	Users() UserRepository

	WithinTx(ctx context.Context, fn func(tx Store) error) error
}
