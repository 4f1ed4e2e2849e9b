package services

import (
	"context"

	"mini-shop/models"
	"mini-shop/repositories"
)

// CartService manages a user's cart. Its stock checks only guard against
// obviously unsatisfiable carts; OrderCommitter is the stock authority.
type CartService struct {
	store repositories.Store
}

func NewCartService(store repositories.Store) *CartService {
	return &CartService{store: store}
}

func (s *CartService) Get(ctx context.Context, userID int) (*models.Cart, error) {
	return s.store.Carts().FindByUser(ctx, userID)
}

// Add puts quantity units of a product into the cart, creating the cart on
// first use. The bool reports whether a new line was created.
func (s *CartService) Add(ctx context.Context, userID, productID, quantity int) (*models.CartItem, bool, error) {
	if quantity <= 0 {
		return nil, false, models.Validation("Validation failed", models.FieldViolation{
			Field: "quantity", Message: "quantity must be greater than 0",
		})
	}

	product, err := s.store.Products().FindByID(ctx, productID)
	if err != nil {
		return nil, false, err
	}
	if product.Stock < quantity {
		return nil, false, models.InsufficientStock(product.ID, product.Name)
	}

	cart, err := s.store.Carts().GetOrCreate(ctx, userID)
	if err != nil {
		return nil, false, err
	}

	existing, err := s.store.Carts().FindItemByProduct(ctx, cart.ID, productID)
	switch {
	case err == nil:
		item, err := s.increment(ctx, product, existing, quantity)
		return item, false, err
	case models.KindOf(err) != models.KindNotFound:
		return nil, false, err
	}

	item := &models.CartItem{CartID: cart.ID, ProductID: productID, Quantity: quantity}
	err = s.store.Carts().InsertItem(ctx, item)
	if models.KindOf(err) == models.KindConflict {
		// Lost the insert race to a concurrent add of the same product.
		existing, err := s.store.Carts().FindItemByProduct(ctx, cart.ID, productID)
		if err != nil {
			return nil, false, err
		}
		item, err := s.increment(ctx, product, existing, quantity)
		return item, false, err
	}
	if err != nil {
		return nil, false, err
	}
	return item, true, nil
}

func (s *CartService) increment(ctx context.Context, product *models.Product, existing *models.CartItem, quantity int) (*models.CartItem, error) {
	if existing.Quantity+quantity > product.Stock {
		return nil, models.InsufficientStock(product.ID, product.Name)
	}
	return s.store.Carts().IncrementItem(ctx, existing.ID, quantity)
}

// UpdateItem sets a line's quantity. A quantity of zero or less removes the
// line, reported by the bool.
func (s *CartService) UpdateItem(ctx context.Context, userID, itemID, quantity int) (*models.CartItem, bool, error) {
	item, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return nil, false, err
	}

	if quantity <= 0 {
		if err := s.store.Carts().DeleteItem(ctx, item.ID); err != nil {
			return nil, false, err
		}
		return nil, true, nil
	}

	if item.Product != nil && quantity > item.Product.Stock {
		return nil, false, models.InsufficientStock(item.ProductID, item.Product.Name)
	}

	updated, err := s.store.Carts().SetItemQuantity(ctx, item.ID, quantity)
	if err != nil {
		return nil, false, err
	}
	return updated, false, nil
}

func (s *CartService) RemoveItem(ctx context.Context, userID, itemID int) error {
	item, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return err
	}
	return s.store.Carts().DeleteItem(ctx, item.ID)
}

// Clear empties the cart and returns how many lines were removed.
func (s *CartService) Clear(ctx context.Context, userID int) (int, error) {
	cart, err := s.store.Carts().FindByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	return s.store.Carts().ClearItems(ctx, cart.ID)
}

func (s *CartService) ownedItem(ctx context.Context, userID, itemID int) (*models.CartItem, error) {
	item, err := s.store.Carts().FindItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if err := ensureOwner(userID, item.UserID); err != nil {
		return nil, err
	}
	return item, nil
}
