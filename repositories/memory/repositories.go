package memory

import (
	"context"
	"sort"

	"mini-shop/models"
)

type productRepo struct{ s *session }

func (r *productRepo) FindByID(ctx context.Context, id int) (*models.Product, error) {
	var out *models.Product
	err := r.s.run(ctx, func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return models.ProductNotFound(id)
		}
		out = &p
		return nil
	})
	return out, err
}

func (r *productRepo) List(ctx context.Context) ([]models.Product, error) {
	var out []models.Product
	err := r.s.run(ctx, func(st *state) error {
		out = make([]models.Product, 0, len(st.products))
		for _, p := range st.products {
			out = append(out, p)
		}
		sort.Slice(out, func(i, j int) bool {
			if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
				return out[i].CreatedAt.After(out[j].CreatedAt)
			}
			return out[i].ID > out[j].ID
		})
		return nil
	})
	return out, err
}

func (r *productRepo) Create(ctx context.Context, product *models.Product) error {
	return r.s.run(ctx, func(st *state) error {
		st.nextProduct++
		now := r.s.now()
		product.ID = st.nextProduct
		product.CreatedAt = now
		product.UpdatedAt = now
		st.products[product.ID] = *product
		return nil
	})
}

func (r *productRepo) Update(ctx context.Context, product *models.Product) error {
	return r.s.run(ctx, func(st *state) error {
		current, ok := st.products[product.ID]
		if !ok {
			return models.ProductNotFound(product.ID)
		}
		product.CreatedAt = current.CreatedAt
		product.UpdatedAt = r.s.now()
		st.products[product.ID] = *product
		return nil
	})
}

// Delete mirrors the SQL schema: cart lines cascade, order lines restrict.
func (r *productRepo) Delete(ctx context.Context, id int) error {
	return r.s.run(ctx, func(st *state) error {
		if _, ok := st.products[id]; !ok {
			return models.ProductNotFound(id)
		}
		for _, o := range st.orders {
			for _, item := range o.Items {
				if item.ProductID == id {
					return models.Conflict("Product is referenced by existing orders", nil)
				}
			}
		}
		for itemID, item := range st.cartItems {
			if item.productID == id {
				delete(st.cartItems, itemID)
			}
		}
		delete(st.products, id)
		return nil
	})
}

type inventoryRepo struct{ s *session }

func (r *inventoryRepo) Decrement(ctx context.Context, productID, quantity int) (int, error) {
	if quantity <= 0 {
		return 0, models.Validation("Quantity must be greater than zero")
	}

	var stock int
	err := r.s.run(ctx, func(st *state) error {
		p, ok := st.products[productID]
		if !ok {
			return models.ProductNotFound(productID)
		}
		if p.Stock < quantity {
			return models.OutOfStock(productID)
		}
		p.Stock -= quantity
		p.UpdatedAt = r.s.now()
		st.products[productID] = p
		stock = p.Stock
		return nil
	})
	return stock, err
}

type cartRepo struct{ s *session }

func (r *cartRepo) FindByUser(ctx context.Context, userID int) (*models.Cart, error) {
	var out *models.Cart
	err := r.s.run(ctx, func(st *state) error {
		cartID, ok := st.cartByUser[userID]
		if !ok {
			return models.NotFound("Cart")
		}
		out = st.cart(cartID)
		return nil
	})
	return out, err
}

// LockByUser needs nothing beyond FindByUser: the transaction already holds
// the store lock.
func (r *cartRepo) LockByUser(ctx context.Context, userID int) (*models.Cart, error) {
	return r.FindByUser(ctx, userID)
}

func (r *cartRepo) GetOrCreate(ctx context.Context, userID int) (*models.Cart, error) {
	var out *models.Cart
	err := r.s.run(ctx, func(st *state) error {
		cartID, ok := st.cartByUser[userID]
		if !ok {
			st.nextCart++
			now := r.s.now()
			cartID = st.nextCart
			st.carts[cartID] = cartRow{id: cartID, userID: userID, createdAt: now, updatedAt: now}
			st.cartByUser[userID] = cartID
		}
		out = st.cart(cartID)
		return nil
	})
	return out, err
}

func (r *cartRepo) FindItem(ctx context.Context, itemID int) (*models.CartItem, error) {
	var out *models.CartItem
	err := r.s.run(ctx, func(st *state) error {
		row, ok := st.cartItems[itemID]
		if !ok {
			return models.NotFound("Cart item")
		}
		out = st.cartItem(row)
		return nil
	})
	return out, err
}

func (r *cartRepo) FindItemByProduct(ctx context.Context, cartID, productID int) (*models.CartItem, error) {
	var out *models.CartItem
	err := r.s.run(ctx, func(st *state) error {
		for _, row := range st.cartItems {
			if row.cartID == cartID && row.productID == productID {
				out = st.cartItem(row)
				return nil
			}
		}
		return models.NotFound("Cart item")
	})
	return out, err
}

func (r *cartRepo) InsertItem(ctx context.Context, item *models.CartItem) error {
	return r.s.run(ctx, func(st *state) error {
		if _, ok := st.carts[item.CartID]; !ok {
			return models.NotFound("Cart")
		}
		if _, ok := st.products[item.ProductID]; !ok {
			return models.ProductNotFound(item.ProductID)
		}
		for _, row := range st.cartItems {
			if row.cartID == item.CartID && row.productID == item.ProductID {
				return models.Conflict("A record with this value already exists", nil)
			}
		}

		st.nextCartItem++
		now := r.s.now()
		row := cartItemRow{
			id:        st.nextCartItem,
			cartID:    item.CartID,
			productID: item.ProductID,
			quantity:  item.Quantity,
			createdAt: now,
			updatedAt: now,
		}
		st.cartItems[row.id] = row
		*item = *st.cartItem(row)
		return nil
	})
}

func (r *cartRepo) IncrementItem(ctx context.Context, itemID, delta int) (*models.CartItem, error) {
	return r.update(ctx, itemID, func(row *cartItemRow) { row.quantity += delta })
}

func (r *cartRepo) SetItemQuantity(ctx context.Context, itemID, quantity int) (*models.CartItem, error) {
	return r.update(ctx, itemID, func(row *cartItemRow) { row.quantity = quantity })
}

func (r *cartRepo) update(ctx context.Context, itemID int, apply func(row *cartItemRow)) (*models.CartItem, error) {
	var out *models.CartItem
	err := r.s.run(ctx, func(st *state) error {
		row, ok := st.cartItems[itemID]
		if !ok {
			return models.NotFound("Cart item")
		}
		apply(&row)
		row.updatedAt = r.s.now()
		st.cartItems[itemID] = row
		out = st.cartItem(row)
		return nil
	})
	return out, err
}

func (r *cartRepo) DeleteItem(ctx context.Context, itemID int) error {
	return r.s.run(ctx, func(st *state) error {
		if _, ok := st.cartItems[itemID]; !ok {
			return models.NotFound("Cart item")
		}
		delete(st.cartItems, itemID)
		return nil
	})
}

func (r *cartRepo) ClearItems(ctx context.Context, cartID int) (int, error) {
	var removed int
	err := r.s.run(ctx, func(st *state) error {
		for id, row := range st.cartItems {
			if row.cartID == cartID {
				delete(st.cartItems, id)
				removed++
			}
		}
		return nil
	})
	return removed, err
}

func (st *state) cart(cartID int) *models.Cart {
	row := st.carts[cartID]
	cart := &models.Cart{
		ID:        row.id,
		UserID:    row.userID,
		Items:     []models.CartItem{},
		CreatedAt: row.createdAt,
		UpdatedAt: row.updatedAt,
	}
	for _, id := range sortedKeys(st.cartItems) {
		item := st.cartItems[id]
		if item.cartID == cartID {
			cart.Items = append(cart.Items, *st.cartItem(item))
		}
	}
	return cart
}

func (st *state) cartItem(row cartItemRow) *models.CartItem {
	item := &models.CartItem{
		ID:        row.id,
		CartID:    row.cartID,
		ProductID: row.productID,
		Quantity:  row.quantity,
		CreatedAt: row.createdAt,
		UpdatedAt: row.updatedAt,
		UserID:    st.carts[row.cartID].userID,
	}
	if p, ok := st.products[row.productID]; ok {
		item.Product = p.Snapshot()
	}
	return item
}

type orderRepo struct{ s *session }

func (r *orderRepo) Create(ctx context.Context, order *models.Order) error {
	return r.s.run(ctx, func(st *state) error {
		for _, item := range order.Items {
			if _, ok := st.products[item.ProductID]; !ok {
				return models.ProductNotFound(item.ProductID)
			}
		}

		st.nextOrder++
		order.ID = st.nextOrder
		if order.CreatedAt.IsZero() {
			order.CreatedAt = r.s.now()
		}
		if order.Status == "" {
			order.Status = models.OrderStatusPending
		}

		stored := *order
		stored.Items = make([]models.OrderItem, len(order.Items))
		for i := range order.Items {
			st.nextOrderItem++
			order.Items[i].ID = st.nextOrderItem
			order.Items[i].OrderID = order.ID
			stored.Items[i] = order.Items[i]
			stored.Items[i].Product = nil
		}
		st.orders[order.ID] = stored
		return nil
	})
}

func (r *orderRepo) ListByUser(ctx context.Context, userID int) ([]models.Order, error) {
	out := []models.Order{}
	err := r.s.run(ctx, func(st *state) error {
		for _, o := range st.orders {
			if o.UserID == userID {
				out = append(out, *st.order(o))
			}
		}
		sort.Slice(out, func(i, j int) bool {
			if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
				return out[i].CreatedAt.After(out[j].CreatedAt)
			}
			return out[i].ID > out[j].ID
		})
		return nil
	})
	return out, err
}

func (r *orderRepo) FindByIDForUser(ctx context.Context, userID, orderID int) (*models.Order, error) {
	var out *models.Order
	err := r.s.run(ctx, func(st *state) error {
		o, ok := st.orders[orderID]
		if !ok || o.UserID != userID {
			return models.NotFound("Order")
		}
		out = st.order(o)
		return nil
	})
	return out, err
}

// order returns a copy of o with product summaries joined from the catalog.
func (st *state) order(o models.Order) *models.Order {
	out := o
	out.Items = make([]models.OrderItem, len(o.Items))
	for i, item := range o.Items {
		if p, ok := st.products[item.ProductID]; ok {
			item.Product = p.Summary()
		}
		out.Items[i] = item
	}
	return &out
}

type userRepo struct{ s *session }

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	return r.s.run(ctx, func(st *state) error {
		if _, ok := st.userEmails[user.Email]; ok {
			return models.Conflict("Email already registered", nil)
		}
		st.nextUser++
		user.ID = st.nextUser
		user.CreatedAt = r.s.now()
		st.users[user.ID] = *user
		st.userEmails[user.Email] = user.ID
		return nil
	})
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var out *models.User
	err := r.s.run(ctx, func(st *state) error {
		id, ok := st.userEmails[email]
		if !ok {
			return models.NotFound("User")
		}
		u := st.users[id]
		out = &u
		return nil
	})
	return out, err
}

func (r *userRepo) FindByID(ctx context.Context, id int) (*models.User, error) {
	var out *models.User
	err := r.s.run(ctx, func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return models.NotFound("User")
		}
		out = &u
		return nil
	})
	return out, err
}
