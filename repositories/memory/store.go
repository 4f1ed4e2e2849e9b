// Package memory is an in-process Store used by tests and by STORE_DRIVER=memory.
//
// A transaction holds the store lock for its whole lifetime and works on a
// private copy of the state, which replaces the live state only when the
// callback returns nil. Single calls outside a transaction take the same lock,
// so every operation is serialized against every transaction.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"mini-shop/models"
	"mini-shop/repositories"
)

type Store struct {
	mu    sync.Mutex
	state *state
	now   func() time.Time
}

type Option func(*Store)

// WithClock replaces time.Now for created_at/updated_at stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(opts ...Option) *Store {
	s := &Store{state: newState(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ repositories.Store = (*Store)(nil)

func (s *Store) Products() repositories.ProductRepository { return s.session().Products() }
func (s *Store) Carts() repositories.CartRepository       { return s.session().Carts() }
func (s *Store) Orders() repositories.OrderRepository     { return s.session().Orders() }
func (s *Store) Inventory() repositories.InventoryLedger  { return s.session().Inventory() }
func (s *Store) Users() repositories.UserRepository       { return s.session().Users() }

func (s *Store) WithinTx(ctx context.Context, fn func(tx repositories.Store) error) error {
	return s.session().WithinTx(ctx, fn)
}

func (s *Store) session() *session { return &session{store: s} }

// session is a view of the store; tx is set inside WithinTx.
type session struct {
	store *Store
	tx    *state
}

func (s *session) Products() repositories.ProductRepository { return &productRepo{s} }
func (s *session) Carts() repositories.CartRepository       { return &cartRepo{s} }
func (s *session) Orders() repositories.OrderRepository     { return &orderRepo{s} }
func (s *session) Inventory() repositories.InventoryLedger  { return &inventoryRepo{s} }
func (s *session) Users() repositories.UserRepository       { return &userRepo{s} }

func (s *session) WithinTx(ctx context.Context, fn func(tx repositories.Store) error) error {
	if s.tx != nil {
		return fn(s)
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	work := s.store.state.clone()
	if err := fn(&session{store: s.store, tx: work}); err != nil {
		return err
	}
	s.store.state = work
	return nil
}

func (s *session) run(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.tx != nil {
		return fn(s.tx)
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	return fn(s.store.state)
}

func (s *session) now() time.Time { return s.store.now() }

type cartRow struct {
	id        int
	userID    int
	createdAt time.Time
	updatedAt time.Time
}

type cartItemRow struct {
	id        int
	cartID    int
	productID int
	quantity  int
	createdAt time.Time
	updatedAt time.Time
}

type state struct {
	products   map[int]models.Product
	carts      map[int]cartRow
	cartByUser map[int]int
	cartItems  map[int]cartItemRow
	orders     map[int]models.Order
	users      map[int]models.User
	userEmails map[string]int

	nextProduct   int
	nextCart      int
	nextCartItem  int
	nextOrder     int
	nextOrderItem int
	nextUser      int
}

func newState() *state {
	return &state{
		products:   map[int]models.Product{},
		carts:      map[int]cartRow{},
		cartByUser: map[int]int{},
		cartItems:  map[int]cartItemRow{},
		orders:     map[int]models.Order{},
		users:      map[int]models.User{},
		userEmails: map[string]int{},
	}
}

// clone copies every map. Order item slices are never mutated after insert,
// so they are shared.
func (st *state) clone() *state {
	c := *st
	c.products = copyMap(st.products)
	c.carts = copyMap(st.carts)
	c.cartByUser = copyMap(st.cartByUser)
	c.cartItems = copyMap(st.cartItems)
	c.orders = copyMap(st.orders)
	c.users = copyMap(st.users)
	c.userEmails = copyMap(st.userEmails)
	return &c
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
