package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxBeginner is a DBTX that can open transactions, such as *pgxpool.Pool.
type TxBeginner interface {
	DBTX
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

type PgStore struct {
	pool TxBeginner
	db   DBTX
	inTx bool
}

func NewPgStore(pool TxBeginner) *PgStore {
	return &PgStore{pool: pool, db: pool}
}

func (s *PgStore) Products() ProductRepository { return &productRepo{db: s.db} }
func (s *PgStore) Carts() CartRepository       { return &cartRepo{db: s.db} }
func (s *PgStore) Orders() OrderRepository     { return &orderRepo{db: s.db} }
func (s *PgStore) Inventory() InventoryLedger  { return &inventoryRepo{db: s.db} }
func (s *PgStore) Users() UserRepository       { return &userRepo{db: s.db} }

// WithinTx runs fn in one database transaction. A nested call joins the
// outer transaction.
func (s *PgStore) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&PgStore{pool: s.pool, db: tx, inTx: true}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
