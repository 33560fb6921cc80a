package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agrohub/marketplace/internal/port"
)

// querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx, so a
// repository works the same whether it owns a pool or joins a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// withTx executes fn within a transaction if the repository was created with a pool,
// or uses the existing transaction if the repository was created with a transaction.
func withTx[T any](ctx context.Context, db querier, fn func(q querier) (T, error)) (_ T, txErr error) {
	var zero T

	// Already in a transaction, just use it.
	if tx, ok := db.(pgx.Tx); ok {
		return fn(tx)
	}

	pool, ok := db.(*pgxpool.Pool)
	if !ok {
		return zero, fmt.Errorf("db is neither pgx.Tx nor *pgxpool.Pool: %T", db)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return zero, err
	}

	// Ensure proper rollback handling
	defer func() {
		if txErr != nil {
			rollbackErr := tx.Rollback(ctx)
			if rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				txErr = errors.Join(txErr, fmt.Errorf("tx.Rollback: %w", rollbackErr))
			}
		}
	}()

	result, err := fn(tx)
	if err != nil {
		return zero, err
	}

	if err := tx.Commit(ctx); err != nil {
		return zero, err
	}

	return result, nil
}

type txManager struct {
	pool *pgxpool.Pool
}

func NewTxManager(pool *pgxpool.Pool) port.TxManager {
	return &txManager{pool: pool}
}

// WithinTx opens one transaction and hands fn order and product
// repositories bound to it.
func (m *txManager) WithinTx(ctx context.Context, fn func(orders port.OrderRepository, products port.ProductRepository) error) error {
	_, err := withTx(ctx, m.pool, func(q querier) (struct{}, error) {
		tx, ok := q.(pgx.Tx)
		if !ok {
			return struct{}{}, fmt.Errorf("querier is not pgx.Tx: %T", q)
		}

		return struct{}{}, fn(NewOrderWithTx(tx), NewProductWithTx(tx))
	})
	return err
}
