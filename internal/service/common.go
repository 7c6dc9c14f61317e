package service

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kore-signet/blaseball-highlights-server/internal/repository"
)

// TxManager runs a function inside one transactional scope. Every public
// operation of the services below is one such scope: committed only on
// full success, rolled back entirely on any failure, with the pooled
// connection released on every exit path.
type TxManager interface {
	WithTx(ctx context.Context, fn func(querier repository.DBTX) error) error
}

type pgxTxManager struct {
	pool *pgxpool.Pool
}

// NewPgxTxManager creates a TxManager backed by a pgx connection pool.
func NewPgxTxManager(pool *pgxpool.Pool) TxManager {
	return &pgxTxManager{pool: pool}
}

// WithTx выполняет fn в рамках транзакции, коммитит при успехе или откатывает при ошибке.
func (m *pgxTxManager) WithTx(ctx context.Context, fn func(querier repository.DBTX) error) error {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	// Откат при панике
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback(context.Background())
			panic(r)
		}
	}()
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit tx: %w", err)
	}
	return nil
}

var _ TxManager = (*pgxTxManager)(nil)

// Отдельная переменная для проверки интерфейса pgx.Tx как DBTX
var _ repository.DBTX = (pgx.Tx)(nil)
