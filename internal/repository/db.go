package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// beginner is satisfied by pgx.Tx (nested transaction / savepoint) and by
// *pgxpool.Pool (plain transaction).
type beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// execInNested executes sql inside a nested transaction when the querier
// supports one. Postgres aborts the whole transaction on a constraint
// violation; the savepoint confines the abort to the single statement so
// the caller can map the violation to a domain error and retry.
func execInNested(ctx context.Context, querier DBTX, sql string, args ...any) error {
	b, ok := querier.(beginner)
	if !ok {
		_, err := querier.Exec(ctx, sql, args...)
		return err
	}

	inner, err := b.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin nested tx: %w", err)
	}
	if _, err := inner.Exec(ctx, sql, args...); err != nil {
		_ = inner.Rollback(ctx)
		return err
	}
	if err := inner.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit nested tx: %w", err)
	}
	return nil
}
