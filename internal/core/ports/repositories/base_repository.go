package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TransactionManager is implemented by repositories whose multi-statement
// operations need a transaction, e.g. publishing an issue together with its
// submission updates, or claiming a job batch with SKIP LOCKED.
type TransactionManager interface {
	// Begin starts a new database transaction.
	Begin(ctx context.Context) (pgx.Tx, error)

	// Commit commits the transaction.
	Commit(ctx context.Context, tx pgx.Tx) error

	// Rollback rolls the transaction back. Rolling back an already settled
	// transaction is a no-op, so it is safe to defer.
	Rollback(ctx context.Context, tx pgx.Tx) error
}
