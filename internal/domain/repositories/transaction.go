package repositories

import "context"

// TxFn is a function that runs within a transaction
type TxFn func(ctx context.Context) error

// TransactionManager handles database transactions.
// Repositories called with the ctx passed to fn join the transaction.
type TransactionManager interface {
	ExecTx(ctx context.Context, fn TxFn) error
}

// NoopTransactionManager runs fn directly. Used with in-memory repositories.
type NoopTransactionManager struct{}

// ExecTx calls fn with ctx unchanged
func (NoopTransactionManager) ExecTx(ctx context.Context, fn TxFn) error {
	return fn(ctx)
}
