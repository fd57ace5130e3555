package repositories

import "context"

// TxFn is a unit of work. Every repository call made with its ctx joins the
// surrounding transaction.
type TxFn func(ctx context.Context) error

// TransactionManager runs a TxFn atomically. A pack transition's status
// change, version snapshot, approval row and timeline entry all go through
// one ExecTx call.
type TransactionManager interface {
	// ExecTx commits when fn returns nil and rolls back otherwise.
	// Calls made with a ctx that already carries a transaction reuse it.
	ExecTx(ctx context.Context, fn TxFn) error
}
