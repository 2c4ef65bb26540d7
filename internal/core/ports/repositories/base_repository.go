package repositories

import "context"

// TxFunc is one unit of work. The repository it receives is bound to the
// transaction; nothing written through it is visible until fn returns nil.
type TxFunc func(ctx context.Context, repo AdvanceRepositoryFacade) error

// TransactionManager defines methods for transaction management
type TransactionManager interface {
	// RunInTx commits when fn returns nil and rolls back otherwise.
	RunInTx(ctx context.Context, fn TxFunc) error
}
