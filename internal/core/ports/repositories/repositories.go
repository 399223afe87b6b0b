package repositories

import "context"

// TransactionManager is implemented by repositories that can run a function within a
// single datastore transaction.
type TransactionManager interface {
	// WithinTransaction executes fn inside one atomic unit; the whole unit is rolled
	// back when fn returns an error.
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
