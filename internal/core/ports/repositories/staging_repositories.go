package repositories

import (
	"context"

	"github.com/smallbooks/smallbooks_backend/internal/core/domain"
)

// StagingReader defines read operations for staged transactions.
type StagingReader interface {
	// FindTransactionByID retrieves one staged transaction within the tenant.
	FindTransactionByID(ctx context.Context, userID, transactionID string) (*domain.StagedTransaction, error)

	// FindVendorTransactionIDs returns which of the given vendor ids are already
	// staged, for bank-feed de-duplication.
	FindVendorTransactionIDs(ctx context.Context, userID string, vendorIDs []string) (map[string]struct{}, error)

	// FindTransactionByLinkedEntry returns the staged transaction posted as the given
	// journal entry, or apperrors.ErrNotFound when the entry was posted directly.
	FindTransactionByLinkedEntry(ctx context.Context, userID, entryID string) (*domain.StagedTransaction, error)

	// ListTransactions retrieves staged transactions, optionally filtered by status,
	// newest first with keyset pagination.
	ListTransactions(ctx context.Context, userID string, status *domain.TransactionStatus, limit int, nextToken *string) ([]domain.StagedTransaction, *string, error)

	// CountByStatus counts staged transactions in the given status.
	CountByStatus(ctx context.Context, userID string, status domain.TransactionStatus) (int, error)
}

// StagingWriter defines write operations for staged transactions. Status transitions to
// and from posted happen through the journal repository's atomic SaveEntry, not here.
type StagingWriter interface {
	// SaveTransaction persists a newly staged transaction.
	SaveTransaction(ctx context.Context, txn domain.StagedTransaction) error

	// UpdateTransaction persists categorization changes to an unposted transaction.
	UpdateTransaction(ctx context.Context, txn domain.StagedTransaction) error
}

// StagingRepositoryFacade combines all staging repository interfaces.
type StagingRepositoryFacade interface {
	StagingReader
	StagingWriter
}
