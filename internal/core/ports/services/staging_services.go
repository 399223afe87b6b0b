package services

import (
	"context"

	"github.com/smallbooks/smallbooks_backend/internal/core/domain"
	"github.com/smallbooks/smallbooks_backend/internal/dto"
)

// StagingReaderSvc defines read operations for staged transactions.
type StagingReaderSvc interface {
	// GetTransactionByID retrieves one staged transaction.
	GetTransactionByID(ctx context.Context, userID string, transactionID string) (*domain.StagedTransaction, error)

	// ListTransactions retrieves a keyset-paginated list of staged transactions,
	// optionally filtered by status.
	ListTransactions(ctx context.Context, userID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)
}

// StagingWriterSvc defines ingest and categorization operations.
type StagingWriterSvc interface {
	// IngestBankTransactions stages a bank-feed batch, negating the vendor sign
	// convention and skipping vendor transaction ids already seen. Returns the
	// staged and skipped counts.
	IngestBankTransactions(ctx context.Context, userID string, req dto.IngestBankTransactionsRequest) (staged int, skipped int, err error)

	// CreateManualTransaction stages a hand-entered transaction.
	CreateManualTransaction(ctx context.Context, userID string, req dto.CreateManualTransactionRequest) (*domain.StagedTransaction, error)

	// CategorizeTransaction assigns kind, account, and tags to an unposted
	// transaction. Posted transactions cannot be recategorized here.
	CategorizeTransaction(ctx context.Context, userID string, transactionID string, req dto.CategorizeTransactionRequest) (*domain.StagedTransaction, error)
}

// StagingPosterSvc bridges staged transactions into the journal.
type StagingPosterSvc interface {
	// PostTransaction builds the double-entry lines for a categorized transaction
	// and posts them atomically with the status flip to posted.
	PostTransaction(ctx context.Context, userID string, transactionID string) (*domain.StagedTransaction, *domain.JournalEntry, error)
}

// StagingSvcFacade combines all staging service interfaces.
type StagingSvcFacade interface {
	StagingReaderSvc
	StagingWriterSvc
	StagingPosterSvc
}
