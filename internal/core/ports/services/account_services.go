package services

import (
	"context"

	"github.com/smallbooks/smallbooks_backend/internal/core/domain"
	"github.com/smallbooks/smallbooks_backend/internal/dto"
)

// AccountReaderSvc defines read operations for the chart of accounts.
type AccountReaderSvc interface {
	// GetAccountByID retrieves a specific account by its unique identifier.
	GetAccountByID(ctx context.Context, userID string, accountID string) (*domain.Account, error)

	// ListAccounts retrieves the tenant's chart of accounts. Archived accounts are
	// included only when requested.
	ListAccounts(ctx context.Context, userID string, includeArchived bool) ([]domain.Account, error)
}

// AccountWriterSvc defines write operations for the chart of accounts.
type AccountWriterSvc interface {
	// CreateAccount persists a new account, deriving its chart code and, for child
	// accounts, inheriting the parent's type.
	CreateAccount(ctx context.Context, userID string, req dto.CreateAccountRequest) (*domain.Account, error)

	// UpdateAccount updates an account's mutable details. Code and type are fixed
	// at creation.
	UpdateAccount(ctx context.Context, userID string, accountID string, req dto.UpdateAccountRequest) (*domain.Account, error)

	// ArchiveAccount hides an account from pickers. Posted history keeps referencing
	// it; nothing is deleted.
	ArchiveAccount(ctx context.Context, userID string, accountID string) error
}

// AccountSvcFacade combines all account-related service interfaces.
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}
