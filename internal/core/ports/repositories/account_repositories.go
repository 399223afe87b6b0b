package repositories

import (
	"context"
	"time"

	"github.com/smallbooks/smallbooks_backend/internal/core/domain"
)

// AccountReader defines read operations for chart-of-accounts data. Every call is
// scoped by the tenant's user id; implementations fail loudly when it is empty.
type AccountReader interface {
	// FindAccountByID retrieves a single account within the tenant.
	FindAccountByID(ctx context.Context, userID, accountID string) (*domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts keyed by id.
	FindAccountsByIDs(ctx context.Context, userID string, accountIDs []string) (map[string]domain.Account, error)

	// ListAccounts retrieves the tenant's accounts ordered by code. Archived accounts
	// are included only when includeArchived is set.
	ListAccounts(ctx context.Context, userID string, includeArchived bool) ([]domain.Account, error)

	// CountChildren returns how many accounts name parentID as their parent.
	CountChildren(ctx context.Context, userID, parentID string) (int, error)

	// CountByType returns how many root accounts of the given type exist.
	CountByType(ctx context.Context, userID string, accountType domain.AccountType) (int, error)
}

// AccountWriter defines write operations for chart-of-accounts data.
type AccountWriter interface {
	// SaveAccount persists a new account.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccount persists changes to an account's mutable fields. Code and type
	// never change after creation.
	UpdateAccount(ctx context.Context, account domain.Account) error

	// ArchiveAccount soft-archives an account; it stays referenceable forever.
	ArchiveAccount(ctx context.Context, userID, accountID, archivedBy string, archivedAt time.Time) error
}

// AccountRepositoryFacade combines all account repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}
