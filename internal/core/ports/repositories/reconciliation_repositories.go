package repositories

import (
	"context"
	"time"

	"github.com/smallbooks/smallbooks_backend/internal/core/domain"
)

// ReconciliationReader defines read operations for period-lock records.
type ReconciliationReader interface {
	// LatestLockedEndDate returns the most recent locked statement end date for the
	// account, or nil when the account has never been locked.
	LatestLockedEndDate(ctx context.Context, userID, accountID string) (*time.Time, error)

	// LatestLockedEndDates returns the most recent locked statement end date per
	// account for the whole tenant.
	LatestLockedEndDates(ctx context.Context, userID string) (map[string]time.Time, error)

	// FindLocksByAccount lists every reconciliation for the account, newest first.
	FindLocksByAccount(ctx context.Context, userID, accountID string) ([]domain.Reconciliation, error)

	// FindClearingLocks maps each given line id to the id of the locked
	// reconciliation that cleared it. Lines absent from the result are not cleared.
	FindClearingLocks(ctx context.Context, userID string, lineIDs []string) (map[string]string, error)
}

// ReconciliationWriter defines write operations for period-lock records.
type ReconciliationWriter interface {
	// SaveReconciliation atomically persists the lock record and marks each cleared
	// line with the reconciliation id.
	SaveReconciliation(ctx context.Context, rec domain.Reconciliation) error
}

// ReconciliationRepositoryFacade combines all reconciliation repository interfaces.
type ReconciliationRepositoryFacade interface {
	ReconciliationReader
	ReconciliationWriter
}
