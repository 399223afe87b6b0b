package repositories

import (
	"context"
	"time"

	"github.com/smallbooks/smallbooks_backend/internal/core/domain"
	"github.com/smallbooks/smallbooks_backend/internal/utils/money"
)

// StagedTransactionUpdate describes a staged-transaction state change that must be
// committed atomically with a journal entry write. A nil LinkedEntryID clears the link.
type StagedTransactionUpdate struct {
	TransactionID string
	Status        domain.TransactionStatus
	LinkedEntryID *string
}

// EntryReader defines read operations for journal data.
type EntryReader interface {
	// FindEntryByID retrieves one journal entry with its lines.
	FindEntryByID(ctx context.Context, userID, entryID string) (*domain.JournalEntry, error)

	// ListEntries retrieves a keyset-paginated page of entries, newest first.
	ListEntries(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.JournalEntry, *string, error)

	// FetchEntries retrieves all entries (with lines) in a date range for reporting
	// and balance derivation. Zero times mean an open bound; empty businessID means
	// every business.
	FetchEntries(ctx context.Context, userID string, from, to time.Time, businessID string) ([]domain.JournalEntry, error)

	// SumAccountActivity returns total debits and credits over every line referencing
	// the account. Balances are derived from these sums, never stored.
	SumAccountActivity(ctx context.Context, userID, accountID string) (debits, credits money.Cents, err error)

	// SumClearedActivity returns total debits and credits over the account's lines
	// already cleared by prior reconciliations.
	SumClearedActivity(ctx context.Context, userID, accountID string) (debits, credits money.Cents, err error)
}

// EntryWriter defines write operations for journal data. Entries are append-only: there
// is no update or delete.
type EntryWriter interface {
	// SaveEntry atomically persists the entry and its lines, re-checks period locks
	// for every referenced account inside the same transaction, applies the optional
	// staged-transaction transition, and appends an audit event. A lock finalized
	// concurrently surfaces as *apperrors.PeriodLockedError; contention surfaces as
	// apperrors.ErrPersistenceUnavailable after bounded retries.
	SaveEntry(ctx context.Context, entry domain.JournalEntry, txnUpdate *StagedTransactionUpdate, audit domain.AuditEvent) error
}

// JournalRepositoryFacade combines all journal repository interfaces.
type JournalRepositoryFacade interface {
	EntryReader
	EntryWriter
}
