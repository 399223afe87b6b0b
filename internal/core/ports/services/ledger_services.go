package services

import (
	"context"

	"github.com/smallbooks/smallbooks_backend/internal/core/domain"
	"github.com/smallbooks/smallbooks_backend/internal/dto"
	"github.com/smallbooks/smallbooks_backend/internal/utils/money"
)

// LedgerReaderSvc defines read operations for journal data.
type LedgerReaderSvc interface {
	// GetEntryByID retrieves a specific journal entry with its lines.
	GetEntryByID(ctx context.Context, userID string, entryID string) (*domain.JournalEntry, error)

	// ListEntries retrieves a keyset-paginated list of journal entries, newest first.
	ListEntries(ctx context.Context, userID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error)
}

// LedgerWriterSvc defines write operations for journal data.
type LedgerWriterSvc interface {
	// PostEntry validates and persists a new balanced journal entry.
	PostEntry(ctx context.Context, userID string, req dto.CreateEntryRequest) (*domain.JournalEntry, error)

	// ReverseEntry posts a mirror-image entry for an existing one. The reversal is
	// dated to the original's date unless that period is locked, in which case it
	// lands on the first day of the earliest open month.
	ReverseEntry(ctx context.Context, userID string, entryID string, reason string) (*domain.JournalEntry, error)
}

// LedgerCalculatorSvc defines derived calculations over journal data.
type LedgerCalculatorSvc interface {
	// CalculateAccountBalance derives the account's current balance from its posted
	// activity. Balances are never stored.
	CalculateAccountBalance(ctx context.Context, userID string, accountID string) (money.Cents, error)
}

// LedgerSvcFacade combines all ledger-related service interfaces.
type LedgerSvcFacade interface {
	LedgerReaderSvc
	LedgerWriterSvc
	LedgerCalculatorSvc
}
