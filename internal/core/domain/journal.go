package domain

import (
	"fmt"
	"time"

	"github.com/smallbooks/smallbooks_backend/internal/utils/money"
)

// JournalLine is one leg of a journal entry. Exactly one of Debit/Credit is expected to
// be nonzero in normal use; zero-zero lines are tolerated as no-ops.
type JournalLine struct {
	AccountID        string      `json:"accountID"`
	Debit            money.Cents `json:"debit"`  // >= 0
	Credit           money.Cents `json:"credit"` // >= 0
	Description      string      `json:"description"`
	ContractorID     string      `json:"contractorID,omitempty"`
	ProjectID        string      `json:"projectID,omitempty"`
	BusinessID       string      `json:"businessID,omitempty"`
	IsCleared        bool        `json:"isCleared"`
	ReconciliationID string      `json:"reconciliationID,omitempty"` // Set once a reconciliation locks the line
}

// LineID returns the identity token a reconciliation uses to clear a line:
// "<entryID>-<lineIndex>".
func LineID(entryID string, index int) string {
	return fmt.Sprintf("%s-%d", entryID, index)
}

// JournalEntry is an immutable-once-posted record. Corrections are modeled as new
// reversing entries; an entry is never mutated or deleted after posting.
type JournalEntry struct {
	EntryID          string        `json:"entryID"` // Primary key (UUID)
	UserID           string        `json:"userID"`  // Tenant owner (NON-NULL)
	BusinessID       string        `json:"businessID"`
	ProjectID        string        `json:"projectID,omitempty"`
	EntryDate        time.Time     `json:"entryDate"` // Date-only, UTC
	Description      string        `json:"description"`
	Lines            []JournalLine `json:"lines"` // Order is display-significant
	IsAdjustingEntry bool          `json:"isAdjustingEntry"`
	AdjustmentReason string        `json:"adjustmentReason,omitempty"`
	OriginalEntryID  string        `json:"originalEntryID,omitempty"` // Set on reversals
	AuditFields
}

// TotalDebits sums the debit side of all lines.
func (e JournalEntry) TotalDebits() money.Cents {
	var sum money.Cents
	for _, l := range e.Lines {
		sum += l.Debit
	}
	return sum
}

// TotalCredits sums the credit side of all lines.
func (e JournalEntry) TotalCredits() money.Cents {
	var sum money.Cents
	for _, l := range e.Lines {
		sum += l.Credit
	}
	return sum
}

// IsBalanced reports whether debits equal credits exactly, in minor units.
func (e JournalEntry) IsBalanced() bool {
	return e.TotalDebits() == e.TotalCredits()
}

// AccountIDs returns the distinct account ids referenced by the entry's lines,
// in first-seen order.
func (e JournalEntry) AccountIDs() []string {
	seen := make(map[string]struct{}, len(e.Lines))
	ids := make([]string, 0, len(e.Lines))
	for _, l := range e.Lines {
		if _, ok := seen[l.AccountID]; ok {
			continue
		}
		seen[l.AccountID] = struct{}{}
		ids = append(ids, l.AccountID)
	}
	return ids
}
