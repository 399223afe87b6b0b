package domain

import (
	"time"

	"github.com/smallbooks/smallbooks_backend/internal/utils/money"
)

// Reconciliation is a period lock: it asserts that all journal activity for one account
// through StatementEndDate has been matched against a bank statement and must not change.
// Created once per finalize action and immutable thereafter; no unlock operation exists.
type Reconciliation struct {
	ReconciliationID string      `json:"reconciliationID"`
	UserID           string      `json:"userID"` // Tenant owner
	BusinessID       string      `json:"businessID"`
	AccountID        string      `json:"accountID"`
	StatementEndDate time.Time   `json:"statementEndDate"` // Date-only, UTC
	StatementBalance money.Cents `json:"statementBalance"`
	ClearedLineIDs   []string    `json:"clearedLineIDs"` // "<entryID>-<lineIndex>" tokens
	IsLocked         bool        `json:"isLocked"`
	PerformedBy      string      `json:"performedBy"`
	AuditFields
}

// Covers reports whether the lock applies to the given posting date.
func (r Reconciliation) Covers(date time.Time) bool {
	return r.IsLocked && !date.After(r.StatementEndDate)
}
