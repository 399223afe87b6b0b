package apperrors

import (
	"fmt"
	"time"
)

// ImbalanceError reports that a proposed journal entry's debits and credits do not match.
// Amounts are in minor units (cents).
type ImbalanceError struct {
	Debits  int64
	Credits int64
}

func (e *ImbalanceError) Error() string {
	return fmt.Sprintf("journal entry does not balance: debits %d != credits %d (minor units)", e.Debits, e.Credits)
}

// Is lets callers match an ImbalanceError with errors.Is against ErrValidation.
func (e *ImbalanceError) Is(target error) bool {
	return target == ErrValidation
}

// PeriodLockedError reports that an account is closed through a reconciliation lock.
type PeriodLockedError struct {
	AccountID     string
	AccountCode   string
	EntryDate     time.Time
	LockedThrough time.Time
}

func (e *PeriodLockedError) Error() string {
	return fmt.Sprintf("account %s closed through %s; cannot post to %s",
		e.AccountCode, e.LockedThrough.Format("2006-01-02"), e.EntryDate.Format("2006-01-02"))
}

func (e *PeriodLockedError) Is(target error) bool {
	return target == ErrConflict
}

// ClearedLineProtectedError reports an attempt to alter a journal line that a locked
// reconciliation already cleared. Un-clearing is a separate, audited operation.
type ClearedLineProtectedError struct {
	EntryID          string
	LineID           string
	ReconciliationID string
}

func (e *ClearedLineProtectedError) Error() string {
	return fmt.Sprintf("line %s of entry %s is cleared by reconciliation %s and cannot be altered",
		e.LineID, e.EntryID, e.ReconciliationID)
}

func (e *ClearedLineProtectedError) Is(target error) bool {
	return target == ErrConflict
}

// MissingAssignmentError reports a staged transaction that cannot be converted into journal
// lines because a required assignment was not chosen. Recoverable by the user.
type MissingAssignmentError struct {
	TransactionID string
	Field         string
}

func (e *MissingAssignmentError) Error() string {
	return fmt.Sprintf("transaction %s is missing required assignment %q", e.TransactionID, e.Field)
}

func (e *MissingAssignmentError) Is(target error) bool {
	return target == ErrValidation
}
