package domain

import "time"

// AuditAction tags an audit event with the operation that produced it.
type AuditAction string

const (
	AuditEntryPosted        AuditAction = "ENTRY_POSTED"
	AuditEntryReversed      AuditAction = "ENTRY_REVERSED"
	AuditReversalDateMoved  AuditAction = "REVERSAL_DATE_MOVED"
	AuditReconciliationLock AuditAction = "RECONCILIATION_LOCKED"
	AuditAccountArchived    AuditAction = "ACCOUNT_ARCHIVED"
	AuditAmountRounded      AuditAction = "AMOUNT_ROUNDED"
)

// AuditEvent is an append-only log record. The core only ever writes these; they are
// read back exclusively by the audit UI.
type AuditEvent struct {
	EventID   string      `json:"eventID"`
	UserID    string      `json:"userID"`
	Timestamp time.Time   `json:"timestamp"`
	Action    AuditAction `json:"action"`
	Details   string      `json:"details"`
}
