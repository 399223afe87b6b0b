package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/smallbooks/smallbooks_backend/internal/core/domain"
)

// FinalizeReconciliationRequest defines the data needed to finalize a
// reconciliation and lock the account through the statement end date.
type FinalizeReconciliationRequest struct {
	AccountID        string          `json:"accountID" binding:"required"`
	BusinessID       string          `json:"businessID"`
	StatementEndDate string          `json:"statementEndDate" binding:"required,datetime=2006-01-02"`
	StatementBalance decimal.Decimal `json:"statementBalance"`
	ClearedLineIDs   []string        `json:"clearedLineIDs" binding:"required,min=1"`
}

// ReconciliationResponse defines the data returned for a reconciliation record.
type ReconciliationResponse struct {
	ReconciliationID string          `json:"reconciliationID"`
	AccountID        string          `json:"accountID"`
	BusinessID       string          `json:"businessID,omitempty"`
	StatementEndDate time.Time       `json:"statementEndDate"`
	StatementBalance decimal.Decimal `json:"statementBalance"`
	ClearedLineCount int             `json:"clearedLineCount"`
	IsLocked         bool            `json:"isLocked"`
	PerformedBy      string          `json:"performedBy"`
	CreatedAt        time.Time       `json:"createdAt"`
}

// LockStatusResponse reports how far an account is locked.
type LockStatusResponse struct {
	AccountID     string     `json:"accountID"`
	LockedThrough *time.Time `json:"lockedThrough,omitempty"`
}

// ListReconciliationsResponse wraps an account's reconciliation history.
type ListReconciliationsResponse struct {
	Reconciliations []ReconciliationResponse `json:"reconciliations"`
}

// ToReconciliationResponse converts a domain.Reconciliation to ReconciliationResponse.
func ToReconciliationResponse(rec *domain.Reconciliation) ReconciliationResponse {
	return ReconciliationResponse{
		ReconciliationID: rec.ReconciliationID,
		AccountID:        rec.AccountID,
		BusinessID:       rec.BusinessID,
		StatementEndDate: rec.StatementEndDate,
		StatementBalance: rec.StatementBalance.ToDecimal(),
		ClearedLineCount: len(rec.ClearedLineIDs),
		IsLocked:         rec.IsLocked,
		PerformedBy:      rec.PerformedBy,
		CreatedAt:        rec.CreatedAt,
	}
}

// ToListReconciliationsResponse converts a slice of domain.Reconciliation.
func ToListReconciliationsResponse(recs []domain.Reconciliation) ListReconciliationsResponse {
	res := make([]ReconciliationResponse, len(recs))
	for i, r := range recs {
		res[i] = ToReconciliationResponse(&r)
	}
	return ListReconciliationsResponse{Reconciliations: res}
}
