package services

import (
	"context"
	"time"

	"github.com/smallbooks/smallbooks_backend/internal/core/domain"
	"github.com/smallbooks/smallbooks_backend/internal/dto"
)

// ReconciliationReaderSvc defines read operations for period locks.
type ReconciliationReaderSvc interface {
	// LockedThrough returns the account's most recent locked statement end date,
	// or nil when the account has never been reconciled.
	LockedThrough(ctx context.Context, userID string, accountID string) (*time.Time, error)

	// ListReconciliations returns an account's reconciliation history, newest first.
	ListReconciliations(ctx context.Context, userID string, accountID string) ([]domain.Reconciliation, error)
}

// ReconciliationWriterSvc defines the finalize operation.
type ReconciliationWriterSvc interface {
	// FinalizeReconciliation verifies the cleared lines sum to the statement balance,
	// creates the immutable lock record, and marks the lines cleared. Statement end
	// dates must advance monotonically per account.
	FinalizeReconciliation(ctx context.Context, userID string, req dto.FinalizeReconciliationRequest) (*domain.Reconciliation, error)
}

// ReconciliationSvcFacade combines all reconciliation service interfaces.
type ReconciliationSvcFacade interface {
	ReconciliationReaderSvc
	ReconciliationWriterSvc
}
