package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/smallbooks/smallbooks_backend/internal/apperrors"
	"github.com/smallbooks/smallbooks_backend/internal/core/domain"
	portsrepo "github.com/smallbooks/smallbooks_backend/internal/core/ports/repositories"
	portssvc "github.com/smallbooks/smallbooks_backend/internal/core/ports/services"
	"github.com/smallbooks/smallbooks_backend/internal/dto"
	"github.com/smallbooks/smallbooks_backend/internal/utils/money"
)

// reconciliationService finalizes statement reconciliations, which double as period
// locks: once an account is locked through a date, nothing may post on or before it.
type reconciliationService struct {
	BaseService
	reconRepo   portsrepo.ReconciliationRepositoryFacade
	journalRepo portsrepo.EntryReader
	accountRepo portsrepo.AccountReader
	auditRepo   portsrepo.AuditWriter
}

// NewReconciliationService creates a new reconciliation service.
func NewReconciliationService(
	reconRepo portsrepo.ReconciliationRepositoryFacade,
	journalRepo portsrepo.EntryReader,
	accountRepo portsrepo.AccountReader,
	auditRepo portsrepo.AuditWriter,
) portssvc.ReconciliationSvcFacade {
	return &reconciliationService{
		reconRepo:   reconRepo,
		journalRepo: journalRepo,
		accountRepo: accountRepo,
		auditRepo:   auditRepo,
	}
}

var _ portssvc.ReconciliationSvcFacade = (*reconciliationService)(nil)

// LockedThrough returns the account's most recent locked statement end date.
func (s *reconciliationService) LockedThrough(ctx context.Context, userID string, accountID string) (*time.Time, error) {
	return s.reconRepo.LatestLockedEndDate(ctx, userID, accountID)
}

// ListReconciliations returns an account's reconciliation history, newest first.
func (s *reconciliationService) ListReconciliations(ctx context.Context, userID string, accountID string) ([]domain.Reconciliation, error) {
	return s.reconRepo.FindLocksByAccount(ctx, userID, accountID)
}

// parseLineID splits a "<entryID>-<lineIndex>" token. Entry ids are UUIDs and contain
// dashes themselves, so the split happens at the last dash.
func parseLineID(lineID string) (entryID string, index int, err error) {
	cut := strings.LastIndex(lineID, "-")
	if cut <= 0 || cut == len(lineID)-1 {
		return "", 0, fmt.Errorf("%w: malformed line id %q", apperrors.ErrValidation, lineID)
	}
	index, err = strconv.Atoi(lineID[cut+1:])
	if err != nil || index < 0 {
		return "", 0, fmt.Errorf("%w: malformed line id %q", apperrors.ErrValidation, lineID)
	}
	return lineID[:cut], index, nil
}

// FinalizeReconciliation locks the account through the statement end date. The cleared
// lines plus all previously cleared activity must sum exactly to the statement balance;
// a nonzero difference means the match is incomplete and nothing is written.
func (s *reconciliationService) FinalizeReconciliation(ctx context.Context, userID string, req dto.FinalizeReconciliationRequest) (*domain.Reconciliation, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthenticated
	}

	endDate, err := parseDate(req.StatementEndDate)
	if err != nil {
		return nil, err
	}
	statementBalance, exact := money.FromDecimal(req.StatementBalance)
	if !exact {
		s.LogWarn(ctx, "statement balance rounded to whole cents", slog.String("account_id", req.AccountID))
	}

	account, err := s.accountRepo.FindAccountByID(ctx, userID, req.AccountID)
	if err != nil {
		return nil, err
	}

	// Statement end dates must advance per account; re-locking an earlier or equal
	// period would reorder history.
	latest, err := s.reconRepo.LatestLockedEndDate(ctx, userID, account.AccountID)
	if err != nil {
		return nil, err
	}
	if latest != nil && !endDate.After(*latest) {
		return nil, fmt.Errorf("%w: statement end date %s does not advance past the last lock %s",
			apperrors.ErrConflict, endDate.Format(dateLayout), latest.Format(dateLayout))
	}

	newlyCleared, err := s.sumNewlyCleared(ctx, userID, account, req.ClearedLineIDs)
	if err != nil {
		return nil, err
	}

	prevDebits, prevCredits, err := s.journalRepo.SumClearedActivity(ctx, userID, account.AccountID)
	if err != nil {
		return nil, err
	}
	var prevCleared money.Cents
	if account.AccountType.IsDebitNormal() {
		prevCleared = prevDebits - prevCredits
	} else {
		prevCleared = prevCredits - prevDebits
	}

	difference := statementBalance - (prevCleared + newlyCleared)
	if difference != 0 {
		return nil, fmt.Errorf("%w: reconciliation difference is %s, must be zero",
			apperrors.ErrValidation, difference.String())
	}

	now := time.Now().UTC()
	rec := domain.Reconciliation{
		ReconciliationID: uuid.NewString(),
		UserID:           userID,
		BusinessID:       req.BusinessID,
		AccountID:        account.AccountID,
		StatementEndDate: endDate,
		StatementBalance: statementBalance,
		ClearedLineIDs:   req.ClearedLineIDs,
		IsLocked:         true,
		PerformedBy:      userID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.reconRepo.SaveReconciliation(ctx, rec); err != nil {
		s.LogError(ctx, err, "failed to save reconciliation", slog.String("account_id", account.AccountID))
		return nil, err
	}

	event := domain.AuditEvent{
		EventID:   uuid.NewString(),
		UserID:    userID,
		Timestamp: now,
		Action:    domain.AuditReconciliationLock,
		Details: fmt.Sprintf("account %s locked through %s (%d lines cleared)",
			account.Code, endDate.Format(dateLayout), len(req.ClearedLineIDs)),
	}
	if err := s.auditRepo.AppendEvent(ctx, event); err != nil {
		s.LogError(ctx, err, "failed to append reconciliation audit event", slog.String("account_id", account.AccountID))
	}

	s.LogInfo(ctx, "reconciliation finalized",
		slog.String("reconciliation_id", rec.ReconciliationID),
		slog.String("account_id", account.AccountID),
		slog.String("locked_through", endDate.Format(dateLayout)))
	return &rec, nil
}

// sumNewlyCleared resolves each cleared line id, verifies the line belongs to the
// reconciled account and is not already cleared, and folds the lines into the account's
// natural sign.
func (s *reconciliationService) sumNewlyCleared(ctx context.Context, userID string, account *domain.Account, lineIDs []string) (money.Cents, error) {
	entries := make(map[string]*domain.JournalEntry)
	var sum money.Cents
	for _, lineID := range lineIDs {
		entryID, index, err := parseLineID(lineID)
		if err != nil {
			return 0, err
		}
		entry, ok := entries[entryID]
		if !ok {
			entry, err = s.journalRepo.FindEntryByID(ctx, userID, entryID)
			if err != nil {
				return 0, fmt.Errorf("cleared line %s: %w", lineID, err)
			}
			entries[entryID] = entry
		}
		if index >= len(entry.Lines) {
			return 0, fmt.Errorf("%w: line %s does not exist", apperrors.ErrValidation, lineID)
		}
		line := entry.Lines[index]
		if line.AccountID != account.AccountID {
			return 0, fmt.Errorf("%w: line %s belongs to another account", apperrors.ErrValidation, lineID)
		}
		if line.IsCleared {
			return 0, &apperrors.ClearedLineProtectedError{
				EntryID:          entryID,
				LineID:           lineID,
				ReconciliationID: line.ReconciliationID,
			}
		}
		net := line.Debit - line.Credit
		if account.AccountType.IsDebitNormal() {
			sum += net
		} else {
			sum -= net
		}
	}
	return sum, nil
}
