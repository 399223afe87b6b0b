package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/smallbooks/smallbooks_backend/internal/apperrors"
	"github.com/smallbooks/smallbooks_backend/internal/core/domain"
	portsrepo "github.com/smallbooks/smallbooks_backend/internal/core/ports/repositories"
	portssvc "github.com/smallbooks/smallbooks_backend/internal/core/ports/services"
	"github.com/smallbooks/smallbooks_backend/internal/dto"
)

// adjustmentService implements the append-only correction workflow: a posted entry is
// never mutated, its effect is undone by a reversal and restated by a replacement,
// both committed in one transaction.
type adjustmentService struct {
	BaseService
	journalRepo portsrepo.JournalRepositoryFacade
	accountRepo portsrepo.AccountReader
	reconRepo   portsrepo.ReconciliationReader
	stagingRepo portsrepo.StagingReader
	auditRepo   portsrepo.AuditWriter
	txManager   portsrepo.TransactionManager
}

// NewAdjustmentService creates a new adjustment service.
func NewAdjustmentService(
	journalRepo portsrepo.JournalRepositoryFacade,
	accountRepo portsrepo.AccountReader,
	reconRepo portsrepo.ReconciliationReader,
	stagingRepo portsrepo.StagingReader,
	auditRepo portsrepo.AuditWriter,
	txManager portsrepo.TransactionManager,
) portssvc.AdjustmentSvc {
	return &adjustmentService{
		journalRepo: journalRepo,
		accountRepo: accountRepo,
		reconRepo:   reconRepo,
		stagingRepo: stagingRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
	}
}

var _ portssvc.AdjustmentSvc = (*adjustmentService)(nil)

// EditPostedEntry corrects a posted entry without touching the original record.
// Sequence: load the original, refuse if any of its lines is reconciliation-cleared,
// build the mirror reversal, build the replacement from the request, validate the
// replacement against locks, then commit both entries and the staged-transaction
// relink in a single transaction.
func (s *adjustmentService) EditPostedEntry(ctx context.Context, userID string, entryID string, req dto.EditPostedEntryRequest) (*domain.JournalEntry, *domain.JournalEntry, error) {
	if userID == "" {
		return nil, nil, apperrors.ErrUnauthenticated
	}
	if req.AdjustmentReason == "" {
		return nil, nil, fmt.Errorf("%w: an adjustment reason is required", apperrors.ErrValidation)
	}

	original, err := s.journalRepo.FindEntryByID(ctx, userID, entryID)
	if err != nil {
		return nil, nil, err
	}
	if err := checkClearedLines(original); err != nil {
		return nil, nil, err
	}

	newDate, err := parseDate(req.EntryDate)
	if err != nil {
		return nil, nil, err
	}
	newLines, roundedAny, err := convertLines(req.Lines)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	reversal := domain.JournalEntry{
		EntryID:          uuid.NewString(),
		UserID:           userID,
		BusinessID:       original.BusinessID,
		ProjectID:        original.ProjectID,
		EntryDate:        original.EntryDate,
		Description:      fmt.Sprintf("Adjustment reversal of %q", original.Description),
		Lines:            mirrorLines(original.EntryID, original.Lines),
		IsAdjustingEntry: true,
		AdjustmentReason: req.AdjustmentReason,
		OriginalEntryID:  original.EntryID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	replacement := domain.JournalEntry{
		EntryID:          uuid.NewString(),
		UserID:           userID,
		BusinessID:       original.BusinessID,
		ProjectID:        original.ProjectID,
		EntryDate:        newDate,
		Description:      req.Description,
		Lines:            newLines,
		IsAdjustingEntry: true,
		AdjustmentReason: req.AdjustmentReason,
		OriginalEntryID:  original.EntryID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if replacement.Description == "" {
		replacement.Description = original.Description
	}

	if err := validateEntryShape(replacement); err != nil {
		return nil, nil, err
	}
	accounts, err := resolveAccounts(ctx, s.accountRepo, userID, replacement)
	if err != nil {
		return nil, nil, err
	}
	// The replacement must land in an open period; the caller picked its date.
	if err := checkLocks(ctx, s.reconRepo, userID, replacement, accounts); err != nil {
		return nil, nil, err
	}

	// The reversal targets the original's date but moves forward when that period has
	// since been locked.
	movedDate, err := s.openDateFor(ctx, userID, &reversal)
	if err != nil {
		return nil, nil, err
	}

	// An entry that came through the staging bridge keeps its staged transaction
	// linked, now to the replacement.
	var relink *portsrepo.StagedTransactionUpdate
	linked, err := s.stagingRepo.FindTransactionByLinkedEntry(ctx, userID, original.EntryID)
	if err == nil {
		relink = &portsrepo.StagedTransactionUpdate{
			TransactionID: linked.TransactionID,
			Status:        domain.TxnPosted,
			LinkedEntryID: &replacement.EntryID,
		}
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil, err
	}

	reversalAudit := domain.AuditEvent{
		EventID:   uuid.NewString(),
		UserID:    userID,
		Timestamp: now,
		Action:    domain.AuditEntryReversed,
		Details: fmt.Sprintf("entry %s reversed by adjustment %s: %s",
			original.EntryID, reversal.EntryID, req.AdjustmentReason),
	}
	replacementAudit := domain.AuditEvent{
		EventID:   uuid.NewString(),
		UserID:    userID,
		Timestamp: now,
		Action:    domain.AuditEntryPosted,
		Details: fmt.Sprintf("adjustment %s replaces entry %s: %s",
			replacement.EntryID, original.EntryID, req.AdjustmentReason),
	}

	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.journalRepo.SaveEntry(ctx, reversal, nil, reversalAudit); err != nil {
			return err
		}
		return s.journalRepo.SaveEntry(ctx, replacement, relink, replacementAudit)
	})
	if err != nil {
		s.LogError(ctx, err, "adjustment failed, nothing was written", slog.String("entry_id", entryID))
		return nil, nil, err
	}

	if movedDate {
		s.appendAudit(ctx, userID, domain.AuditReversalDateMoved,
			fmt.Sprintf("adjustment reversal of entry %s moved from %s to %s (period locked)",
				original.EntryID, original.EntryDate.Format(dateLayout), reversal.EntryDate.Format(dateLayout)))
	}
	if roundedAny {
		s.appendAudit(ctx, userID, domain.AuditAmountRounded,
			fmt.Sprintf("amounts on adjustment %s rounded to whole cents", replacement.EntryID))
	}

	s.LogInfo(ctx, "posted entry adjusted",
		slog.String("original_entry_id", original.EntryID),
		slog.String("reversal_entry_id", reversal.EntryID),
		slog.String("replacement_entry_id", replacement.EntryID))
	return &reversal, &replacement, nil
}

// openDateFor moves the reversal's date to the first day of the month after the latest
// lock covering it, if any.
func (s *adjustmentService) openDateFor(ctx context.Context, userID string, entry *domain.JournalEntry) (bool, error) {
	locks, err := s.reconRepo.LatestLockedEndDates(ctx, userID)
	if err != nil {
		return false, err
	}
	var latest time.Time
	for _, id := range entry.AccountIDs() {
		lockedThrough, ok := locks[id]
		if !ok || entry.EntryDate.After(lockedThrough) {
			continue
		}
		if lockedThrough.After(latest) {
			latest = lockedThrough
		}
	}
	if latest.IsZero() {
		return false, nil
	}
	entry.EntryDate = time.Date(latest.Year(), latest.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return true, nil
}

func (s *adjustmentService) appendAudit(ctx context.Context, userID string, action domain.AuditAction, details string) {
	event := domain.AuditEvent{
		EventID:   uuid.NewString(),
		UserID:    userID,
		Timestamp: time.Now().UTC(),
		Action:    action,
		Details:   details,
	}
	if err := s.auditRepo.AppendEvent(ctx, event); err != nil {
		s.LogError(ctx, err, "failed to append audit event", slog.String("action", string(action)))
	}
}
