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
	"github.com/smallbooks/smallbooks_backend/internal/utils/money"
)

const dateLayout = "2006-01-02"

// maxListLimit caps page sizes on listing endpoints.
const maxListLimit = 100

// ledgerService provides core journal posting and balance derivation.
type ledgerService struct {
	BaseService
	journalRepo portsrepo.JournalRepositoryFacade
	accountRepo portsrepo.AccountReader
	reconRepo   portsrepo.ReconciliationReader
	stagingRepo portsrepo.StagingReader
	auditRepo   portsrepo.AuditWriter
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(
	journalRepo portsrepo.JournalRepositoryFacade,
	accountRepo portsrepo.AccountReader,
	reconRepo portsrepo.ReconciliationReader,
	stagingRepo portsrepo.StagingReader,
	auditRepo portsrepo.AuditWriter,
) portssvc.LedgerSvcFacade {
	return &ledgerService{
		journalRepo: journalRepo,
		accountRepo: accountRepo,
		reconRepo:   reconRepo,
		stagingRepo: stagingRepo,
		auditRepo:   auditRepo,
	}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q", apperrors.ErrValidation, s)
	}
	return t.UTC(), nil
}

// convertLines turns decimal request lines into integer-cent journal lines. The second
// return value reports whether any amount had to be rounded to land on a cent.
func convertLines(lines []dto.CreateEntryLineRequest) ([]domain.JournalLine, bool, error) {
	out := make([]domain.JournalLine, 0, len(lines))
	rounded := false
	for i, l := range lines {
		debit, debitExact := money.FromDecimal(l.Debit)
		credit, creditExact := money.FromDecimal(l.Credit)
		if !debitExact || !creditExact {
			rounded = true
		}
		if debit < 0 || credit < 0 {
			return nil, false, fmt.Errorf("%w: line %d has a negative amount", apperrors.ErrValidation, i)
		}
		if debit > 0 && credit > 0 {
			return nil, false, fmt.Errorf("%w: line %d has both a debit and a credit", apperrors.ErrValidation, i)
		}
		out = append(out, domain.JournalLine{
			AccountID:    l.AccountID,
			Debit:        debit,
			Credit:       credit,
			Description:  l.Description,
			ContractorID: l.ContractorID,
			ProjectID:    l.ProjectID,
			BusinessID:   l.BusinessID,
		})
	}
	return out, rounded, nil
}

// validateEntryShape enforces the structural rules every new entry must meet: at least
// two lines, at least two distinct accounts, and debits equal to credits in cents.
func validateEntryShape(entry domain.JournalEntry) error {
	if len(entry.Lines) < 2 {
		return fmt.Errorf("%w: entry needs at least two lines", apperrors.ErrValidation)
	}
	if len(entry.AccountIDs()) < 2 {
		return fmt.Errorf("%w: entry must touch at least two accounts", apperrors.ErrValidation)
	}
	if !entry.IsBalanced() {
		return &apperrors.ImbalanceError{
			Debits:  int64(entry.TotalDebits()),
			Credits: int64(entry.TotalCredits()),
		}
	}
	return nil
}

// resolveAccounts loads every referenced account and rejects missing or archived ones.
func resolveAccounts(ctx context.Context, accountRepo portsrepo.AccountReader, userID string, entry domain.JournalEntry) (map[string]domain.Account, error) {
	ids := entry.AccountIDs()
	accounts, err := accountRepo.FindAccountsByIDs(ctx, userID, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		acc, ok := accounts[id]
		if !ok {
			return nil, fmt.Errorf("%w: account %s does not exist", apperrors.ErrValidation, id)
		}
		if !acc.IsActive() {
			return nil, fmt.Errorf("%w: account %s (%s) is archived", apperrors.ErrValidation, acc.Code, acc.Name)
		}
	}
	return accounts, nil
}

// checkLocks verifies that no referenced account is locked through the entry date. The
// repository re-runs this check inside the write transaction; this pass exists to fail
// fast with the richer error before any write begins.
func checkLocks(ctx context.Context, reconRepo portsrepo.ReconciliationReader, userID string, entry domain.JournalEntry, accounts map[string]domain.Account) error {
	locks, err := reconRepo.LatestLockedEndDates(ctx, userID)
	if err != nil {
		return err
	}
	for _, id := range entry.AccountIDs() {
		lockedThrough, ok := locks[id]
		if !ok || entry.EntryDate.After(lockedThrough) {
			continue
		}
		return &apperrors.PeriodLockedError{
			AccountID:     id,
			AccountCode:   accounts[id].Code,
			EntryDate:     entry.EntryDate,
			LockedThrough: lockedThrough,
		}
	}
	return nil
}

// PostEntry validates and persists a new balanced journal entry.
func (s *ledgerService) PostEntry(ctx context.Context, userID string, req dto.CreateEntryRequest) (*domain.JournalEntry, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthenticated
	}

	entryDate, err := parseDate(req.EntryDate)
	if err != nil {
		return nil, err
	}

	lines, roundedAny, err := convertLines(req.Lines)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	entry := domain.JournalEntry{
		EntryID:     uuid.NewString(),
		UserID:      userID,
		BusinessID:  req.BusinessID,
		ProjectID:   req.ProjectID,
		EntryDate:   entryDate,
		Description: req.Description,
		Lines:       lines,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := validateEntryShape(entry); err != nil {
		return nil, err
	}
	accounts, err := resolveAccounts(ctx, s.accountRepo, userID, entry)
	if err != nil {
		return nil, err
	}
	if err := checkLocks(ctx, s.reconRepo, userID, entry, accounts); err != nil {
		return nil, err
	}

	audit := domain.AuditEvent{
		EventID:   uuid.NewString(),
		UserID:    userID,
		Timestamp: now,
		Action:    domain.AuditEntryPosted,
		Details:   fmt.Sprintf("entry %s posted for %s", entry.EntryID, entry.EntryDate.Format(dateLayout)),
	}
	if err := s.journalRepo.SaveEntry(ctx, entry, nil, audit); err != nil {
		s.LogError(ctx, err, "failed to save journal entry", slog.String("entry_id", entry.EntryID))
		return nil, err
	}

	// The rounding event is recorded only once the entry exists.
	if roundedAny {
		s.LogWarn(ctx, "entry amounts rounded to whole cents", slog.String("entry_id", entry.EntryID))
		s.appendAudit(ctx, userID, domain.AuditAmountRounded,
			fmt.Sprintf("amounts on entry %s rounded to whole cents", entry.EntryID))
	}

	s.LogInfo(ctx, "journal entry posted",
		slog.String("entry_id", entry.EntryID),
		slog.String("entry_date", entry.EntryDate.Format(dateLayout)),
		slog.Int("lines", len(entry.Lines)))
	return &entry, nil
}

// ReverseEntry posts the mirror image of an existing entry. The reversal lands on the
// original's date when that period is still open; otherwise it moves to the first day
// of the earliest open month and the move is recorded in the audit log.
func (s *ledgerService) ReverseEntry(ctx context.Context, userID string, entryID string, reason string) (*domain.JournalEntry, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthenticated
	}
	if reason == "" {
		return nil, fmt.Errorf("%w: a reversal reason is required", apperrors.ErrValidation)
	}

	original, err := s.journalRepo.FindEntryByID(ctx, userID, entryID)
	if err != nil {
		return nil, err
	}
	if err := checkClearedLines(original); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	reversal := domain.JournalEntry{
		EntryID:         uuid.NewString(),
		UserID:          userID,
		BusinessID:      original.BusinessID,
		ProjectID:       original.ProjectID,
		EntryDate:       original.EntryDate,
		Description:     fmt.Sprintf("Reversal of %q: %s", original.Description, reason),
		Lines:           mirrorLines(original.EntryID, original.Lines),
		OriginalEntryID: original.EntryID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if _, err := resolveAccountsForReversal(ctx, s.accountRepo, userID, reversal); err != nil {
		return nil, err
	}

	moved, err := s.substituteOpenDate(ctx, userID, &reversal)
	if err != nil {
		return nil, err
	}
	if moved {
		s.appendAudit(ctx, userID, domain.AuditReversalDateMoved,
			fmt.Sprintf("reversal of entry %s moved from %s to %s (period locked)",
				original.EntryID, original.EntryDate.Format(dateLayout), reversal.EntryDate.Format(dateLayout)))
	}

	// A reversal of an entry that came from the staging bridge puts the staged
	// transaction back in the review queue.
	var txnUpdate *portsrepo.StagedTransactionUpdate
	linked, err := s.stagingRepo.FindTransactionByLinkedEntry(ctx, userID, original.EntryID)
	if err == nil {
		txnUpdate = &portsrepo.StagedTransactionUpdate{
			TransactionID: linked.TransactionID,
			Status:        domain.TxnNeedsRepost,
			LinkedEntryID: nil,
		}
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	audit := domain.AuditEvent{
		EventID:   uuid.NewString(),
		UserID:    userID,
		Timestamp: now,
		Action:    domain.AuditEntryReversed,
		Details:   fmt.Sprintf("entry %s reversed by %s: %s", original.EntryID, reversal.EntryID, reason),
	}
	if err := s.journalRepo.SaveEntry(ctx, reversal, txnUpdate, audit); err != nil {
		s.LogError(ctx, err, "failed to save reversal entry", slog.String("original_entry_id", entryID))
		return nil, err
	}

	s.LogInfo(ctx, "journal entry reversed",
		slog.String("original_entry_id", original.EntryID),
		slog.String("reversal_entry_id", reversal.EntryID))
	return &reversal, nil
}

// GetEntryByID retrieves a journal entry with its lines.
func (s *ledgerService) GetEntryByID(ctx context.Context, userID string, entryID string) (*domain.JournalEntry, error) {
	return s.journalRepo.FindEntryByID(ctx, userID, entryID)
}

// ListEntries retrieves a keyset-paginated page of entries, newest first.
func (s *ledgerService) ListEntries(ctx context.Context, userID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	entries, nextToken, err := s.journalRepo.ListEntries(ctx, userID, limit, params.NextToken)
	if err != nil {
		return nil, err
	}
	return &dto.ListEntriesResponse{
		Entries:   dto.ToEntryResponses(entries),
		NextToken: nextToken,
	}, nil
}

// CalculateAccountBalance derives the balance from the account's full posted activity.
func (s *ledgerService) CalculateAccountBalance(ctx context.Context, userID string, accountID string) (money.Cents, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, userID, accountID)
	if err != nil {
		return 0, err
	}
	debits, credits, err := s.journalRepo.SumAccountActivity(ctx, userID, accountID)
	if err != nil {
		return 0, err
	}
	if account.AccountType.IsDebitNormal() {
		return debits - credits, nil
	}
	return credits - debits, nil
}

// substituteOpenDate moves the entry date forward to the first day of the month after
// the latest lock covering it, when any referenced account is locked through the
// current date. Returns whether a move happened.
func (s *ledgerService) substituteOpenDate(ctx context.Context, userID string, entry *domain.JournalEntry) (bool, error) {
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
	firstOpen := time.Date(latest.Year(), latest.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	entry.EntryDate = firstOpen
	return true, nil
}

func (s *ledgerService) appendAudit(ctx context.Context, userID string, action domain.AuditAction, details string) {
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

// mirrorLines swaps the debit and credit side of every line and prefixes each
// description with the original entry id. Clearing state never carries over: the
// reversal is fresh, unreconciled activity.
func mirrorLines(originalEntryID string, lines []domain.JournalLine) []domain.JournalLine {
	mirrored := make([]domain.JournalLine, len(lines))
	for i, l := range lines {
		description := "Reversal of " + originalEntryID
		if l.Description != "" {
			description += ": " + l.Description
		}
		mirrored[i] = domain.JournalLine{
			AccountID:    l.AccountID,
			Debit:        l.Credit,
			Credit:       l.Debit,
			Description:  description,
			ContractorID: l.ContractorID,
			ProjectID:    l.ProjectID,
			BusinessID:   l.BusinessID,
		}
	}
	return mirrored
}

// checkClearedLines refuses to act on an entry with lines already cleared by a
// reconciliation; those lines back a locked statement match.
func checkClearedLines(entry *domain.JournalEntry) error {
	for i, l := range entry.Lines {
		if l.IsCleared {
			return &apperrors.ClearedLineProtectedError{
				EntryID:          entry.EntryID,
				LineID:           domain.LineID(entry.EntryID, i),
				ReconciliationID: l.ReconciliationID,
			}
		}
	}
	return nil
}

// resolveAccountsForReversal loads accounts for a reversal without the archived-account
// rejection: reversing activity on a since-archived account must stay possible.
func resolveAccountsForReversal(ctx context.Context, accountRepo portsrepo.AccountReader, userID string, entry domain.JournalEntry) (map[string]domain.Account, error) {
	ids := entry.AccountIDs()
	accounts, err := accountRepo.FindAccountsByIDs(ctx, userID, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if _, ok := accounts[id]; !ok {
			return nil, fmt.Errorf("%w: entry references unknown account %s", apperrors.ErrDataIntegrity, id)
		}
	}
	return accounts, nil
}
