package services

import (
	"context"
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

// stagingService manages the pre-ledger transaction queue and the bridge that turns a
// categorized transaction into a posted journal entry.
type stagingService struct {
	BaseService
	stagingRepo portsrepo.StagingRepositoryFacade
	journalRepo portsrepo.JournalRepositoryFacade
	accountRepo portsrepo.AccountReader
	reconRepo   portsrepo.ReconciliationReader
}

// NewStagingService creates a new staging service.
func NewStagingService(
	stagingRepo portsrepo.StagingRepositoryFacade,
	journalRepo portsrepo.JournalRepositoryFacade,
	accountRepo portsrepo.AccountReader,
	reconRepo portsrepo.ReconciliationReader,
) portssvc.StagingSvcFacade {
	return &stagingService{
		stagingRepo: stagingRepo,
		journalRepo: journalRepo,
		accountRepo: accountRepo,
		reconRepo:   reconRepo,
	}
}

var _ portssvc.StagingSvcFacade = (*stagingService)(nil)

// GetTransactionByID retrieves one staged transaction.
func (s *stagingService) GetTransactionByID(ctx context.Context, userID string, transactionID string) (*domain.StagedTransaction, error) {
	return s.stagingRepo.FindTransactionByID(ctx, userID, transactionID)
}

// ListTransactions retrieves a keyset-paginated page of staged transactions.
func (s *stagingService) ListTransactions(ctx context.Context, userID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	var status *domain.TransactionStatus
	if params.Status != nil {
		st := domain.TransactionStatus(*params.Status)
		status = &st
	}
	txns, nextToken, err := s.stagingRepo.ListTransactions(ctx, userID, status, limit, params.NextToken)
	if err != nil {
		return nil, err
	}
	return &dto.ListTransactionsResponse{
		Transactions: dto.ToTransactionResponses(txns),
		NextToken:    nextToken,
	}, nil
}

// IngestBankTransactions stages a bank-feed batch. The feed reports outflows as
// positive amounts, so every amount is negated into the ledger convention (negative =
// outflow). Items whose vendor transaction id has been seen before are skipped, which
// makes re-delivery of a feed batch harmless.
func (s *stagingService) IngestBankTransactions(ctx context.Context, userID string, req dto.IngestBankTransactionsRequest) (int, int, error) {
	if userID == "" {
		return 0, 0, apperrors.ErrUnauthenticated
	}

	bankAccount, err := s.accountRepo.FindAccountByID(ctx, userID, req.BankAccountID)
	if err != nil {
		return 0, 0, err
	}
	if !bankAccount.IsBankAccount {
		return 0, 0, fmt.Errorf("%w: account %s is not a bank account", apperrors.ErrValidation, bankAccount.Code)
	}

	vendorIDs := make([]string, 0, len(req.Transactions))
	for _, t := range req.Transactions {
		vendorIDs = append(vendorIDs, t.VendorTransactionID)
	}
	seen, err := s.stagingRepo.FindVendorTransactionIDs(ctx, userID, vendorIDs)
	if err != nil {
		return 0, 0, err
	}

	staged, skipped := 0, 0
	now := time.Now().UTC()
	for _, item := range req.Transactions {
		if _, dup := seen[item.VendorTransactionID]; dup {
			skipped++
			continue
		}
		seen[item.VendorTransactionID] = struct{}{} // in-batch duplicates skip too

		date, err := parseDate(item.Date)
		if err != nil {
			return staged, skipped, err
		}
		amount, exact := money.FromDecimal(item.Amount)
		if !exact {
			s.LogWarn(ctx, "bank feed amount rounded to whole cents",
				slog.String("vendor_transaction_id", item.VendorTransactionID))
		}

		txn := domain.StagedTransaction{
			TransactionID:       uuid.NewString(),
			UserID:              userID,
			VendorTransactionID: item.VendorTransactionID,
			Date:                date,
			Amount:              amount.Neg(),
			Merchant:            item.Merchant,
			Description:         item.Description,
			Status:              domain.TxnImported,
			BankAccountID:       bankAccount.AccountID,
			Pending:             item.Pending,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}
		if err := s.stagingRepo.SaveTransaction(ctx, txn); err != nil {
			return staged, skipped, err
		}
		staged++
	}

	s.LogInfo(ctx, "bank feed batch ingested",
		slog.String("bank_account_id", bankAccount.AccountID),
		slog.Int("staged", staged),
		slog.Int("skipped", skipped))
	return staged, skipped, nil
}

// CreateManualTransaction stages a hand-entered transaction. The amount is already in
// the ledger convention.
func (s *stagingService) CreateManualTransaction(ctx context.Context, userID string, req dto.CreateManualTransactionRequest) (*domain.StagedTransaction, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthenticated
	}

	bankAccount, err := s.accountRepo.FindAccountByID(ctx, userID, req.BankAccountID)
	if err != nil {
		return nil, err
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	amount, exact := money.FromDecimal(req.Amount)
	if !exact {
		s.LogWarn(ctx, "manual transaction amount rounded to whole cents")
	}
	if amount == 0 {
		return nil, fmt.Errorf("%w: transaction amount cannot be zero", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	txn := domain.StagedTransaction{
		TransactionID: uuid.NewString(),
		UserID:        userID,
		Date:          date,
		Amount:        amount,
		Merchant:      req.Merchant,
		Description:   req.Description,
		Status:        domain.TxnImported,
		BankAccountID: bankAccount.AccountID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.stagingRepo.SaveTransaction(ctx, txn); err != nil {
		return nil, err
	}
	return &txn, nil
}

// CategorizeTransaction assigns kind, destination account, and tags. Posted
// transactions must go through the adjustment workflow instead.
func (s *stagingService) CategorizeTransaction(ctx context.Context, userID string, transactionID string, req dto.CategorizeTransactionRequest) (*domain.StagedTransaction, error) {
	txn, err := s.stagingRepo.FindTransactionByID(ctx, userID, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.Status == domain.TxnPosted {
		return nil, fmt.Errorf("%w: transaction %s is already posted", apperrors.ErrConflict, transactionID)
	}

	txn.TransactionType = req.TransactionType
	if req.AssignedAccountID != nil {
		txn.AssignedAccountID = *req.AssignedAccountID
	}
	if req.BusinessID != nil {
		txn.AssignedBusinessID = *req.BusinessID
	}
	if req.ProjectID != nil {
		txn.AssignedProjectID = *req.ProjectID
	}
	if req.ContractorID != nil {
		txn.AssignedContractorID = *req.ContractorID
	}
	if req.TransferAccountID != nil {
		txn.TransferAccountID = *req.TransferAccountID
	}

	if len(req.Splits) > 0 {
		splits := make([]domain.TransactionSplit, len(req.Splits))
		for i, sp := range req.Splits {
			amount, _ := money.FromDecimal(sp.Amount)
			if amount <= 0 {
				return nil, fmt.Errorf("%w: split %d amount must be positive", apperrors.ErrValidation, i)
			}
			splits[i] = domain.TransactionSplit{
				AccountID:    sp.AccountID,
				Amount:       amount,
				Description:  sp.Description,
				ProjectID:    sp.ProjectID,
				ContractorID: sp.ContractorID,
			}
		}
		txn.Splits = splits
	} else {
		txn.Splits = nil
	}

	txn.LastUpdatedAt = time.Now().UTC()
	txn.LastUpdatedBy = userID

	if err := s.stagingRepo.UpdateTransaction(ctx, *txn); err != nil {
		return nil, err
	}
	return txn, nil
}

// PostTransaction builds the double-entry lines for a categorized transaction and
// posts them atomically with the status flip to posted. A failure anywhere leaves the
// staged transaction untouched.
func (s *stagingService) PostTransaction(ctx context.Context, userID string, transactionID string) (*domain.StagedTransaction, *domain.JournalEntry, error) {
	if userID == "" {
		return nil, nil, apperrors.ErrUnauthenticated
	}

	txn, err := s.stagingRepo.FindTransactionByID(ctx, userID, transactionID)
	if err != nil {
		return nil, nil, err
	}
	if txn.Status == domain.TxnPosted {
		return nil, nil, fmt.Errorf("%w: transaction %s is already posted", apperrors.ErrConflict, transactionID)
	}
	if txn.Pending {
		return nil, nil, fmt.Errorf("%w: transaction %s", apperrors.ErrPendingNotPostable, transactionID)
	}

	lines, err := buildLines(*txn)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	description := txn.Description
	if description == "" {
		description = txn.Merchant
	}
	entry := domain.JournalEntry{
		EntryID:     uuid.NewString(),
		UserID:      userID,
		BusinessID:  txn.AssignedBusinessID,
		ProjectID:   txn.AssignedProjectID,
		EntryDate:   txn.Date,
		Description: description,
		Lines:       lines,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := validateEntryShape(entry); err != nil {
		return nil, nil, err
	}
	accounts, err := resolveAccounts(ctx, s.accountRepo, userID, entry)
	if err != nil {
		return nil, nil, err
	}
	if err := checkLocks(ctx, s.reconRepo, userID, entry, accounts); err != nil {
		return nil, nil, err
	}

	update := &portsrepo.StagedTransactionUpdate{
		TransactionID: txn.TransactionID,
		Status:        domain.TxnPosted,
		LinkedEntryID: &entry.EntryID,
	}
	audit := domain.AuditEvent{
		EventID:   uuid.NewString(),
		UserID:    userID,
		Timestamp: now,
		Action:    domain.AuditEntryPosted,
		Details:   fmt.Sprintf("entry %s posted from staged transaction %s", entry.EntryID, txn.TransactionID),
	}
	if err := s.journalRepo.SaveEntry(ctx, entry, update, audit); err != nil {
		s.LogError(ctx, err, "failed to post staged transaction", slog.String("transaction_id", transactionID))
		return nil, nil, err
	}

	txn.Status = domain.TxnPosted
	txn.LinkedEntryID = entry.EntryID
	txn.LastUpdatedAt = now
	txn.LastUpdatedBy = userID

	s.LogInfo(ctx, "staged transaction posted",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("entry_id", entry.EntryID))
	return txn, &entry, nil
}

// buildLines converts a categorized staged transaction into balanced journal lines.
// Every type needs a business assignment before it can post. The bank account always
// takes one leg for the full magnitude; the other side is either the single assigned
// account or the split destinations.
func buildLines(txn domain.StagedTransaction) ([]domain.JournalLine, error) {
	if txn.TransactionType == "" {
		return nil, &apperrors.MissingAssignmentError{TransactionID: txn.TransactionID, Field: "transactionType"}
	}
	if txn.AssignedBusinessID == "" {
		return nil, &apperrors.MissingAssignmentError{TransactionID: txn.TransactionID, Field: "assignedBusinessID"}
	}
	magnitude := txn.Amount.Abs()
	if magnitude == 0 {
		return nil, fmt.Errorf("%w: transaction amount is zero", apperrors.ErrValidation)
	}

	switch txn.TransactionType {
	case domain.KindIncome:
		if !txn.IsInflow() {
			return nil, fmt.Errorf("%w: income transaction must be an inflow", apperrors.ErrValidation)
		}
	case domain.KindExpense:
		if txn.IsInflow() {
			return nil, fmt.Errorf("%w: expense transaction must be an outflow", apperrors.ErrValidation)
		}
	case domain.KindTransfer:
		if txn.TransferAccountID == "" {
			return nil, &apperrors.MissingAssignmentError{TransactionID: txn.TransactionID, Field: "transferAccountID"}
		}
	default:
		return nil, fmt.Errorf("%w: unknown transaction type %q", apperrors.ErrValidation, txn.TransactionType)
	}

	bankLine := domain.JournalLine{
		AccountID:   txn.BankAccountID,
		Description: txn.Description,
		BusinessID:  txn.AssignedBusinessID,
	}
	if txn.IsInflow() {
		bankLine.Debit = magnitude
	} else {
		bankLine.Credit = magnitude
	}

	var counterLines []domain.JournalLine
	if len(txn.Splits) > 0 {
		if txn.TransactionType == domain.KindTransfer {
			return nil, fmt.Errorf("%w: transfers cannot be split", apperrors.ErrValidation)
		}
		var total money.Cents
		for _, sp := range txn.Splits {
			total += sp.Amount
			line := domain.JournalLine{
				AccountID:    sp.AccountID,
				Description:  sp.Description,
				ContractorID: sp.ContractorID,
				ProjectID:    sp.ProjectID,
				BusinessID:   txn.AssignedBusinessID,
			}
			if txn.IsInflow() {
				line.Credit = sp.Amount
			} else {
				line.Debit = sp.Amount
			}
			counterLines = append(counterLines, line)
		}
		if total != magnitude {
			return nil, fmt.Errorf("%w: splits sum to %s but transaction is %s",
				apperrors.ErrValidation, total.String(), magnitude.String())
		}
	} else {
		counterID := txn.AssignedAccountID
		if txn.TransactionType == domain.KindTransfer {
			counterID = txn.TransferAccountID
		}
		if counterID == "" {
			return nil, &apperrors.MissingAssignmentError{TransactionID: txn.TransactionID, Field: "assignedAccountID"}
		}
		line := domain.JournalLine{
			AccountID:    counterID,
			Description:  txn.Description,
			ContractorID: txn.AssignedContractorID,
			ProjectID:    txn.AssignedProjectID,
			BusinessID:   txn.AssignedBusinessID,
		}
		if txn.IsInflow() {
			line.Credit = magnitude
		} else {
			line.Debit = magnitude
		}
		counterLines = []domain.JournalLine{line}
	}

	return append([]domain.JournalLine{bankLine}, counterLines...), nil
}
