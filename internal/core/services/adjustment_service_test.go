package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/smallbooks/smallbooks_backend/internal/apperrors"
	"github.com/smallbooks/smallbooks_backend/internal/core/domain"
	portsrepo "github.com/smallbooks/smallbooks_backend/internal/core/ports/repositories"
	portssvc "github.com/smallbooks/smallbooks_backend/internal/core/ports/services"
	"github.com/smallbooks/smallbooks_backend/internal/core/services"
	"github.com/smallbooks/smallbooks_backend/internal/dto"
	"github.com/smallbooks/smallbooks_backend/internal/utils/money"
)

type AdjustmentServiceTestSuite struct {
	suite.Suite
	mockJournalRepo *MockJournalRepository
	mockAccountRepo *MockAccountRepository
	mockReconRepo   *MockReconciliationRepository
	mockStagingRepo *MockStagingRepository
	mockAuditRepo   *MockAuditRepository
	mockTxManager   *MockTxManager
	service         portssvc.AdjustmentSvc
	userID          string
	cashAccount     domain.Account
	expenseAccount  domain.Account
}

func (suite *AdjustmentServiceTestSuite) SetupTest() {
	suite.mockJournalRepo = new(MockJournalRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockReconRepo = new(MockReconciliationRepository)
	suite.mockStagingRepo = new(MockStagingRepository)
	suite.mockAuditRepo = new(MockAuditRepository)
	suite.mockTxManager = new(MockTxManager)
	suite.service = services.NewAdjustmentService(
		suite.mockJournalRepo,
		suite.mockAccountRepo,
		suite.mockReconRepo,
		suite.mockStagingRepo,
		suite.mockAuditRepo,
		suite.mockTxManager,
	)

	suite.userID = uuid.NewString()
	suite.cashAccount = domain.Account{
		AccountID:     uuid.NewString(),
		UserID:        suite.userID,
		Code:          "1010",
		Name:          "Business Checking",
		AccountType:   domain.Asset,
		Status:        domain.AccountActive,
		IsBankAccount: true,
	}
	suite.expenseAccount = domain.Account{
		AccountID:   uuid.NewString(),
		UserID:      suite.userID,
		Code:        "6010",
		Name:        "Software",
		AccountType: domain.Expense,
		Status:      domain.AccountActive,
	}
}

func (suite *AdjustmentServiceTestSuite) original() *domain.JournalEntry {
	return &domain.JournalEntry{
		EntryID:     uuid.NewString(),
		UserID:      suite.userID,
		EntryDate:   time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
		Description: "Annual license",
		Lines: []domain.JournalLine{
			{AccountID: suite.expenseAccount.AccountID, Debit: 90000},
			{AccountID: suite.cashAccount.AccountID, Credit: 90000},
		},
	}
}

func (suite *AdjustmentServiceTestSuite) editRequest() dto.EditPostedEntryRequest {
	return dto.EditPostedEntryRequest{
		AdjustmentReason: "vendor invoice restated",
		EntryDate:        "2026-03-05",
		Description:      "Annual license (corrected)",
		Lines: []dto.CreateEntryLineRequest{
			{AccountID: suite.expenseAccount.AccountID, Debit: decimal.NewFromFloat(800.00)},
			{AccountID: suite.cashAccount.AccountID, Credit: decimal.NewFromFloat(800.00)},
		},
	}
}

func (suite *AdjustmentServiceTestSuite) accountsMap() map[string]domain.Account {
	return map[string]domain.Account{
		suite.cashAccount.AccountID:    suite.cashAccount,
		suite.expenseAccount.AccountID: suite.expenseAccount,
	}
}

func (suite *AdjustmentServiceTestSuite) TestEditPostedEntry_Success() {
	ctx := context.Background()
	original := suite.original()

	suite.mockJournalRepo.On("FindEntryByID", ctx, suite.userID, original.EntryID).
		Return(original, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, suite.userID, mock.Anything).
		Return(suite.accountsMap(), nil).Once()
	suite.mockReconRepo.On("LatestLockedEndDates", ctx, suite.userID).
		Return(map[string]time.Time{}, nil)
	suite.mockStagingRepo.On("FindTransactionByLinkedEntry", ctx, suite.userID, original.EntryID).
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockTxManager.On("WithinTransaction", ctx, mock.Anything).Return(nil).Once()
	suite.mockJournalRepo.On("SaveEntry", ctx, mock.AnythingOfType("domain.JournalEntry"), (*portsrepo.StagedTransactionUpdate)(nil), mock.AnythingOfType("domain.AuditEvent")).
		Return(nil).Times(2)

	reversal, replacement, err := suite.service.EditPostedEntry(ctx, suite.userID, original.EntryID, suite.editRequest())

	suite.Require().NoError(err)
	suite.Require().NotNil(reversal)
	suite.Require().NotNil(replacement)

	// The reversal mirrors the original on the original's date.
	suite.Equal(original.EntryID, reversal.OriginalEntryID)
	suite.Equal(original.EntryDate, reversal.EntryDate)
	suite.True(reversal.IsAdjustingEntry)
	suite.Equal(money.Cents(90000), reversal.Lines[0].Credit)
	suite.Equal(money.Cents(90000), reversal.Lines[1].Debit)

	// The replacement restates the entry as requested.
	suite.Equal(original.EntryID, replacement.OriginalEntryID)
	suite.Equal(time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), replacement.EntryDate)
	suite.True(replacement.IsAdjustingEntry)
	suite.Equal("vendor invoice restated", replacement.AdjustmentReason)
	suite.Equal(money.Cents(80000), replacement.TotalDebits())
	suite.True(replacement.IsBalanced())

	suite.mockJournalRepo.AssertExpectations(suite.T())
	suite.mockTxManager.AssertExpectations(suite.T())
}

func (suite *AdjustmentServiceTestSuite) TestEditPostedEntry_ReasonRequired() {
	ctx := context.Background()
	req := suite.editRequest()
	req.AdjustmentReason = ""

	_, _, err := suite.service.EditPostedEntry(ctx, suite.userID, uuid.NewString(), req)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *AdjustmentServiceTestSuite) TestEditPostedEntry_ClearedLineRefused() {
	ctx := context.Background()
	original := suite.original()
	original.Lines[1].IsCleared = true
	original.Lines[1].ReconciliationID = uuid.NewString()

	suite.mockJournalRepo.On("FindEntryByID", ctx, suite.userID, original.EntryID).
		Return(original, nil).Once()

	_, _, err := suite.service.EditPostedEntry(ctx, suite.userID, original.EntryID, suite.editRequest())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	var cleared *apperrors.ClearedLineProtectedError
	suite.Require().ErrorAs(err, &cleared)
	suite.mockTxManager.AssertNotCalled(suite.T(), "WithinTransaction", mock.Anything, mock.Anything)
}

func (suite *AdjustmentServiceTestSuite) TestEditPostedEntry_ReplacementPeriodLocked() {
	ctx := context.Background()
	original := suite.original()
	// Lock covers the requested replacement date.
	lockedThrough := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	suite.mockJournalRepo.On("FindEntryByID", ctx, suite.userID, original.EntryID).
		Return(original, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, suite.userID, mock.Anything).
		Return(suite.accountsMap(), nil).Once()
	suite.mockReconRepo.On("LatestLockedEndDates", ctx, suite.userID).
		Return(map[string]time.Time{suite.cashAccount.AccountID: lockedThrough}, nil)

	_, _, err := suite.service.EditPostedEntry(ctx, suite.userID, original.EntryID, suite.editRequest())

	suite.Require().Error(err)
	var locked *apperrors.PeriodLockedError
	suite.Require().ErrorAs(err, &locked)
	suite.mockTxManager.AssertNotCalled(suite.T(), "WithinTransaction", mock.Anything, mock.Anything)
}

func (suite *AdjustmentServiceTestSuite) TestEditPostedEntry_ReversalDateMoved() {
	ctx := context.Background()
	original := suite.original()
	// The original's period is locked, the replacement's requested date is open.
	lockedThrough := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)

	suite.mockJournalRepo.On("FindEntryByID", ctx, suite.userID, original.EntryID).
		Return(original, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, suite.userID, mock.Anything).
		Return(suite.accountsMap(), nil).Once()
	suite.mockReconRepo.On("LatestLockedEndDates", ctx, suite.userID).
		Return(map[string]time.Time{suite.cashAccount.AccountID: lockedThrough}, nil)
	suite.mockStagingRepo.On("FindTransactionByLinkedEntry", ctx, suite.userID, original.EntryID).
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockTxManager.On("WithinTransaction", ctx, mock.Anything).Return(nil).Once()
	suite.mockJournalRepo.On("SaveEntry", ctx, mock.AnythingOfType("domain.JournalEntry"), (*portsrepo.StagedTransactionUpdate)(nil), mock.AnythingOfType("domain.AuditEvent")).
		Return(nil).Times(2)
	suite.mockAuditRepo.On("AppendEvent", ctx, mock.MatchedBy(func(e domain.AuditEvent) bool {
		return e.Action == domain.AuditReversalDateMoved
	})).Return(nil).Once()

	reversal, _, err := suite.service.EditPostedEntry(ctx, suite.userID, original.EntryID, suite.editRequest())

	suite.Require().NoError(err)
	suite.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), reversal.EntryDate)
	suite.mockAuditRepo.AssertExpectations(suite.T())
}

func (suite *AdjustmentServiceTestSuite) TestEditPostedEntry_RelinksStagedTransaction() {
	ctx := context.Background()
	original := suite.original()
	linkedTxn := &domain.StagedTransaction{
		TransactionID: uuid.NewString(),
		UserID:        suite.userID,
		Status:        domain.TxnPosted,
		LinkedEntryID: original.EntryID,
	}

	suite.mockJournalRepo.On("FindEntryByID", ctx, suite.userID, original.EntryID).
		Return(original, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, suite.userID, mock.Anything).
		Return(suite.accountsMap(), nil).Once()
	suite.mockReconRepo.On("LatestLockedEndDates", ctx, suite.userID).
		Return(map[string]time.Time{}, nil)
	suite.mockStagingRepo.On("FindTransactionByLinkedEntry", ctx, suite.userID, original.EntryID).
		Return(linkedTxn, nil).Once()
	suite.mockTxManager.On("WithinTransaction", ctx, mock.Anything).Return(nil).Once()
	suite.mockJournalRepo.On("SaveEntry", ctx, mock.AnythingOfType("domain.JournalEntry"), (*portsrepo.StagedTransactionUpdate)(nil), mock.AnythingOfType("domain.AuditEvent")).
		Return(nil).Once()
	suite.mockJournalRepo.On("SaveEntry", ctx, mock.AnythingOfType("domain.JournalEntry"), mock.MatchedBy(func(u *portsrepo.StagedTransactionUpdate) bool {
		return u != nil &&
			u.TransactionID == linkedTxn.TransactionID &&
			u.Status == domain.TxnPosted &&
			u.LinkedEntryID != nil
	}), mock.AnythingOfType("domain.AuditEvent")).Return(nil).Once()

	_, replacement, err := suite.service.EditPostedEntry(ctx, suite.userID, original.EntryID, suite.editRequest())

	suite.Require().NoError(err)
	suite.Require().NotNil(replacement)
	suite.mockJournalRepo.AssertExpectations(suite.T())
}

func (suite *AdjustmentServiceTestSuite) TestEditPostedEntry_TransactionFailureLeavesNothing() {
	ctx := context.Background()
	original := suite.original()
	dbErr := errors.New("connection reset")

	suite.mockJournalRepo.On("FindEntryByID", ctx, suite.userID, original.EntryID).
		Return(original, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, suite.userID, mock.Anything).
		Return(suite.accountsMap(), nil).Once()
	suite.mockReconRepo.On("LatestLockedEndDates", ctx, suite.userID).
		Return(map[string]time.Time{}, nil)
	suite.mockStagingRepo.On("FindTransactionByLinkedEntry", ctx, suite.userID, original.EntryID).
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockTxManager.On("WithinTransaction", ctx, mock.Anything).Return(dbErr).Once()

	reversal, replacement, err := suite.service.EditPostedEntry(ctx, suite.userID, original.EntryID, suite.editRequest())

	suite.Require().Error(err)
	suite.ErrorIs(err, dbErr)
	suite.Nil(reversal)
	suite.Nil(replacement)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SaveEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AdjustmentServiceTestSuite) TestEditPostedEntry_Unauthenticated() {
	ctx := context.Background()
	_, _, err := suite.service.EditPostedEntry(ctx, "", uuid.NewString(), suite.editRequest())
	suite.ErrorIs(err, apperrors.ErrUnauthenticated)
}

func TestAdjustmentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AdjustmentServiceTestSuite))
}
