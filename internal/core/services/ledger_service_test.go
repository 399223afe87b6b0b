package services_test

import (
	"context"
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

type LedgerServiceTestSuite struct {
	suite.Suite
	mockJournalRepo *MockJournalRepository
	mockAccountRepo *MockAccountRepository
	mockReconRepo   *MockReconciliationRepository
	mockStagingRepo *MockStagingRepository
	mockAuditRepo   *MockAuditRepository
	service         portssvc.LedgerSvcFacade
	userID          string
	cashAccount     domain.Account
	incomeAccount   domain.Account
	expenseAccount  domain.Account
}

func (suite *LedgerServiceTestSuite) SetupTest() {
	suite.mockJournalRepo = new(MockJournalRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockReconRepo = new(MockReconciliationRepository)
	suite.mockStagingRepo = new(MockStagingRepository)
	suite.mockAuditRepo = new(MockAuditRepository)
	suite.service = services.NewLedgerService(
		suite.mockJournalRepo,
		suite.mockAccountRepo,
		suite.mockReconRepo,
		suite.mockStagingRepo,
		suite.mockAuditRepo,
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
	suite.incomeAccount = domain.Account{
		AccountID:   uuid.NewString(),
		UserID:      suite.userID,
		Code:        "4010",
		Name:        "Service Revenue",
		AccountType: domain.Income,
		Status:      domain.AccountActive,
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

func (suite *LedgerServiceTestSuite) accountsMap(accounts ...domain.Account) map[string]domain.Account {
	m := make(map[string]domain.Account, len(accounts))
	for _, a := range accounts {
		m[a.AccountID] = a
	}
	return m
}

func (suite *LedgerServiceTestSuite) TestPostEntry_Success() {
	ctx := context.Background()
	req := dto.CreateEntryRequest{
		EntryDate:   "2026-03-15",
		Description: "Invoice payment received",
		Lines: []dto.CreateEntryLineRequest{
			{AccountID: suite.cashAccount.AccountID, Debit: decimal.NewFromFloat(150.00)},
			{AccountID: suite.incomeAccount.AccountID, Credit: decimal.NewFromFloat(150.00)},
		},
	}

	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, suite.userID, mock.Anything).
		Return(suite.accountsMap(suite.cashAccount, suite.incomeAccount), nil).Once()
	suite.mockReconRepo.On("LatestLockedEndDates", ctx, suite.userID).
		Return(map[string]time.Time{}, nil).Once()
	suite.mockJournalRepo.On("SaveEntry", ctx, mock.AnythingOfType("domain.JournalEntry"), (*portsrepo.StagedTransactionUpdate)(nil), mock.AnythingOfType("domain.AuditEvent")).
		Return(nil).Once()

	entry, err := suite.service.PostEntry(ctx, suite.userID, req)

	suite.Require().NoError(err)
	suite.Require().NotNil(entry)
	suite.NotEmpty(entry.EntryID)
	suite.Equal(money.Cents(15000), entry.TotalDebits())
	suite.Equal(money.Cents(15000), entry.TotalCredits())
	suite.True(entry.IsBalanced())
	suite.Equal(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), entry.EntryDate)

	suite.mockJournalRepo.AssertExpectations(suite.T())
	suite.mockAccountRepo.AssertExpectations(suite.T())
	suite.mockReconRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestPostEntry_Imbalanced() {
	ctx := context.Background()
	req := dto.CreateEntryRequest{
		EntryDate: "2026-03-15",
		Lines: []dto.CreateEntryLineRequest{
			{AccountID: suite.cashAccount.AccountID, Debit: decimal.NewFromFloat(150.00)},
			{AccountID: suite.incomeAccount.AccountID, Credit: decimal.NewFromFloat(149.99)},
		},
	}

	entry, err := suite.service.PostEntry(ctx, suite.userID, req)

	suite.Require().Error(err)
	suite.Nil(entry)
	suite.ErrorIs(err, apperrors.ErrValidation)
	var imbalance *apperrors.ImbalanceError
	suite.Require().ErrorAs(err, &imbalance)
	suite.Equal(int64(15000), imbalance.Debits)
	suite.Equal(int64(14999), imbalance.Credits)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SaveEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestPostEntry_SingleLineRejected() {
	ctx := context.Background()
	req := dto.CreateEntryRequest{
		EntryDate: "2026-03-15",
		Lines: []dto.CreateEntryLineRequest{
			{AccountID: suite.cashAccount.AccountID, Debit: decimal.NewFromFloat(10)},
		},
	}

	_, err := suite.service.PostEntry(ctx, suite.userID, req)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *LedgerServiceTestSuite) TestPostEntry_SingleAccountRejected() {
	ctx := context.Background()
	req := dto.CreateEntryRequest{
		EntryDate: "2026-03-15",
		Lines: []dto.CreateEntryLineRequest{
			{AccountID: suite.cashAccount.AccountID, Debit: decimal.NewFromFloat(10)},
			{AccountID: suite.cashAccount.AccountID, Credit: decimal.NewFromFloat(10)},
		},
	}

	_, err := suite.service.PostEntry(ctx, suite.userID, req)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *LedgerServiceTestSuite) TestPostEntry_BothSidesRejected() {
	ctx := context.Background()
	req := dto.CreateEntryRequest{
		EntryDate: "2026-03-15",
		Lines: []dto.CreateEntryLineRequest{
			{AccountID: suite.cashAccount.AccountID, Debit: decimal.NewFromFloat(10), Credit: decimal.NewFromFloat(10)},
			{AccountID: suite.incomeAccount.AccountID, Credit: decimal.NewFromFloat(10)},
		},
	}

	_, err := suite.service.PostEntry(ctx, suite.userID, req)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *LedgerServiceTestSuite) TestPostEntry_ArchivedAccountRejected() {
	ctx := context.Background()
	archived := suite.expenseAccount
	archived.Status = domain.AccountArchived

	req := dto.CreateEntryRequest{
		EntryDate: "2026-03-15",
		Lines: []dto.CreateEntryLineRequest{
			{AccountID: archived.AccountID, Debit: decimal.NewFromFloat(25)},
			{AccountID: suite.cashAccount.AccountID, Credit: decimal.NewFromFloat(25)},
		},
	}

	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, suite.userID, mock.Anything).
		Return(suite.accountsMap(archived, suite.cashAccount), nil).Once()

	_, err := suite.service.PostEntry(ctx, suite.userID, req)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *LedgerServiceTestSuite) TestPostEntry_PeriodLocked() {
	ctx := context.Background()
	req := dto.CreateEntryRequest{
		EntryDate: "2026-03-15",
		Lines: []dto.CreateEntryLineRequest{
			{AccountID: suite.cashAccount.AccountID, Debit: decimal.NewFromFloat(150.00)},
			{AccountID: suite.incomeAccount.AccountID, Credit: decimal.NewFromFloat(150.00)},
		},
	}
	lockedThrough := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, suite.userID, mock.Anything).
		Return(suite.accountsMap(suite.cashAccount, suite.incomeAccount), nil).Once()
	suite.mockReconRepo.On("LatestLockedEndDates", ctx, suite.userID).
		Return(map[string]time.Time{suite.cashAccount.AccountID: lockedThrough}, nil).Once()

	_, err := suite.service.PostEntry(ctx, suite.userID, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	var locked *apperrors.PeriodLockedError
	suite.Require().ErrorAs(err, &locked)
	suite.Equal(suite.cashAccount.AccountID, locked.AccountID)
	suite.Equal(lockedThrough, locked.LockedThrough)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SaveEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestPostEntry_RoundingAudited() {
	ctx := context.Background()
	req := dto.CreateEntryRequest{
		EntryDate: "2026-03-15",
		Lines: []dto.CreateEntryLineRequest{
			// 33.333 is not an exact cent amount; it rounds to 33.33
			{AccountID: suite.cashAccount.AccountID, Debit: decimal.NewFromFloat(33.333)},
			{AccountID: suite.incomeAccount.AccountID, Credit: decimal.NewFromFloat(33.33)},
		},
	}

	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, suite.userID, mock.Anything).
		Return(suite.accountsMap(suite.cashAccount, suite.incomeAccount), nil).Once()
	suite.mockReconRepo.On("LatestLockedEndDates", ctx, suite.userID).
		Return(map[string]time.Time{}, nil).Once()
	suite.mockAuditRepo.On("AppendEvent", ctx, mock.MatchedBy(func(e domain.AuditEvent) bool {
		return e.Action == domain.AuditAmountRounded
	})).Return(nil).Once()
	suite.mockJournalRepo.On("SaveEntry", ctx, mock.AnythingOfType("domain.JournalEntry"), (*portsrepo.StagedTransactionUpdate)(nil), mock.AnythingOfType("domain.AuditEvent")).
		Return(nil).Once()

	entry, err := suite.service.PostEntry(ctx, suite.userID, req)

	suite.Require().NoError(err)
	suite.Equal(money.Cents(3333), entry.TotalDebits())
	suite.mockAuditRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestPostEntry_NoRoundingAuditWhenSaveFails() {
	ctx := context.Background()
	req := dto.CreateEntryRequest{
		EntryDate: "2026-03-15",
		Lines: []dto.CreateEntryLineRequest{
			{AccountID: suite.cashAccount.AccountID, Debit: decimal.NewFromFloat(33.333)},
			{AccountID: suite.incomeAccount.AccountID, Credit: decimal.NewFromFloat(33.33)},
		},
	}

	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, suite.userID, mock.Anything).
		Return(suite.accountsMap(suite.cashAccount, suite.incomeAccount), nil).Once()
	suite.mockReconRepo.On("LatestLockedEndDates", ctx, suite.userID).
		Return(map[string]time.Time{}, nil).Once()
	suite.mockJournalRepo.On("SaveEntry", ctx, mock.AnythingOfType("domain.JournalEntry"), (*portsrepo.StagedTransactionUpdate)(nil), mock.AnythingOfType("domain.AuditEvent")).
		Return(apperrors.ErrPersistenceUnavailable).Once()

	_, err := suite.service.PostEntry(ctx, suite.userID, req)

	suite.Require().Error(err)
	// No audit trace may survive for an entry that was never written.
	suite.mockAuditRepo.AssertNotCalled(suite.T(), "AppendEvent", mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) postedEntry() *domain.JournalEntry {
	return &domain.JournalEntry{
		EntryID:     uuid.NewString(),
		UserID:      suite.userID,
		EntryDate:   time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
		Description: "February rent",
		Lines: []domain.JournalLine{
			{AccountID: suite.expenseAccount.AccountID, Debit: 90000, Description: "Rent for February"},
			{AccountID: suite.cashAccount.AccountID, Credit: 90000},
		},
	}
}

func (suite *LedgerServiceTestSuite) TestReverseEntry_Success() {
	ctx := context.Background()
	original := suite.postedEntry()

	suite.mockJournalRepo.On("FindEntryByID", ctx, suite.userID, original.EntryID).
		Return(original, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, suite.userID, mock.Anything).
		Return(suite.accountsMap(suite.expenseAccount, suite.cashAccount), nil).Once()
	suite.mockReconRepo.On("LatestLockedEndDates", ctx, suite.userID).
		Return(map[string]time.Time{}, nil).Once()
	suite.mockStagingRepo.On("FindTransactionByLinkedEntry", ctx, suite.userID, original.EntryID).
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockJournalRepo.On("SaveEntry", ctx, mock.AnythingOfType("domain.JournalEntry"), (*portsrepo.StagedTransactionUpdate)(nil), mock.AnythingOfType("domain.AuditEvent")).
		Return(nil).Once()

	reversal, err := suite.service.ReverseEntry(ctx, suite.userID, original.EntryID, "duplicate charge")

	suite.Require().NoError(err)
	suite.Require().NotNil(reversal)
	suite.Equal(original.EntryID, reversal.OriginalEntryID)
	suite.Equal(original.EntryDate, reversal.EntryDate)
	// Sides are swapped line for line.
	suite.Equal(money.Cents(90000), reversal.Lines[0].Credit)
	suite.Equal(money.Cents(0), reversal.Lines[0].Debit)
	suite.Equal(money.Cents(90000), reversal.Lines[1].Debit)
	suite.True(reversal.IsBalanced())
	// Line descriptions point back at the reversed entry.
	suite.Equal("Reversal of "+original.EntryID+": Rent for February", reversal.Lines[0].Description)
	suite.Equal("Reversal of "+original.EntryID, reversal.Lines[1].Description)
}

func (suite *LedgerServiceTestSuite) TestReverseEntry_ReasonRequired() {
	ctx := context.Background()
	_, err := suite.service.ReverseEntry(ctx, suite.userID, uuid.NewString(), "")
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *LedgerServiceTestSuite) TestReverseEntry_DateMovedPastLock() {
	ctx := context.Background()
	original := suite.postedEntry()
	lockedThrough := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)

	suite.mockJournalRepo.On("FindEntryByID", ctx, suite.userID, original.EntryID).
		Return(original, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, suite.userID, mock.Anything).
		Return(suite.accountsMap(suite.expenseAccount, suite.cashAccount), nil).Once()
	suite.mockReconRepo.On("LatestLockedEndDates", ctx, suite.userID).
		Return(map[string]time.Time{suite.cashAccount.AccountID: lockedThrough}, nil).Once()
	suite.mockAuditRepo.On("AppendEvent", ctx, mock.MatchedBy(func(e domain.AuditEvent) bool {
		return e.Action == domain.AuditReversalDateMoved
	})).Return(nil).Once()
	suite.mockStagingRepo.On("FindTransactionByLinkedEntry", ctx, suite.userID, original.EntryID).
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockJournalRepo.On("SaveEntry", ctx, mock.AnythingOfType("domain.JournalEntry"), (*portsrepo.StagedTransactionUpdate)(nil), mock.AnythingOfType("domain.AuditEvent")).
		Return(nil).Once()

	reversal, err := suite.service.ReverseEntry(ctx, suite.userID, original.EntryID, "wrong amount")

	suite.Require().NoError(err)
	// First day of the month after the lock.
	suite.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), reversal.EntryDate)
	suite.mockAuditRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestReverseEntry_FlagsLinkedTransactionForRepost() {
	ctx := context.Background()
	original := suite.postedEntry()
	linkedTxn := &domain.StagedTransaction{
		TransactionID: uuid.NewString(),
		UserID:        suite.userID,
		Status:        domain.TxnPosted,
		LinkedEntryID: original.EntryID,
	}

	suite.mockJournalRepo.On("FindEntryByID", ctx, suite.userID, original.EntryID).
		Return(original, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, suite.userID, mock.Anything).
		Return(suite.accountsMap(suite.expenseAccount, suite.cashAccount), nil).Once()
	suite.mockReconRepo.On("LatestLockedEndDates", ctx, suite.userID).
		Return(map[string]time.Time{}, nil).Once()
	suite.mockStagingRepo.On("FindTransactionByLinkedEntry", ctx, suite.userID, original.EntryID).
		Return(linkedTxn, nil).Once()
	suite.mockJournalRepo.On("SaveEntry", ctx, mock.AnythingOfType("domain.JournalEntry"), mock.MatchedBy(func(u *portsrepo.StagedTransactionUpdate) bool {
		return u != nil &&
			u.TransactionID == linkedTxn.TransactionID &&
			u.Status == domain.TxnNeedsRepost &&
			u.LinkedEntryID == nil
	}), mock.AnythingOfType("domain.AuditEvent")).Return(nil).Once()

	_, err := suite.service.ReverseEntry(ctx, suite.userID, original.EntryID, "bank corrected the amount")

	suite.Require().NoError(err)
	suite.mockJournalRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestReverseEntry_ClearedLineRefused() {
	ctx := context.Background()
	original := suite.postedEntry()
	original.Lines[1].IsCleared = true
	original.Lines[1].ReconciliationID = uuid.NewString()

	suite.mockJournalRepo.On("FindEntryByID", ctx, suite.userID, original.EntryID).
		Return(original, nil).Once()

	_, err := suite.service.ReverseEntry(ctx, suite.userID, original.EntryID, "mistake")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	var cleared *apperrors.ClearedLineProtectedError
	suite.Require().ErrorAs(err, &cleared)
	suite.Equal(domain.LineID(original.EntryID, 1), cleared.LineID)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SaveEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestCalculateAccountBalance_DebitNormal() {
	ctx := context.Background()

	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.userID, suite.cashAccount.AccountID).
		Return(&suite.cashAccount, nil).Once()
	suite.mockJournalRepo.On("SumAccountActivity", ctx, suite.userID, suite.cashAccount.AccountID).
		Return(money.Cents(50000), money.Cents(12000), nil).Once()

	balance, err := suite.service.CalculateAccountBalance(ctx, suite.userID, suite.cashAccount.AccountID)

	suite.Require().NoError(err)
	suite.Equal(money.Cents(38000), balance)
}

func (suite *LedgerServiceTestSuite) TestCalculateAccountBalance_CreditNormal() {
	ctx := context.Background()

	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.userID, suite.incomeAccount.AccountID).
		Return(&suite.incomeAccount, nil).Once()
	suite.mockJournalRepo.On("SumAccountActivity", ctx, suite.userID, suite.incomeAccount.AccountID).
		Return(money.Cents(500), money.Cents(90000), nil).Once()

	balance, err := suite.service.CalculateAccountBalance(ctx, suite.userID, suite.incomeAccount.AccountID)

	suite.Require().NoError(err)
	suite.Equal(money.Cents(89500), balance)
}

func (suite *LedgerServiceTestSuite) TestPostEntry_Unauthenticated() {
	ctx := context.Background()
	_, err := suite.service.PostEntry(ctx, "", dto.CreateEntryRequest{})
	suite.ErrorIs(err, apperrors.ErrUnauthenticated)
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}
