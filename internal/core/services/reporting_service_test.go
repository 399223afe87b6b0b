package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/smallbooks/smallbooks_backend/internal/apperrors"
	"github.com/smallbooks/smallbooks_backend/internal/core/domain"
	portssvc "github.com/smallbooks/smallbooks_backend/internal/core/ports/services"
	"github.com/smallbooks/smallbooks_backend/internal/core/services"
	"github.com/smallbooks/smallbooks_backend/internal/utils/money"
)

type ReportingServiceTestSuite struct {
	suite.Suite
	mockJournalRepo *MockJournalRepository
	mockAccountRepo *MockAccountRepository
	mockInvoiceRepo *MockInvoiceRepository
	mockStagingRepo *MockStagingRepository
	mockReconRepo   *MockReconciliationRepository
	service         portssvc.ReportingSvc
	userID          string
	bankAccount     domain.Account
	savingsAccount  domain.Account
	cardAccount     domain.Account
	equityAccount   domain.Account
	incomeAccount   domain.Account
	expenseAccount  domain.Account
}

func (suite *ReportingServiceTestSuite) SetupTest() {
	suite.mockJournalRepo = new(MockJournalRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockInvoiceRepo = new(MockInvoiceRepository)
	suite.mockStagingRepo = new(MockStagingRepository)
	suite.mockReconRepo = new(MockReconciliationRepository)
	suite.service = services.NewReportingService(
		suite.mockJournalRepo,
		suite.mockAccountRepo,
		suite.mockInvoiceRepo,
		suite.mockStagingRepo,
		suite.mockReconRepo,
	)

	suite.userID = uuid.NewString()
	suite.bankAccount = domain.Account{
		AccountID: uuid.NewString(), UserID: suite.userID, Code: "1010", Name: "Checking",
		AccountType: domain.Asset, Status: domain.AccountActive, IsBankAccount: true,
	}
	suite.savingsAccount = domain.Account{
		AccountID: uuid.NewString(), UserID: suite.userID, Code: "1020", Name: "Savings",
		AccountType: domain.Asset, Status: domain.AccountActive, IsBankAccount: true,
	}
	suite.cardAccount = domain.Account{
		AccountID: uuid.NewString(), UserID: suite.userID, Code: "2010", Name: "Credit Card",
		AccountType: domain.Liability, Status: domain.AccountActive, IsBankAccount: true,
	}
	suite.equityAccount = domain.Account{
		AccountID: uuid.NewString(), UserID: suite.userID, Code: "3010", Name: "Owner Equity",
		AccountType: domain.Equity, Status: domain.AccountActive,
	}
	suite.incomeAccount = domain.Account{
		AccountID: uuid.NewString(), UserID: suite.userID, Code: "4010", Name: "Service Revenue",
		AccountType: domain.Income, Status: domain.AccountActive,
	}
	suite.expenseAccount = domain.Account{
		AccountID: uuid.NewString(), UserID: suite.userID, Code: "6010", Name: "Software",
		AccountType: domain.Expense, Status: domain.AccountActive,
	}
}

func (suite *ReportingServiceTestSuite) allAccounts() []domain.Account {
	return []domain.Account{
		suite.bankAccount, suite.savingsAccount, suite.cardAccount,
		suite.equityAccount, suite.incomeAccount, suite.expenseAccount,
	}
}

func (suite *ReportingServiceTestSuite) entry(date time.Time, lines ...domain.JournalLine) domain.JournalEntry {
	return domain.JournalEntry{
		EntryID:   uuid.NewString(),
		UserID:    suite.userID,
		EntryDate: date,
		Lines:     lines,
	}
}

func (suite *ReportingServiceTestSuite) TestProfitAndLoss() {
	ctx := context.Background()
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	entries := []domain.JournalEntry{
		suite.entry(time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
			domain.JournalLine{AccountID: suite.bankAccount.AccountID, Debit: 100000},
			domain.JournalLine{AccountID: suite.incomeAccount.AccountID, Credit: 100000},
		),
		suite.entry(time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC),
			domain.JournalLine{AccountID: suite.expenseAccount.AccountID, Debit: 30000},
			domain.JournalLine{AccountID: suite.bankAccount.AccountID, Credit: 30000},
		),
	}

	suite.mockJournalRepo.On("FetchEntries", ctx, suite.userID, from, to, "").
		Return(entries, nil).Once()
	suite.mockAccountRepo.On("ListAccounts", ctx, suite.userID, true).
		Return(suite.allAccounts(), nil).Once()

	report, err := suite.service.ProfitAndLoss(ctx, suite.userID, from, to, "")

	suite.Require().NoError(err)
	suite.Equal(money.Cents(100000), report.TotalRevenue)
	suite.Equal(money.Cents(30000), report.TotalExpenses)
	suite.Equal(money.Cents(70000), report.NetIncome)
}

func (suite *ReportingServiceTestSuite) TestBalanceSheet_Balances() {
	ctx := context.Background()
	asOf := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	entries := []domain.JournalEntry{
		suite.entry(time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
			domain.JournalLine{AccountID: suite.bankAccount.AccountID, Debit: 100000},
			domain.JournalLine{AccountID: suite.incomeAccount.AccountID, Credit: 100000},
		),
	}

	suite.mockJournalRepo.On("FetchEntries", ctx, suite.userID, time.Time{}, asOf, "").
		Return(entries, nil).Once()
	suite.mockAccountRepo.On("ListAccounts", ctx, suite.userID, true).
		Return(suite.allAccounts(), nil).Once()

	report, err := suite.service.BalanceSheet(ctx, suite.userID, asOf, "")

	suite.Require().NoError(err)
	suite.Equal(money.Cents(100000), report.TotalAssets)
	// Net income lands in equity as synthetic retained earnings.
	suite.Equal(money.Cents(100000), report.TotalEquity)
	suite.True(report.IsBalanced)
}

func (suite *ReportingServiceTestSuite) TestCashFlow_UnknownAccount() {
	ctx := context.Background()
	missing := uuid.NewString()

	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.userID, missing).
		Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.CashFlow(ctx, suite.userID, time.Time{}, time.Time{}, missing, "")
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *ReportingServiceTestSuite) TestARAging_SkipsDrafts() {
	ctx := context.Background()
	today := time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC)
	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	invoices := []domain.Invoice{
		{InvoiceID: uuid.NewString(), CustomerName: "Acme", Status: domain.InvoiceSent,
			TotalAmount: 50000, IssueDate: due, DueDate: &due},
		{InvoiceID: uuid.NewString(), CustomerName: "Draft Co", Status: domain.InvoiceDraft,
			TotalAmount: 10000, IssueDate: due},
	}

	suite.mockInvoiceRepo.On("ListInvoices", ctx, suite.userID, "").
		Return(invoices, nil).Once()

	report, err := suite.service.ARAging(ctx, suite.userID, today)

	suite.Require().NoError(err)
	suite.Require().Len(report.Rows, 1)
	suite.Equal("Acme", report.Rows[0].CustomerName)
	suite.Equal(45, report.Rows[0].DaysOverdue)
	suite.Equal(domain.Aging31To60, report.Rows[0].Bucket)
}

func (suite *ReportingServiceTestSuite) TestDashboard() {
	ctx := context.Background()
	entries := []domain.JournalEntry{
		// Deposit into checking.
		suite.entry(time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC),
			domain.JournalLine{AccountID: suite.bankAccount.AccountID, Debit: 150000},
			domain.JournalLine{AccountID: suite.incomeAccount.AccountID, Credit: 150000},
		),
		// Owner draw.
		suite.entry(time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC),
			domain.JournalLine{AccountID: suite.equityAccount.AccountID, Debit: 20000},
			domain.JournalLine{AccountID: suite.bankAccount.AccountID, Credit: 20000},
		),
		// Card purchase.
		suite.entry(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
			domain.JournalLine{AccountID: suite.expenseAccount.AccountID, Debit: 12500},
			domain.JournalLine{AccountID: suite.cardAccount.AccountID, Credit: 12500},
		),
	}

	suite.mockJournalRepo.On("FetchEntries", ctx, suite.userID, time.Time{}, time.Time{}, "").
		Return(entries, nil).Once()
	suite.mockAccountRepo.On("ListAccounts", ctx, suite.userID, true).
		Return(suite.allAccounts(), nil).Once()
	suite.mockStagingRepo.On("CountByStatus", ctx, suite.userID, domain.TxnImported).
		Return(3, nil).Once()
	suite.mockStagingRepo.On("CountByStatus", ctx, suite.userID, domain.TxnNeedsRepost).
		Return(1, nil).Once()
	suite.mockReconRepo.On("LatestLockedEndDates", ctx, suite.userID).
		Return(map[string]time.Time{
			suite.bankAccount.AccountID: time.Now().UTC().AddDate(0, 0, -10),
			suite.cardAccount.AccountID: time.Now().UTC().AddDate(0, 0, -60),
		}, nil).Once()

	summary, err := suite.service.Dashboard(ctx, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(money.Cents(130000), summary.CashOnHand)
	suite.Equal(money.Cents(12500), summary.TotalDebt)
	suite.Equal(money.Cents(20000), summary.OwnerDraw)
	// Only imported transactions need review; repost candidates are their own count.
	suite.Equal(3, summary.NeedsReviewCount)
	suite.Equal(1, summary.NeedsRepostCount)

	ages := make(map[string]domain.ReconciliationAge, len(summary.ReconciliationAges))
	for _, a := range summary.ReconciliationAges {
		ages[a.AccountID] = a
	}
	suite.Require().Len(ages, 3)
	suite.False(ages[suite.bankAccount.AccountID].Overdue)
	suite.True(ages[suite.cardAccount.AccountID].Overdue)
	// Never reconciled at all.
	suite.True(ages[suite.savingsAccount.AccountID].Overdue)
	suite.Equal(-1, ages[suite.savingsAccount.AccountID].DaysSince)
}

func (suite *ReportingServiceTestSuite) TestDashboard_OwnerDrawSumsDebitNetEquityAccounts() {
	ctx := context.Background()
	drawsAccount := domain.Account{
		AccountID: uuid.NewString(), UserID: suite.userID, Code: "3020", Name: "Owner Draws",
		AccountType: domain.Equity, Status: domain.AccountActive,
	}
	accounts := append(suite.allAccounts(), drawsAccount)
	entries := []domain.JournalEntry{
		// Draw from the dedicated draws account.
		suite.entry(time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC),
			domain.JournalLine{AccountID: drawsAccount.AccountID, Debit: 20000},
			domain.JournalLine{AccountID: suite.bankAccount.AccountID, Credit: 20000},
		),
		// Capital contribution dwarfs a small draw on the main equity account, so its
		// net stays on the credit side and contributes nothing to the KPI.
		suite.entry(time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
			domain.JournalLine{AccountID: suite.bankAccount.AccountID, Debit: 50000},
			domain.JournalLine{AccountID: suite.equityAccount.AccountID, Credit: 50000},
		),
		suite.entry(time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC),
			domain.JournalLine{AccountID: suite.equityAccount.AccountID, Debit: 10000},
			domain.JournalLine{AccountID: suite.bankAccount.AccountID, Credit: 10000},
		),
	}

	suite.mockJournalRepo.On("FetchEntries", ctx, suite.userID, time.Time{}, time.Time{}, "").
		Return(entries, nil).Once()
	suite.mockAccountRepo.On("ListAccounts", ctx, suite.userID, true).
		Return(accounts, nil).Once()
	suite.mockStagingRepo.On("CountByStatus", ctx, suite.userID, domain.TxnImported).
		Return(0, nil).Once()
	suite.mockStagingRepo.On("CountByStatus", ctx, suite.userID, domain.TxnNeedsRepost).
		Return(0, nil).Once()
	suite.mockReconRepo.On("LatestLockedEndDates", ctx, suite.userID).
		Return(map[string]time.Time{}, nil).Once()

	summary, err := suite.service.Dashboard(ctx, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(money.Cents(20000), summary.OwnerDraw)
}

func (suite *ReportingServiceTestSuite) TestDashboard_Unauthenticated() {
	ctx := context.Background()
	_, err := suite.service.Dashboard(ctx, "")
	suite.ErrorIs(err, apperrors.ErrUnauthenticated)
}

func TestReportingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReportingServiceTestSuite))
}
