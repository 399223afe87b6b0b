package services

import (
	"context"
	"time"

	"github.com/smallbooks/smallbooks_backend/internal/apperrors"
	"github.com/smallbooks/smallbooks_backend/internal/core/domain"
	portsrepo "github.com/smallbooks/smallbooks_backend/internal/core/ports/repositories"
	portssvc "github.com/smallbooks/smallbooks_backend/internal/core/ports/services"
	"github.com/smallbooks/smallbooks_backend/internal/utils/accounting"
	"github.com/smallbooks/smallbooks_backend/internal/utils/money"
)

// reconciliationOverdueDays is how stale a bank account's latest lock may be before the
// dashboard flags it.
const reconciliationOverdueDays = 45

// reportingService assembles financial reports. Every report is a pure fold over
// fetched journal data; running a report never writes anything.
type reportingService struct {
	BaseService
	journalRepo portsrepo.EntryReader
	accountRepo portsrepo.AccountReader
	invoiceRepo portsrepo.InvoiceReader
	stagingRepo portsrepo.StagingReader
	reconRepo   portsrepo.ReconciliationReader
}

// NewReportingService creates a new reporting service.
func NewReportingService(
	journalRepo portsrepo.EntryReader,
	accountRepo portsrepo.AccountReader,
	invoiceRepo portsrepo.InvoiceReader,
	stagingRepo portsrepo.StagingReader,
	reconRepo portsrepo.ReconciliationReader,
) portssvc.ReportingSvc {
	return &reportingService{
		journalRepo: journalRepo,
		accountRepo: accountRepo,
		invoiceRepo: invoiceRepo,
		stagingRepo: stagingRepo,
		reconRepo:   reconRepo,
	}
}

var _ portssvc.ReportingSvc = (*reportingService)(nil)

// reportInput fetches the entries and accounts one report run needs. Archived accounts
// are always included: their posted history stays visible in reports.
func (s *reportingService) reportInput(ctx context.Context, userID string, from, to time.Time, businessID string) (accounting.ReportInput, error) {
	entries, err := s.journalRepo.FetchEntries(ctx, userID, from, to, businessID)
	if err != nil {
		return accounting.ReportInput{}, err
	}
	accounts, err := s.accountRepo.ListAccounts(ctx, userID, true)
	if err != nil {
		return accounting.ReportInput{}, err
	}
	return accounting.ReportInput{
		Entries:    entries,
		Accounts:   accounts,
		From:       from,
		To:         to,
		BusinessID: businessID,
	}, nil
}

// ProfitAndLoss builds the P&L for entries dated within [from, to].
func (s *reportingService) ProfitAndLoss(ctx context.Context, userID string, from, to time.Time, businessID string) (*domain.PAndLReport, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthenticated
	}
	in, err := s.reportInput(ctx, userID, from, to, businessID)
	if err != nil {
		return nil, err
	}
	report := accounting.ProfitAndLoss(in)
	return &report, nil
}

// BalanceSheet builds the balance sheet from all activity through asOf.
func (s *reportingService) BalanceSheet(ctx context.Context, userID string, asOf time.Time, businessID string) (*domain.BalanceSheetReport, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthenticated
	}
	in, err := s.reportInput(ctx, userID, time.Time{}, asOf, businessID)
	if err != nil {
		return nil, err
	}
	report := accounting.BalanceSheet(in)
	return &report, nil
}

// CashFlow buckets the cash account's activity by calendar month.
func (s *reportingService) CashFlow(ctx context.Context, userID string, from, to time.Time, cashAccountID string, businessID string) (*domain.CashFlowReport, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthenticated
	}
	if _, err := s.accountRepo.FindAccountByID(ctx, userID, cashAccountID); err != nil {
		return nil, err
	}
	in, err := s.reportInput(ctx, userID, from, to, businessID)
	if err != nil {
		return nil, err
	}
	report := accounting.CashFlow(in, cashAccountID)
	return &report, nil
}

// ARAging buckets open invoices by days overdue.
func (s *reportingService) ARAging(ctx context.Context, userID string, today time.Time) (*domain.ARAgingReport, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthenticated
	}
	invoices, err := s.invoiceRepo.ListInvoices(ctx, userID, "")
	if err != nil {
		return nil, err
	}
	report := accounting.ARAging(invoices, today)
	return &report, nil
}

// Dashboard assembles the landing-page KPIs from full-history folds.
func (s *reportingService) Dashboard(ctx context.Context, userID string) (*domain.DashboardSummary, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthenticated
	}

	in, err := s.reportInput(ctx, userID, time.Time{}, time.Time{}, "")
	if err != nil {
		return nil, err
	}

	summary := &domain.DashboardSummary{
		ReconciliationAges: []domain.ReconciliationAge{},
	}

	for _, acc := range in.Accounts {
		switch {
		case acc.AccountType == domain.Asset && acc.IsBankAccount:
			summary.CashOnHand += accounting.AccountBalance(in.Entries, acc.AccountID, acc.AccountType)
		case acc.AccountType == domain.Liability:
			summary.TotalDebt += accounting.AccountBalance(in.Entries, acc.AccountID, acc.AccountType)
		case acc.AccountType == domain.Equity:
			// The chart has no single designated draw account, so the KPI sums the
			// draws across every equity account whose net is on the debit side.
			draw := drawAgainstEquity(in.Entries, acc.AccountID)
			if draw > 0 {
				summary.OwnerDraw += draw
			}
		}
	}

	// Needs-review counts imported transactions only; reversed-and-not-yet-reposted
	// ones are surfaced as their own count.
	imported, err := s.stagingRepo.CountByStatus(ctx, userID, domain.TxnImported)
	if err != nil {
		return nil, err
	}
	needsRepost, err := s.stagingRepo.CountByStatus(ctx, userID, domain.TxnNeedsRepost)
	if err != nil {
		return nil, err
	}
	summary.NeedsReviewCount = imported
	summary.NeedsRepostCount = needsRepost

	locks, err := s.reconRepo.LatestLockedEndDates(ctx, userID)
	if err != nil {
		return nil, err
	}
	today := time.Now().UTC()
	for _, acc := range in.Accounts {
		if !acc.IsBankAccount || !acc.IsActive() {
			continue
		}
		age := domain.ReconciliationAge{AccountID: acc.AccountID, AccountName: acc.Name, DaysSince: -1, Overdue: true}
		if lockedThrough, ok := locks[acc.AccountID]; ok {
			age.DaysSince = int(today.Sub(lockedThrough).Hours() / 24)
			age.Overdue = age.DaysSince > reconciliationOverdueDays
		}
		summary.ReconciliationAges = append(summary.ReconciliationAges, age)
	}

	return summary, nil
}

// drawAgainstEquity sums the debit-minus-credit net on an equity account. A positive
// result is money the owner has pulled out.
func drawAgainstEquity(entries []domain.JournalEntry, accountID string) money.Cents {
	var net money.Cents
	for _, e := range entries {
		for _, l := range e.Lines {
			if l.AccountID == accountID {
				net += l.Debit - l.Credit
			}
		}
	}
	return net
}
