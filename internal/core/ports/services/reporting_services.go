package services

import (
	"context"
	"time"

	"github.com/smallbooks/smallbooks_backend/internal/core/domain"
)

// ReportingSvc derives financial reports from posted journal activity. Reports
// are pure folds over the ledger: running them never writes anything.
type ReportingSvc interface {
	// ProfitAndLoss builds the P&L for entries dated within [from, to].
	ProfitAndLoss(ctx context.Context, userID string, from, to time.Time, businessID string) (*domain.PAndLReport, error)

	// BalanceSheet builds the balance sheet from all activity through asOf,
	// injecting current-period net income as retained earnings.
	BalanceSheet(ctx context.Context, userID string, asOf time.Time, businessID string) (*domain.BalanceSheetReport, error)

	// CashFlow buckets the cash account's activity by calendar month.
	CashFlow(ctx context.Context, userID string, from, to time.Time, cashAccountID string, businessID string) (*domain.CashFlowReport, error)

	// ARAging buckets open invoices by days overdue as of today.
	ARAging(ctx context.Context, userID string, today time.Time) (*domain.ARAgingReport, error)

	// Dashboard assembles the landing-page KPIs.
	Dashboard(ctx context.Context, userID string) (*domain.DashboardSummary, error)
}
