package domain

import (
	"time"

	"github.com/smallbooks/smallbooks_backend/internal/utils/money"
)

// AccountAmount is an account with its net amount for a financial report.
type AccountAmount struct {
	AccountID string      `json:"accountID"`
	Code      string      `json:"code"`
	Name      string      `json:"name"`
	NetAmount money.Cents `json:"netAmount"`
}

// PAndLReport is a profit and loss statement for a period.
type PAndLReport struct {
	Revenue        []AccountAmount `json:"revenue"`
	CostOfServices []AccountAmount `json:"costOfServices"`
	Expenses       []AccountAmount `json:"expenses"`
	TotalRevenue   money.Cents     `json:"totalRevenue"`
	TotalCOGS      money.Cents     `json:"totalCOGS"`
	TotalExpenses  money.Cents     `json:"totalExpenses"`
	GrossProfit    money.Cents     `json:"grossProfit"` // Revenue - COGS
	NetIncome      money.Cents     `json:"netIncome"`   // GrossProfit - Expenses
}

// BalanceSheetReport is a balance sheet as of a single date. IsBalanced is a reporting
// diagnostic surfaced to the user, never an error.
type BalanceSheetReport struct {
	AsOf             time.Time       `json:"asOf"`
	Assets           []AccountAmount `json:"assets"`
	Liabilities      []AccountAmount `json:"liabilities"`
	Equity           []AccountAmount `json:"equity"`
	TotalAssets      money.Cents     `json:"totalAssets"`
	TotalLiabilities money.Cents     `json:"totalLiabilities"`
	TotalEquity      money.Cents     `json:"totalEquity"`
	IsBalanced       bool            `json:"isBalanced"`
}

// CashFlowMonth is one calendar-month bucket of activity on the cash account.
type CashFlowMonth struct {
	Month   string      `json:"month"` // "2006-01"
	Inflow  money.Cents `json:"inflow"`
	Outflow money.Cents `json:"outflow"`
	Net     money.Cents `json:"net"`
}

// CashFlowReport buckets journal lines touching the designated cash account by month.
type CashFlowReport struct {
	CashAccountID string          `json:"cashAccountID"`
	Months        []CashFlowMonth `json:"months"`
}

// ARAgingBucket labels the aging buckets.
type ARAgingBucket string

const (
	AgingCurrent  ARAgingBucket = "CURRENT"
	Aging1To30    ARAgingBucket = "1-30"
	Aging31To60   ARAgingBucket = "31-60"
	Aging61To90   ARAgingBucket = "61-90"
	AgingOver90   ARAgingBucket = "90+"
)

// ARAgingRow is one open invoice placed in an aging bucket.
type ARAgingRow struct {
	InvoiceID    string        `json:"invoiceID"`
	CustomerName string        `json:"customerName"`
	Outstanding  money.Cents   `json:"outstanding"`
	DaysOverdue  int           `json:"daysOverdue"`
	Bucket       ARAgingBucket `json:"bucket"`
}

// ARAgingReport is the accounts-receivable aging report.
type ARAgingReport struct {
	Rows   []ARAgingRow                  `json:"rows"`
	Totals map[ARAgingBucket]money.Cents `json:"totals"`
}

// ReconciliationAge is how stale one bank/credit account's most recent lock is.
type ReconciliationAge struct {
	AccountID   string `json:"accountID"`
	AccountName string `json:"accountName"`
	DaysSince   int    `json:"daysSince"` // -1 when never reconciled
	Overdue     bool   `json:"overdue"`   // More than 45 days since the last lock
}

// DashboardSummary carries the landing-page KPIs.
type DashboardSummary struct {
	CashOnHand         money.Cents         `json:"cashOnHand"`
	TotalDebt          money.Cents         `json:"totalDebt"`
	OwnerDraw          money.Cents         `json:"ownerDraw"`
	NeedsReviewCount   int                 `json:"needsReviewCount"` // imported, awaiting categorization
	NeedsRepostCount   int                 `json:"needsRepostCount"` // reversed, awaiting re-posting
	ReconciliationAges []ReconciliationAge `json:"reconciliationAges"`
}
