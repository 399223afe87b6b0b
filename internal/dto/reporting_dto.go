package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/smallbooks/smallbooks_backend/internal/core/domain"
)

// PeriodParams defines the date-range query parameters shared by period reports.
type PeriodParams struct {
	From       string `form:"from" binding:"required,datetime=2006-01-02"`
	To         string `form:"to" binding:"required,datetime=2006-01-02"`
	BusinessID string `form:"businessID"`
}

// AsOfParams defines the query parameters for point-in-time reports.
type AsOfParams struct {
	AsOf       string `form:"asOf" binding:"required,datetime=2006-01-02"`
	BusinessID string `form:"businessID"`
}

// CashFlowParams defines the query parameters for the cash-flow report.
type CashFlowParams struct {
	From          string `form:"from" binding:"required,datetime=2006-01-02"`
	To            string `form:"to" binding:"required,datetime=2006-01-02"`
	CashAccountID string `form:"cashAccountID" binding:"required"`
	BusinessID    string `form:"businessID"`
}

// AccountAmountResponse is one report row: an account and its net amount.
type AccountAmountResponse struct {
	AccountID string          `json:"accountID"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	NetAmount decimal.Decimal `json:"netAmount"`
}

// PAndLResponse is the profit and loss statement.
type PAndLResponse struct {
	From           time.Time               `json:"from"`
	To             time.Time               `json:"to"`
	Revenue        []AccountAmountResponse `json:"revenue"`
	CostOfServices []AccountAmountResponse `json:"costOfServices"`
	Expenses       []AccountAmountResponse `json:"expenses"`
	TotalRevenue   decimal.Decimal         `json:"totalRevenue"`
	TotalCOGS      decimal.Decimal         `json:"totalCOGS"`
	TotalExpenses  decimal.Decimal         `json:"totalExpenses"`
	GrossProfit    decimal.Decimal         `json:"grossProfit"`
	NetIncome      decimal.Decimal         `json:"netIncome"`
}

// BalanceSheetResponse is the balance sheet as of a single date.
type BalanceSheetResponse struct {
	AsOf             time.Time               `json:"asOf"`
	Assets           []AccountAmountResponse `json:"assets"`
	Liabilities      []AccountAmountResponse `json:"liabilities"`
	Equity           []AccountAmountResponse `json:"equity"`
	TotalAssets      decimal.Decimal         `json:"totalAssets"`
	TotalLiabilities decimal.Decimal         `json:"totalLiabilities"`
	TotalEquity      decimal.Decimal         `json:"totalEquity"`
	IsBalanced       bool                    `json:"isBalanced"`
}

// CashFlowMonthResponse is one calendar-month bucket of cash activity.
type CashFlowMonthResponse struct {
	Month   string          `json:"month"`
	Inflow  decimal.Decimal `json:"inflow"`
	Outflow decimal.Decimal `json:"outflow"`
	Net     decimal.Decimal `json:"net"`
}

// CashFlowResponse is the monthly cash-flow report for one cash account.
type CashFlowResponse struct {
	CashAccountID string                  `json:"cashAccountID"`
	Months        []CashFlowMonthResponse `json:"months"`
}

// ARAgingRowResponse is one open invoice placed in an aging bucket.
type ARAgingRowResponse struct {
	InvoiceID    string          `json:"invoiceID"`
	CustomerName string          `json:"customerName"`
	Outstanding  decimal.Decimal `json:"outstanding"`
	DaysOverdue  int             `json:"daysOverdue"`
	Bucket       string          `json:"bucket"`
}

// ARAgingResponse is the accounts-receivable aging report.
type ARAgingResponse struct {
	Rows   []ARAgingRowResponse       `json:"rows"`
	Totals map[string]decimal.Decimal `json:"totals"`
}

// ReconciliationAgeResponse reports how stale one account's latest lock is.
type ReconciliationAgeResponse struct {
	AccountID   string `json:"accountID"`
	AccountName string `json:"accountName"`
	DaysSince   int    `json:"daysSince"`
	Overdue     bool   `json:"overdue"`
}

// DashboardResponse carries the landing-page KPIs.
type DashboardResponse struct {
	CashOnHand         decimal.Decimal             `json:"cashOnHand"`
	TotalDebt          decimal.Decimal             `json:"totalDebt"`
	OwnerDraw          decimal.Decimal             `json:"ownerDraw"`
	NeedsReviewCount   int                         `json:"needsReviewCount"`
	NeedsRepostCount   int                         `json:"needsRepostCount"`
	ReconciliationAges []ReconciliationAgeResponse `json:"reconciliationAges"`
}

func toAccountAmountResponses(rows []domain.AccountAmount) []AccountAmountResponse {
	res := make([]AccountAmountResponse, len(rows))
	for i, r := range rows {
		res[i] = AccountAmountResponse{
			AccountID: r.AccountID,
			Code:      r.Code,
			Name:      r.Name,
			NetAmount: r.NetAmount.ToDecimal(),
		}
	}
	return res
}

// ToPAndLResponse converts a domain.PAndLReport to the wire form.
func ToPAndLResponse(from, to time.Time, rpt *domain.PAndLReport) PAndLResponse {
	return PAndLResponse{
		From:           from,
		To:             to,
		Revenue:        toAccountAmountResponses(rpt.Revenue),
		CostOfServices: toAccountAmountResponses(rpt.CostOfServices),
		Expenses:       toAccountAmountResponses(rpt.Expenses),
		TotalRevenue:   rpt.TotalRevenue.ToDecimal(),
		TotalCOGS:      rpt.TotalCOGS.ToDecimal(),
		TotalExpenses:  rpt.TotalExpenses.ToDecimal(),
		GrossProfit:    rpt.GrossProfit.ToDecimal(),
		NetIncome:      rpt.NetIncome.ToDecimal(),
	}
}

// ToBalanceSheetResponse converts a domain.BalanceSheetReport to the wire form.
func ToBalanceSheetResponse(rpt *domain.BalanceSheetReport) BalanceSheetResponse {
	return BalanceSheetResponse{
		AsOf:             rpt.AsOf,
		Assets:           toAccountAmountResponses(rpt.Assets),
		Liabilities:      toAccountAmountResponses(rpt.Liabilities),
		Equity:           toAccountAmountResponses(rpt.Equity),
		TotalAssets:      rpt.TotalAssets.ToDecimal(),
		TotalLiabilities: rpt.TotalLiabilities.ToDecimal(),
		TotalEquity:      rpt.TotalEquity.ToDecimal(),
		IsBalanced:       rpt.IsBalanced,
	}
}

// ToCashFlowResponse converts a domain.CashFlowReport to the wire form.
func ToCashFlowResponse(rpt *domain.CashFlowReport) CashFlowResponse {
	months := make([]CashFlowMonthResponse, len(rpt.Months))
	for i, m := range rpt.Months {
		months[i] = CashFlowMonthResponse{
			Month:   m.Month,
			Inflow:  m.Inflow.ToDecimal(),
			Outflow: m.Outflow.ToDecimal(),
			Net:     m.Net.ToDecimal(),
		}
	}
	return CashFlowResponse{CashAccountID: rpt.CashAccountID, Months: months}
}

// ToARAgingResponse converts a domain.ARAgingReport to the wire form.
func ToARAgingResponse(rpt *domain.ARAgingReport) ARAgingResponse {
	rows := make([]ARAgingRowResponse, len(rpt.Rows))
	for i, r := range rpt.Rows {
		rows[i] = ARAgingRowResponse{
			InvoiceID:    r.InvoiceID,
			CustomerName: r.CustomerName,
			Outstanding:  r.Outstanding.ToDecimal(),
			DaysOverdue:  r.DaysOverdue,
			Bucket:       string(r.Bucket),
		}
	}
	totals := make(map[string]decimal.Decimal, len(rpt.Totals))
	for bucket, amount := range rpt.Totals {
		totals[string(bucket)] = amount.ToDecimal()
	}
	return ARAgingResponse{Rows: rows, Totals: totals}
}

// ToDashboardResponse converts a domain.DashboardSummary to the wire form.
func ToDashboardResponse(s *domain.DashboardSummary) DashboardResponse {
	ages := make([]ReconciliationAgeResponse, len(s.ReconciliationAges))
	for i, a := range s.ReconciliationAges {
		ages[i] = ReconciliationAgeResponse{
			AccountID:   a.AccountID,
			AccountName: a.AccountName,
			DaysSince:   a.DaysSince,
			Overdue:     a.Overdue,
		}
	}
	return DashboardResponse{
		CashOnHand:         s.CashOnHand.ToDecimal(),
		TotalDebt:          s.TotalDebt.ToDecimal(),
		OwnerDraw:          s.OwnerDraw.ToDecimal(),
		NeedsReviewCount:   s.NeedsReviewCount,
		NeedsRepostCount:   s.NeedsRepostCount,
		ReconciliationAges: ages,
	}
}
