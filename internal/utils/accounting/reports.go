package accounting

import (
	"sort"
	"time"

	"github.com/smallbooks/smallbooks_backend/internal/core/domain"
	"github.com/smallbooks/smallbooks_backend/internal/utils/money"
)

// ReportInput is the complete, explicit input to every report fold. Reports are pure
// functions of this value: no module-level state, identical input yields identical
// output.
type ReportInput struct {
	Entries    []domain.JournalEntry
	Accounts   []domain.Account
	From       time.Time
	To         time.Time
	BusinessID string // Empty means all businesses
}

func (in ReportInput) accountsByID() map[string]domain.Account {
	m := make(map[string]domain.Account, len(in.Accounts))
	for _, a := range in.Accounts {
		m[a.AccountID] = a
	}
	return m
}

func (in ReportInput) inRange(e domain.JournalEntry) bool {
	if in.BusinessID != "" && e.BusinessID != in.BusinessID {
		return false
	}
	if !in.From.IsZero() && e.EntryDate.Before(in.From) {
		return false
	}
	if !in.To.IsZero() && e.EntryDate.After(in.To) {
		return false
	}
	return true
}

// netByAccount folds lines of in-range entries into per-account debit-minus-credit nets.
func (in ReportInput) netByAccount() map[string]money.Cents {
	nets := make(map[string]money.Cents)
	for _, e := range in.Entries {
		if !in.inRange(e) {
			continue
		}
		for _, l := range e.Lines {
			nets[l.AccountID] += l.Debit - l.Credit
		}
	}
	return nets
}

func sortAmounts(rows []domain.AccountAmount) {
	sort.Slice(rows, func(i, j int) bool { return rows[i].Code < rows[j].Code })
}

// ProfitAndLoss computes the P&L statement for the input period.
// Income accounts contribute credit-minus-debit; cost-of-services and expense accounts
// contribute debit-minus-credit.
func ProfitAndLoss(in ReportInput) domain.PAndLReport {
	accounts := in.accountsByID()
	nets := in.netByAccount()

	report := domain.PAndLReport{
		Revenue:        []domain.AccountAmount{},
		CostOfServices: []domain.AccountAmount{},
		Expenses:       []domain.AccountAmount{},
	}

	for accID, net := range nets {
		acc, ok := accounts[accID]
		if !ok {
			continue
		}
		row := domain.AccountAmount{AccountID: acc.AccountID, Code: acc.Code, Name: acc.Name}
		switch acc.AccountType {
		case domain.Income:
			row.NetAmount = -net // credit-normal
			report.Revenue = append(report.Revenue, row)
			report.TotalRevenue += row.NetAmount
		case domain.CostOfServices:
			row.NetAmount = net
			report.CostOfServices = append(report.CostOfServices, row)
			report.TotalCOGS += row.NetAmount
		case domain.Expense:
			row.NetAmount = net
			report.Expenses = append(report.Expenses, row)
			report.TotalExpenses += row.NetAmount
		}
	}

	sortAmounts(report.Revenue)
	sortAmounts(report.CostOfServices)
	sortAmounts(report.Expenses)

	report.GrossProfit = report.TotalRevenue - report.TotalCOGS
	report.NetIncome = report.GrossProfit - report.TotalExpenses
	return report
}

// BalanceSheet computes the balance sheet as of in.To. A synthetic "Retained Earnings
// (YTD)" equity line equal to the period's net income is injected so the statement can
// balance without an explicit retained-earnings account. An unbalanced result is
// reported via IsBalanced, never hidden.
func BalanceSheet(in ReportInput) domain.BalanceSheetReport {
	accounts := in.accountsByID()

	asOfInput := in
	asOfInput.From = time.Time{} // Balance sheet folds everything up to the as-of date

	nets := asOfInput.netByAccount()

	report := domain.BalanceSheetReport{
		AsOf:        in.To,
		Assets:      []domain.AccountAmount{},
		Liabilities: []domain.AccountAmount{},
		Equity:      []domain.AccountAmount{},
	}

	for accID, net := range nets {
		acc, ok := accounts[accID]
		if !ok {
			continue
		}
		row := domain.AccountAmount{AccountID: acc.AccountID, Code: acc.Code, Name: acc.Name}
		switch acc.AccountType {
		case domain.Asset:
			row.NetAmount = net
			report.Assets = append(report.Assets, row)
			report.TotalAssets += row.NetAmount
		case domain.Liability:
			row.NetAmount = -net
			report.Liabilities = append(report.Liabilities, row)
			report.TotalLiabilities += row.NetAmount
		case domain.Equity:
			row.NetAmount = -net
			report.Equity = append(report.Equity, row)
			report.TotalEquity += row.NetAmount
		}
	}

	sortAmounts(report.Assets)
	sortAmounts(report.Liabilities)
	sortAmounts(report.Equity)

	pnl := ProfitAndLoss(asOfInput)
	if pnl.NetIncome != 0 {
		report.Equity = append(report.Equity, domain.AccountAmount{
			AccountID: "",
			Name:      "Retained Earnings (YTD)",
			NetAmount: pnl.NetIncome,
		})
		report.TotalEquity += pnl.NetIncome
	}

	diff := report.TotalAssets - (report.TotalLiabilities + report.TotalEquity)
	report.IsBalanced = diff.Abs() < 1
	return report
}

// CashFlow buckets journal lines touching cashAccountID by calendar month.
func CashFlow(in ReportInput, cashAccountID string) domain.CashFlowReport {
	buckets := make(map[string]*domain.CashFlowMonth)
	for _, e := range in.Entries {
		if !in.inRange(e) {
			continue
		}
		for _, l := range e.Lines {
			if l.AccountID != cashAccountID {
				continue
			}
			month := e.EntryDate.Format("2006-01")
			b, ok := buckets[month]
			if !ok {
				b = &domain.CashFlowMonth{Month: month}
				buckets[month] = b
			}
			b.Inflow += l.Debit
			b.Outflow += l.Credit
		}
	}

	months := make([]domain.CashFlowMonth, 0, len(buckets))
	for _, b := range buckets {
		b.Net = b.Inflow - b.Outflow
		months = append(months, *b)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Month < months[j].Month })

	return domain.CashFlowReport{CashAccountID: cashAccountID, Months: months}
}

// AgingBucketFor maps days overdue to an aging bucket.
func AgingBucketFor(daysOverdue int) domain.ARAgingBucket {
	switch {
	case daysOverdue <= 0:
		return domain.AgingCurrent
	case daysOverdue <= 30:
		return domain.Aging1To30
	case daysOverdue <= 60:
		return domain.Aging31To60
	case daysOverdue <= 90:
		return domain.Aging61To90
	default:
		return domain.AgingOver90
	}
}

// ARAging buckets open, non-draft invoices by days overdue relative to today.
// Outstanding amounts are floored at zero so overpaid invoices drop out instead of
// corrupting totals.
func ARAging(invoices []domain.Invoice, today time.Time) domain.ARAgingReport {
	report := domain.ARAgingReport{
		Rows:   []domain.ARAgingRow{},
		Totals: make(map[domain.ARAgingBucket]money.Cents),
	}

	for _, inv := range invoices {
		if inv.Status == domain.InvoiceDraft {
			continue
		}
		outstanding := inv.Outstanding()
		if outstanding <= 1 {
			continue
		}
		ref := inv.IssueDate
		if inv.DueDate != nil {
			ref = *inv.DueDate
		}
		daysOverdue := int(today.Sub(ref).Hours() / 24)
		bucket := AgingBucketFor(daysOverdue)
		report.Rows = append(report.Rows, domain.ARAgingRow{
			InvoiceID:    inv.InvoiceID,
			CustomerName: inv.CustomerName,
			Outstanding:  outstanding,
			DaysOverdue:  daysOverdue,
			Bucket:       bucket,
		})
		report.Totals[bucket] += outstanding
	}

	sort.Slice(report.Rows, func(i, j int) bool { return report.Rows[i].DaysOverdue > report.Rows[j].DaysOverdue })
	return report
}
