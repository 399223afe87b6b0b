package domain

import (
	"time"

	"github.com/smallbooks/smallbooks_backend/internal/utils/money"
)

// InvoiceStatus is the lifecycle state of a customer invoice.
type InvoiceStatus string

const (
	InvoiceDraft InvoiceStatus = "draft"
	InvoiceSent  InvoiceStatus = "sent"
	InvoicePaid  InvoiceStatus = "paid"
)

// Invoice is a customer invoice tracked for accounts-receivable aging.
type Invoice struct {
	InvoiceID    string        `json:"invoiceID"`
	UserID       string        `json:"userID"` // Tenant owner
	BusinessID   string        `json:"businessID"`
	CustomerName string        `json:"customerName"`
	Status       InvoiceStatus `json:"status"`
	TotalAmount  money.Cents   `json:"totalAmount"`
	AmountPaid   money.Cents   `json:"amountPaid"`
	IssueDate    time.Time     `json:"issueDate"`
	DueDate      *time.Time    `json:"dueDate,omitempty"`
	AuditFields
}

// Outstanding returns the unpaid balance, floored at zero so that overpayment can never
// corrupt receivable totals.
func (i Invoice) Outstanding() money.Cents {
	out := i.TotalAmount - i.AmountPaid
	if out < 0 {
		return 0
	}
	return out
}
