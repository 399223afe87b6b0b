package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/smallbooks/smallbooks_backend/internal/core/domain"
)

// CreateInvoiceRequest defines the data needed to create an invoice.
type CreateInvoiceRequest struct {
	BusinessID   string          `json:"businessID"`
	CustomerName string          `json:"customerName" binding:"required"`
	TotalAmount  decimal.Decimal `json:"totalAmount" binding:"required"`
	IssueDate    string          `json:"issueDate" binding:"required,datetime=2006-01-02"`
	DueDate      *string         `json:"dueDate" binding:"omitempty,datetime=2006-01-02"`
	Status       string          `json:"status" binding:"omitempty,oneof=draft sent"`
}

// RecordPaymentRequest applies a payment against an invoice.
type RecordPaymentRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// InvoiceResponse defines the data returned for an invoice.
type InvoiceResponse struct {
	InvoiceID    string          `json:"invoiceID"`
	BusinessID   string          `json:"businessID,omitempty"`
	CustomerName string          `json:"customerName"`
	Status       string          `json:"status"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	AmountPaid   decimal.Decimal `json:"amountPaid"`
	Outstanding  decimal.Decimal `json:"outstanding"`
	IssueDate    time.Time       `json:"issueDate"`
	DueDate      *time.Time      `json:"dueDate,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// ListInvoicesResponse wraps the invoice list.
type ListInvoicesResponse struct {
	Invoices []InvoiceResponse `json:"invoices"`
}

// ToInvoiceResponse converts a domain.Invoice to InvoiceResponse.
func ToInvoiceResponse(inv *domain.Invoice) InvoiceResponse {
	return InvoiceResponse{
		InvoiceID:    inv.InvoiceID,
		BusinessID:   inv.BusinessID,
		CustomerName: inv.CustomerName,
		Status:       string(inv.Status),
		TotalAmount:  inv.TotalAmount.ToDecimal(),
		AmountPaid:   inv.AmountPaid.ToDecimal(),
		Outstanding:  inv.Outstanding().ToDecimal(),
		IssueDate:    inv.IssueDate,
		DueDate:      inv.DueDate,
		CreatedAt:    inv.CreatedAt,
	}
}

// ToListInvoicesResponse converts a slice of domain.Invoice.
func ToListInvoicesResponse(invoices []domain.Invoice) ListInvoicesResponse {
	res := make([]InvoiceResponse, len(invoices))
	for i, inv := range invoices {
		res[i] = ToInvoiceResponse(&inv)
	}
	return ListInvoicesResponse{Invoices: res}
}
