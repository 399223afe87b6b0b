package services

import (
	"context"

	"github.com/smallbooks/smallbooks_backend/internal/core/domain"
	"github.com/smallbooks/smallbooks_backend/internal/dto"
)

// InvoiceReaderSvc defines read operations for invoices.
type InvoiceReaderSvc interface {
	// GetInvoiceByID retrieves one invoice.
	GetInvoiceByID(ctx context.Context, userID string, invoiceID string) (*domain.Invoice, error)

	// ListInvoices retrieves the tenant's invoices, optionally filtered by business.
	ListInvoices(ctx context.Context, userID string, businessID string) ([]domain.Invoice, error)
}

// InvoiceWriterSvc defines write operations for invoices.
type InvoiceWriterSvc interface {
	// CreateInvoice persists a new invoice.
	CreateInvoice(ctx context.Context, userID string, req dto.CreateInvoiceRequest) (*domain.Invoice, error)

	// MarkInvoiceSent moves a draft invoice into the sent state, making it visible
	// to A/R aging.
	MarkInvoiceSent(ctx context.Context, userID string, invoiceID string) (*domain.Invoice, error)

	// RecordPayment applies a payment; the invoice flips to paid once covered.
	RecordPayment(ctx context.Context, userID string, invoiceID string, req dto.RecordPaymentRequest) (*domain.Invoice, error)
}

// InvoiceSvcFacade combines all invoice service interfaces.
type InvoiceSvcFacade interface {
	InvoiceReaderSvc
	InvoiceWriterSvc
}
