package repositories

import (
	"context"

	"github.com/smallbooks/smallbooks_backend/internal/core/domain"
)

// InvoiceReader defines read operations for invoices.
type InvoiceReader interface {
	// FindInvoiceByID retrieves one invoice within the tenant.
	FindInvoiceByID(ctx context.Context, userID, invoiceID string) (*domain.Invoice, error)

	// ListInvoices retrieves the tenant's invoices, optionally filtered by business.
	ListInvoices(ctx context.Context, userID, businessID string) ([]domain.Invoice, error)
}

// InvoiceWriter defines write operations for invoices.
type InvoiceWriter interface {
	// SaveInvoice persists a new invoice.
	SaveInvoice(ctx context.Context, invoice domain.Invoice) error

	// UpdateInvoice persists payment and status changes.
	UpdateInvoice(ctx context.Context, invoice domain.Invoice) error
}

// InvoiceRepositoryFacade combines all invoice repository interfaces.
type InvoiceRepositoryFacade interface {
	InvoiceReader
	InvoiceWriter
}
