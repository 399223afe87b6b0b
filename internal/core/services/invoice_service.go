package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/smallbooks/smallbooks_backend/internal/apperrors"
	"github.com/smallbooks/smallbooks_backend/internal/core/domain"
	portsrepo "github.com/smallbooks/smallbooks_backend/internal/core/ports/repositories"
	portssvc "github.com/smallbooks/smallbooks_backend/internal/core/ports/services"
	"github.com/smallbooks/smallbooks_backend/internal/dto"
	"github.com/smallbooks/smallbooks_backend/internal/utils/money"
)

// invoiceService tracks customer invoices for accounts-receivable reporting.
type invoiceService struct {
	BaseService
	invoiceRepo portsrepo.InvoiceRepositoryFacade
}

// NewInvoiceService creates a new invoice service.
func NewInvoiceService(invoiceRepo portsrepo.InvoiceRepositoryFacade) portssvc.InvoiceSvcFacade {
	return &invoiceService{invoiceRepo: invoiceRepo}
}

var _ portssvc.InvoiceSvcFacade = (*invoiceService)(nil)

// GetInvoiceByID retrieves one invoice.
func (s *invoiceService) GetInvoiceByID(ctx context.Context, userID string, invoiceID string) (*domain.Invoice, error) {
	return s.invoiceRepo.FindInvoiceByID(ctx, userID, invoiceID)
}

// ListInvoices retrieves the tenant's invoices.
func (s *invoiceService) ListInvoices(ctx context.Context, userID string, businessID string) ([]domain.Invoice, error) {
	return s.invoiceRepo.ListInvoices(ctx, userID, businessID)
}

// CreateInvoice persists a new invoice in draft or sent state.
func (s *invoiceService) CreateInvoice(ctx context.Context, userID string, req dto.CreateInvoiceRequest) (*domain.Invoice, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthenticated
	}

	total, exact := money.FromDecimal(req.TotalAmount)
	if !exact {
		s.LogWarn(ctx, "invoice total rounded to whole cents", slog.String("customer", req.CustomerName))
	}
	if total <= 0 {
		return nil, fmt.Errorf("%w: invoice total must be positive", apperrors.ErrValidation)
	}

	issueDate, err := parseDate(req.IssueDate)
	if err != nil {
		return nil, err
	}
	var dueDate *time.Time
	if req.DueDate != nil && *req.DueDate != "" {
		d, err := parseDate(*req.DueDate)
		if err != nil {
			return nil, err
		}
		if d.Before(issueDate) {
			return nil, fmt.Errorf("%w: due date precedes issue date", apperrors.ErrValidation)
		}
		dueDate = &d
	}

	status := domain.InvoiceDraft
	if req.Status == string(domain.InvoiceSent) {
		status = domain.InvoiceSent
	}

	now := time.Now().UTC()
	invoice := domain.Invoice{
		InvoiceID:    uuid.NewString(),
		UserID:       userID,
		BusinessID:   req.BusinessID,
		CustomerName: req.CustomerName,
		Status:       status,
		TotalAmount:  total,
		IssueDate:    issueDate,
		DueDate:      dueDate,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.invoiceRepo.SaveInvoice(ctx, invoice); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "invoice created",
		slog.String("invoice_id", invoice.InvoiceID),
		slog.String("customer", invoice.CustomerName))
	return &invoice, nil
}

// MarkInvoiceSent moves a draft invoice to sent, making it visible to A/R aging.
func (s *invoiceService) MarkInvoiceSent(ctx context.Context, userID string, invoiceID string) (*domain.Invoice, error) {
	invoice, err := s.invoiceRepo.FindInvoiceByID(ctx, userID, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.Status != domain.InvoiceDraft {
		return nil, fmt.Errorf("%w: invoice %s is not a draft", apperrors.ErrConflict, invoiceID)
	}
	invoice.Status = domain.InvoiceSent
	invoice.LastUpdatedAt = time.Now().UTC()
	invoice.LastUpdatedBy = userID
	if err := s.invoiceRepo.UpdateInvoice(ctx, *invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

// RecordPayment applies a payment against an invoice. The invoice flips to paid once
// the outstanding balance hits zero; overpayment is tolerated and floored in reports.
func (s *invoiceService) RecordPayment(ctx context.Context, userID string, invoiceID string, req dto.RecordPaymentRequest) (*domain.Invoice, error) {
	amount, exact := money.FromDecimal(req.Amount)
	if !exact {
		s.LogWarn(ctx, "payment amount rounded to whole cents", slog.String("invoice_id", invoiceID))
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: payment amount must be positive", apperrors.ErrValidation)
	}

	invoice, err := s.invoiceRepo.FindInvoiceByID(ctx, userID, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.Status == domain.InvoiceDraft {
		return nil, fmt.Errorf("%w: cannot record payment on a draft invoice", apperrors.ErrConflict)
	}

	invoice.AmountPaid += amount
	if invoice.Outstanding() == 0 {
		invoice.Status = domain.InvoicePaid
	}
	invoice.LastUpdatedAt = time.Now().UTC()
	invoice.LastUpdatedBy = userID

	if err := s.invoiceRepo.UpdateInvoice(ctx, *invoice); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "invoice payment recorded",
		slog.String("invoice_id", invoiceID),
		slog.String("amount", amount.String()),
		slog.String("status", string(invoice.Status)))
	return invoice, nil
}
