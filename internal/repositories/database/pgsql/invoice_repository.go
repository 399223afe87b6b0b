package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smallbooks/smallbooks_backend/internal/apperrors"
	"github.com/smallbooks/smallbooks_backend/internal/core/domain"
	portsrepo "github.com/smallbooks/smallbooks_backend/internal/core/ports/repositories"
	"github.com/smallbooks/smallbooks_backend/internal/utils/money"
)

// PgxInvoiceRepository persists customer invoices.
type PgxInvoiceRepository struct {
	BaseRepository
}

func newPgxInvoiceRepository(pool *pgxpool.Pool) portsrepo.InvoiceRepositoryFacade {
	return &PgxInvoiceRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.InvoiceRepositoryFacade = (*PgxInvoiceRepository)(nil)

const invoiceColumns = `invoice_id, user_id, business_id, customer_name, status, total_amount, amount_paid, issue_date, due_date, created_at, created_by, last_updated_at, last_updated_by`

func scanInvoice(row pgx.Row) (*domain.Invoice, error) {
	var inv domain.Invoice
	var total, paid int64
	err := row.Scan(
		&inv.InvoiceID,
		&inv.UserID,
		&inv.BusinessID,
		&inv.CustomerName,
		&inv.Status,
		&total,
		&paid,
		&inv.IssueDate,
		&inv.DueDate,
		&inv.CreatedAt,
		&inv.CreatedBy,
		&inv.LastUpdatedAt,
		&inv.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	inv.TotalAmount = money.Cents(total)
	inv.AmountPaid = money.Cents(paid)
	return &inv, nil
}

// FindInvoiceByID retrieves one invoice within the tenant.
func (r *PgxInvoiceRepository) FindInvoiceByID(ctx context.Context, userID, invoiceID string) (*domain.Invoice, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthenticated
	}
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE user_id = $1 AND invoice_id = $2;`
	inv, err := scanInvoice(r.db(ctx).QueryRow(ctx, query, userID, invoiceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find invoice %s: %w", invoiceID, err)
	}
	return inv, nil
}

// ListInvoices retrieves the tenant's invoices, newest first.
func (r *PgxInvoiceRepository) ListInvoices(ctx context.Context, userID, businessID string) ([]domain.Invoice, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthenticated
	}
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE user_id = $1`
	args := []any{userID}
	if businessID != "" {
		args = append(args, businessID)
		query += ` AND business_id = $2`
	}
	query += ` ORDER BY issue_date DESC, created_at DESC;`

	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	invoices := make([]domain.Invoice, 0)
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice row: %w", err)
		}
		invoices = append(invoices, *inv)
	}
	return invoices, rows.Err()
}

// SaveInvoice persists a new invoice.
func (r *PgxInvoiceRepository) SaveInvoice(ctx context.Context, invoice domain.Invoice) error {
	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := r.db(ctx).Exec(ctx, query,
		invoice.InvoiceID,
		invoice.UserID,
		invoice.BusinessID,
		invoice.CustomerName,
		invoice.Status,
		int64(invoice.TotalAmount),
		int64(invoice.AmountPaid),
		invoice.IssueDate,
		invoice.DueDate,
		invoice.CreatedAt,
		invoice.CreatedBy,
		invoice.LastUpdatedAt,
		invoice.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: invoice %s already exists", apperrors.ErrDuplicate, invoice.InvoiceID)
		}
		return fmt.Errorf("failed to save invoice %s: %w", invoice.InvoiceID, err)
	}
	return nil
}

// UpdateInvoice persists payment and status changes.
func (r *PgxInvoiceRepository) UpdateInvoice(ctx context.Context, invoice domain.Invoice) error {
	query := `
		UPDATE invoices
		SET status = $3, amount_paid = $4, last_updated_at = $5, last_updated_by = $6
		WHERE user_id = $1 AND invoice_id = $2;
	`
	tag, err := r.db(ctx).Exec(ctx, query,
		invoice.UserID,
		invoice.InvoiceID,
		invoice.Status,
		int64(invoice.AmountPaid),
		invoice.LastUpdatedAt,
		invoice.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update invoice %s: %w", invoice.InvoiceID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
