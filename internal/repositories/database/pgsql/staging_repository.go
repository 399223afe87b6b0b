package pgsql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smallbooks/smallbooks_backend/internal/apperrors"
	"github.com/smallbooks/smallbooks_backend/internal/core/domain"
	portsrepo "github.com/smallbooks/smallbooks_backend/internal/core/ports/repositories"
	"github.com/smallbooks/smallbooks_backend/internal/utils/money"
	"github.com/smallbooks/smallbooks_backend/internal/utils/pagination"
)

// PgxStagingRepository persists the pre-ledger transaction queue. Status transitions to
// and from posted happen in the journal repository's SaveEntry so they commit with the
// journal write.
type PgxStagingRepository struct {
	BaseRepository
}

func newPgxStagingRepository(pool *pgxpool.Pool) portsrepo.StagingRepositoryFacade {
	return &PgxStagingRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.StagingRepositoryFacade = (*PgxStagingRepository)(nil)

const stagedColumns = `transaction_id, user_id, vendor_transaction_id, date, amount, merchant, description, status, transaction_type, bank_account_id, assigned_account_id, assigned_business_id, assigned_project_id, assigned_contractor_id, transfer_account_id, splits, linked_entry_id, pending, created_at, created_by, last_updated_at, last_updated_by`

func scanStagedTransaction(row pgx.Row) (*domain.StagedTransaction, error) {
	var t domain.StagedTransaction
	var amount int64
	var splitsJSON []byte
	var linkedEntryID sql.NullString
	err := row.Scan(
		&t.TransactionID,
		&t.UserID,
		&t.VendorTransactionID,
		&t.Date,
		&amount,
		&t.Merchant,
		&t.Description,
		&t.Status,
		&t.TransactionType,
		&t.BankAccountID,
		&t.AssignedAccountID,
		&t.AssignedBusinessID,
		&t.AssignedProjectID,
		&t.AssignedContractorID,
		&t.TransferAccountID,
		&splitsJSON,
		&linkedEntryID,
		&t.Pending,
		&t.CreatedAt,
		&t.CreatedBy,
		&t.LastUpdatedAt,
		&t.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	t.Amount = money.Cents(amount)
	if linkedEntryID.Valid {
		t.LinkedEntryID = linkedEntryID.String
	}
	if len(splitsJSON) > 0 {
		if err := json.Unmarshal(splitsJSON, &t.Splits); err != nil {
			return nil, fmt.Errorf("failed to decode splits for transaction %s: %w", t.TransactionID, err)
		}
	}
	return &t, nil
}

// FindTransactionByID retrieves one staged transaction within the tenant.
func (r *PgxStagingRepository) FindTransactionByID(ctx context.Context, userID, transactionID string) (*domain.StagedTransaction, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthenticated
	}
	query := `SELECT ` + stagedColumns + ` FROM staged_transactions WHERE user_id = $1 AND transaction_id = $2;`
	txn, err := scanStagedTransaction(r.db(ctx).QueryRow(ctx, query, userID, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find staged transaction %s: %w", transactionID, err)
	}
	return txn, nil
}

// FindTransactionByLinkedEntry returns the staged transaction posted as the given entry.
func (r *PgxStagingRepository) FindTransactionByLinkedEntry(ctx context.Context, userID, entryID string) (*domain.StagedTransaction, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthenticated
	}
	query := `SELECT ` + stagedColumns + ` FROM staged_transactions WHERE user_id = $1 AND linked_entry_id = $2;`
	txn, err := scanStagedTransaction(r.db(ctx).QueryRow(ctx, query, userID, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction linked to entry %s: %w", entryID, err)
	}
	return txn, nil
}

// FindVendorTransactionIDs returns which of the given vendor ids are already staged.
func (r *PgxStagingRepository) FindVendorTransactionIDs(ctx context.Context, userID string, vendorIDs []string) (map[string]struct{}, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthenticated
	}
	seen := make(map[string]struct{}, len(vendorIDs))
	if len(vendorIDs) == 0 {
		return seen, nil
	}
	query := `SELECT vendor_transaction_id FROM staged_transactions WHERE user_id = $1 AND vendor_transaction_id = ANY($2);`
	rows, err := r.db(ctx).Query(ctx, query, userID, vendorIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query vendor transaction ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var vendorID string
		if err := rows.Scan(&vendorID); err != nil {
			return nil, fmt.Errorf("failed to scan vendor id: %w", err)
		}
		seen[vendorID] = struct{}{}
	}
	return seen, rows.Err()
}

// ListTransactions retrieves staged transactions newest first with keyset pagination.
func (r *PgxStagingRepository) ListTransactions(ctx context.Context, userID string, status *domain.TransactionStatus, limit int, nextToken *string) ([]domain.StagedTransaction, *string, error) {
	if userID == "" {
		return nil, nil, apperrors.ErrUnauthenticated
	}

	query := `SELECT ` + stagedColumns + ` FROM staged_transactions WHERE user_id = $1`
	args := []any{userID}
	if status != nil {
		args = append(args, *status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if nextToken != nil && *nextToken != "" {
		date, createdAt, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		args = append(args, date, createdAt)
		query += fmt.Sprintf(" AND (date, created_at) < ($%d, $%d)", len(args)-1, len(args))
	}
	args = append(args, limit+1)
	query += fmt.Sprintf(" ORDER BY date DESC, created_at DESC LIMIT $%d;", len(args))

	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list staged transactions: %w", err)
	}
	defer rows.Close()

	txns := make([]domain.StagedTransaction, 0, limit)
	for rows.Next() {
		txn, err := scanStagedTransaction(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan staged transaction row: %w", err)
		}
		txns = append(txns, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	var newToken *string
	if len(txns) > limit {
		txns = txns[:limit]
		last := txns[len(txns)-1]
		token := pagination.EncodeToken(last.Date, last.CreatedAt)
		newToken = &token
	}
	return txns, newToken, nil
}

// CountByStatus counts staged transactions in the given status.
func (r *PgxStagingRepository) CountByStatus(ctx context.Context, userID string, status domain.TransactionStatus) (int, error) {
	if userID == "" {
		return 0, apperrors.ErrUnauthenticated
	}
	var count int
	query := `SELECT COUNT(*) FROM staged_transactions WHERE user_id = $1 AND status = $2;`
	if err := r.db(ctx).QueryRow(ctx, query, userID, status).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count staged transactions: %w", err)
	}
	return count, nil
}

// SaveTransaction persists a newly staged transaction.
func (r *PgxStagingRepository) SaveTransaction(ctx context.Context, txn domain.StagedTransaction) error {
	splitsJSON, err := encodeSplits(txn.Splits)
	if err != nil {
		return err
	}
	var linkedID any
	if txn.LinkedEntryID != "" {
		linkedID = txn.LinkedEntryID
	}
	query := `
		INSERT INTO staged_transactions (` + stagedColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22);
	`
	_, err = r.db(ctx).Exec(ctx, query,
		txn.TransactionID,
		txn.UserID,
		txn.VendorTransactionID,
		txn.Date,
		int64(txn.Amount),
		txn.Merchant,
		txn.Description,
		txn.Status,
		txn.TransactionType,
		txn.BankAccountID,
		txn.AssignedAccountID,
		txn.AssignedBusinessID,
		txn.AssignedProjectID,
		txn.AssignedContractorID,
		txn.TransferAccountID,
		splitsJSON,
		linkedID,
		txn.Pending,
		txn.CreatedAt,
		txn.CreatedBy,
		txn.LastUpdatedAt,
		txn.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: vendor transaction %s already staged", apperrors.ErrDuplicate, txn.VendorTransactionID)
		}
		return fmt.Errorf("failed to save staged transaction %s: %w", txn.TransactionID, err)
	}
	return nil
}

// UpdateTransaction persists categorization changes to an unposted transaction.
func (r *PgxStagingRepository) UpdateTransaction(ctx context.Context, txn domain.StagedTransaction) error {
	splitsJSON, err := encodeSplits(txn.Splits)
	if err != nil {
		return err
	}
	query := `
		UPDATE staged_transactions
		SET transaction_type = $3, assigned_account_id = $4, assigned_business_id = $5,
		    assigned_project_id = $6, assigned_contractor_id = $7, transfer_account_id = $8,
		    splits = $9, merchant = $10, description = $11,
		    last_updated_at = $12, last_updated_by = $13
		WHERE user_id = $1 AND transaction_id = $2 AND status <> 'posted';
	`
	tag, err := r.db(ctx).Exec(ctx, query,
		txn.UserID,
		txn.TransactionID,
		txn.TransactionType,
		txn.AssignedAccountID,
		txn.AssignedBusinessID,
		txn.AssignedProjectID,
		txn.AssignedContractorID,
		txn.TransferAccountID,
		splitsJSON,
		txn.Merchant,
		txn.Description,
		txn.LastUpdatedAt,
		txn.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update staged transaction %s: %w", txn.TransactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: staged transaction %s is posted or missing", apperrors.ErrConflict, txn.TransactionID)
	}
	return nil
}

func encodeSplits(splits []domain.TransactionSplit) ([]byte, error) {
	if len(splits) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(splits)
	if err != nil {
		return nil, fmt.Errorf("failed to encode splits: %w", err)
	}
	return data, nil
}
