package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smallbooks/smallbooks_backend/internal/apperrors"
	"github.com/smallbooks/smallbooks_backend/internal/core/domain"
	portsrepo "github.com/smallbooks/smallbooks_backend/internal/core/ports/repositories"
)

// PgxAccountRepository persists the chart of accounts.
type PgxAccountRepository struct {
	BaseRepository
}

func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

const accountColumns = `account_id, user_id, code, name, account_type, parent_account_id, description, status, is_bank_account, created_at, created_by, last_updated_at, last_updated_by`

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var acc domain.Account
	var parentID sql.NullString
	err := row.Scan(
		&acc.AccountID,
		&acc.UserID,
		&acc.Code,
		&acc.Name,
		&acc.AccountType,
		&parentID,
		&acc.Description,
		&acc.Status,
		&acc.IsBankAccount,
		&acc.CreatedAt,
		&acc.CreatedBy,
		&acc.LastUpdatedAt,
		&acc.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	if parentID.Valid {
		acc.ParentAccountID = parentID.String
	}
	return &acc, nil
}

// FindAccountByID retrieves a single account within the tenant.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, userID, accountID string) (*domain.Account, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthenticated
	}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1 AND account_id = $2;`
	acc, err := scanAccount(r.db(ctx).QueryRow(ctx, query, userID, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	return acc, nil
}

// FindAccountsByIDs retrieves multiple accounts keyed by id. Missing ids are simply
// absent from the result.
func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, userID string, accountIDs []string) (map[string]domain.Account, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthenticated
	}
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1 AND account_id = ANY($2);`
	rows, err := r.db(ctx).Query(ctx, query, userID, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	result := make(map[string]domain.Account, len(accountIDs))
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		result[acc.AccountID] = *acc
	}
	return result, rows.Err()
}

// ListAccounts retrieves the tenant's accounts ordered by code.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, userID string, includeArchived bool) ([]domain.Account, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthenticated
	}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1`
	if !includeArchived {
		query += ` AND status = 'ACTIVE'`
	}
	query += ` ORDER BY code;`

	rows, err := r.db(ctx).Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]domain.Account, 0)
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, *acc)
	}
	return accounts, rows.Err()
}

// CountChildren returns how many accounts name parentID as their parent.
func (r *PgxAccountRepository) CountChildren(ctx context.Context, userID, parentID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM accounts WHERE user_id = $1 AND parent_account_id = $2;`
	if err := r.db(ctx).QueryRow(ctx, query, userID, parentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count child accounts: %w", err)
	}
	return count, nil
}

// CountByType returns how many root accounts of the given type exist.
func (r *PgxAccountRepository) CountByType(ctx context.Context, userID string, accountType domain.AccountType) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM accounts WHERE user_id = $1 AND account_type = $2 AND parent_account_id IS NULL;`
	if err := r.db(ctx).QueryRow(ctx, query, userID, accountType).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count accounts by type: %w", err)
	}
	return count, nil
}

// SaveAccount persists a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	var parentID any
	if account.ParentAccountID != "" {
		parentID = account.ParentAccountID
	}
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := r.db(ctx).Exec(ctx, query,
		account.AccountID,
		account.UserID,
		account.Code,
		account.Name,
		account.AccountType,
		parentID,
		account.Description,
		account.Status,
		account.IsBankAccount,
		account.CreatedAt,
		account.CreatedBy,
		account.LastUpdatedAt,
		account.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: account code %s already exists", apperrors.ErrDuplicate, account.Code)
		}
		return fmt.Errorf("failed to save account %s: %w", account.AccountID, err)
	}
	return nil
}

// UpdateAccount persists an account's mutable fields.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	query := `
		UPDATE accounts
		SET name = $3, description = $4, is_bank_account = $5, last_updated_at = $6, last_updated_by = $7
		WHERE user_id = $1 AND account_id = $2;
	`
	tag, err := r.db(ctx).Exec(ctx, query,
		account.UserID,
		account.AccountID,
		account.Name,
		account.Description,
		account.IsBankAccount,
		account.LastUpdatedAt,
		account.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update account %s: %w", account.AccountID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ArchiveAccount soft-archives an account.
func (r *PgxAccountRepository) ArchiveAccount(ctx context.Context, userID, accountID, archivedBy string, archivedAt time.Time) error {
	query := `
		UPDATE accounts
		SET status = 'ARCHIVED', last_updated_at = $3, last_updated_by = $4
		WHERE user_id = $1 AND account_id = $2;
	`
	tag, err := r.db(ctx).Exec(ctx, query, userID, accountID, archivedAt, archivedBy)
	if err != nil {
		return fmt.Errorf("failed to archive account %s: %w", accountID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
