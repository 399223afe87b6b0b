package pgsql

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smallbooks/smallbooks_backend/internal/apperrors"
	"github.com/smallbooks/smallbooks_backend/internal/core/domain"
	portsrepo "github.com/smallbooks/smallbooks_backend/internal/core/ports/repositories"
	"github.com/smallbooks/smallbooks_backend/internal/utils/money"
)

// PgxReconciliationRepository persists period-lock records and line clearing markers.
type PgxReconciliationRepository struct {
	BaseRepository
}

func newPgxReconciliationRepository(pool *pgxpool.Pool) portsrepo.ReconciliationRepositoryFacade {
	return &PgxReconciliationRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ReconciliationRepositoryFacade = (*PgxReconciliationRepository)(nil)

// splitLineID splits "<entryID>-<lineIndex>" at the last dash; entry ids are UUIDs and
// contain dashes themselves.
func splitLineID(lineID string) (string, int, error) {
	cut := strings.LastIndex(lineID, "-")
	if cut <= 0 || cut == len(lineID)-1 {
		return "", 0, fmt.Errorf("%w: malformed line id %q", apperrors.ErrValidation, lineID)
	}
	index, err := strconv.Atoi(lineID[cut+1:])
	if err != nil || index < 0 {
		return "", 0, fmt.Errorf("%w: malformed line id %q", apperrors.ErrValidation, lineID)
	}
	return lineID[:cut], index, nil
}

// LatestLockedEndDate returns the account's most recent locked statement end date.
func (r *PgxReconciliationRepository) LatestLockedEndDate(ctx context.Context, userID, accountID string) (*time.Time, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthenticated
	}
	query := `
		SELECT MAX(statement_end_date)
		FROM reconciliations
		WHERE user_id = $1 AND account_id = $2 AND is_locked;
	`
	var latest *time.Time
	if err := r.db(ctx).QueryRow(ctx, query, userID, accountID).Scan(&latest); err != nil {
		return nil, fmt.Errorf("failed to find latest lock for account %s: %w", accountID, err)
	}
	return latest, nil
}

// LatestLockedEndDates returns the most recent locked statement end date per account.
func (r *PgxReconciliationRepository) LatestLockedEndDates(ctx context.Context, userID string) (map[string]time.Time, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthenticated
	}
	query := `
		SELECT account_id, MAX(statement_end_date)
		FROM reconciliations
		WHERE user_id = $1 AND is_locked
		GROUP BY account_id;
	`
	rows, err := r.db(ctx).Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query period locks: %w", err)
	}
	defer rows.Close()

	locks := make(map[string]time.Time)
	for rows.Next() {
		var accountID string
		var endDate time.Time
		if err := rows.Scan(&accountID, &endDate); err != nil {
			return nil, fmt.Errorf("failed to scan lock row: %w", err)
		}
		locks[accountID] = endDate
	}
	return locks, rows.Err()
}

const reconciliationColumns = `reconciliation_id, user_id, business_id, account_id, statement_end_date, statement_balance, cleared_line_ids, is_locked, performed_by, created_at, created_by, last_updated_at, last_updated_by`

func scanReconciliation(row pgx.Row) (*domain.Reconciliation, error) {
	var rec domain.Reconciliation
	var balance int64
	err := row.Scan(
		&rec.ReconciliationID,
		&rec.UserID,
		&rec.BusinessID,
		&rec.AccountID,
		&rec.StatementEndDate,
		&balance,
		&rec.ClearedLineIDs,
		&rec.IsLocked,
		&rec.PerformedBy,
		&rec.CreatedAt,
		&rec.CreatedBy,
		&rec.LastUpdatedAt,
		&rec.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	rec.StatementBalance = money.Cents(balance)
	return &rec, nil
}

// FindLocksByAccount lists every reconciliation for the account, newest first.
func (r *PgxReconciliationRepository) FindLocksByAccount(ctx context.Context, userID, accountID string) ([]domain.Reconciliation, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthenticated
	}
	query := `
		SELECT ` + reconciliationColumns + `
		FROM reconciliations
		WHERE user_id = $1 AND account_id = $2
		ORDER BY statement_end_date DESC;
	`
	rows, err := r.db(ctx).Query(ctx, query, userID, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reconciliations for account %s: %w", accountID, err)
	}
	defer rows.Close()

	recs := make([]domain.Reconciliation, 0)
	for rows.Next() {
		rec, err := scanReconciliation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reconciliation row: %w", err)
		}
		recs = append(recs, *rec)
	}
	return recs, rows.Err()
}

// FindClearingLocks maps each given line id to the reconciliation that cleared it.
func (r *PgxReconciliationRepository) FindClearingLocks(ctx context.Context, userID string, lineIDs []string) (map[string]string, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthenticated
	}
	result := make(map[string]string, len(lineIDs))
	if len(lineIDs) == 0 {
		return result, nil
	}

	entryIDs := make([]string, 0, len(lineIDs))
	for _, lineID := range lineIDs {
		entryID, _, err := splitLineID(lineID)
		if err != nil {
			return nil, err
		}
		entryIDs = append(entryIDs, entryID)
	}

	query := `
		SELECT entry_id, line_index, reconciliation_id
		FROM journal_lines
		WHERE user_id = $1 AND entry_id = ANY($2) AND is_cleared;
	`
	rows, err := r.db(ctx).Query(ctx, query, userID, entryIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query clearing locks: %w", err)
	}
	defer rows.Close()

	cleared := make(map[string]string)
	for rows.Next() {
		var entryID, reconciliationID string
		var lineIndex int
		if err := rows.Scan(&entryID, &lineIndex, &reconciliationID); err != nil {
			return nil, fmt.Errorf("failed to scan clearing row: %w", err)
		}
		cleared[domain.LineID(entryID, lineIndex)] = reconciliationID
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, lineID := range lineIDs {
		if recID, ok := cleared[lineID]; ok {
			result[lineID] = recID
		}
	}
	return result, nil
}

// SaveReconciliation atomically persists the lock record and marks each cleared line.
// A line that is already cleared, or does not exist, aborts the whole reconciliation.
func (r *PgxReconciliationRepository) SaveReconciliation(ctx context.Context, rec domain.Reconciliation) error {
	if rec.UserID == "" {
		return apperrors.ErrUnauthenticated
	}

	if _, ok := txFromCtx(ctx); ok {
		return r.saveReconciliationInTx(ctx, rec)
	}

	tx, err := r.Pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if err := r.saveReconciliationInTx(ctxWithTx(ctx, tx), rec); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit reconciliation %s: %w", rec.ReconciliationID, err)
	}
	return nil
}

func (r *PgxReconciliationRepository) saveReconciliationInTx(ctx context.Context, rec domain.Reconciliation) error {
	db := r.db(ctx)

	insertQuery := `
		INSERT INTO reconciliations (` + reconciliationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	if _, err := db.Exec(ctx, insertQuery,
		rec.ReconciliationID,
		rec.UserID,
		rec.BusinessID,
		rec.AccountID,
		rec.StatementEndDate,
		int64(rec.StatementBalance),
		rec.ClearedLineIDs,
		rec.IsLocked,
		rec.PerformedBy,
		rec.CreatedAt,
		rec.CreatedBy,
		rec.LastUpdatedAt,
		rec.LastUpdatedBy,
	); err != nil {
		return fmt.Errorf("failed to insert reconciliation %s: %w", rec.ReconciliationID, err)
	}

	clearQuery := `
		UPDATE journal_lines
		SET is_cleared = true, reconciliation_id = $4
		WHERE user_id = $1 AND entry_id = $2 AND line_index = $3 AND NOT is_cleared;
	`
	for _, lineID := range rec.ClearedLineIDs {
		entryID, index, err := splitLineID(lineID)
		if err != nil {
			return err
		}
		tag, err := db.Exec(ctx, clearQuery, rec.UserID, entryID, index, rec.ReconciliationID)
		if err != nil {
			return fmt.Errorf("failed to clear line %s: %w", lineID, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: line %s is missing or already cleared", apperrors.ErrConflict, lineID)
		}
	}
	return nil
}
