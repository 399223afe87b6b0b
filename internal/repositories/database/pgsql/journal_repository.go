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
	"github.com/smallbooks/smallbooks_backend/internal/utils/money"
	"github.com/smallbooks/smallbooks_backend/internal/utils/pagination"
)

// PgxJournalRepository persists journal entries and their lines. Entries are
// append-only: the only UPDATE this repository ever issues touches line clearing
// markers, and that happens in the reconciliation repository.
type PgxJournalRepository struct {
	BaseRepository
}

func newPgxJournalRepository(pool *pgxpool.Pool) portsrepo.JournalRepositoryFacade {
	return &PgxJournalRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.JournalRepositoryFacade = (*PgxJournalRepository)(nil)

const entryColumns = `entry_id, user_id, business_id, project_id, entry_date, description, is_adjusting_entry, adjustment_reason, original_entry_id, created_at, created_by, last_updated_at, last_updated_by`

func scanEntry(row pgx.Row) (*domain.JournalEntry, error) {
	var e domain.JournalEntry
	var originalID sql.NullString
	err := row.Scan(
		&e.EntryID,
		&e.UserID,
		&e.BusinessID,
		&e.ProjectID,
		&e.EntryDate,
		&e.Description,
		&e.IsAdjustingEntry,
		&e.AdjustmentReason,
		&originalID,
		&e.CreatedAt,
		&e.CreatedBy,
		&e.LastUpdatedAt,
		&e.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	if originalID.Valid {
		e.OriginalEntryID = originalID.String
	}
	return &e, nil
}

// loadLines fetches the lines for the given entries and attaches them in index order.
func (r *PgxJournalRepository) loadLines(ctx context.Context, userID string, entries map[string]*domain.JournalEntry) error {
	if len(entries) == 0 {
		return nil
	}
	ids := make([]string, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	query := `
		SELECT entry_id, line_index, account_id, debit, credit, description, contractor_id, project_id, business_id, is_cleared, reconciliation_id
		FROM journal_lines
		WHERE user_id = $1 AND entry_id = ANY($2)
		ORDER BY entry_id, line_index;
	`
	rows, err := r.db(ctx).Query(ctx, query, userID, ids)
	if err != nil {
		return fmt.Errorf("failed to query journal lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var entryID string
		var lineIndex int
		var line domain.JournalLine
		var reconciliationID sql.NullString
		if err := rows.Scan(
			&entryID,
			&lineIndex,
			&line.AccountID,
			&line.Debit,
			&line.Credit,
			&line.Description,
			&line.ContractorID,
			&line.ProjectID,
			&line.BusinessID,
			&line.IsCleared,
			&reconciliationID,
		); err != nil {
			return fmt.Errorf("failed to scan journal line: %w", err)
		}
		if reconciliationID.Valid {
			line.ReconciliationID = reconciliationID.String
		}
		if e, ok := entries[entryID]; ok {
			e.Lines = append(e.Lines, line)
		}
	}
	return rows.Err()
}

// FindEntryByID retrieves one journal entry with its lines.
func (r *PgxJournalRepository) FindEntryByID(ctx context.Context, userID, entryID string) (*domain.JournalEntry, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthenticated
	}
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE user_id = $1 AND entry_id = $2;`
	entry, err := scanEntry(r.db(ctx).QueryRow(ctx, query, userID, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find entry %s: %w", entryID, err)
	}
	if err := r.loadLines(ctx, userID, map[string]*domain.JournalEntry{entry.EntryID: entry}); err != nil {
		return nil, err
	}
	return entry, nil
}

// ListEntries retrieves a keyset-paginated page of entries, newest first.
func (r *PgxJournalRepository) ListEntries(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	if userID == "" {
		return nil, nil, apperrors.ErrUnauthenticated
	}

	args := []any{userID, limit + 1}
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE user_id = $1`
	if nextToken != nil && *nextToken != "" {
		entryDate, createdAt, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		query += ` AND (entry_date, created_at) < ($3, $4)`
		args = append(args, entryDate, createdAt)
	}
	query += ` ORDER BY entry_date DESC, created_at DESC LIMIT $2;`

	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.JournalEntry, 0, limit)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan entry row: %w", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	var newToken *string
	if len(entries) > limit {
		entries = entries[:limit]
		last := entries[len(entries)-1]
		token := pagination.EncodeToken(last.EntryDate, last.CreatedAt)
		newToken = &token
	}

	byID := make(map[string]*domain.JournalEntry, len(entries))
	for i := range entries {
		byID[entries[i].EntryID] = &entries[i]
	}
	if err := r.loadLines(ctx, userID, byID); err != nil {
		return nil, nil, err
	}
	return entries, newToken, nil
}

// FetchEntries retrieves all entries with lines in a date range for reporting.
func (r *PgxJournalRepository) FetchEntries(ctx context.Context, userID string, from, to time.Time, businessID string) ([]domain.JournalEntry, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthenticated
	}

	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE user_id = $1`
	args := []any{userID}
	if !from.IsZero() {
		args = append(args, from)
		query += fmt.Sprintf(" AND entry_date >= $%d", len(args))
	}
	if !to.IsZero() {
		args = append(args, to)
		query += fmt.Sprintf(" AND entry_date <= $%d", len(args))
	}
	if businessID != "" {
		args = append(args, businessID)
		query += fmt.Sprintf(" AND business_id = $%d", len(args))
	}
	query += ` ORDER BY entry_date, created_at;`

	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch entries: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.JournalEntry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry row: %w", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	byID := make(map[string]*domain.JournalEntry, len(entries))
	for i := range entries {
		byID[entries[i].EntryID] = &entries[i]
	}
	if err := r.loadLines(ctx, userID, byID); err != nil {
		return nil, err
	}
	return entries, nil
}

// SumAccountActivity returns total debits and credits over every line referencing the
// account.
func (r *PgxJournalRepository) SumAccountActivity(ctx context.Context, userID, accountID string) (money.Cents, money.Cents, error) {
	return r.sumActivity(ctx, userID, accountID, false)
}

// SumClearedActivity returns total debits and credits over the account's cleared lines.
func (r *PgxJournalRepository) SumClearedActivity(ctx context.Context, userID, accountID string) (money.Cents, money.Cents, error) {
	return r.sumActivity(ctx, userID, accountID, true)
}

func (r *PgxJournalRepository) sumActivity(ctx context.Context, userID, accountID string, clearedOnly bool) (money.Cents, money.Cents, error) {
	if userID == "" {
		return 0, 0, apperrors.ErrUnauthenticated
	}
	query := `
		SELECT COALESCE(SUM(debit), 0), COALESCE(SUM(credit), 0)
		FROM journal_lines
		WHERE user_id = $1 AND account_id = $2`
	if clearedOnly {
		query += ` AND is_cleared`
	}
	var debits, credits int64
	if err := r.db(ctx).QueryRow(ctx, query, userID, accountID).Scan(&debits, &credits); err != nil {
		return 0, 0, fmt.Errorf("failed to sum activity for account %s: %w", accountID, err)
	}
	return money.Cents(debits), money.Cents(credits), nil
}

// SaveEntry atomically persists the entry and its lines, re-checks period locks inside
// the same transaction, applies the optional staged-transaction transition, and appends
// the audit event. Outside an ambient transaction the whole unit runs serializable and
// retries bounded times on serialization failure.
func (r *PgxJournalRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry, txnUpdate *portsrepo.StagedTransactionUpdate, audit domain.AuditEvent) error {
	if entry.UserID == "" {
		return apperrors.ErrUnauthenticated
	}

	if _, ok := txFromCtx(ctx); ok {
		return r.saveEntryInTx(ctx, entry, txnUpdate, audit)
	}

	var lastErr error
	for attempt := 0; attempt < saveEntryMaxAttempts; attempt++ {
		err := r.saveEntryOnce(ctx, entry, txnUpdate, audit)
		if err == nil {
			return nil
		}
		if !isSerializationFailure(err) {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("%w: ledger write kept conflicting: %v", apperrors.ErrPersistenceUnavailable, lastErr)
}

func (r *PgxJournalRepository) saveEntryOnce(ctx context.Context, entry domain.JournalEntry, txnUpdate *portsrepo.StagedTransactionUpdate, audit domain.AuditEvent) error {
	tx, err := r.Pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if err := r.saveEntryInTx(ctxWithTx(ctx, tx), entry, txnUpdate, audit); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit entry %s: %w", entry.EntryID, err)
	}
	return nil
}

func (r *PgxJournalRepository) saveEntryInTx(ctx context.Context, entry domain.JournalEntry, txnUpdate *portsrepo.StagedTransactionUpdate, audit domain.AuditEvent) error {
	db := r.db(ctx)

	// Re-check period locks inside the transaction: a reconciliation finalized after
	// the service-level pre-check must still block this write.
	if err := r.assertUnlocked(ctx, entry); err != nil {
		return err
	}

	var originalID any
	if entry.OriginalEntryID != "" {
		originalID = entry.OriginalEntryID
	}
	entryQuery := `
		INSERT INTO journal_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	if _, err := db.Exec(ctx, entryQuery,
		entry.EntryID,
		entry.UserID,
		entry.BusinessID,
		entry.ProjectID,
		entry.EntryDate,
		entry.Description,
		entry.IsAdjustingEntry,
		entry.AdjustmentReason,
		originalID,
		entry.CreatedAt,
		entry.CreatedBy,
		entry.LastUpdatedAt,
		entry.LastUpdatedBy,
	); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: entry %s already exists", apperrors.ErrDuplicate, entry.EntryID)
		}
		return fmt.Errorf("failed to insert entry %s: %w", entry.EntryID, err)
	}

	lineQuery := `
		INSERT INTO journal_lines (user_id, entry_id, line_index, account_id, debit, credit, description, contractor_id, project_id, business_id, is_cleared, reconciliation_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, false, NULL);
	`
	for i, line := range entry.Lines {
		if _, err := db.Exec(ctx, lineQuery,
			entry.UserID,
			entry.EntryID,
			i,
			line.AccountID,
			int64(line.Debit),
			int64(line.Credit),
			line.Description,
			line.ContractorID,
			line.ProjectID,
			line.BusinessID,
		); err != nil {
			return fmt.Errorf("failed to insert line %d of entry %s: %w", i, entry.EntryID, err)
		}
	}

	if txnUpdate != nil {
		var linkedID any
		if txnUpdate.LinkedEntryID != nil {
			linkedID = *txnUpdate.LinkedEntryID
		}
		updateQuery := `
			UPDATE staged_transactions
			SET status = $3, linked_entry_id = $4, last_updated_at = $5, last_updated_by = $6
			WHERE user_id = $1 AND transaction_id = $2;
		`
		tag, err := db.Exec(ctx, updateQuery,
			entry.UserID,
			txnUpdate.TransactionID,
			txnUpdate.Status,
			linkedID,
			entry.LastUpdatedAt,
			entry.LastUpdatedBy,
		)
		if err != nil {
			return fmt.Errorf("failed to update staged transaction %s: %w", txnUpdate.TransactionID, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: staged transaction %s disappeared", apperrors.ErrDataIntegrity, txnUpdate.TransactionID)
		}
	}

	auditQuery := `
		INSERT INTO audit_events (event_id, user_id, timestamp, action, details)
		VALUES ($1, $2, $3, $4, $5);
	`
	if _, err := db.Exec(ctx, auditQuery, audit.EventID, audit.UserID, audit.Timestamp, audit.Action, audit.Details); err != nil {
		return fmt.Errorf("failed to insert audit event: %w", err)
	}
	return nil
}

// assertUnlocked fails with PeriodLockedError when any account on the entry is locked
// through the entry date.
func (r *PgxJournalRepository) assertUnlocked(ctx context.Context, entry domain.JournalEntry) error {
	query := `
		SELECT r.account_id, a.code, MAX(r.statement_end_date)
		FROM reconciliations r
		JOIN accounts a ON a.account_id = r.account_id AND a.user_id = r.user_id
		WHERE r.user_id = $1 AND r.is_locked AND r.account_id = ANY($2)
		GROUP BY r.account_id, a.code;
	`
	rows, err := r.db(ctx).Query(ctx, query, entry.UserID, entry.AccountIDs())
	if err != nil {
		return fmt.Errorf("failed to check period locks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var accountID, code string
		var lockedThrough time.Time
		if err := rows.Scan(&accountID, &code, &lockedThrough); err != nil {
			return fmt.Errorf("failed to scan lock row: %w", err)
		}
		if !entry.EntryDate.After(lockedThrough) {
			return &apperrors.PeriodLockedError{
				AccountID:     accountID,
				AccountCode:   code,
				EntryDate:     entry.EntryDate,
				LockedThrough: lockedThrough,
			}
		}
	}
	return rows.Err()
}
