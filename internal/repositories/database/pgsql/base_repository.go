package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smallbooks/smallbooks_backend/internal/apperrors"
	portsrepo "github.com/smallbooks/smallbooks_backend/internal/core/ports/repositories"
)

// querier is the subset of pgx both a pool and a transaction satisfy. Repositories run
// every statement through it so a method transparently joins an ambient transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type txCtxKey struct{}

// ctxWithTx stores an open transaction in the context so nested repository calls join it.
func ctxWithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txCtxKey{}, tx)
}

func txFromCtx(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(txCtxKey{}).(pgx.Tx)
	return tx, ok
}

// BaseRepository provides the pool and ambient-transaction plumbing shared by all
// repositories.
type BaseRepository struct {
	Pool *pgxpool.Pool
}

// db returns the ambient transaction when one is open, the pool otherwise.
func (r *BaseRepository) db(ctx context.Context) querier {
	if tx, ok := txFromCtx(ctx); ok {
		return tx
	}
	return r.Pool
}

// isSerializationFailure reports whether the error is a Postgres serialization
// failure or deadlock, both of which are safe to retry.
func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}

// isUniqueViolation reports whether the error is a Postgres unique-constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// saveEntryMaxAttempts bounds serialization-failure retries on ledger writes.
const saveEntryMaxAttempts = 3

// pgxTransactionManager runs functions inside a serializable transaction, retrying
// bounded times on serialization failure.
type pgxTransactionManager struct {
	pool *pgxpool.Pool
}

// NewTransactionManager creates a TransactionManager backed by the pool.
func NewTransactionManager(pool *pgxpool.Pool) portsrepo.TransactionManager {
	return &pgxTransactionManager{pool: pool}
}

var _ portsrepo.TransactionManager = (*pgxTransactionManager)(nil)

// WithinTransaction executes fn inside one serializable transaction. Calls nested
// inside an already-open transaction join it instead of starting a new one.
func (m *pgxTransactionManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := txFromCtx(ctx); ok {
		return fn(ctx)
	}

	var lastErr error
	for attempt := 0; attempt < saveEntryMaxAttempts; attempt++ {
		err := m.runOnce(ctx, fn)
		if err == nil {
			return nil
		}
		if !isSerializationFailure(err) {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("%w: transaction kept conflicting: %v", apperrors.ErrPersistenceUnavailable, lastErr)
}

func (m *pgxTransactionManager) runOnce(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := m.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if err := fn(ctxWithTx(ctx, tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
