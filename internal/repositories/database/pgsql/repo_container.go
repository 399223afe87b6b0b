package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/smallbooks/smallbooks_backend/internal/core/ports/repositories"
)

// RepositoryProvider bundles every repository implementation behind its port.
type RepositoryProvider struct {
	AccountRepo        portsrepo.AccountRepositoryFacade
	JournalRepo        portsrepo.JournalRepositoryFacade
	ReconciliationRepo portsrepo.ReconciliationRepositoryFacade
	StagingRepo        portsrepo.StagingRepositoryFacade
	InvoiceRepo        portsrepo.InvoiceRepositoryFacade
	UserRepo           portsrepo.UserRepositoryFacade
	AuditRepo          portsrepo.AuditWriter
	TxManager          portsrepo.TransactionManager
}

// NewRepositoryProvider constructs all pgsql repositories on one pool.
func NewRepositoryProvider(dbPool *pgxpool.Pool) RepositoryProvider {
	return RepositoryProvider{
		AccountRepo:        newPgxAccountRepository(dbPool),
		JournalRepo:        newPgxJournalRepository(dbPool),
		ReconciliationRepo: newPgxReconciliationRepository(dbPool),
		StagingRepo:        newPgxStagingRepository(dbPool),
		InvoiceRepo:        newPgxInvoiceRepository(dbPool),
		UserRepo:           newPgxUserRepository(dbPool),
		AuditRepo:          newPgxAuditRepository(dbPool),
		TxManager:          NewTransactionManager(dbPool),
	}
}
