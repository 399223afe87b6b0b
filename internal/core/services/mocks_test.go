package services_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/smallbooks/smallbooks_backend/internal/core/domain"
	portsrepo "github.com/smallbooks/smallbooks_backend/internal/core/ports/repositories"
	"github.com/smallbooks/smallbooks_backend/internal/utils/money"
)

// --- Mock AccountRepository ---
type MockAccountRepository struct {
	mock.Mock
}

var _ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, userID, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, userID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByIDs(ctx context.Context, userID string, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, userID, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, userID string, includeArchived bool) ([]domain.Account, error) {
	args := m.Called(ctx, userID, includeArchived)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) CountChildren(ctx context.Context, userID, parentID string) (int, error) {
	args := m.Called(ctx, userID, parentID)
	return args.Int(0), args.Error(1)
}

func (m *MockAccountRepository) CountByType(ctx context.Context, userID string, accountType domain.AccountType) (int, error) {
	args := m.Called(ctx, userID, accountType)
	return args.Int(0), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) ArchiveAccount(ctx context.Context, userID, accountID, archivedBy string, archivedAt time.Time) error {
	args := m.Called(ctx, userID, accountID, archivedBy, archivedAt)
	return args.Error(0)
}

// --- Mock JournalRepository ---
type MockJournalRepository struct {
	mock.Mock
}

var _ portsrepo.JournalRepositoryFacade = (*MockJournalRepository)(nil)

func (m *MockJournalRepository) FindEntryByID(ctx context.Context, userID, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, userID, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) ListEntries(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	args := m.Called(ctx, userID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.JournalEntry), returnedNextToken, args.Error(2)
}

func (m *MockJournalRepository) FetchEntries(ctx context.Context, userID string, from, to time.Time, businessID string) ([]domain.JournalEntry, error) {
	args := m.Called(ctx, userID, from, to, businessID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) SumAccountActivity(ctx context.Context, userID, accountID string) (money.Cents, money.Cents, error) {
	args := m.Called(ctx, userID, accountID)
	return args.Get(0).(money.Cents), args.Get(1).(money.Cents), args.Error(2)
}

func (m *MockJournalRepository) SumClearedActivity(ctx context.Context, userID, accountID string) (money.Cents, money.Cents, error) {
	args := m.Called(ctx, userID, accountID)
	return args.Get(0).(money.Cents), args.Get(1).(money.Cents), args.Error(2)
}

func (m *MockJournalRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry, txnUpdate *portsrepo.StagedTransactionUpdate, audit domain.AuditEvent) error {
	args := m.Called(ctx, entry, txnUpdate, audit)
	return args.Error(0)
}

// --- Mock ReconciliationRepository ---
type MockReconciliationRepository struct {
	mock.Mock
}

var _ portsrepo.ReconciliationRepositoryFacade = (*MockReconciliationRepository)(nil)

func (m *MockReconciliationRepository) LatestLockedEndDate(ctx context.Context, userID, accountID string) (*time.Time, error) {
	args := m.Called(ctx, userID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

func (m *MockReconciliationRepository) LatestLockedEndDates(ctx context.Context, userID string) (map[string]time.Time, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]time.Time), args.Error(1)
}

func (m *MockReconciliationRepository) FindLocksByAccount(ctx context.Context, userID, accountID string) ([]domain.Reconciliation, error) {
	args := m.Called(ctx, userID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reconciliation), args.Error(1)
}

func (m *MockReconciliationRepository) FindClearingLocks(ctx context.Context, userID string, lineIDs []string) (map[string]string, error) {
	args := m.Called(ctx, userID, lineIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *MockReconciliationRepository) SaveReconciliation(ctx context.Context, rec domain.Reconciliation) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

// --- Mock StagingRepository ---
type MockStagingRepository struct {
	mock.Mock
}

var _ portsrepo.StagingRepositoryFacade = (*MockStagingRepository)(nil)

func (m *MockStagingRepository) FindTransactionByID(ctx context.Context, userID, transactionID string) (*domain.StagedTransaction, error) {
	args := m.Called(ctx, userID, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StagedTransaction), args.Error(1)
}

func (m *MockStagingRepository) FindVendorTransactionIDs(ctx context.Context, userID string, vendorIDs []string) (map[string]struct{}, error) {
	args := m.Called(ctx, userID, vendorIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]struct{}), args.Error(1)
}

func (m *MockStagingRepository) FindTransactionByLinkedEntry(ctx context.Context, userID, entryID string) (*domain.StagedTransaction, error) {
	args := m.Called(ctx, userID, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StagedTransaction), args.Error(1)
}

func (m *MockStagingRepository) ListTransactions(ctx context.Context, userID string, status *domain.TransactionStatus, limit int, nextToken *string) ([]domain.StagedTransaction, *string, error) {
	args := m.Called(ctx, userID, status, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.StagedTransaction), returnedNextToken, args.Error(2)
}

func (m *MockStagingRepository) CountByStatus(ctx context.Context, userID string, status domain.TransactionStatus) (int, error) {
	args := m.Called(ctx, userID, status)
	return args.Int(0), args.Error(1)
}

func (m *MockStagingRepository) SaveTransaction(ctx context.Context, txn domain.StagedTransaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockStagingRepository) UpdateTransaction(ctx context.Context, txn domain.StagedTransaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

// --- Mock InvoiceRepository ---
type MockInvoiceRepository struct {
	mock.Mock
}

var _ portsrepo.InvoiceRepositoryFacade = (*MockInvoiceRepository)(nil)

func (m *MockInvoiceRepository) FindInvoiceByID(ctx context.Context, userID, invoiceID string) (*domain.Invoice, error) {
	args := m.Called(ctx, userID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) ListInvoices(ctx context.Context, userID, businessID string) ([]domain.Invoice, error) {
	args := m.Called(ctx, userID, businessID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) SaveInvoice(ctx context.Context, invoice domain.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) UpdateInvoice(ctx context.Context, invoice domain.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

// --- Mock UserRepository ---
type MockUserRepository struct {
	mock.Mock
}

var _ portsrepo.UserRepositoryFacade = (*MockUserRepository)(nil)

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// --- Mock AuditRepository ---
type MockAuditRepository struct {
	mock.Mock
}

var _ portsrepo.AuditWriter = (*MockAuditRepository)(nil)

func (m *MockAuditRepository) AppendEvent(ctx context.Context, event domain.AuditEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// --- Mock TransactionManager ---
// Runs the function inline so service logic under test executes as if inside a
// datastore transaction.
type MockTxManager struct {
	mock.Mock
}

var _ portsrepo.TransactionManager = (*MockTxManager)(nil)

func (m *MockTxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}
