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
)

// codeBands assigns each account type a numeric root band so that the chart sorts
// assets first and expenses last, the order every report presents them in.
var codeBands = map[domain.AccountType]int{
	domain.Asset:          1000,
	domain.Liability:      2000,
	domain.Equity:         3000,
	domain.Income:         4000,
	domain.CostOfServices: 5000,
	domain.Expense:        6000,
}

// accountService manages the chart of accounts.
type accountService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
	auditRepo   portsrepo.AuditWriter
}

// NewAccountService creates a new account service.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade, auditRepo portsrepo.AuditWriter) portssvc.AccountSvcFacade {
	return &accountService{
		accountRepo: accountRepo,
		auditRepo:   auditRepo,
	}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// GetAccountByID retrieves a single account.
func (s *accountService) GetAccountByID(ctx context.Context, userID string, accountID string) (*domain.Account, error) {
	return s.accountRepo.FindAccountByID(ctx, userID, accountID)
}

// ListAccounts retrieves the chart of accounts ordered by code.
func (s *accountService) ListAccounts(ctx context.Context, userID string, includeArchived bool) ([]domain.Account, error) {
	return s.accountRepo.ListAccounts(ctx, userID, includeArchived)
}

// CreateAccount creates a new account. Root accounts take their type from the request
// (defaulting to expense); child accounts always inherit the parent's type so that a
// subtree never straddles report sections. Codes are synthesized, not user-supplied.
func (s *accountService) CreateAccount(ctx context.Context, userID string, req dto.CreateAccountRequest) (*domain.Account, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthenticated
	}
	if req.Name == "" {
		return nil, fmt.Errorf("%w: account name is required", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	account := domain.Account{
		AccountID:     uuid.NewString(),
		UserID:        userID,
		Name:          req.Name,
		Description:   req.Description,
		Status:        domain.AccountActive,
		IsBankAccount: req.IsBankAccount,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if req.ParentAccountID != nil && *req.ParentAccountID != "" {
		parent, err := s.accountRepo.FindAccountByID(ctx, userID, *req.ParentAccountID)
		if err != nil {
			return nil, fmt.Errorf("parent account lookup failed: %w", err)
		}
		if !parent.IsActive() {
			return nil, fmt.Errorf("%w: parent account %s is archived", apperrors.ErrValidation, parent.AccountID)
		}
		account.ParentAccountID = parent.AccountID
		account.AccountType = parent.AccountType

		siblings, err := s.accountRepo.CountChildren(ctx, userID, parent.AccountID)
		if err != nil {
			return nil, err
		}
		account.Code = fmt.Sprintf("%s.%d", parent.Code, siblings+1)
	} else {
		account.AccountType = req.AccountType
		if account.AccountType == "" {
			account.AccountType = domain.Expense
		}
		band, ok := codeBands[account.AccountType]
		if !ok {
			return nil, fmt.Errorf("%w: unknown account type %q", apperrors.ErrValidation, req.AccountType)
		}
		roots, err := s.accountRepo.CountByType(ctx, userID, account.AccountType)
		if err != nil {
			return nil, err
		}
		account.Code = fmt.Sprintf("%d", band+(roots+1)*10)
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		s.LogError(ctx, err, "failed to save account", slog.String("account_id", account.AccountID))
		return nil, err
	}

	s.LogInfo(ctx, "account created",
		slog.String("account_id", account.AccountID),
		slog.String("code", account.Code),
		slog.String("type", string(account.AccountType)))
	return &account, nil
}

// UpdateAccount updates name, description, or the bank-account flag. Code and type are
// immutable once the account exists because posted history depends on both.
func (s *accountService) UpdateAccount(ctx context.Context, userID string, accountID string, req dto.UpdateAccountRequest) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, fmt.Errorf("%w: account name cannot be empty", apperrors.ErrValidation)
		}
		account.Name = *req.Name
	}
	if req.Description != nil {
		account.Description = *req.Description
	}
	if req.IsBankAccount != nil {
		account.IsBankAccount = *req.IsBankAccount
	}
	account.LastUpdatedAt = time.Now().UTC()
	account.LastUpdatedBy = userID

	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		return nil, err
	}
	return account, nil
}

// ArchiveAccount hides an account from pickers without deleting anything. Archiving an
// account with a balance is allowed; the balance stays visible in reports.
func (s *accountService) ArchiveAccount(ctx context.Context, userID string, accountID string) error {
	account, err := s.accountRepo.FindAccountByID(ctx, userID, accountID)
	if err != nil {
		return err
	}
	if !account.IsActive() {
		return nil // already archived
	}

	now := time.Now().UTC()
	if err := s.accountRepo.ArchiveAccount(ctx, userID, accountID, userID, now); err != nil {
		return err
	}

	event := domain.AuditEvent{
		EventID:   uuid.NewString(),
		UserID:    userID,
		Timestamp: now,
		Action:    domain.AuditAccountArchived,
		Details:   fmt.Sprintf("account %s (%s) archived", account.Code, account.Name),
	}
	if err := s.auditRepo.AppendEvent(ctx, event); err != nil {
		s.LogError(ctx, err, "failed to append archive audit event", slog.String("account_id", accountID))
	}

	s.LogInfo(ctx, "account archived", slog.String("account_id", accountID))
	return nil
}
