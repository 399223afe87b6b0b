package dto

import (
	"time"

	"github.com/smallbooks/smallbooks_backend/internal/core/domain"
)

// CreateAccountRequest defines the data needed to create a new account.
// AccountType is required for root accounts and ignored for children, which
// always inherit the parent's type.
type CreateAccountRequest struct {
	Name            string             `json:"name" binding:"required"`
	AccountType     domain.AccountType `json:"accountType" binding:"omitempty,oneof=ASSET LIABILITY EQUITY INCOME COST_OF_SERVICES EXPENSE"`
	ParentAccountID *string            `json:"parentAccountID"`
	Description     string             `json:"description"`
	IsBankAccount   bool               `json:"isBankAccount"`
}

// UpdateAccountRequest defines the data allowed for updating an account.
// Pointers distinguish zero-value updates from fields not provided. Code and
// AccountType are deliberately absent: posted history depends on both.
type UpdateAccountRequest struct {
	Name          *string `json:"name"`
	Description   *string `json:"description"`
	IsBankAccount *bool   `json:"isBankAccount"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID       string             `json:"accountID"`
	Code            string             `json:"code"`
	Name            string             `json:"name"`
	AccountType     domain.AccountType `json:"accountType"`
	ParentAccountID string             `json:"parentAccountID,omitempty"`
	Description     string             `json:"description"`
	Status          string             `json:"status"`
	IsBankAccount   bool               `json:"isBankAccount"`
	CreatedAt       time.Time          `json:"createdAt"`
	LastUpdatedAt   time.Time          `json:"lastUpdatedAt"`
}

// ListAccountsParams defines query parameters for listing accounts.
type ListAccountsParams struct {
	IncludeArchived bool `form:"includeArchived,default=false"`
}

// ListAccountsResponse wraps the account list.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

// ToAccountResponse converts a domain.Account to AccountResponse.
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:       acc.AccountID,
		Code:            acc.Code,
		Name:            acc.Name,
		AccountType:     acc.AccountType,
		ParentAccountID: acc.ParentAccountID,
		Description:     acc.Description,
		Status:          string(acc.Status),
		IsBankAccount:   acc.IsBankAccount,
		CreatedAt:       acc.CreatedAt,
		LastUpdatedAt:   acc.LastUpdatedAt,
	}
}

// ToListAccountsResponse converts a slice of domain.Account to the list response.
func ToListAccountsResponse(accounts []domain.Account) ListAccountsResponse {
	res := make([]AccountResponse, len(accounts))
	for i, acc := range accounts {
		res[i] = ToAccountResponse(&acc)
	}
	return ListAccountsResponse{Accounts: res}
}
