package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/smallbooks/smallbooks_backend/internal/core/domain"
)

// BankFeedTransaction is one item from a bank feed push. Amount follows the
// vendor convention: positive = money leaving the account. The staging service
// negates it on ingest.
type BankFeedTransaction struct {
	VendorTransactionID string          `json:"vendorTransactionID" binding:"required"`
	Date                string          `json:"date" binding:"required,datetime=2006-01-02"`
	Amount              decimal.Decimal `json:"amount"`
	Merchant            string          `json:"merchant"`
	Description         string          `json:"description"`
	Pending             bool            `json:"pending"`
}

// IngestBankTransactionsRequest defines a batch of bank-feed items for one
// bank account.
type IngestBankTransactionsRequest struct {
	BankAccountID string                `json:"bankAccountID" binding:"required"`
	Transactions  []BankFeedTransaction `json:"transactions" binding:"required,min=1,dive"`
}

// IngestBankTransactionsResponse reports how the batch was absorbed.
type IngestBankTransactionsResponse struct {
	Staged  int `json:"staged"`
	Skipped int `json:"skipped"` // Already-seen vendor transaction ids
}

// CreateManualTransactionRequest stages a hand-entered transaction. Amount is
// signed in the ledger convention: negative = outflow.
type CreateManualTransactionRequest struct {
	BankAccountID string          `json:"bankAccountID" binding:"required"`
	Date          string          `json:"date" binding:"required,datetime=2006-01-02"`
	Amount        decimal.Decimal `json:"amount"`
	Merchant      string          `json:"merchant"`
	Description   string          `json:"description"`
}

// TransactionSplitRequest is one destination leg of a split categorization.
type TransactionSplitRequest struct {
	AccountID    string          `json:"accountID" binding:"required"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description"`
	ProjectID    string          `json:"projectID"`
	ContractorID string          `json:"contractorID"`
}

// CategorizeTransactionRequest assigns the fields a staged transaction needs
// before it can become a journal entry.
type CategorizeTransactionRequest struct {
	TransactionType   domain.TransactionKind    `json:"transactionType" binding:"required,oneof=income expense transfer"`
	AssignedAccountID *string                   `json:"assignedAccountID"`
	BusinessID        *string                   `json:"businessID"`
	ProjectID         *string                   `json:"projectID"`
	ContractorID      *string                   `json:"contractorID"`
	TransferAccountID *string                   `json:"transferAccountID"`
	Splits            []TransactionSplitRequest `json:"splits" binding:"omitempty,dive"`
}

// TransactionSplitResponse mirrors one split leg.
type TransactionSplitResponse struct {
	AccountID    string          `json:"accountID"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description,omitempty"`
	ProjectID    string          `json:"projectID,omitempty"`
	ContractorID string          `json:"contractorID,omitempty"`
}

// TransactionResponse defines the data returned for a staged transaction.
type TransactionResponse struct {
	TransactionID        string                     `json:"transactionID"`
	VendorTransactionID  string                     `json:"vendorTransactionID,omitempty"`
	Date                 time.Time                  `json:"date"`
	Amount               decimal.Decimal            `json:"amount"`
	Merchant             string                     `json:"merchant,omitempty"`
	Description          string                     `json:"description"`
	Status               domain.TransactionStatus   `json:"status"`
	TransactionType      domain.TransactionKind     `json:"transactionType,omitempty"`
	BankAccountID        string                     `json:"bankAccountID"`
	AssignedAccountID    string                     `json:"assignedAccountID,omitempty"`
	AssignedBusinessID   string                     `json:"assignedBusinessID,omitempty"`
	AssignedProjectID    string                     `json:"assignedProjectID,omitempty"`
	AssignedContractorID string                     `json:"assignedContractorID,omitempty"`
	TransferAccountID    string                     `json:"transferAccountID,omitempty"`
	Splits               []TransactionSplitResponse `json:"splits,omitempty"`
	LinkedEntryID        string                     `json:"linkedEntryID,omitempty"`
	Pending              bool                       `json:"pending"`
	CreatedAt            time.Time                  `json:"createdAt"`
}

// ListTransactionsParams defines query parameters for listing staged transactions.
type ListTransactionsParams struct {
	Status    *string `form:"status" binding:"omitempty,oneof=imported posted needs_repost"`
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
}

// ListTransactionsResponse is a keyset-paginated page of staged transactions.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}

// PostTransactionResponse returns the journal entry created from a staged
// transaction alongside its refreshed staging record.
type PostTransactionResponse struct {
	Transaction TransactionResponse `json:"transaction"`
	Entry       EntryResponse       `json:"entry"`
}

// ToTransactionResponse converts a domain.StagedTransaction to TransactionResponse.
func ToTransactionResponse(t *domain.StagedTransaction) TransactionResponse {
	splits := make([]TransactionSplitResponse, len(t.Splits))
	for i, s := range t.Splits {
		splits[i] = TransactionSplitResponse{
			AccountID:    s.AccountID,
			Amount:       s.Amount.ToDecimal(),
			Description:  s.Description,
			ProjectID:    s.ProjectID,
			ContractorID: s.ContractorID,
		}
	}
	if len(splits) == 0 {
		splits = nil
	}
	return TransactionResponse{
		TransactionID:        t.TransactionID,
		VendorTransactionID:  t.VendorTransactionID,
		Date:                 t.Date,
		Amount:               t.Amount.ToDecimal(),
		Merchant:             t.Merchant,
		Description:          t.Description,
		Status:               t.Status,
		TransactionType:      t.TransactionType,
		BankAccountID:        t.BankAccountID,
		AssignedAccountID:    t.AssignedAccountID,
		AssignedBusinessID:   t.AssignedBusinessID,
		AssignedProjectID:    t.AssignedProjectID,
		AssignedContractorID: t.AssignedContractorID,
		TransferAccountID:    t.TransferAccountID,
		Splits:               splits,
		LinkedEntryID:        t.LinkedEntryID,
		Pending:              t.Pending,
		CreatedAt:            t.CreatedAt,
	}
}

// ToTransactionResponses converts a slice of domain.StagedTransaction.
func ToTransactionResponses(txns []domain.StagedTransaction) []TransactionResponse {
	res := make([]TransactionResponse, len(txns))
	for i, t := range txns {
		res[i] = ToTransactionResponse(&t)
	}
	return res
}
