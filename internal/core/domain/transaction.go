package domain

import (
	"time"

	"github.com/smallbooks/smallbooks_backend/internal/utils/money"
)

// TransactionStatus is the lifecycle state of a staged transaction.
type TransactionStatus string

const (
	TxnImported    TransactionStatus = "imported"
	TxnPosted      TransactionStatus = "posted"
	TxnNeedsRepost TransactionStatus = "needs_repost"
)

// TransactionKind classifies a staged transaction for line building.
type TransactionKind string

const (
	KindIncome   TransactionKind = "income"
	KindExpense  TransactionKind = "expense"
	KindTransfer TransactionKind = "transfer"
)

// TransactionSplit is one destination leg of a split categorization.
type TransactionSplit struct {
	AccountID    string      `json:"accountID"`
	Amount       money.Cents `json:"amount"` // Positive; same orientation as the offsetting leg
	Description  string      `json:"description,omitempty"`
	ProjectID    string      `json:"projectID,omitempty"`
	ContractorID string      `json:"contractorID,omitempty"`
}

// StagedTransaction is a pre-ledger record for one bank-feed or manually entered item.
// Amount is signed in this system's convention: negative = outflow.
type StagedTransaction struct {
	TransactionID        string             `json:"transactionID"`
	UserID               string             `json:"userID"` // Tenant owner
	VendorTransactionID  string             `json:"vendorTransactionID,omitempty"`
	Date                 time.Time          `json:"date"`
	Amount               money.Cents        `json:"amount"`
	Merchant             string             `json:"merchant,omitempty"`
	Description          string             `json:"description"`
	Status               TransactionStatus  `json:"status"`
	TransactionType      TransactionKind    `json:"transactionType"`
	BankAccountID        string             `json:"bankAccountID"`
	AssignedAccountID    string             `json:"assignedAccountID,omitempty"`
	AssignedBusinessID   string             `json:"assignedBusinessID,omitempty"`
	AssignedProjectID    string             `json:"assignedProjectID,omitempty"`
	AssignedContractorID string             `json:"assignedContractorID,omitempty"`
	TransferAccountID    string             `json:"transferAccountID,omitempty"`
	Splits               []TransactionSplit `json:"splits,omitempty"`
	LinkedEntryID        string             `json:"linkedEntryID,omitempty"` // Set once posted
	Pending              bool               `json:"pending"`                 // Bank-reported, not yet finalized
	AuditFields
}

// IsInflow reports whether the transaction moves money into the bank account.
func (t StagedTransaction) IsInflow() bool {
	return t.Amount > 0
}
