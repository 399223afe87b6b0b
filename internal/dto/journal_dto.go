package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/smallbooks/smallbooks_backend/internal/core/domain"
	"github.com/smallbooks/smallbooks_backend/internal/utils/money"
)

// CreateEntryLineRequest is one leg of a new journal entry. Amounts arrive as
// decimals and are converted to integer cents at the service boundary.
type CreateEntryLineRequest struct {
	AccountID    string          `json:"accountID" binding:"required"`
	Debit        decimal.Decimal `json:"debit"`
	Credit       decimal.Decimal `json:"credit"`
	Description  string          `json:"description"`
	ContractorID string          `json:"contractorID"`
	ProjectID    string          `json:"projectID"`
	BusinessID   string          `json:"businessID"`
}

// CreateEntryRequest defines the data needed to post a new journal entry.
type CreateEntryRequest struct {
	EntryDate   string                   `json:"entryDate" binding:"required,datetime=2006-01-02"`
	Description string                   `json:"description"`
	BusinessID  string                   `json:"businessID"`
	ProjectID   string                   `json:"projectID"`
	Lines       []CreateEntryLineRequest `json:"lines" binding:"required,min=2,dive"`
}

// EditPostedEntryRequest describes an append-only correction to a posted entry:
// the original stays untouched, a dated reversal and a replacement are posted
// instead. The reason is mandatory and lands in the audit trail.
type EditPostedEntryRequest struct {
	AdjustmentReason string                   `json:"adjustmentReason" binding:"required"`
	EntryDate        string                   `json:"entryDate" binding:"required,datetime=2006-01-02"`
	Description      string                   `json:"description"`
	Lines            []CreateEntryLineRequest `json:"lines" binding:"required,min=2,dive"`
}

// EntryLineResponse defines the data returned for one journal line.
type EntryLineResponse struct {
	LineID           string          `json:"lineID"`
	AccountID        string          `json:"accountID"`
	Debit            decimal.Decimal `json:"debit"`
	Credit           decimal.Decimal `json:"credit"`
	Description      string          `json:"description"`
	ContractorID     string          `json:"contractorID,omitempty"`
	ProjectID        string          `json:"projectID,omitempty"`
	BusinessID       string          `json:"businessID,omitempty"`
	IsCleared        bool            `json:"isCleared"`
	ReconciliationID string          `json:"reconciliationID,omitempty"`
}

// EntryResponse defines the data returned for a journal entry.
type EntryResponse struct {
	EntryID          string              `json:"entryID"`
	BusinessID       string              `json:"businessID,omitempty"`
	ProjectID        string              `json:"projectID,omitempty"`
	EntryDate        time.Time           `json:"entryDate"`
	Description      string              `json:"description"`
	Lines            []EntryLineResponse `json:"lines"`
	IsAdjustingEntry bool                `json:"isAdjustingEntry"`
	AdjustmentReason string              `json:"adjustmentReason,omitempty"`
	OriginalEntryID  string              `json:"originalEntryID,omitempty"`
	CreatedAt        time.Time           `json:"createdAt"`
	CreatedBy        string              `json:"createdBy"`
}

// ListEntriesParams defines query parameters for listing journal entries.
type ListEntriesParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
}

// ListEntriesResponse is a keyset-paginated page of journal entries.
type ListEntriesResponse struct {
	Entries   []EntryResponse `json:"entries"`
	NextToken *string         `json:"nextToken,omitempty"`
}

// AccountBalanceResponse defines the data returned for a balance query.
type AccountBalanceResponse struct {
	AccountID string          `json:"accountID"`
	Balance   decimal.Decimal `json:"balance"`
}

// AdjustmentResponse pairs the reversal and replacement produced by an edit.
type AdjustmentResponse struct {
	Reversal    EntryResponse `json:"reversal"`
	Replacement EntryResponse `json:"replacement"`
}

// ToEntryResponse converts a domain.JournalEntry to EntryResponse.
func ToEntryResponse(e *domain.JournalEntry) EntryResponse {
	lines := make([]EntryLineResponse, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = EntryLineResponse{
			LineID:           domain.LineID(e.EntryID, i),
			AccountID:        l.AccountID,
			Debit:            l.Debit.ToDecimal(),
			Credit:           l.Credit.ToDecimal(),
			Description:      l.Description,
			ContractorID:     l.ContractorID,
			ProjectID:        l.ProjectID,
			BusinessID:       l.BusinessID,
			IsCleared:        l.IsCleared,
			ReconciliationID: l.ReconciliationID,
		}
	}
	return EntryResponse{
		EntryID:          e.EntryID,
		BusinessID:       e.BusinessID,
		ProjectID:        e.ProjectID,
		EntryDate:        e.EntryDate,
		Description:      e.Description,
		Lines:            lines,
		IsAdjustingEntry: e.IsAdjustingEntry,
		AdjustmentReason: e.AdjustmentReason,
		OriginalEntryID:  e.OriginalEntryID,
		CreatedAt:        e.CreatedAt,
		CreatedBy:        e.CreatedBy,
	}
}

// ToEntryResponses converts a slice of domain.JournalEntry to []EntryResponse.
func ToEntryResponses(entries []domain.JournalEntry) []EntryResponse {
	res := make([]EntryResponse, len(entries))
	for i, e := range entries {
		res[i] = ToEntryResponse(&e)
	}
	return res
}

// ToBalanceResponse converts a cents balance to the decimal wire form.
func ToBalanceResponse(accountID string, balance money.Cents) AccountBalanceResponse {
	return AccountBalanceResponse{AccountID: accountID, Balance: balance.ToDecimal()}
}
