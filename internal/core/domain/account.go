package domain

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset          AccountType = "ASSET"
	Liability      AccountType = "LIABILITY"
	Equity         AccountType = "EQUITY"
	Income         AccountType = "INCOME"
	CostOfServices AccountType = "COST_OF_SERVICES"
	Expense        AccountType = "EXPENSE"
)

// IsDebitNormal reports whether the account type's natural positive balance is a debit total.
func (t AccountType) IsDebitNormal() bool {
	switch t {
	case Asset, Expense, CostOfServices:
		return true
	case Liability, Equity, Income:
		return false
	default:
		// Unexpected types (e.g. after a parent type change) are treated as
		// expense-like rather than crashing reports.
		return true
	}
}

// AccountStatus indicates whether an account is selectable for new activity.
type AccountStatus string

const (
	AccountActive   AccountStatus = "ACTIVE"
	AccountArchived AccountStatus = "ARCHIVED"
)

// Account is a node in the chart-of-accounts forest. Accounts are never hard-deleted
// because posted journal lines reference them permanently; archiving only hides them
// from pickers.
type Account struct {
	AccountID       string        `json:"accountID"`       // Primary key (UUID)
	UserID          string        `json:"userID"`          // Tenant owner (NON-NULL)
	Code            string        `json:"code"`            // Sortable chart code; external identity for export/report matching
	Name            string        `json:"name"`            // User-defined name; duplicates tolerated
	AccountType     AccountType   `json:"accountType"`     // Equals parent's type at creation
	ParentAccountID string        `json:"parentAccountID"` // Nullable self-reference
	Description     string        `json:"description"`
	Status          AccountStatus `json:"status"`
	IsBankAccount   bool          `json:"isBankAccount"` // Cash-on-hand / bank-feed accounts
	AuditFields
}

// IsActive reports whether the account may be used in new postings and pickers.
func (a Account) IsActive() bool {
	return a.Status == AccountActive
}
