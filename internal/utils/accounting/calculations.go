package accounting

import (
	"github.com/smallbooks/smallbooks_backend/internal/core/domain"
	"github.com/smallbooks/smallbooks_backend/internal/utils/money"
)

// SignedLineAmount converts one journal line into the account's natural sign:
// debit-normal accounts (asset, expense, cost of services) grow with debits,
// credit-normal accounts (liability, equity, income) grow with credits.
func SignedLineAmount(line domain.JournalLine, accountType domain.AccountType) money.Cents {
	net := line.Debit - line.Credit
	if accountType.IsDebitNormal() {
		return net
	}
	return -net
}

// AccountBalance folds every line referencing accountID into the account's natural
// balance. Balances are always derived from the full journal, never cached, so
// correctness follows directly from every posted entry balancing.
func AccountBalance(entries []domain.JournalEntry, accountID string, accountType domain.AccountType) money.Cents {
	var balance money.Cents
	for _, e := range entries {
		for _, l := range e.Lines {
			if l.AccountID == accountID {
				balance += SignedLineAmount(l, accountType)
			}
		}
	}
	return balance
}
