package domain

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// IsValid reports whether t is one of the five known account types.
func (t AccountType) IsValid() bool {
	switch t {
	case Asset, Liability, Equity, Revenue, Expense:
		return true
	}
	return false
}

// NormalBalance is the side on which an account's balance conventionally increases.
type NormalBalance string

const (
	DebitBalance  NormalBalance = "DEBIT"
	CreditBalance NormalBalance = "CREDIT"
)

// IsValid reports whether b is a known normal balance side.
func (b NormalBalance) IsValid() bool {
	return b == DebitBalance || b == CreditBalance
}

// Account represents one entry in the chart of accounts.
// Accounts are never deleted; deactivation flips IsActive so that
// historical entries stay inspectable.
type Account struct {
	AccountID       string        `json:"accountID"`
	AccountCode     string        `json:"accountCode"` // unique, sortable business key
	AccountName     string        `json:"accountName"`
	AccountType     AccountType   `json:"accountType"`
	NormalBalance   NormalBalance `json:"normalBalance"`
	ParentAccountID string        `json:"parentAccountID,omitempty"` // empty = top level
	IsActive        bool          `json:"isActive"`
	AuditFields
}
