package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// QuantizeAmount normalizes a monetary amount to two decimal places,
// rounding ties away from zero (100.005 -> 100.01).
func QuantizeAmount(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// JournalEntryLine is one debit-or-credit posting to a single account
// within a journal entry. Exactly one of DebitAmount/CreditAmount is
// positive on a valid line.
type JournalEntryLine struct {
	LineID       string          `json:"lineID"`
	EntryID      string          `json:"entryID"`
	LineNumber   int             `json:"lineNumber"`
	AccountID    string          `json:"accountID"`
	Description  string          `json:"description"`
	DebitAmount  decimal.Decimal `json:"debitAmount"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
}

// NewJournalEntryLine builds a line with both amounts quantized to the cent.
func NewJournalEntryLine(accountID, description string, debit, credit decimal.Decimal) JournalEntryLine {
	return JournalEntryLine{
		AccountID:    accountID,
		Description:  description,
		DebitAmount:  QuantizeAmount(debit),
		CreditAmount: QuantizeAmount(credit),
	}
}

// NetAmount returns debit minus credit.
func (l JournalEntryLine) NetAmount() decimal.Decimal {
	return l.DebitAmount.Sub(l.CreditAmount)
}

// Amount returns the magnitude of the line, max(debit, credit).
func (l JournalEntryLine) Amount() decimal.Decimal {
	if l.DebitAmount.GreaterThanOrEqual(l.CreditAmount) {
		return l.DebitAmount
	}
	return l.CreditAmount
}

// IsValid reports whether the line references an account and carries
// exactly one positive amount.
func (l JournalEntryLine) IsValid() bool {
	if l.AccountID == "" {
		return false
	}
	if l.DebitAmount.IsNegative() || l.CreditAmount.IsNegative() {
		return false
	}
	return l.DebitAmount.IsPositive() != l.CreditAmount.IsPositive()
}

// JournalEntry is a dated, described set of journal lines recorded as one
// transaction. Lines keep their insertion order; the entry is persisted as a
// unit, header plus lines, never partially.
type JournalEntry struct {
	EntryID         string             `json:"entryID"`
	EntryNumber     string             `json:"entryNumber"` // business key
	EntryDate       time.Time          `json:"entryDate"`
	Description     string             `json:"description"`
	Reference       string             `json:"reference"`
	IsPosted        bool               `json:"isPosted"`
	IsReversed      bool               `json:"isReversed"`
	ReversalEntryID string             `json:"reversalEntryID,omitempty"`
	Lines           []JournalEntryLine `json:"lines"`
	AuditFields
}

// AddLine appends a line, assigning the next sequential line number
// starting at 1. Line order is fixed after creation.
func (e *JournalEntry) AddLine(line JournalEntryLine) {
	line.EntryID = e.EntryID
	line.LineNumber = len(e.Lines) + 1
	e.Lines = append(e.Lines, line)
}

// TotalDebits sums the debit amounts of all lines.
func (e *JournalEntry) TotalDebits() decimal.Decimal {
	total := decimal.Zero
	for _, l := range e.Lines {
		total = total.Add(l.DebitAmount)
	}
	return total
}

// TotalCredits sums the credit amounts of all lines.
func (e *JournalEntry) TotalCredits() decimal.Decimal {
	total := decimal.Zero
	for _, l := range e.Lines {
		total = total.Add(l.CreditAmount)
	}
	return total
}

// OutOfBalanceAmount returns total debits minus total credits.
// Positive means excess debits.
func (e *JournalEntry) OutOfBalanceAmount() decimal.Decimal {
	return e.TotalDebits().Sub(e.TotalCredits())
}

// IsBalanced reports whether total debits equal total credits.
func (e *JournalEntry) IsBalanced() bool {
	return e.OutOfBalanceAmount().IsZero()
}

// AccountIDs returns the distinct set of accounts touched by the entry's lines.
func (e *JournalEntry) AccountIDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(e.Lines))
	for _, l := range e.Lines {
		ids[l.AccountID] = struct{}{}
	}
	return ids
}

// IsValid reports whether the entry has a number and description, at least
// two individually valid lines, and balances.
func (e *JournalEntry) IsValid() bool {
	if strings.TrimSpace(e.EntryNumber) == "" || strings.TrimSpace(e.Description) == "" {
		return false
	}
	if len(e.Lines) < 2 {
		return false
	}
	for _, l := range e.Lines {
		if !l.IsValid() {
			return false
		}
	}
	return e.IsBalanced()
}
