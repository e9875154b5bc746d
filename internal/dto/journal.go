package dto

import (
	"time"

	"github.com/bookcheck-dev/bookcheck/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateEntryLineRequest is one line of a new journal entry. Exactly one of
// the two amounts must be positive; the service quantizes both to the cent.
type CreateEntryLineRequest struct {
	AccountID    string          `json:"accountID" binding:"required"`
	Description  string          `json:"description"`
	DebitAmount  decimal.Decimal `json:"debitAmount"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
}

// CreateEntryRequest defines the payload for creating a journal entry.
type CreateEntryRequest struct {
	EntryNumber string                   `json:"entryNumber" binding:"required"`
	EntryDate   time.Time                `json:"entryDate" binding:"required"`
	Description string                   `json:"description" binding:"required"`
	Reference   string                   `json:"reference"`
	Lines       []CreateEntryLineRequest `json:"lines" binding:"required,min=2,dive"`
}

// EntryLineResponse defines the data returned for a journal entry line.
type EntryLineResponse struct {
	LineID       string          `json:"lineID"`
	LineNumber   int             `json:"lineNumber"`
	AccountID    string          `json:"accountID"`
	Description  string          `json:"description"`
	DebitAmount  decimal.Decimal `json:"debitAmount"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
}

// EntryResponse defines the data returned for a journal entry with its lines
// and derived totals.
type EntryResponse struct {
	EntryID      string              `json:"entryID"`
	EntryNumber  string              `json:"entryNumber"`
	EntryDate    time.Time           `json:"entryDate"`
	Description  string              `json:"description"`
	Reference    string              `json:"reference,omitempty"`
	IsPosted     bool                `json:"isPosted"`
	IsReversed   bool                `json:"isReversed"`
	TotalDebits  decimal.Decimal     `json:"totalDebits"`
	TotalCredits decimal.Decimal     `json:"totalCredits"`
	IsBalanced   bool                `json:"isBalanced"`
	Lines        []EntryLineResponse `json:"lines"`
}

// ToEntryResponse converts a domain.JournalEntry to EntryResponse.
func ToEntryResponse(e *domain.JournalEntry) EntryResponse {
	lines := make([]EntryLineResponse, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = EntryLineResponse{
			LineID:       l.LineID,
			LineNumber:   l.LineNumber,
			AccountID:    l.AccountID,
			Description:  l.Description,
			DebitAmount:  l.DebitAmount,
			CreditAmount: l.CreditAmount,
		}
	}
	return EntryResponse{
		EntryID:      e.EntryID,
		EntryNumber:  e.EntryNumber,
		EntryDate:    e.EntryDate,
		Description:  e.Description,
		Reference:    e.Reference,
		IsPosted:     e.IsPosted,
		IsReversed:   e.IsReversed,
		TotalDebits:  e.TotalDebits(),
		TotalCredits: e.TotalCredits(),
		IsBalanced:   e.IsBalanced(),
		Lines:        lines,
	}
}
