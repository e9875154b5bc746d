package dto

import (
	"github.com/bookcheck-dev/bookcheck/internal/core/domain"
)

// CreateAccountRequest defines the payload for creating a chart-of-accounts entry.
type CreateAccountRequest struct {
	AccountCode     string `json:"accountCode" binding:"required"`
	AccountName     string `json:"accountName" binding:"required"`
	AccountType     string `json:"accountType" binding:"required,accounttype"`
	NormalBalance   string `json:"normalBalance" binding:"required,normalbalance"`
	ParentAccountID string `json:"parentAccountID"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID       string `json:"accountID"`
	AccountCode     string `json:"accountCode"`
	AccountName     string `json:"accountName"`
	AccountType     string `json:"accountType"`
	NormalBalance   string `json:"normalBalance"`
	ParentAccountID string `json:"parentAccountID,omitempty"`
	IsActive        bool   `json:"isActive"`
}

// ToAccountResponse converts a domain.Account to AccountResponse.
func ToAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:       a.AccountID,
		AccountCode:     a.AccountCode,
		AccountName:     a.AccountName,
		AccountType:     string(a.AccountType),
		NormalBalance:   string(a.NormalBalance),
		ParentAccountID: a.ParentAccountID,
		IsActive:        a.IsActive,
	}
}

// ToAccountResponses converts a slice of domain.Account to []AccountResponse.
func ToAccountResponses(accounts []domain.Account) []AccountResponse {
	responses := make([]AccountResponse, len(accounts))
	for i := range accounts {
		responses[i] = ToAccountResponse(&accounts[i])
	}
	return responses
}
