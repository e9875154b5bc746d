package services

import (
	"context"

	"github.com/bookcheck-dev/bookcheck/internal/core/domain"
	"github.com/bookcheck-dev/bookcheck/internal/dto"
)

// AccountSvcFacade exposes chart-of-accounts operations to the handlers.
type AccountSvcFacade interface {
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error)
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)
	GetAccountByCode(ctx context.Context, accountCode string) (*domain.Account, error)
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	DeactivateAccount(ctx context.Context, accountID string, userID string) error
}
