package repositories

import (
	"context"
	"time"

	"github.com/bookcheck-dev/bookcheck/internal/core/domain"
)

// AccountReader defines the read-only account registry the rule checks and
// the suggestion engine depend on.
type AccountReader interface {
	// FindAccountByID retrieves an account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountByCode retrieves an account by its business code.
	FindAccountByCode(ctx context.Context, accountCode string) (*domain.Account, error)

	// ListActiveAccounts retrieves all active accounts, ordered by account code.
	ListActiveAccounts(ctx context.Context) ([]domain.Account, error)
}

// AccountWriter defines write operations for account data.
type AccountWriter interface {
	// SaveAccount persists a new account.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccount updates an existing account's details.
	UpdateAccount(ctx context.Context, account domain.Account) error

	// DeactivateAccount marks an account as inactive. Accounts are never deleted.
	DeactivateAccount(ctx context.Context, accountID string, userID string, now time.Time) error
}

// AccountRepositoryFacade combines all account repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}
