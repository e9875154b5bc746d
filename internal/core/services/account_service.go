package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bookcheck-dev/bookcheck/internal/apperrors"
	"github.com/bookcheck-dev/bookcheck/internal/core/domain"
	portsrepo "github.com/bookcheck-dev/bookcheck/internal/core/ports/repositories"
	portssvc "github.com/bookcheck-dev/bookcheck/internal/core/ports/services"
	"github.com/bookcheck-dev/bookcheck/internal/dto"
	"github.com/bookcheck-dev/bookcheck/internal/middleware"
)

// accountService manages the chart of accounts.
type accountService struct {
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewAccountService creates a new account service.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade) portssvc.AccountSvcFacade {
	return &accountService{accountRepo: accountRepo}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// CreateAccount validates and persists a new chart-of-accounts entry.
// Account codes must be unique.
func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	accountType := domain.AccountType(req.AccountType)
	if !accountType.IsValid() {
		return nil, fmt.Errorf("%w: unknown account type %q", apperrors.ErrValidation, req.AccountType)
	}
	normalBalance := domain.NormalBalance(req.NormalBalance)
	if !normalBalance.IsValid() {
		return nil, fmt.Errorf("%w: unknown normal balance %q", apperrors.ErrValidation, req.NormalBalance)
	}
	if strings.TrimSpace(req.AccountCode) == "" || strings.TrimSpace(req.AccountName) == "" {
		return nil, fmt.Errorf("%w: account code and name are required", apperrors.ErrValidation)
	}

	existing, err := s.accountRepo.FindAccountByCode(ctx, req.AccountCode)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check for existing account code: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: account code %s", apperrors.ErrDuplicate, req.AccountCode)
	}

	if req.ParentAccountID != "" {
		if _, err := s.accountRepo.FindAccountByID(ctx, req.ParentAccountID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: parent account %s", apperrors.ErrNotFound, req.ParentAccountID)
			}
			return nil, fmt.Errorf("failed to verify parent account: %w", err)
		}
	}

	now := time.Now().UTC()
	account := domain.Account{
		AccountID:       uuid.NewString(),
		AccountCode:     req.AccountCode,
		AccountName:     req.AccountName,
		AccountType:     accountType,
		NormalBalance:   normalBalance,
		ParentAccountID: req.ParentAccountID,
		IsActive:        true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		logger.Error("Failed to save account", slog.String("error", err.Error()), slog.String("account_code", account.AccountCode))
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	logger.Info("Account created", slog.String("account_id", account.AccountID), slog.String("account_code", account.AccountCode))
	return &account, nil
}

// GetAccountByID retrieves an account by its unique identifier.
func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	return s.accountRepo.FindAccountByID(ctx, accountID)
}

// GetAccountByCode retrieves an account by its business code.
func (s *accountService) GetAccountByCode(ctx context.Context, accountCode string) (*domain.Account, error) {
	return s.accountRepo.FindAccountByCode(ctx, accountCode)
}

// ListAccounts retrieves all active accounts, ordered by account code.
func (s *accountService) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	return s.accountRepo.ListActiveAccounts(ctx)
}

// DeactivateAccount flips the account's active flag. The account and its
// history remain queryable.
func (s *accountService) DeactivateAccount(ctx context.Context, accountID string, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.accountRepo.FindAccountByID(ctx, accountID); err != nil {
		return err
	}

	if err := s.accountRepo.DeactivateAccount(ctx, accountID, userID, time.Now().UTC()); err != nil {
		logger.Error("Failed to deactivate account", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return fmt.Errorf("failed to deactivate account %s: %w", accountID, err)
	}

	logger.Info("Account deactivated", slog.String("account_id", accountID))
	return nil
}
