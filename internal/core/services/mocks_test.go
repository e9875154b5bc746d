package services_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/bookcheck-dev/bookcheck/internal/core/domain"
)

// MockAccountRepository is a mock type for the AccountRepositoryFacade interface
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountByCode(ctx context.Context, accountCode string) (*domain.Account, error) {
	args := m.Called(ctx, accountCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListActiveAccounts(ctx context.Context) ([]domain.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) DeactivateAccount(ctx context.Context, accountID string, userID string, now time.Time) error {
	args := m.Called(ctx, accountID, userID, now)
	return args.Error(0)
}

// MockJournalRepository is a mock type for the JournalRepositoryFacade interface
type MockJournalRepository struct {
	mock.Mock
}

func (m *MockJournalRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockJournalRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) FindEntriesByDateRange(ctx context.Context, start, end time.Time) ([]domain.JournalEntry, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) MarkEntryPosted(ctx context.Context, entryID string, userID string, now time.Time) error {
	args := m.Called(ctx, entryID, userID, now)
	return args.Error(0)
}

// MockFindingRepository is a mock type for the FindingRepositoryFacade interface
type MockFindingRepository struct {
	mock.Mock
}

func (m *MockFindingRepository) LogError(ctx context.Context, finding domain.DetectionResult) (string, error) {
	args := m.Called(ctx, finding)
	return args.String(0), args.Error(1)
}

func (m *MockFindingRepository) FindErrorsByEntryID(ctx context.Context, entryID string) ([]domain.DetectionResult, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DetectionResult), args.Error(1)
}

func (m *MockFindingRepository) ListUnresolvedErrors(ctx context.Context) ([]domain.DetectionResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DetectionResult), args.Error(1)
}

func (m *MockFindingRepository) ResolveError(ctx context.Context, errorID string, resolvedBy string, notes string, now time.Time) error {
	args := m.Called(ctx, errorID, resolvedBy, notes, now)
	return args.Error(0)
}

// MockStatisticsService is a mock type for the StatisticsSvcFacade interface
type MockStatisticsService struct {
	mock.Mock
}

func (m *MockStatisticsService) HistoricalAmountStatistics(ctx context.Context, asOf time.Time) (*domain.AmountStatistics, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AmountStatistics), args.Error(1)
}
