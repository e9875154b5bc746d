package services

import (
	"context"
	"time"

	"github.com/bookcheck-dev/bookcheck/internal/core/domain"
)

// StatisticsSvcFacade computes the historical amount baseline used by the
// unusual-amount check. A nil result with nil error means no baseline is
// available (insufficient data); that is not a failure.
type StatisticsSvcFacade interface {
	HistoricalAmountStatistics(ctx context.Context, asOf time.Time) (*domain.AmountStatistics, error)
}

// DetectionSvcFacade runs every rule check against an entry, persists each
// finding through the finding log, and returns the full list.
type DetectionSvcFacade interface {
	DetectAllErrors(ctx context.Context, entry *domain.JournalEntry) ([]domain.DetectionResult, error)
}

// SuggestionSvcFacade turns findings into categorized remediation text,
// keyed by error type name.
type SuggestionSvcFacade interface {
	SuggestCorrections(ctx context.Context, entry *domain.JournalEntry, findings []domain.DetectionResult) (map[string][]string, error)
}

// FindingSvcFacade exposes the logged-finding review workflow.
type FindingSvcFacade interface {
	GetFindingsForEntry(ctx context.Context, entryID string) ([]domain.DetectionResult, error)
	ListUnresolvedFindings(ctx context.Context) ([]domain.DetectionResult, error)
	ResolveFinding(ctx context.Context, errorID string, resolvedBy string, notes string) error
}
