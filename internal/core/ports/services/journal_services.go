package services

import (
	"context"
	"time"

	"github.com/bookcheck-dev/bookcheck/internal/core/domain"
	"github.com/bookcheck-dev/bookcheck/internal/dto"
)

// JournalSvcFacade exposes journal entry operations to the handlers.
type JournalSvcFacade interface {
	// CreateEntry validates and persists a new entry with its lines as a unit.
	CreateEntry(ctx context.Context, req dto.CreateEntryRequest, creatorUserID string) (*domain.JournalEntry, error)
	GetEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error)
	ListEntriesByDateRange(ctx context.Context, start, end time.Time) ([]domain.JournalEntry, error)
	PostEntry(ctx context.Context, entryID string, userID string) error
}
