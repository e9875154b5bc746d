package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bookcheck-dev/bookcheck/internal/core/domain"
	portsrepo "github.com/bookcheck-dev/bookcheck/internal/core/ports/repositories"
	portssvc "github.com/bookcheck-dev/bookcheck/internal/core/ports/services"
	"github.com/bookcheck-dev/bookcheck/internal/dto"
	"github.com/bookcheck-dev/bookcheck/internal/middleware"
)

var (
	ErrEntryUnbalanced    = errors.New("entry debits and credits do not balance")
	ErrEntryMinLines      = errors.New("entry must have at least two lines")
	ErrEntryNumberMissing = errors.New("entry number is required")
	ErrDescriptionMissing = errors.New("entry description is required")
	ErrInvalidLine        = errors.New("line must carry exactly one positive amount")
)

// journalService constructs and persists journal entries.
type journalService struct {
	journalRepo portsrepo.JournalRepositoryFacade
}

// NewJournalService creates a new journal service.
func NewJournalService(journalRepo portsrepo.JournalRepositoryFacade) portssvc.JournalSvcFacade {
	return &journalService{journalRepo: journalRepo}
}

var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// CreateEntry validates the request, assigns IDs and sequential line numbers,
// quantizes all amounts to the cent, and persists header plus lines as a
// unit. An entry is never partially persisted.
func (s *journalService) CreateEntry(ctx context.Context, req dto.CreateEntryRequest, creatorUserID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if strings.TrimSpace(req.EntryNumber) == "" {
		return nil, ErrEntryNumberMissing
	}
	if strings.TrimSpace(req.Description) == "" {
		return nil, ErrDescriptionMissing
	}
	if len(req.Lines) < 2 {
		return nil, ErrEntryMinLines
	}

	now := time.Now().UTC()
	entry := domain.JournalEntry{
		EntryID:     uuid.NewString(),
		EntryNumber: req.EntryNumber,
		EntryDate:   req.EntryDate,
		Description: req.Description,
		Reference:   req.Reference,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	for i, lineReq := range req.Lines {
		line := domain.NewJournalEntryLine(lineReq.AccountID, lineReq.Description, lineReq.DebitAmount, lineReq.CreditAmount)
		line.LineID = uuid.NewString()
		if !line.IsValid() {
			return nil, fmt.Errorf("%w: line %d", ErrInvalidLine, i+1)
		}
		entry.AddLine(line)
	}

	if !entry.IsBalanced() {
		return nil, fmt.Errorf("%w: debits %s, credits %s",
			ErrEntryUnbalanced, entry.TotalDebits(), entry.TotalCredits())
	}

	if err := s.journalRepo.SaveEntry(ctx, entry); err != nil {
		logger.Error("Failed to save journal entry", slog.String("error", err.Error()), slog.String("entry_number", entry.EntryNumber))
		return nil, fmt.Errorf("failed to save entry %s: %w", entry.EntryNumber, err)
	}

	logger.Info("Journal entry created",
		slog.String("entry_id", entry.EntryID),
		slog.String("entry_number", entry.EntryNumber),
		slog.Int("line_count", len(entry.Lines)),
	)
	return &entry, nil
}

// GetEntry retrieves an entry with its lines in line-number order.
func (s *journalService) GetEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	return s.journalRepo.FindEntryByID(ctx, entryID)
}

// ListEntriesByDateRange retrieves fully hydrated entries dated within [start, end].
func (s *journalService) ListEntriesByDateRange(ctx context.Context, start, end time.Time) ([]domain.JournalEntry, error) {
	return s.journalRepo.FindEntriesByDateRange(ctx, start, end)
}

// PostEntry flags an entry as posted, making its lines part of the
// historical baseline.
func (s *journalService) PostEntry(ctx context.Context, entryID string, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.journalRepo.FindEntryByID(ctx, entryID); err != nil {
		return err
	}

	if err := s.journalRepo.MarkEntryPosted(ctx, entryID, userID, time.Now().UTC()); err != nil {
		logger.Error("Failed to post entry", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		return fmt.Errorf("failed to post entry %s: %w", entryID, err)
	}

	logger.Info("Journal entry posted", slog.String("entry_id", entryID))
	return nil
}
