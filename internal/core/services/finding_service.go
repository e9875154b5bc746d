package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bookcheck-dev/bookcheck/internal/apperrors"
	"github.com/bookcheck-dev/bookcheck/internal/core/domain"
	portsrepo "github.com/bookcheck-dev/bookcheck/internal/core/ports/repositories"
	portssvc "github.com/bookcheck-dev/bookcheck/internal/core/ports/services"
	"github.com/bookcheck-dev/bookcheck/internal/middleware"
)

// findingService exposes the review workflow over logged findings.
type findingService struct {
	findingRepo portsrepo.FindingRepositoryFacade
}

// NewFindingService creates a new finding service.
func NewFindingService(findingRepo portsrepo.FindingRepositoryFacade) portssvc.FindingSvcFacade {
	return &findingService{findingRepo: findingRepo}
}

var _ portssvc.FindingSvcFacade = (*findingService)(nil)

// GetFindingsForEntry retrieves the unresolved findings for an entry.
func (s *findingService) GetFindingsForEntry(ctx context.Context, entryID string) ([]domain.DetectionResult, error) {
	return s.findingRepo.FindErrorsByEntryID(ctx, entryID)
}

// ListUnresolvedFindings retrieves all unresolved findings.
func (s *findingService) ListUnresolvedFindings(ctx context.Context) ([]domain.DetectionResult, error) {
	return s.findingRepo.ListUnresolvedErrors(ctx)
}

// ResolveFinding marks a finding as resolved, recording who resolved it and
// why. This is the only mutation a logged finding supports.
func (s *findingService) ResolveFinding(ctx context.Context, errorID string, resolvedBy string, notes string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if strings.TrimSpace(resolvedBy) == "" {
		return fmt.Errorf("%w: resolver identity is required", apperrors.ErrValidation)
	}

	if err := s.findingRepo.ResolveError(ctx, errorID, resolvedBy, notes, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to resolve finding %s: %w", errorID, err)
	}

	logger.Info("Finding resolved", slog.String("error_id", errorID), slog.String("resolved_by", resolvedBy))
	return nil
}
