package repositories

import (
	"context"
	"time"

	"github.com/bookcheck-dev/bookcheck/internal/core/domain"
)

// FindingWriter is the append-only log the detection orchestrator persists
// findings through.
type FindingWriter interface {
	// LogError appends a finding and returns its assigned ID.
	LogError(ctx context.Context, finding domain.DetectionResult) (string, error)
}

// FindingReader defines read operations over logged findings.
type FindingReader interface {
	// FindErrorsByEntryID retrieves the unresolved findings for an entry,
	// highest severity first.
	FindErrorsByEntryID(ctx context.Context, entryID string) ([]domain.DetectionResult, error)

	// ListUnresolvedErrors retrieves all unresolved findings.
	ListUnresolvedErrors(ctx context.Context) ([]domain.DetectionResult, error)
}

// FindingResolver mutates the resolution fields of a finding. This is the
// only sanctioned mutation of a logged finding.
type FindingResolver interface {
	ResolveError(ctx context.Context, errorID string, resolvedBy string, notes string, now time.Time) error
}

// FindingRepositoryFacade combines all finding repository interfaces.
type FindingRepositoryFacade interface {
	FindingWriter
	FindingReader
	FindingResolver
}
