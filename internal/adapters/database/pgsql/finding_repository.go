package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bookcheck-dev/bookcheck/internal/apperrors"
	"github.com/bookcheck-dev/bookcheck/internal/core/domain"
	portsrepo "github.com/bookcheck-dev/bookcheck/internal/core/ports/repositories"
)

type PgxFindingRepository struct {
	pool *pgxpool.Pool
}

// NewFindingRepository creates a new repository for the detection log.
func NewFindingRepository(pool *pgxpool.Pool) portsrepo.FindingRepositoryFacade {
	return &PgxFindingRepository{pool: pool}
}

var _ portsrepo.FindingRepositoryFacade = (*PgxFindingRepository)(nil)

const findingColumns = `error_id, entry_id, line_id, error_type, error_severity, error_description, suggested_correction, detected_at, is_resolved, resolved_by, resolution_notes, resolved_at`

// LogError appends a finding to the detection log and returns its assigned ID.
func (r *PgxFindingRepository) LogError(ctx context.Context, finding domain.DetectionResult) (string, error) {
	errorID := finding.ErrorID
	if errorID == "" {
		errorID = uuid.NewString()
	}

	var lineID *string
	if finding.LineID != "" {
		lineID = &finding.LineID
	}

	query := `
		INSERT INTO error_detection_log (error_id, entry_id, line_id, error_type, error_severity, error_description, suggested_correction, detected_at, is_resolved)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, FALSE);
	`
	_, err := r.pool.Exec(ctx, query,
		errorID,
		finding.EntryID,
		lineID,
		finding.ErrorType,
		finding.ErrorSeverity,
		finding.ErrorDescription,
		finding.SuggestedCorrection,
		finding.DetectedAt,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert finding for entry %s: %w", finding.EntryID, err)
	}
	return errorID, nil
}

func scanFinding(row pgx.Row) (*domain.DetectionResult, error) {
	var finding domain.DetectionResult
	var lineID, resolvedBy, notes *string
	err := row.Scan(
		&finding.ErrorID,
		&finding.EntryID,
		&lineID,
		&finding.ErrorType,
		&finding.ErrorSeverity,
		&finding.ErrorDescription,
		&finding.SuggestedCorrection,
		&finding.DetectedAt,
		&finding.IsResolved,
		&resolvedBy,
		&notes,
		&finding.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	if lineID != nil {
		finding.LineID = *lineID
	}
	if resolvedBy != nil {
		finding.ResolvedBy = *resolvedBy
	}
	if notes != nil {
		finding.ResolutionNotes = *notes
	}
	return &finding, nil
}

func (r *PgxFindingRepository) queryFindings(ctx context.Context, query string, args ...any) ([]domain.DetectionResult, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query findings: %w", err)
	}
	defer rows.Close()

	findings := []domain.DetectionResult{}
	for rows.Next() {
		finding, err := scanFinding(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan finding row: %w", err)
		}
		findings = append(findings, *finding)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating finding rows: %w", err)
	}
	return findings, nil
}

// FindErrorsByEntryID retrieves the unresolved findings for one entry,
// highest severity first.
func (r *PgxFindingRepository) FindErrorsByEntryID(ctx context.Context, entryID string) ([]domain.DetectionResult, error) {
	query := `
		SELECT ` + findingColumns + `
		FROM error_detection_log
		WHERE entry_id = $1 AND is_resolved = FALSE
		ORDER BY CASE error_severity WHEN 'HIGH' THEN 0 WHEN 'MEDIUM' THEN 1 ELSE 2 END, detected_at;
	`
	return r.queryFindings(ctx, query, entryID)
}

// ListUnresolvedErrors retrieves all unresolved findings.
func (r *PgxFindingRepository) ListUnresolvedErrors(ctx context.Context) ([]domain.DetectionResult, error) {
	query := `
		SELECT ` + findingColumns + `
		FROM error_detection_log
		WHERE is_resolved = FALSE
		ORDER BY CASE error_severity WHEN 'HIGH' THEN 0 WHEN 'MEDIUM' THEN 1 ELSE 2 END, detected_at DESC;
	`
	return r.queryFindings(ctx, query)
}

// ResolveError sets the resolution fields of a finding.
func (r *PgxFindingRepository) ResolveError(ctx context.Context, errorID string, resolvedBy string, notes string, now time.Time) error {
	query := `
		UPDATE error_detection_log
		SET is_resolved = TRUE, resolved_by = $2, resolution_notes = $3, resolved_at = $4
		WHERE error_id = $1;
	`
	tag, err := r.pool.Exec(ctx, query, errorID, resolvedBy, notes, now)
	if err != nil {
		return fmt.Errorf("failed to resolve finding %s: %w", errorID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
