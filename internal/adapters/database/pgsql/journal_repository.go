package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bookcheck-dev/bookcheck/internal/apperrors"
	"github.com/bookcheck-dev/bookcheck/internal/core/domain"
	portsrepo "github.com/bookcheck-dev/bookcheck/internal/core/ports/repositories"
)

type PgxJournalRepository struct {
	pool *pgxpool.Pool
}

// NewJournalRepository creates a new repository for journal entry data.
func NewJournalRepository(pool *pgxpool.Pool) portsrepo.JournalRepositoryFacade {
	return &PgxJournalRepository{pool: pool}
}

var _ portsrepo.JournalRepositoryFacade = (*PgxJournalRepository)(nil)

const entryColumns = `entry_id, entry_number, entry_date, description, reference, is_posted, is_reversed, reversal_entry_id, created_at, created_by, last_updated_at, last_updated_by`

// SaveEntry persists an entry header and all its lines within one database
// transaction. Either everything lands or nothing does.
func (r *PgxJournalRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	entryQuery := `
		INSERT INTO journal_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	var reversalID *string
	if entry.ReversalEntryID != "" {
		reversalID = &entry.ReversalEntryID
	}
	_, err = tx.Exec(ctx, entryQuery,
		entry.EntryID,
		entry.EntryNumber,
		entry.EntryDate,
		entry.Description,
		entry.Reference,
		entry.IsPosted,
		entry.IsReversed,
		reversalID,
		entry.CreatedAt,
		entry.CreatedBy,
		entry.LastUpdatedAt,
		entry.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert entry %s: %w", entry.EntryID, err)
	}

	batch := &pgx.Batch{}
	lineQuery := `
		INSERT INTO journal_entry_lines (line_id, entry_id, line_number, account_id, description, debit_amount, credit_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	for _, line := range entry.Lines {
		batch.Queue(lineQuery,
			line.LineID,
			entry.EntryID,
			line.LineNumber,
			line.AccountID,
			line.Description,
			line.DebitAmount,
			line.CreditAmount,
		)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to execute line batch for entry %s: %w", entry.EntryID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit entry %s: %w", entry.EntryID, err)
	}
	return nil
}

func scanEntry(row pgx.Row) (*domain.JournalEntry, error) {
	var entry domain.JournalEntry
	var reversalID *string
	err := row.Scan(
		&entry.EntryID,
		&entry.EntryNumber,
		&entry.EntryDate,
		&entry.Description,
		&entry.Reference,
		&entry.IsPosted,
		&entry.IsReversed,
		&reversalID,
		&entry.CreatedAt,
		&entry.CreatedBy,
		&entry.LastUpdatedAt,
		&entry.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	if reversalID != nil {
		entry.ReversalEntryID = *reversalID
	}
	return &entry, nil
}

// FindEntryByID retrieves an entry with its lines ordered by line number.
func (r *PgxJournalRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE entry_id = $1;`
	entry, err := scanEntry(r.pool.QueryRow(ctx, query, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find entry by ID %s: %w", entryID, err)
	}

	linesByEntry, err := r.findLinesByEntryIDs(ctx, []string{entryID})
	if err != nil {
		return nil, err
	}
	entry.Lines = linesByEntry[entryID]
	return entry, nil
}

// FindEntriesByDateRange retrieves fully hydrated entries whose entry date
// falls within [start, end], ordered by entry date then entry number.
func (r *PgxJournalRepository) FindEntriesByDateRange(ctx context.Context, start, end time.Time) ([]domain.JournalEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM journal_entries
		WHERE entry_date BETWEEN $1 AND $2
		ORDER BY entry_date, entry_number;
	`
	rows, err := r.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries by date range: %w", err)
	}
	defer rows.Close()

	entries := []domain.JournalEntry{}
	entryIDs := []string{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry row: %w", err)
		}
		entries = append(entries, *entry)
		entryIDs = append(entryIDs, entry.EntryID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entry rows: %w", err)
	}

	if len(entries) == 0 {
		return entries, nil
	}

	linesByEntry, err := r.findLinesByEntryIDs(ctx, entryIDs)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Lines = linesByEntry[entries[i].EntryID]
	}
	return entries, nil
}

func (r *PgxJournalRepository) findLinesByEntryIDs(ctx context.Context, entryIDs []string) (map[string][]domain.JournalEntryLine, error) {
	query := `
		SELECT line_id, entry_id, line_number, account_id, description, debit_amount, credit_amount
		FROM journal_entry_lines
		WHERE entry_id = ANY($1)
		ORDER BY entry_id, line_number;
	`
	rows, err := r.pool.Query(ctx, query, entryIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query entry lines: %w", err)
	}
	defer rows.Close()

	linesByEntry := make(map[string][]domain.JournalEntryLine, len(entryIDs))
	for rows.Next() {
		var line domain.JournalEntryLine
		if err := rows.Scan(
			&line.LineID,
			&line.EntryID,
			&line.LineNumber,
			&line.AccountID,
			&line.Description,
			&line.DebitAmount,
			&line.CreditAmount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan line row: %w", err)
		}
		linesByEntry[line.EntryID] = append(linesByEntry[line.EntryID], line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating line rows: %w", err)
	}
	return linesByEntry, nil
}

// MarkEntryPosted flags an entry as posted.
func (r *PgxJournalRepository) MarkEntryPosted(ctx context.Context, entryID string, userID string, now time.Time) error {
	query := `
		UPDATE journal_entries
		SET is_posted = TRUE, last_updated_at = $2, last_updated_by = $3
		WHERE entry_id = $1;
	`
	tag, err := r.pool.Exec(ctx, query, entryID, now, userID)
	if err != nil {
		return fmt.Errorf("failed to mark entry %s posted: %w", entryID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
