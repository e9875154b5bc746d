package repositories

import (
	"context"
	"time"

	"github.com/bookcheck-dev/bookcheck/internal/core/domain"
)

// JournalReader defines the read-only journal store the duplicate check and
// the statistics provider depend on.
type JournalReader interface {
	// FindEntryByID retrieves an entry with its lines, ordered by line number.
	FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// FindEntriesByDateRange retrieves fully hydrated entries whose entry date
	// falls within [start, end], ordered by entry date then entry number.
	FindEntriesByDateRange(ctx context.Context, start, end time.Time) ([]domain.JournalEntry, error)
}

// JournalWriter defines write operations for journal entries.
type JournalWriter interface {
	// SaveEntry persists an entry header and all its lines atomically.
	SaveEntry(ctx context.Context, entry domain.JournalEntry) error

	// MarkEntryPosted flags an entry as posted.
	MarkEntryPosted(ctx context.Context, entryID string, userID string, now time.Time) error
}

// JournalRepositoryFacade combines all journal repository interfaces.
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
}
