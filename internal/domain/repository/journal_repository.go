package repository

import (
	"context"

	"github.com/YoshitsuguKoike/rljournal/internal/domain/model/journal"
)

// JournalRepository manages persistence of one journal document per run id.
// Every Save replaces the whole document.
type JournalRepository interface {
	// Load reads and parses the journal for id.
	// Returns journal.ErrJournalNotFound or journal.ErrJournalUnreadable.
	Load(ctx context.Context, id string) (*journal.Journal, error)

	// Save serializes the whole journal and atomically replaces the stored one.
	// Returns journal.ErrPersistFailure on write errors.
	Save(ctx context.Context, id string, j *journal.Journal) error

	// Path returns the canonical document location for id
	Path(id string) (string, error)
}
