package storage

import (
	"context"
	"errors"
	"time"

	"github.com/julianstephens/mindbloom/internal/models"
)

// ErrNotFound is returned by providers when an owner-scoped lookup or update matches no row.
var ErrNotFound = errors.New("record not found")

// Provider is the record store behind the journal and mood repositories. Every read and
// write is scoped by owner; a row belonging to another owner behaves as if absent.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error
	GetConfigPath() string

	// Journal entries
	InsertJournalEntry(ctx context.Context, e models.JournalEntry) (models.JournalEntry, error)
	// QueryJournalEntries returns matching entries newest created_at first.
	QueryJournalEntries(ctx context.Context, q JournalQuery) ([]models.JournalEntry, error)
	// UpdateJournalEntry applies the non-nil patch fields and sets updated_at. Returns
	// ErrNotFound when no row matches (id, owner).
	UpdateJournalEntry(ctx context.Context, id, owner string, patch models.JournalPatch, updatedAt time.Time) (models.JournalEntry, error)
	// DeleteJournalEntry reports whether a row was removed.
	DeleteJournalEntry(ctx context.Context, id, owner string) (bool, error)

	// Mood entries
	// UpsertMoodEntry inserts the sample or, when (owner, entry_date) already exists,
	// overwrites its mood fields, notes and updated_at in one atomic statement. The
	// existing id and created_at are kept.
	UpsertMoodEntry(ctx context.Context, e models.MoodEntry) (models.MoodEntry, error)
	// QueryMoodEntries returns matching samples ordered by entry_date.
	QueryMoodEntries(ctx context.Context, q MoodQuery) ([]models.MoodEntry, error)
	DeleteMoodEntry(ctx context.Context, id, owner string) (bool, error)
}

// Migrator is implemented by providers that manage their own SQL schema.
type Migrator interface {
	Migrate(ctx context.Context, logFn func(string)) (int, error)
	// SchemaVersion returns the applied and the newest known schema versions.
	SchemaVersion(ctx context.Context) (current, latest int, err error)
}
