// Package journal is the owner-scoped repository for journal entries.
package journal

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/julianstephens/mindbloom/internal/constants"
	apperrors "github.com/julianstephens/mindbloom/internal/errors"
	"github.com/julianstephens/mindbloom/internal/logger"
	"github.com/julianstephens/mindbloom/internal/models"
	"github.com/julianstephens/mindbloom/internal/storage"
)

const resource = "journal entry"

// Repository creates, reads, updates, deletes and searches journal entries. It keeps no
// state between calls and is safe for concurrent use.
type Repository struct {
	store storage.Provider
	now   func() time.Time
	loc   *time.Location
}

// Option configures a Repository
type Option func(*Repository)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// WithLocation sets the time zone used to format default titles.
func WithLocation(loc *time.Location) Option {
	return func(r *Repository) {
		if loc != nil {
			r.loc = loc
		}
	}
}

func NewRepository(store storage.Provider, opts ...Option) *Repository {
	r := &Repository{
		store: store,
		now:   time.Now,
		loc:   time.Local,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create stores a new entry for owner and returns it with its generated id.
func (r *Repository) Create(ctx context.Context, owner string, in models.NewJournalEntry) (models.JournalEntry, error) {
	if err := requireOwner(owner); err != nil {
		return models.JournalEntry{}, err
	}
	if strings.TrimSpace(in.Content) == "" {
		return models.JournalEntry{}, apperrors.Validation("content", "must not be empty")
	}
	mood, err := normalizeMood(in.Mood)
	if err != nil {
		return models.JournalEntry{}, err
	}

	now := r.now()
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = constants.DefaultTitlePrefix + now.In(r.loc).Format(constants.TitleDateFormat)
	}

	created, err := r.store.InsertJournalEntry(ctx, models.JournalEntry{
		Username:  owner,
		Title:     title,
		Content:   in.Content,
		Mood:      mood,
		Tags:      NormalizeTags(in.Tags),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return models.JournalEntry{}, classify("create", owner, "", err)
	}
	logger.Debug("Journal entry created", "owner", owner, "id", created.ID)
	return created, nil
}

// List returns every entry of owner, newest first.
func (r *Repository) List(ctx context.Context, owner string) ([]models.JournalEntry, error) {
	return r.query(ctx, "list", storage.JournalQuery{Owner: owner})
}

// Get returns one entry. An id owned by someone else is reported as not found.
func (r *Repository) Get(ctx context.Context, id, owner string) (models.JournalEntry, error) {
	if err := requireID(id); err != nil {
		return models.JournalEntry{}, err
	}
	entries, err := r.query(ctx, "get", storage.JournalQuery{Owner: owner, ID: id, Limit: 1})
	if err != nil {
		return models.JournalEntry{}, err
	}
	if len(entries) == 0 {
		return models.JournalEntry{}, apperrors.NotFound(resource, id)
	}
	return entries[0], nil
}

// Update applies the supplied patch fields and refreshes updated_at.
func (r *Repository) Update(ctx context.Context, id, owner string, patch models.JournalPatch) (models.JournalEntry, error) {
	if err := requireOwner(owner); err != nil {
		return models.JournalEntry{}, err
	}
	if err := requireID(id); err != nil {
		return models.JournalEntry{}, err
	}

	if patch.Title != nil {
		t := strings.TrimSpace(*patch.Title)
		patch.Title = &t
	}
	if patch.Content != nil && strings.TrimSpace(*patch.Content) == "" {
		return models.JournalEntry{}, apperrors.Validation("content", "must not be empty")
	}
	if patch.Mood != nil {
		if !patch.Mood.Valid() {
			return models.JournalEntry{}, apperrors.Validation("mood", "unknown mood %q", *patch.Mood)
		}
	}
	if patch.Tags != nil {
		tags := NormalizeTags(*patch.Tags)
		patch.Tags = &tags
	}

	updated, err := r.store.UpdateJournalEntry(ctx, id, owner, patch, r.now())
	if err != nil {
		return models.JournalEntry{}, classify("update", owner, id, err)
	}
	logger.Debug("Journal entry updated", "owner", owner, "id", id)
	return updated, nil
}

// Delete removes an entry. It reports false without error when nothing matched.
func (r *Repository) Delete(ctx context.Context, id, owner string) (bool, error) {
	if err := requireOwner(owner); err != nil {
		return false, err
	}
	if strings.TrimSpace(id) == "" {
		return false, nil
	}
	ok, err := r.store.DeleteJournalEntry(ctx, id, owner)
	if err != nil {
		return false, classify("delete", owner, id, err)
	}
	if ok {
		logger.Debug("Journal entry deleted", "owner", owner, "id", id)
	}
	return ok, nil
}

// Search returns entries whose title or content contains term, ignoring case, newest
// first. A blank term lists everything.
func (r *Repository) Search(ctx context.Context, owner, term string) ([]models.JournalEntry, error) {
	if strings.TrimSpace(term) == "" {
		return r.List(ctx, owner)
	}
	return r.query(ctx, "search", storage.JournalQuery{Owner: owner, Term: term})
}

// FilterByMood returns entries tagged with mood, newest first. An empty mood lists everything.
func (r *Repository) FilterByMood(ctx context.Context, owner string, mood models.JournalMood) ([]models.JournalEntry, error) {
	if mood == "" {
		return r.List(ctx, owner)
	}
	if !mood.Valid() {
		return nil, apperrors.Validation("mood", "unknown mood %q", mood)
	}
	return r.query(ctx, "filter", storage.JournalQuery{Owner: owner, Mood: string(mood)})
}

func (r *Repository) query(ctx context.Context, op string, q storage.JournalQuery) ([]models.JournalEntry, error) {
	if err := requireOwner(q.Owner); err != nil {
		return nil, err
	}
	entries, err := r.store.QueryJournalEntries(ctx, q)
	if err != nil {
		return nil, classify(op, q.Owner, q.ID, err)
	}
	return entries, nil
}

func requireOwner(owner string) error {
	if strings.TrimSpace(owner) == "" {
		return apperrors.Validation("owner", "must not be empty")
	}
	return nil
}

func requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return apperrors.Validation("id", "must not be empty")
	}
	return nil
}

func normalizeMood(m models.JournalMood) (models.JournalMood, error) {
	if m == "" {
		return constants.DefaultJournalMood, nil
	}
	if !m.Valid() {
		return "", apperrors.Validation("mood", "unknown mood %q", m)
	}
	return m, nil
}

// classify maps provider errors onto the repository taxonomy.
func classify(op, owner, id string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperrors.NotFound(resource, id)
	}
	logger.Warn("Journal store failure", "op", op, "owner", owner, "error", err)
	return apperrors.Unavailable("journal "+op, err)
}
