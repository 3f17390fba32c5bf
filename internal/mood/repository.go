// Package mood is the owner-scoped repository for daily mood samples and the summaries
// computed over them.
package mood

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/julianstephens/mindbloom/internal/analytics"
	"github.com/julianstephens/mindbloom/internal/constants"
	apperrors "github.com/julianstephens/mindbloom/internal/errors"
	"github.com/julianstephens/mindbloom/internal/logger"
	"github.com/julianstephens/mindbloom/internal/models"
	"github.com/julianstephens/mindbloom/internal/storage"
	"github.com/julianstephens/mindbloom/internal/utils"
)

const resource = "mood entry"

// Repository records at most one mood sample per owner per calendar day.
type Repository struct {
	store  storage.Provider
	engine analytics.Engine
	now    func() time.Time
	loc    *time.Location
}

type Option func(*Repository)

// WithClock overrides the time source used for timestamps and "today".
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// WithLocation sets the time zone in which calendar days are computed.
func WithLocation(loc *time.Location) Option {
	return func(r *Repository) {
		if loc != nil {
			r.loc = loc
		}
	}
}

// WithEngine replaces the analytics options used by Stats and Week.
func WithEngine(e analytics.Engine) Option {
	return func(r *Repository) { r.engine = e }
}

func NewRepository(store storage.Provider, opts ...Option) *Repository {
	r := &Repository{
		store:  store,
		engine: analytics.NewEngine(analytics.DefaultOptions()),
		now:    time.Now,
		loc:    time.Local,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Today returns the current calendar date in the repository's time zone.
func (r *Repository) Today() string {
	return utils.DateOf(r.now().In(r.loc))
}

// UpsertForDate records the mood for owner on date, replacing any sample already logged
// for that day. An empty date means today. Blank notes are stored as null.
func (r *Repository) UpsertForDate(ctx context.Context, owner, date string, in models.MoodInput) (models.MoodEntry, error) {
	if err := requireOwner(owner); err != nil {
		return models.MoodEntry{}, err
	}
	if date == "" {
		date = r.Today()
	}
	if err := validateDate("date", date); err != nil {
		return models.MoodEntry{}, err
	}
	m, ok := models.LookupMood(in.MoodID)
	if !ok {
		return models.MoodEntry{}, apperrors.Validation("mood", "unknown mood %q", in.MoodID)
	}

	var notes *string
	if in.Notes != nil {
		if n := strings.TrimSpace(*in.Notes); n != "" {
			notes = &n
		}
	}

	now := r.now()
	saved, err := r.store.UpsertMoodEntry(ctx, models.MoodEntry{
		Username:  owner,
		MoodID:    m.ID,
		MoodName:  m.Name,
		MoodValue: m.Value,
		Notes:     notes,
		EntryDate: date,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return models.MoodEntry{}, classify("upsert", owner, date, err)
	}
	logger.Debug("Mood logged", "owner", owner, "date", date, "mood", m.ID)
	return saved, nil
}

// Delete removes a sample by id. It reports false without error when nothing matched.
func (r *Repository) Delete(ctx context.Context, id, owner string) (bool, error) {
	if err := requireOwner(owner); err != nil {
		return false, err
	}
	if strings.TrimSpace(id) == "" {
		return false, nil
	}
	ok, err := r.store.DeleteMoodEntry(ctx, id, owner)
	if err != nil {
		return false, classify("delete", owner, "", err)
	}
	if ok {
		logger.Debug("Mood entry deleted", "owner", owner, "id", id)
	}
	return ok, nil
}

// GetForDate returns the sample logged on date, if any. An empty date means today.
func (r *Repository) GetForDate(ctx context.Context, owner, date string) (models.MoodEntry, bool, error) {
	if date == "" {
		date = r.Today()
	}
	if err := validateDate("date", date); err != nil {
		return models.MoodEntry{}, false, err
	}
	entries, err := r.query(ctx, "get", storage.MoodQuery{Owner: owner, Date: date, Limit: 1})
	if err != nil {
		return models.MoodEntry{}, false, err
	}
	if len(entries) == 0 {
		return models.MoodEntry{}, false, nil
	}
	return entries[0], true, nil
}

// GetByID returns one sample, reporting NotFound when id is unknown or owned by someone else.
func (r *Repository) GetByID(ctx context.Context, id, owner string) (models.MoodEntry, error) {
	if strings.TrimSpace(id) == "" {
		return models.MoodEntry{}, apperrors.Validation("id", "must not be empty")
	}
	entries, err := r.query(ctx, "get", storage.MoodQuery{Owner: owner, ID: id, Limit: 1})
	if err != nil {
		return models.MoodEntry{}, err
	}
	if len(entries) == 0 {
		return models.MoodEntry{}, apperrors.NotFound(resource, id)
	}
	return entries[0], nil
}

// GetRange returns samples dated start through end inclusive, oldest first.
func (r *Repository) GetRange(ctx context.Context, owner, start, end string) ([]models.MoodEntry, error) {
	if err := validateDate("start", start); err != nil {
		return nil, err
	}
	if err := validateDate("end", end); err != nil {
		return nil, err
	}
	// YYYY-MM-DD compares chronologically as a string
	if start > end {
		return nil, apperrors.Validation("range", "start %s is after end %s", start, end)
	}
	return r.query(ctx, "range", storage.MoodQuery{Owner: owner, From: start, To: end, Ascending: true})
}

// GetAll returns every sample of owner, newest first.
func (r *Repository) GetAll(ctx context.Context, owner string) ([]models.MoodEntry, error) {
	return r.query(ctx, "list", storage.MoodQuery{Owner: owner})
}

// Stats summarizes the samples dated within the last days days up to and including today.
// days <= 0 uses the default window.
func (r *Repository) Stats(ctx context.Context, owner string, days int) (analytics.Summary, error) {
	if days <= 0 {
		days = constants.DefaultStatsDays
	}
	today := r.Today()
	start, err := utils.AddDays(today, -days)
	if err != nil {
		return analytics.Summary{}, err
	}
	samples, err := r.GetRange(ctx, owner, start, today)
	if err != nil {
		return analytics.Summary{}, err
	}
	return r.engine.Summarize(samples), nil
}

// Week summarizes the seven calendar days ending today.
func (r *Repository) Week(ctx context.Context, owner string) (analytics.Summary, error) {
	samples, err := r.WeekSamples(ctx, owner)
	if err != nil {
		return analytics.Summary{}, err
	}
	return r.engine.Summarize(samples), nil
}

// WeekSamples returns the samples of the seven calendar days ending today, oldest first.
func (r *Repository) WeekSamples(ctx context.Context, owner string) ([]models.MoodEntry, error) {
	today := r.Today()
	start, err := utils.AddDays(today, -(constants.WeekDays - 1))
	if err != nil {
		return nil, err
	}
	return r.GetRange(ctx, owner, start, today)
}

// Streak counts consecutive days ending today that have a sample.
func (r *Repository) Streak(ctx context.Context, owner string) (int, error) {
	samples, err := r.GetAll(ctx, owner)
	if err != nil {
		return 0, err
	}
	return analytics.Streak(samples, r.now().In(r.loc)), nil
}

// WeeklyAverages groups every sample of owner by ISO week.
func (r *Repository) WeeklyAverages(ctx context.Context, owner string) ([]analytics.WeeklyAverage, error) {
	samples, err := r.GetAll(ctx, owner)
	if err != nil {
		return nil, err
	}
	return analytics.WeeklyAverages(samples), nil
}

func (r *Repository) query(ctx context.Context, op string, q storage.MoodQuery) ([]models.MoodEntry, error) {
	if err := requireOwner(q.Owner); err != nil {
		return nil, err
	}
	entries, err := r.store.QueryMoodEntries(ctx, q)
	if err != nil {
		return nil, classify(op, q.Owner, q.Date, err)
	}
	return entries, nil
}

func requireOwner(owner string) error {
	if strings.TrimSpace(owner) == "" {
		return apperrors.Validation("owner", "must not be empty")
	}
	return nil
}

func validateDate(field, date string) error {
	if !utils.ValidateDateFormat(date) {
		return apperrors.Validation(field, "%q is not a YYYY-MM-DD date", date)
	}
	return nil
}

func classify(op, owner, date string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperrors.NotFound(resource, date)
	}
	logger.Warn("Mood store failure", "op", op, "owner", owner, "date", date, "error", err)
	return apperrors.Unavailable("mood "+op, err)
}
