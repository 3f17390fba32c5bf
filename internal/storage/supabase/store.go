package supabase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/julianstephens/mindbloom/internal/constants"
	"github.com/julianstephens/mindbloom/internal/models"
	"github.com/julianstephens/mindbloom/internal/storage"
)

const (
	// codeNoRows is returned for Single() requests that match zero rows.
	codeNoRows = "PGRST116"
	// codeInvalidText is Postgres' invalid_text_representation, e.g. a malformed uuid.
	codeInvalidText = "22P02"
	// codeUndefinedTable is Postgres' undefined_table.
	codeUndefinedTable = "42P01"
	// codeSchemaCache is PostgREST's "relation not in schema cache".
	codeSchemaCache = "PGRST205"
)

// Store reads and writes the journal_entries and mood_entries tables of a Supabase project.
type Store struct {
	cfg    Config
	client *Client
}

func NewStore(cfg Config) *Store {
	return &Store{cfg: cfg}
}

// Init connects and checks that both tables are reachable. The schema itself is managed
// in the Supabase project (see migrations/postgres).
func (s *Store) Init() error {
	if err := s.Load(); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultHTTPTimeout)
	defer cancel()

	for _, table := range []string{constants.JournalTable, constants.MoodTable} {
		resp, err := s.client.From(table).Select("id").Limit(1).Execute(ctx)
		if err != nil {
			return fmt.Errorf("failed to reach %s: %w", table, err)
		}
		if err := resp.Error(); err != nil {
			var apiErr *APIError
			if errors.As(err, &apiErr) && (apiErr.Code == codeUndefinedTable || apiErr.Code == codeSchemaCache) {
				return fmt.Errorf("table %s is missing; apply migrations/postgres in the Supabase SQL editor: %w", table, err)
			}
			return fmt.Errorf("failed to reach %s: %w", table, err)
		}
	}
	return nil
}

func (s *Store) Load() error {
	if s.client != nil {
		return nil
	}
	client, err := NewClient(s.cfg)
	if err != nil {
		return err
	}
	s.client = client
	return nil
}

func (s *Store) Close() error {
	if s.client != nil {
		s.client.httpClient.CloseIdleConnections()
	}
	return nil
}

// GetConfigPath returns the project host without credentials.
func (s *Store) GetConfigPath() string {
	if u, err := url.Parse(s.cfg.URL); err == nil && u.Host != "" {
		return "supabase://" + u.Host
	}
	return "supabase"
}

// isInvalidInput reports PostgREST rejecting a filter value, which for id filters means
// no row can match.
func isInvalidInput(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == codeInvalidText
}

func (s *Store) execute(ctx context.Context, q *QueryBuilder, out any) error {
	resp, err := q.Execute(ctx)
	if err != nil {
		return err
	}
	if err := resp.Error(); err != nil {
		return err
	}
	return resp.JSON(out)
}

// journalRow is the wire shape of journal_entries. The id is omitted on insert so the
// column default generates it.
type journalRow struct {
	ID        string    `json:"id,omitempty"`
	Username  string    `json:"username"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Mood      string    `json:"mood"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r journalRow) model() models.JournalEntry {
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	return models.JournalEntry{
		ID:        r.ID,
		Username:  r.Username,
		Title:     r.Title,
		Content:   r.Content,
		Mood:      models.JournalMood(r.Mood),
		Tags:      tags,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

func journalModels(rows []journalRow) []models.JournalEntry {
	out := make([]models.JournalEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model())
	}
	return out
}

func (s *Store) InsertJournalEntry(ctx context.Context, e models.JournalEntry) (models.JournalEntry, error) {
	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}
	row := journalRow{
		ID:        e.ID,
		Username:  e.Username,
		Title:     e.Title,
		Content:   e.Content,
		Mood:      string(e.Mood),
		Tags:      tags,
		CreatedAt: e.CreatedAt.UTC(),
		UpdatedAt: e.UpdatedAt.UTC(),
	}

	resp, err := s.client.From(constants.JournalTable).ExecuteInsert(ctx, row)
	if err != nil {
		return models.JournalEntry{}, err
	}
	if err := resp.Error(); err != nil {
		return models.JournalEntry{}, err
	}
	var rows []journalRow
	if err := resp.JSON(&rows); err != nil {
		return models.JournalEntry{}, fmt.Errorf("decode inserted entry: %w", err)
	}
	if len(rows) != 1 {
		return models.JournalEntry{}, fmt.Errorf("insert returned %d rows", len(rows))
	}
	return rows[0].model(), nil
}

func (s *Store) QueryJournalEntries(ctx context.Context, q storage.JournalQuery) ([]models.JournalEntry, error) {
	qb := s.client.From(constants.JournalTable).Select("*").Eq("username", q.Owner)
	if q.ID != "" {
		qb.Eq("id", q.ID)
	}
	if q.Mood != "" {
		qb.Eq("mood", q.Mood)
	}
	if q.Term != "" {
		pattern := quote(storage.ContainsPattern(q.Term))
		qb.Or("title.ilike."+pattern, "content.ilike."+pattern)
	}
	qb.Order("created_at", false).Order("id", false).Limit(q.Limit)

	var rows []journalRow
	if err := s.execute(ctx, qb, &rows); err != nil {
		if q.ID != "" && isInvalidInput(err) {
			return []models.JournalEntry{}, nil
		}
		return nil, err
	}
	return journalModels(rows), nil
}

func (s *Store) UpdateJournalEntry(ctx context.Context, id, owner string, patch models.JournalPatch, updatedAt time.Time) (models.JournalEntry, error) {
	body := map[string]any{"updated_at": updatedAt.UTC()}
	if patch.Title != nil {
		body["title"] = *patch.Title
	}
	if patch.Content != nil {
		body["content"] = *patch.Content
	}
	if patch.Mood != nil {
		body["mood"] = string(*patch.Mood)
	}
	if patch.Tags != nil {
		tags := *patch.Tags
		if tags == nil {
			tags = []string{}
		}
		body["tags"] = tags
	}

	resp, err := s.client.From(constants.JournalTable).Eq("id", id).Eq("username", owner).ExecuteUpdate(ctx, body)
	if err != nil {
		return models.JournalEntry{}, err
	}
	if err := resp.Error(); err != nil {
		if isInvalidInput(err) {
			return models.JournalEntry{}, storage.ErrNotFound
		}
		return models.JournalEntry{}, err
	}
	var rows []journalRow
	if err := resp.JSON(&rows); err != nil {
		return models.JournalEntry{}, fmt.Errorf("decode updated entry: %w", err)
	}
	if len(rows) == 0 {
		return models.JournalEntry{}, storage.ErrNotFound
	}
	return rows[0].model(), nil
}

func (s *Store) deleteRows(ctx context.Context, table, id, owner string) (bool, error) {
	resp, err := s.client.From(table).Select("id").Eq("id", id).Eq("username", owner).ExecuteDelete(ctx)
	if err != nil {
		return false, err
	}
	if err := resp.Error(); err != nil {
		if isInvalidInput(err) {
			return false, nil
		}
		return false, err
	}
	var rows []struct {
		ID string `json:"id"`
	}
	if resp.StatusCode == http.StatusNoContent || len(resp.Body) == 0 {
		return false, nil
	}
	if err := resp.JSON(&rows); err != nil {
		return false, fmt.Errorf("decode deleted rows: %w", err)
	}
	return len(rows) > 0, nil
}

func (s *Store) DeleteJournalEntry(ctx context.Context, id, owner string) (bool, error) {
	return s.deleteRows(ctx, constants.JournalTable, id, owner)
}

// moodRow is the wire shape of mood_entries. id and created_at are never sent on upsert
// so a merge keeps the stored values.
type moodRow struct {
	ID        string     `json:"id,omitempty"`
	Username  string     `json:"username"`
	MoodID    string     `json:"mood_id"`
	MoodName  string     `json:"mood_name"`
	MoodValue int        `json:"mood_value"`
	Notes     *string    `json:"notes"`
	EntryDate string     `json:"entry_date"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (r moodRow) model() models.MoodEntry {
	e := models.MoodEntry{
		ID:        r.ID,
		Username:  r.Username,
		MoodID:    r.MoodID,
		MoodName:  r.MoodName,
		MoodValue: r.MoodValue,
		Notes:     r.Notes,
		EntryDate: r.EntryDate,
		UpdatedAt: r.UpdatedAt.UTC(),
	}
	if r.CreatedAt != nil {
		e.CreatedAt = r.CreatedAt.UTC()
	}
	return e
}

func (s *Store) UpsertMoodEntry(ctx context.Context, e models.MoodEntry) (models.MoodEntry, error) {
	row := moodRow{
		Username:  e.Username,
		MoodID:    e.MoodID,
		MoodName:  e.MoodName,
		MoodValue: e.MoodValue,
		Notes:     e.Notes,
		EntryDate: e.EntryDate,
		UpdatedAt: e.UpdatedAt.UTC(),
	}

	resp, err := s.client.From(constants.MoodTable).OnConflict("username,entry_date").ExecuteInsert(ctx, row)
	if err != nil {
		return models.MoodEntry{}, err
	}
	if err := resp.Error(); err != nil {
		return models.MoodEntry{}, err
	}
	var rows []moodRow
	if err := resp.JSON(&rows); err != nil {
		return models.MoodEntry{}, fmt.Errorf("decode upserted mood: %w", err)
	}
	if len(rows) != 1 {
		return models.MoodEntry{}, fmt.Errorf("upsert returned %d rows", len(rows))
	}
	return rows[0].model(), nil
}

func (s *Store) QueryMoodEntries(ctx context.Context, q storage.MoodQuery) ([]models.MoodEntry, error) {
	qb := s.client.From(constants.MoodTable).Select("*").Eq("username", q.Owner)
	if q.ID != "" {
		qb.Eq("id", q.ID)
	}
	if q.Date != "" {
		qb.Eq("entry_date", q.Date)
	}
	if q.From != "" {
		qb.Gte("entry_date", q.From)
	}
	if q.To != "" {
		qb.Lte("entry_date", q.To)
	}
	qb.Order("entry_date", q.Ascending).Limit(q.Limit)

	var rows []moodRow
	if err := s.execute(ctx, qb, &rows); err != nil {
		if q.ID != "" && isInvalidInput(err) {
			return []models.MoodEntry{}, nil
		}
		return nil, err
	}
	out := make([]models.MoodEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model())
	}
	return out, nil
}

func (s *Store) DeleteMoodEntry(ctx context.Context, id, owner string) (bool, error) {
	return s.deleteRows(ctx, constants.MoodTable, id, owner)
}
