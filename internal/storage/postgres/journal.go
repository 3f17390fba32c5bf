package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	pq "github.com/lib/pq"

	"github.com/julianstephens/mindbloom/internal/models"
	"github.com/julianstephens/mindbloom/internal/storage"
)

const journalColumns = "id::text, username, title, content, mood, tags, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJournalEntry(row rowScanner) (models.JournalEntry, error) {
	var e models.JournalEntry
	var mood string
	if err := row.Scan(&e.ID, &e.Username, &e.Title, &e.Content, &mood, pq.Array(&e.Tags), &e.CreatedAt, &e.UpdatedAt); err != nil {
		return models.JournalEntry{}, err
	}
	e.Mood = models.JournalMood(mood)
	if e.Tags == nil {
		e.Tags = []string{}
	}
	e.CreatedAt = e.CreatedAt.UTC()
	e.UpdatedAt = e.UpdatedAt.UTC()
	return e, nil
}

// validID filters out ids the uuid column would reject with a type error.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func (s *Store) InsertJournalEntry(ctx context.Context, e models.JournalEntry) (models.JournalEntry, error) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO journal_entries (id, username, title, content, mood, tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+journalColumns,
		e.ID, e.Username, e.Title, e.Content, string(e.Mood), pq.Array(nonNilTags(e.Tags)),
		e.CreatedAt.UTC(), e.UpdatedAt.UTC(),
	)
	return scanJournalEntry(row)
}

func (s *Store) QueryJournalEntries(ctx context.Context, q storage.JournalQuery) ([]models.JournalEntry, error) {
	if q.ID != "" && !validID(q.ID) {
		return []models.JournalEntry{}, nil
	}

	var args argList
	query := "SELECT " + journalColumns + " FROM journal_entries WHERE username = " + args.add(q.Owner)
	if q.ID != "" {
		query += " AND id = " + args.add(q.ID)
	}
	if q.Mood != "" {
		query += " AND mood = " + args.add(q.Mood)
	}
	if q.Term != "" {
		p := args.add(storage.ContainsPattern(q.Term))
		query += ` AND (title ILIKE ` + p + ` ESCAPE '\' OR content ILIKE ` + p + ` ESCAPE '\')`
	}
	query += " ORDER BY created_at DESC, id DESC"
	if q.Limit > 0 {
		query += " LIMIT " + args.add(q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args.values...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.JournalEntry{}
	for rows.Next() {
		e, err := scanJournalEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) UpdateJournalEntry(ctx context.Context, id, owner string, patch models.JournalPatch, updatedAt time.Time) (models.JournalEntry, error) {
	if !validID(id) {
		return models.JournalEntry{}, storage.ErrNotFound
	}

	var args argList
	sets := []string{"updated_at = " + args.add(updatedAt.UTC())}
	if patch.Title != nil {
		sets = append(sets, "title = "+args.add(*patch.Title))
	}
	if patch.Content != nil {
		sets = append(sets, "content = "+args.add(*patch.Content))
	}
	if patch.Mood != nil {
		sets = append(sets, "mood = "+args.add(string(*patch.Mood)))
	}
	if patch.Tags != nil {
		sets = append(sets, "tags = "+args.add(pq.Array(nonNilTags(*patch.Tags))))
	}

	query := "UPDATE journal_entries SET " + strings.Join(sets, ", ") +
		" WHERE id = " + args.add(id) + " AND username = " + args.add(owner) +
		" RETURNING " + journalColumns

	e, err := scanJournalEntry(s.db.QueryRowContext(ctx, query, args.values...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.JournalEntry{}, storage.ErrNotFound
	}
	return e, err
}

func (s *Store) DeleteJournalEntry(ctx context.Context, id, owner string) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	result, err := s.db.ExecContext(ctx, `DELETE FROM journal_entries WHERE id = $1 AND username = $2`, id, owner)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}
