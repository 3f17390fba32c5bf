package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/mindbloom/internal/models"
	"github.com/julianstephens/mindbloom/internal/storage"
	"github.com/julianstephens/mindbloom/internal/utils"
)

const journalColumns = "id, username, title, content, mood, tags, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJournalEntry(row rowScanner) (models.JournalEntry, error) {
	var e models.JournalEntry
	var mood, tagsJSON, createdAt, updatedAt string

	if err := row.Scan(&e.ID, &e.Username, &e.Title, &e.Content, &mood, &tagsJSON, &createdAt, &updatedAt); err != nil {
		return models.JournalEntry{}, err
	}
	e.Mood = models.JournalMood(mood)

	if err := json.Unmarshal([]byte(tagsJSON), &e.Tags); err != nil {
		return models.JournalEntry{}, fmt.Errorf("failed to parse tags: %w", err)
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}

	var err error
	if e.CreatedAt, err = utils.ParseTimestamp(createdAt); err != nil {
		return models.JournalEntry{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if e.UpdatedAt, err = utils.ParseTimestamp(updatedAt); err != nil {
		return models.JournalEntry{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return e, nil
}

func marshalTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("failed to encode tags: %w", err)
	}
	return string(b), nil
}

func (s *Store) InsertJournalEntry(ctx context.Context, e models.JournalEntry) (models.JournalEntry, error) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	tagsJSON, err := marshalTags(e.Tags)
	if err != nil {
		return models.JournalEntry{}, err
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO journal_entries (`+journalColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+journalColumns,
		e.ID, e.Username, e.Title, e.Content, string(e.Mood), tagsJSON,
		utils.FormatTimestamp(e.CreatedAt), utils.FormatTimestamp(e.UpdatedAt),
	)
	return scanJournalEntry(row)
}

func (s *Store) QueryJournalEntries(ctx context.Context, q storage.JournalQuery) ([]models.JournalEntry, error) {
	query := "SELECT " + journalColumns + " FROM journal_entries WHERE username = ?"
	args := []any{q.Owner}

	if q.ID != "" {
		query += " AND id = ?"
		args = append(args, q.ID)
	}
	if q.Mood != "" {
		query += " AND mood = ?"
		args = append(args, q.Mood)
	}
	if q.Term != "" {
		query += ` AND (` + foldFunc + `(title) LIKE ` + foldFunc + `(?) ESCAPE '\'` +
			` OR ` + foldFunc + `(content) LIKE ` + foldFunc + `(?) ESCAPE '\')`
		pattern := storage.ContainsPattern(q.Term)
		args = append(args, pattern, pattern)
	}
	query += " ORDER BY created_at DESC, rowid DESC"
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
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
	sets := []string{"updated_at = ?"}
	args := []any{utils.FormatTimestamp(updatedAt)}

	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Content != nil {
		sets = append(sets, "content = ?")
		args = append(args, *patch.Content)
	}
	if patch.Mood != nil {
		sets = append(sets, "mood = ?")
		args = append(args, string(*patch.Mood))
	}
	if patch.Tags != nil {
		tagsJSON, err := marshalTags(*patch.Tags)
		if err != nil {
			return models.JournalEntry{}, err
		}
		sets = append(sets, "tags = ?")
		args = append(args, tagsJSON)
	}
	args = append(args, id, owner)

	row := s.db.QueryRowContext(ctx,
		"UPDATE journal_entries SET "+strings.Join(sets, ", ")+
			" WHERE id = ? AND username = ? RETURNING "+journalColumns,
		args...,
	)
	e, err := scanJournalEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.JournalEntry{}, storage.ErrNotFound
	}
	return e, err
}

func (s *Store) DeleteJournalEntry(ctx context.Context, id, owner string) (bool, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM journal_entries WHERE id = ? AND username = ?", id, owner)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}
