package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/julianstephens/mindbloom/internal/models"
	"github.com/julianstephens/mindbloom/internal/storage"
	"github.com/julianstephens/mindbloom/internal/utils"
)

const moodColumns = "id, username, mood_id, mood_name, mood_value, notes, entry_date, created_at, updated_at"

func scanMoodEntry(row rowScanner) (models.MoodEntry, error) {
	var e models.MoodEntry
	var notes sql.NullString
	var createdAt, updatedAt string

	if err := row.Scan(&e.ID, &e.Username, &e.MoodID, &e.MoodName, &e.MoodValue, &notes, &e.EntryDate, &createdAt, &updatedAt); err != nil {
		return models.MoodEntry{}, err
	}
	if notes.Valid {
		n := notes.String
		e.Notes = &n
	}

	var err error
	if e.CreatedAt, err = utils.ParseTimestamp(createdAt); err != nil {
		return models.MoodEntry{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if e.UpdatedAt, err = utils.ParseTimestamp(updatedAt); err != nil {
		return models.MoodEntry{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return e, nil
}

func (s *Store) UpsertMoodEntry(ctx context.Context, e models.MoodEntry) (models.MoodEntry, error) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	var notes sql.NullString
	if e.Notes != nil {
		notes = sql.NullString{String: *e.Notes, Valid: true}
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO mood_entries (`+moodColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(username, entry_date) DO UPDATE SET
			mood_id = excluded.mood_id,
			mood_name = excluded.mood_name,
			mood_value = excluded.mood_value,
			notes = excluded.notes,
			updated_at = excluded.updated_at
		RETURNING `+moodColumns,
		e.ID, e.Username, e.MoodID, e.MoodName, e.MoodValue, notes, e.EntryDate,
		utils.FormatTimestamp(e.CreatedAt), utils.FormatTimestamp(e.UpdatedAt),
	)
	return scanMoodEntry(row)
}

func (s *Store) QueryMoodEntries(ctx context.Context, q storage.MoodQuery) ([]models.MoodEntry, error) {
	query := "SELECT " + moodColumns + " FROM mood_entries WHERE username = ?"
	args := []any{q.Owner}

	if q.ID != "" {
		query += " AND id = ?"
		args = append(args, q.ID)
	}
	if q.Date != "" {
		query += " AND entry_date = ?"
		args = append(args, q.Date)
	}
	if q.From != "" {
		query += " AND entry_date >= ?"
		args = append(args, q.From)
	}
	if q.To != "" {
		query += " AND entry_date <= ?"
		args = append(args, q.To)
	}
	if q.Ascending {
		query += " ORDER BY entry_date ASC"
	} else {
		query += " ORDER BY entry_date DESC"
	}
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.MoodEntry{}
	for rows.Next() {
		e, err := scanMoodEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) DeleteMoodEntry(ctx context.Context, id, owner string) (bool, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM mood_entries WHERE id = ? AND username = ?", id, owner)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}
