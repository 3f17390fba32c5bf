package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/julianstephens/mindbloom/internal/models"
	"github.com/julianstephens/mindbloom/internal/storage"
)

const moodColumns = "id::text, username, mood_id, mood_name, mood_value, notes, entry_date::text, created_at, updated_at"

func scanMoodEntry(row rowScanner) (models.MoodEntry, error) {
	var e models.MoodEntry
	var notes sql.NullString
	if err := row.Scan(&e.ID, &e.Username, &e.MoodID, &e.MoodName, &e.MoodValue, &notes, &e.EntryDate, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return models.MoodEntry{}, err
	}
	if notes.Valid {
		n := notes.String
		e.Notes = &n
	}
	e.CreatedAt = e.CreatedAt.UTC()
	e.UpdatedAt = e.UpdatedAt.UTC()
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
		INSERT INTO mood_entries (id, username, mood_id, mood_name, mood_value, notes, entry_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (username, entry_date) DO UPDATE SET
			mood_id = EXCLUDED.mood_id,
			mood_name = EXCLUDED.mood_name,
			mood_value = EXCLUDED.mood_value,
			notes = EXCLUDED.notes,
			updated_at = EXCLUDED.updated_at
		RETURNING `+moodColumns,
		e.ID, e.Username, e.MoodID, e.MoodName, e.MoodValue, notes, e.EntryDate,
		e.CreatedAt.UTC(), e.UpdatedAt.UTC(),
	)
	return scanMoodEntry(row)
}

func (s *Store) QueryMoodEntries(ctx context.Context, q storage.MoodQuery) ([]models.MoodEntry, error) {
	if q.ID != "" && !validID(q.ID) {
		return []models.MoodEntry{}, nil
	}

	var args argList
	query := "SELECT " + moodColumns + " FROM mood_entries WHERE username = " + args.add(q.Owner)
	if q.ID != "" {
		query += " AND id = " + args.add(q.ID)
	}
	if q.Date != "" {
		query += " AND entry_date = " + args.add(q.Date)
	}
	if q.From != "" {
		query += " AND entry_date >= " + args.add(q.From)
	}
	if q.To != "" {
		query += " AND entry_date <= " + args.add(q.To)
	}
	if q.Ascending {
		query += " ORDER BY entry_date ASC"
	} else {
		query += " ORDER BY entry_date DESC"
	}
	if q.Limit > 0 {
		query += " LIMIT " + args.add(q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args.values...)
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
	if !validID(id) {
		return false, nil
	}
	result, err := s.db.ExecContext(ctx, `DELETE FROM mood_entries WHERE id = $1 AND username = $2`, id, owner)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}
