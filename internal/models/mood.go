package models

import "time"

// Mood is one entry of the fixed mood lookup table
type Mood struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Value int    `json:"value"`
	Emoji string `json:"emoji"`
}

// Moods is the mood lookup table, ordered from most to least positive as presented to users.
var Moods = []Mood{
	{ID: "ecstatic", Name: "Ecstatic", Value: 5, Emoji: "🤩"},
	{ID: "happy", Name: "Happy", Value: 4, Emoji: "😊"},
	{ID: "content", Name: "Content", Value: 3, Emoji: "🙂"},
	{ID: "sad", Name: "Sad", Value: 2, Emoji: "😢"},
	{ID: "depressed", Name: "Depressed", Value: 1, Emoji: "😞"},
	{ID: "anxious", Name: "Anxious", Value: 2, Emoji: "😰"},
	{ID: "energetic", Name: "Energetic", Value: 4, Emoji: "⚡"},
	{ID: "calm", Name: "Calm", Value: 3, Emoji: "😌"},
}

const (
	MinMoodValue = 1
	MaxMoodValue = 5
)

// LookupMood returns the table entry for id.
func LookupMood(id string) (Mood, bool) {
	for _, m := range Moods {
		if m.ID == id {
			return m, true
		}
	}
	return Mood{}, false
}

// MoodEntry is a single per-day mood sample
type MoodEntry struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	MoodID    string    `json:"mood_id"`
	MoodName  string    `json:"mood_name"`
	MoodValue int       `json:"mood_value"`
	Notes     *string   `json:"notes"`
	EntryDate string    `json:"entry_date"` // YYYY-MM-DD format
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NotesText returns the notes or an empty string.
func (e MoodEntry) NotesText() string {
	if e.Notes == nil {
		return ""
	}
	return *e.Notes
}

// MoodInput is what a caller supplies when logging a mood. Name and value are always
// derived from MoodID.
type MoodInput struct {
	MoodID string
	Notes  *string
}
