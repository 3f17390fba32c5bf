package models

import "time"

// JournalMood is the categorical label attached to a journal entry
type JournalMood string

const (
	JournalMoodHappy      JournalMood = "happy"
	JournalMoodCalm       JournalMood = "calm"
	JournalMoodAnxious    JournalMood = "anxious"
	JournalMoodSad        JournalMood = "sad"
	JournalMoodEnergetic  JournalMood = "energetic"
	JournalMoodReflective JournalMood = "reflective"
	JournalMoodGrateful   JournalMood = "grateful"
)

// JournalMoods lists every accepted journal mood label in display order.
var JournalMoods = []JournalMood{
	JournalMoodHappy,
	JournalMoodCalm,
	JournalMoodAnxious,
	JournalMoodSad,
	JournalMoodEnergetic,
	JournalMoodReflective,
	JournalMoodGrateful,
}

// Valid reports whether m is one of the known journal mood labels.
func (m JournalMood) Valid() bool {
	for _, known := range JournalMoods {
		if m == known {
			return true
		}
	}
	return false
}

type JournalEntry struct {
	ID        string      `json:"id"`
	Username  string      `json:"username"`
	Title     string      `json:"title"`
	Content   string      `json:"content"`
	Mood      JournalMood `json:"mood"`
	Tags      []string    `json:"tags"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// NewJournalEntry carries caller-supplied fields for a new entry. Zero values select defaults.
type NewJournalEntry struct {
	Title   string
	Content string
	Mood    JournalMood
	Tags    []string
}

// JournalPatch holds the fields to change on an existing entry. Nil fields are left untouched.
type JournalPatch struct {
	Title   *string
	Content *string
	Mood    *JournalMood
	Tags    *[]string
}

// Empty reports whether the patch changes nothing.
func (p JournalPatch) Empty() bool {
	return p.Title == nil && p.Content == nil && p.Mood == nil && p.Tags == nil
}
