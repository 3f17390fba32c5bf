package storage

import "strings"

// JournalQuery selects journal entries for one owner. Empty fields do not filter.
type JournalQuery struct {
	Owner string
	ID    string
	Mood  string
	// Term is matched case-insensitively as a literal substring of title or content.
	Term  string
	Limit int
}

// MoodQuery selects mood samples for one owner. Date bounds are inclusive YYYY-MM-DD strings.
type MoodQuery struct {
	Owner     string
	ID        string
	Date      string
	From      string
	To        string
	Ascending bool
	Limit     int
}

// EscapeLike escapes LIKE/ILIKE metacharacters so term matches literally under ESCAPE '\'.
func EscapeLike(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(term)
}

// ContainsPattern builds a "%term%" pattern with the term escaped.
func ContainsPattern(term string) string {
	return "%" + EscapeLike(term) + "%"
}
