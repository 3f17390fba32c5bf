package constants

import "time"

// ConflictType represents the type of integrity problem found in stored data
type ConflictType string

// SessionState represents the current view of the TUI application
type SessionState int

const (
	AppName            = "mindbloom"
	DefaultKeyringUser = "database-connection"
	APIKeyKeyringUser  = "supabase-api-key"
	DefaultConfigPath  = "~/.config/mindbloom/mindbloom.db"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimestampFormat is a fixed-width UTC layout so stored timestamps sort lexicographically
	TimestampFormat = "2006-01-02T15:04:05.000000Z07:00"

	// TitleDateFormat is used for default journal titles ("January 2, 2006")
	TitleDateFormat = "January 2, 2006"

	// Journal defaults
	DefaultJournalMood    = "reflective"
	DefaultJournalTag     = "daily-thoughts"
	DefaultTitlePrefix    = "Journal Entry - "
	DefaultStatsDays      = 30
	WeekDays              = 7
	DefaultTrendThreshold = 0.3

	// Table names
	JournalTable = "journal_entries"
	MoodTable    = "mood_entries"

	// Remote store constants
	DefaultHTTPTimeout  = 30 * time.Second
	DefaultRequestRate  = 10
	DefaultRequestBurst = 20

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "mindbloom-"
	BackupFileSuffix = ".db"

	// Conflict Types
	ConflictDuplicateMoodDay   ConflictType = "duplicate_mood_day"
	ConflictUnknownMood        ConflictType = "unknown_mood"
	ConflictMoodValueMismatch  ConflictType = "mood_value_mismatch"
	ConflictInvalidDate        ConflictType = "invalid_date"
	ConflictEmptyContent       ConflictType = "empty_content"
	ConflictUnknownJournalMood ConflictType = "unknown_journal_mood"
	ConflictMissingOwner       ConflictType = "missing_owner"
)

// Session States
const (
	StateJournal SessionState = iota
	StateMood
	StateStats
	StateWriting
	StateLogging
	StateReading
	StateConfirmDelete
)

// TabCount is the number of top-level TUI tabs; the states after them are overlays.
const TabCount = 3
