// Package validation inspects stored records for integrity problems the stores cannot
// rule out on their own, such as rows written by older builds or edited by hand.
package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/julianstephens/mindbloom/internal/constants"
	"github.com/julianstephens/mindbloom/internal/models"
	"github.com/julianstephens/mindbloom/internal/utils"
)

// Conflict represents one integrity problem
type Conflict struct {
	Type        constants.ConflictType
	Description string
	Date        string   // YYYY-MM-DD format (if applicable)
	Items       []string // IDs of the records involved
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// Count returns the number of conflicts of type t.
func (vr *ValidationResult) Count(t constants.ConflictType) int {
	n := 0
	for _, c := range vr.Conflicts {
		if c.Type == t {
			n++
		}
	}
	return n
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, conflict := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", conflict.Description)
	}
	return b.String()
}

// Merge appends the conflicts of other.
func (vr *ValidationResult) Merge(other ValidationResult) {
	vr.Conflicts = append(vr.Conflicts, other.Conflicts...)
}

// Validator checks journal and mood records
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// ValidateMoodEntries checks mood samples against the lookup table and the one-per-day rule.
func (v *Validator) ValidateMoodEntries(entries []models.MoodEntry) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	type ownerDay struct{ owner, date string }
	days := make(map[ownerDay][]string)
	var order []ownerDay

	for _, e := range entries {
		if strings.TrimSpace(e.Username) == "" {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        constants.ConflictMissingOwner,
				Description: fmt.Sprintf("Mood entry %s has no owner", e.ID),
				Date:        e.EntryDate,
				Items:       []string{e.ID},
			})
		}

		if !utils.ValidateDateFormat(e.EntryDate) {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        constants.ConflictInvalidDate,
				Description: fmt.Sprintf("Mood entry %s has invalid entry_date: %q", e.ID, e.EntryDate),
				Items:       []string{e.ID},
			})
		} else {
			key := ownerDay{e.Username, e.EntryDate}
			if _, seen := days[key]; !seen {
				order = append(order, key)
			}
			days[key] = append(days[key], e.ID)
		}

		m, ok := models.LookupMood(e.MoodID)
		if !ok {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        constants.ConflictUnknownMood,
				Description: fmt.Sprintf("Mood entry %s on %s has unknown mood id %q", e.ID, e.EntryDate, e.MoodID),
				Date:        e.EntryDate,
				Items:       []string{e.ID},
			})
			continue
		}
		if m.Value != e.MoodValue || m.Name != e.MoodName {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type: constants.ConflictMoodValueMismatch,
				Description: fmt.Sprintf("Mood entry %s on %s stores %q/%d but %q is %q/%d",
					e.ID, e.EntryDate, e.MoodName, e.MoodValue, m.ID, m.Name, m.Value),
				Date:  e.EntryDate,
				Items: []string{e.ID},
			})
		}
	}

	for _, key := range order {
		ids := days[key]
		if len(ids) < 2 {
			continue
		}
		sort.Strings(ids)
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        constants.ConflictDuplicateMoodDay,
			Description: fmt.Sprintf("%d mood entries for %q on %s (IDs: %v)", len(ids), key.owner, key.date, ids),
			Date:        key.date,
			Items:       ids,
		})
	}

	return result
}

// ValidateJournalEntries checks journal entries for blank content, unknown moods and
// missing owners.
func (v *Validator) ValidateJournalEntries(entries []models.JournalEntry) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	for _, e := range entries {
		date := ""
		if !e.CreatedAt.IsZero() {
			date = utils.DateOf(e.CreatedAt)
		}

		if strings.TrimSpace(e.Username) == "" {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        constants.ConflictMissingOwner,
				Description: fmt.Sprintf("Journal entry %s has no owner", e.ID),
				Date:        date,
				Items:       []string{e.ID},
			})
		}
		if strings.TrimSpace(e.Content) == "" {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        constants.ConflictEmptyContent,
				Description: fmt.Sprintf("Journal entry %s (%q) has empty content", e.ID, e.Title),
				Date:        date,
				Items:       []string{e.ID},
			})
		}
		if !e.Mood.Valid() {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        constants.ConflictUnknownJournalMood,
				Description: fmt.Sprintf("Journal entry %s (%q) has unknown mood %q", e.ID, e.Title, e.Mood),
				Date:        date,
				Items:       []string{e.ID},
			})
		}
	}

	return result
}
