package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/mindbloom/internal/analytics"
	"github.com/julianstephens/mindbloom/internal/models"
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Italic(true)

	DangerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	barStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("111"))
)

// WriteJSON prints v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ShortID trims a uuid to its first block for list output.
func ShortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}

// JournalLine is the one-line list form of an entry.
func JournalLine(e models.JournalEntry, loc *time.Location) string {
	return fmt.Sprintf("%s  %s  %-10s %s",
		MutedStyle.Render(ShortID(e.ID)),
		e.CreatedAt.In(loc).Format("2006-01-02 15:04"),
		string(e.Mood),
		e.Title,
	)
}

// JournalDetail renders a full entry.
func JournalDetail(e models.JournalEntry, loc *time.Location) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(e.Title) + "\n")
	fmt.Fprintf(&b, "%s\n", MutedStyle.Render(fmt.Sprintf("id %s · %s · mood %s · tags %s",
		e.ID, e.CreatedAt.In(loc).Format("2006-01-02 15:04"), e.Mood, strings.Join(e.Tags, ", "))))
	if !e.UpdatedAt.Equal(e.CreatedAt) {
		fmt.Fprintf(&b, "%s\n", MutedStyle.Render("edited "+e.UpdatedAt.In(loc).Format("2006-01-02 15:04")))
	}
	b.WriteString("\n" + e.Content + "\n")
	return b.String()
}

// MoodLine is the one-line form of a mood sample.
func MoodLine(e models.MoodEntry) string {
	emoji := ""
	if m, ok := models.LookupMood(e.MoodID); ok {
		emoji = m.Emoji
	}
	line := fmt.Sprintf("%s  %s %-10s %s", e.EntryDate, emoji, e.MoodName, ValueBar(e.MoodValue))
	if n := e.NotesText(); n != "" {
		line += "  " + MutedStyle.Render(n)
	}
	return line
}

// ValueBar draws a mood value as filled and empty blocks.
func ValueBar(v int) string {
	if v < models.MinMoodValue {
		v = models.MinMoodValue
	}
	if v > models.MaxMoodValue {
		v = models.MaxMoodValue
	}
	return barStyle.Render(strings.Repeat("█", v)) + MutedStyle.Render(strings.Repeat("░", models.MaxMoodValue-v))
}

// TrendLabel colors a trend for display.
func TrendLabel(t analytics.Trend) string {
	switch t {
	case analytics.TrendImproving:
		return SuccessStyle.Render("↑ improving")
	case analytics.TrendDeclining:
		return DangerStyle.Render("↓ declining")
	default:
		return MutedStyle.Render("→ stable")
	}
}

// SummaryBlock renders the headline numbers of a summary.
func SummaryBlock(title string, s analytics.Summary) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(title) + "\n")
	if s.TotalEntries == 0 {
		b.WriteString(MutedStyle.Render("No mood entries in this window.") + "\n")
		return b.String()
	}
	fmt.Fprintf(&b, "  Entries:      %d\n", s.TotalEntries)
	fmt.Fprintf(&b, "  Average:      %.1f\n", s.Average)
	fmt.Fprintf(&b, "  Trend:        %s\n", TrendLabel(s.Trend))
	if m, ok := models.LookupMood(s.MostCommonMood); ok {
		fmt.Fprintf(&b, "  Most common:  %s %s\n", m.Emoji, m.Name)
	} else {
		fmt.Fprintf(&b, "  Most common:  %s\n", s.MostCommonMood)
	}
	return b.String()
}
