package moodweek

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/mindbloom/internal/analytics"
	"github.com/julianstephens/mindbloom/internal/models"
	"github.com/julianstephens/mindbloom/internal/utils"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	dayStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(12)

	moodStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

// Model shows the last seven days, one row per day, with the week's summary underneath.
type Model struct {
	viewport viewport.Model
	Today    string
	Samples  map[string]models.MoodEntry
	Summary  analytics.Summary
	width    int
	height   int
}

func New(width, height int) Model {
	return Model{
		viewport: viewport.New(width, height),
		Samples:  make(map[string]models.MoodEntry),
		width:    width,
		height:   height,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) SetWeek(today string, samples []models.MoodEntry, summary analytics.Summary) {
	m.Today = today
	m.Samples = make(map[string]models.MoodEntry, len(samples))
	for _, s := range samples {
		m.Samples[s.EntryDate] = s
	}
	m.Summary = summary
	m.viewport.SetContent(m.render())
}

// LoggedToday reports whether a sample exists for Today.
func (m Model) LoggedToday() bool {
	_, ok := m.Samples[m.Today]
	return ok
}

func (m Model) render() string {
	if m.Today == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render("This week") + "\n\n")

	for i := 6; i >= 0; i-- {
		day, err := utils.AddDays(m.Today, -i)
		if err != nil {
			continue
		}
		label := day
		if i == 0 {
			label = "today"
		}
		b.WriteString(dayStyle.Render(label))

		s, ok := m.Samples[day]
		if !ok {
			b.WriteString(emptyStyle.Render("·") + "\n")
			continue
		}
		emoji := ""
		if mood, ok := models.LookupMood(s.MoodID); ok {
			emoji = mood.Emoji + " "
		}
		b.WriteString(moodStyle.Render(emoji + s.MoodName))
		b.WriteString(" " + strings.Repeat("█", s.MoodValue))
		if n := s.NotesText(); n != "" {
			b.WriteString("  " + emptyStyle.Render(n))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.Summary.TotalEntries == 0 {
		b.WriteString(emptyStyle.Render("No mood logged this week.") + "\n")
	} else {
		fmt.Fprintf(&b, "Average %.1f · %s · %d entries\n", m.Summary.Average, m.Summary.Trend, m.Summary.TotalEntries)
	}
	if !m.LoggedToday() {
		b.WriteString("\n" + emptyStyle.Render("No mood logged today. Press 'a' to log one.") + "\n")
	}
	return b.String()
}

func (m Model) View() string {
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.viewport.SetContent(m.render())
}
