package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/mindbloom/internal/cli"
	"github.com/julianstephens/mindbloom/internal/constants"
)

var tabTitles = []string{"Journal", "Mood", "Stats"}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case constants.StateJournal:
		content = docStyle.Render(m.entryList.View())
	case constants.StateMood:
		content = docStyle.Render(m.moodWeek.View())
	case constants.StateStats:
		content = docStyle.Render(m.viewStats())
	case constants.StateWriting, constants.StateLogging:
		content = docStyle.Render(m.form.View())
	case constants.StateReading:
		content = docStyle.Render(m.viewReading())
	case constants.StateConfirmDelete:
		content = m.viewConfirmDelete()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		content,
		m.viewStatus(),
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	var tabs []string
	for i, title := range tabTitles {
		if m.tab() == constants.SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// tab is the top-level tab an overlay state belongs to.
func (m Model) tab() constants.SessionState {
	switch m.state {
	case constants.StateJournal, constants.StateMood, constants.StateStats:
		return m.state
	case constants.StateReading:
		return constants.StateJournal
	default:
		return m.previousState
	}
}

func (m Model) viewStatus() string {
	var parts []string
	if m.loadError != nil {
		parts = append(parts, dangerStyle.Render("Error loading "+m.loadError.Error()))
	}
	if m.formError != "" {
		parts = append(parts, dangerStyle.Render(m.formError))
	}
	if m.validationWarning != "" {
		parts = append(parts, warningStyle.Render(m.validationWarning))
	}
	return strings.Join(parts, "  ")
}

func (m Model) viewStats() string {
	var b strings.Builder
	b.WriteString(cli.SummaryBlock(fmt.Sprintf("Last %d days", constants.DefaultStatsDays), m.stats))
	b.WriteString("\n")

	switch m.streak {
	case 0:
		b.WriteString("No streak yet. Log a mood today to start one.\n")
	case 1:
		b.WriteString("🔥 1 day streak\n")
	default:
		fmt.Fprintf(&b, "🔥 %d day streak\n", m.streak)
	}

	if len(m.weekly) > 0 {
		b.WriteString("\n" + cli.TitleStyle.Render("Weekly averages") + "\n")
		for _, w := range m.weekly {
			fmt.Fprintf(&b, "  %s  %.1f  %s\n", w.WeekStart, w.Average, cli.MutedStyle.Render(fmt.Sprintf("(%d)", w.Count)))
		}
	}
	return b.String()
}

func (m Model) viewReading() string {
	if m.reading == nil {
		return ""
	}
	return cli.JournalDetail(*m.reading, m.loc) + "\n" + cli.MutedStyle.Render("esc to go back")
}

func (m Model) viewConfirmDelete() string {
	return lipgloss.Place(m.width, m.height-4,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render("Are you sure you want to delete this entry?"),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
