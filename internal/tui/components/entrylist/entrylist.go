package entrylist

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/mindbloom/internal/models"
)

type WriteEntryMsg struct{}

type DeleteEntryMsg struct {
	ID string
}

type ViewEntryMsg struct {
	Entry models.JournalEntry
}

type Item struct {
	Entry models.JournalEntry
	loc   *time.Location
}

func (i Item) Title() string { return i.Entry.Title }

func (i Item) Description() string {
	desc := fmt.Sprintf("%s | %s", i.Entry.CreatedAt.In(i.loc).Format("2006-01-02 15:04"), i.Entry.Mood)
	if len(i.Entry.Tags) > 0 {
		desc += " | #" + strings.Join(i.Entry.Tags, " #")
	}
	return desc
}

func (i Item) FilterValue() string { return i.Entry.Title + " " + i.Entry.Content }

type KeyMap struct {
	Write  key.Binding
	Delete key.Binding
	Open   key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Write: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "write"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "read"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
	loc  *time.Location
}

func New(entries []models.JournalEntry, loc *time.Location, width, height int) Model {
	if loc == nil {
		loc = time.Local
	}
	l := list.New(toItems(entries, loc), list.NewDefaultDelegate(), width, height)
	l.Title = "Journal"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Write, keys.Open, keys.Delete}
	}
	l.AdditionalFullHelpKeys = l.AdditionalShortHelpKeys

	return Model{list: l, keys: keys, loc: loc}
}

func toItems(entries []models.JournalEntry, loc *time.Location) []list.Item {
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = Item{Entry: e, loc: loc}
	}
	return items
}

func (m *Model) SetEntries(entries []models.JournalEntry) {
	m.list.SetItems(toItems(entries, m.loc))
}

// Len is the number of entries, ignoring any active filter.
func (m Model) Len() int {
	return len(m.list.Items())
}

// Filtering reports whether the user is typing a filter, so global keys should pass through.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok && !m.Filtering() {
		switch {
		case key.Matches(msg, m.keys.Write):
			return m, func() tea.Msg { return WriteEntryMsg{} }
		case key.Matches(msg, m.keys.Open):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return ViewEntryMsg{Entry: i.Entry} }
			}
		case key.Matches(msg, m.keys.Delete):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return DeleteEntryMsg{ID: i.Entry.ID} }
			}
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && !m.Filtering() {
		return "\n  No journal entries yet.\n  Press 'a' to write one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
