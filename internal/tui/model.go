package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/mindbloom/internal/analytics"
	"github.com/julianstephens/mindbloom/internal/constants"
	"github.com/julianstephens/mindbloom/internal/journal"
	"github.com/julianstephens/mindbloom/internal/logger"
	"github.com/julianstephens/mindbloom/internal/models"
	"github.com/julianstephens/mindbloom/internal/mood"
	"github.com/julianstephens/mindbloom/internal/tui/components/entrylist"
	"github.com/julianstephens/mindbloom/internal/tui/components/moodweek"
	"github.com/julianstephens/mindbloom/internal/validation"
)

// Config wires the TUI to the repositories of one owner.
type Config struct {
	Journal  *journal.Repository
	Moods    *mood.Repository
	Owner    string
	Location *time.Location
	Ctx      context.Context
}

type EntryFormModel struct {
	Title   string
	Content string
	Mood    string
	Tags    string
}

type MoodFormModel struct {
	MoodID string
	Notes  string
}

type Model struct {
	journal *journal.Repository
	moods   *mood.Repository
	owner   string
	loc     *time.Location
	ctx     context.Context

	state         constants.SessionState
	previousState constants.SessionState
	keys          KeyMap
	help          help.Model
	entryList     entrylist.Model
	moodWeek      moodweek.Model
	form          *huh.Form
	entryForm     *EntryFormModel
	moodForm      *MoodFormModel
	reading       *models.JournalEntry
	entryToDelete string

	stats  analytics.Summary
	streak int
	weekly []analytics.WeeklyAverage

	validationWarning string
	formError         string
	loadError         error
	quitting          bool
	width             int
	height            int
}

func NewModel(cfg Config) Model {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Ctx == nil {
		cfg.Ctx = context.Background()
	}

	m := Model{
		journal:   cfg.Journal,
		moods:     cfg.Moods,
		owner:     cfg.Owner,
		loc:       cfg.Location,
		ctx:       cfg.Ctx,
		state:     constants.StateJournal,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		entryList: entrylist.New(nil, cfg.Location, 0, 0),
		moodWeek:  moodweek.New(0, 0),
	}
	m.refresh()
	return m
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	switch m.state {
	case constants.StateJournal:
		keys = append(keys, m.keys.Write, m.keys.Delete)
	case constants.StateMood:
		keys = append(keys, m.keys.LogMood)
	}
	return append(keys, m.keys.Refresh)
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help, m.keys.Refresh}
	navigation := []key.Binding{m.keys.Up, m.keys.Down, m.keys.Left, m.keys.Right, m.keys.Back}

	var actions []key.Binding
	switch m.state {
	case constants.StateJournal:
		actions = []key.Binding{m.keys.Write, m.keys.Delete}
	case constants.StateMood:
		actions = []key.Binding{m.keys.LogMood}
	}

	return [][]key.Binding{global, navigation, actions}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// refresh reloads every tab from the repositories. The first failure is kept for display.
func (m *Model) refresh() {
	m.loadError = nil
	fail := func(what string, err error) {
		logger.Warn("TUI refresh failed", "what", what, "error", err)
		if m.loadError == nil {
			m.loadError = fmt.Errorf("%s: %w", what, err)
		}
	}

	entries, err := m.journal.List(m.ctx, m.owner)
	if err != nil {
		fail("journal", err)
		entries = nil
	}
	m.entryList.SetEntries(entries)

	week, err := m.moods.WeekSamples(m.ctx, m.owner)
	if err != nil {
		fail("week", err)
	}
	weekSummary, err := m.moods.Week(m.ctx, m.owner)
	if err != nil {
		fail("week summary", err)
	}
	m.moodWeek.SetWeek(m.moods.Today(), week, weekSummary)

	if m.stats, err = m.moods.Stats(m.ctx, m.owner, constants.DefaultStatsDays); err != nil {
		fail("stats", err)
	}
	if m.streak, err = m.moods.Streak(m.ctx, m.owner); err != nil {
		fail("streak", err)
	}
	if m.weekly, err = m.moods.WeeklyAverages(m.ctx, m.owner); err != nil {
		fail("weekly averages", err)
	}

	m.updateValidationStatus(entries)
}

// updateValidationStatus counts integrity problems in the owner's records for the status line.
func (m *Model) updateValidationStatus(entries []models.JournalEntry) {
	samples, err := m.moods.GetAll(m.ctx, m.owner)
	if err != nil {
		m.validationWarning = "⚠ Validation unavailable"
		return
	}

	v := validation.New()
	result := v.ValidateJournalEntries(entries)
	result.Merge(v.ValidateMoodEntries(samples))

	if result.HasConflicts() {
		m.validationWarning = fmt.Sprintf("⚠ %d validation warning(s)", len(result.Conflicts))
	} else {
		m.validationWarning = ""
	}
}

func (m *Model) openEntryForm() tea.Cmd {
	m.entryForm = &EntryFormModel{Mood: string(constants.DefaultJournalMood)}

	moodOptions := make([]huh.Option[string], 0, len(models.JournalMoods))
	for _, jm := range models.JournalMoods {
		moodOptions = append(moodOptions, huh.NewOption(string(jm), string(jm)))
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Placeholder("leave blank for today's date").
				Value(&m.entryForm.Title),
			huh.NewText().
				Title("Entry").
				Value(&m.entryForm.Content).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("write something first")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Mood").
				Options(moodOptions...).
				Value(&m.entryForm.Mood),
			huh.NewInput().
				Title("Tags").
				Placeholder("comma separated").
				Value(&m.entryForm.Tags),
		),
	)
	m.formError = ""
	m.previousState = m.state
	m.state = constants.StateWriting
	return m.form.Init()
}

func (m *Model) openMoodForm() tea.Cmd {
	m.moodForm = &MoodFormModel{}
	if m.moodWeek.LoggedToday() {
		today := m.moodWeek.Samples[m.moodWeek.Today]
		m.moodForm.MoodID = today.MoodID
		m.moodForm.Notes = today.NotesText()
	}

	options := make([]huh.Option[string], 0, len(models.Moods))
	for _, md := range models.Moods {
		options = append(options, huh.NewOption(md.Emoji+" "+md.Name, md.ID))
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("How are you feeling today?").
				Options(options...).
				Value(&m.moodForm.MoodID),
			huh.NewInput().
				Title("Notes").
				Value(&m.moodForm.Notes),
		),
	)
	m.formError = ""
	m.previousState = m.state
	m.state = constants.StateLogging
	return m.form.Init()
}
