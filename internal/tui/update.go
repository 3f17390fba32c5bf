package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/mindbloom/internal/constants"
	"github.com/julianstephens/mindbloom/internal/journal"
	"github.com/julianstephens/mindbloom/internal/models"
	"github.com/julianstephens/mindbloom/internal/tui/components/entrylist"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.state {
	case constants.StateWriting, constants.StateLogging:
		return m.updateForm(msg)
	case constants.StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	case constants.StateReading:
		if msg, ok := msg.(tea.KeyMsg); ok {
			if key.Matches(msg, m.keys.Back) || key.Matches(msg, m.keys.Quit) || msg.Type == tea.KeyEnter {
				m.reading = nil
				m.state = constants.StateJournal
			}
		}
		return m, nil
	}

	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		// tabs, status line, help and docStyle padding
		bodyHeight := msg.Height - 7
		if bodyHeight < 0 {
			bodyHeight = 0
		}
		m.entryList.SetSize(msg.Width-4, bodyHeight)
		m.moodWeek.SetSize(msg.Width-4, bodyHeight)
		return m, nil

	case entrylist.WriteEntryMsg:
		return m, m.openEntryForm()

	case entrylist.ViewEntryMsg:
		entry := msg.Entry
		m.reading = &entry
		m.state = constants.StateReading
		return m, nil

	case entrylist.DeleteEntryMsg:
		m.entryToDelete = msg.ID
		m.previousState = m.state
		m.state = constants.StateConfirmDelete
		return m, nil

	case tea.KeyMsg:
		if m.state == constants.StateJournal && m.entryList.Filtering() {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab), key.Matches(msg, m.keys.Right):
			m.state = (m.state + 1) % constants.TabCount
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab), key.Matches(msg, m.keys.Left):
			m.state = (m.state - 1 + constants.TabCount) % constants.TabCount
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			m.refresh()
			return m, nil
		case m.state == constants.StateMood && key.Matches(msg, m.keys.LogMood):
			return m, m.openMoodForm()
		}
	}

	switch m.state {
	case constants.StateJournal:
		var cmd tea.Cmd
		m.entryList, cmd = m.entryList.Update(msg)
		cmds = append(cmds, cmd)
	case constants.StateMood:
		var cmd tea.Cmd
		m.moodWeek, cmd = m.moodWeek.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.formError = ""
		m.state = m.previousState
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		if err := m.saveForm(); err != nil {
			// stay in the form so the user can fix the input or cancel with esc
			m.formError = err.Error()
			m.form.State = huh.StateNormal
			return m, cmd
		}
		m.formError = ""
		m.state = m.previousState
		m.refresh()
	case huh.StateAborted:
		m.formError = ""
		m.state = m.previousState
	}
	return m, cmd
}

func (m *Model) saveForm() error {
	switch m.state {
	case constants.StateWriting:
		_, err := m.journal.Create(m.ctx, m.owner, models.NewJournalEntry{
			Title:   m.entryForm.Title,
			Content: m.entryForm.Content,
			Mood:    models.JournalMood(m.entryForm.Mood),
			Tags:    journal.ParseTags(m.entryForm.Tags),
		})
		return err
	case constants.StateLogging:
		notes := m.moodForm.Notes
		_, err := m.moods.UpsertForDate(m.ctx, m.owner, "", models.MoodInput{
			MoodID: m.moodForm.MoodID,
			Notes:  &notes,
		})
		return err
	}
	return nil
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	msgKey, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch msgKey.String() {
	case "y", "Y":
		if m.entryToDelete != "" {
			if _, err := m.journal.Delete(m.ctx, m.entryToDelete, m.owner); err != nil {
				m.formError = err.Error()
			} else {
				m.formError = ""
			}
			m.entryToDelete = ""
			m.refresh()
		}
		m.state = m.previousState
	case "n", "N", "esc", "q":
		m.entryToDelete = ""
		m.state = m.previousState
	}
	return m, nil
}
