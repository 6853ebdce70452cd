package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/tally/internal/constants"
	apperrors "github.com/julianstephens/tally/internal/errors"
	"github.com/julianstephens/tally/internal/projection"
	"github.com/julianstephens/tally/internal/tui/components/checklist"
	"github.com/julianstephens/tally/internal/tui/components/notes"
)

// chrome is the height taken by the tabs, status line and help.
const chrome = 6

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		h, v := docStyle.GetFrameSize()
		m.checklist.SetSize(msg.Width-h, msg.Height-v-chrome)
		m.notes.SetSize(msg.Width-h, msg.Height-v-chrome)
		return m, nil

	case syncedMsg:
		m.loading--
		if msg.err != nil {
			logFailure("sync "+msg.what, msg.err)
			m.err = msg.err
		} else {
			m.deps.Saved()
		}
		m.refreshViews()
		return m, nil

	case changedMsg:
		if msg.err != nil {
			logFailure("change", msg.err)
			m.err = msg.err
			m.status = ""
		} else {
			m.err = nil
			m.status = msg.status
			m.deps.Saved()
		}
		m.refreshViews()
		return m, nil
	}

	switch m.state {
	case StateAddHabit:
		return m.updateHabitForm(msg)
	case StateAddNote:
		return m.updateNoteForm(msg)
	case StateConfirm:
		return m.updateConfirm(msg)
	}

	if cmd, ok := m.handleComponentMsg(msg); ok {
		return m, cmd
	}

	if msg, ok := msg.(tea.KeyMsg); ok && !m.filtering() {
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab):
			m.state = (m.state + 1) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.state = (m.state - 1 + tabCount) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			m.loading += 2
			m.err = nil
			m.status = ""
			return m, tea.Batch(m.syncHabits(), m.syncContent())
		}

		if m.state == StateCalendar {
			switch {
			case key.Matches(msg, m.keys.PrevMonth):
				m.month = m.month.Prev()
			case key.Matches(msg, m.keys.NextMonth):
				m.month = m.month.Next()
			case key.Matches(msg, m.keys.ThisMonth):
				m.month = projection.MonthOf(m.deps.Clock.Time())
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case StateToday:
		m.checklist, cmd = m.checklist.Update(msg)
	case StateNotes:
		m.notes, cmd = m.notes.Update(msg)
	}
	return m, cmd
}

func (m Model) filtering() bool {
	switch m.state {
	case StateToday:
		return m.checklist.Filtering()
	case StateNotes:
		return m.notes.Filtering()
	}
	return false
}

// handleComponentMsg turns component requests into store commands or overlays.
func (m *Model) handleComponentMsg(msg tea.Msg) (tea.Cmd, bool) {
	switch msg := msg.(type) {
	case checklist.ToggleHabitMsg:
		return m.toggleHabit(msg.ID, msg.Name), true

	case checklist.AddHabitMsg:
		m.habitForm = &HabitFormModel{Color: constants.DefaultHabitColor}
		m.form = newHabitForm(m.habitForm)
		m.previousState = m.state
		m.state = StateAddHabit
		return m.form.Init(), true

	case checklist.ArchiveHabitMsg:
		m.confirm(fmt.Sprintf("Archive %q?", msg.Name), m.archiveHabit(msg.ID, msg.Name))
		return nil, true

	case checklist.DeleteHabitMsg:
		m.confirm(fmt.Sprintf("Delete %q and all of its history?", msg.Name), m.deleteHabit(msg.ID, msg.Name))
		return nil, true

	case notes.NewNoteMsg:
		m.noteForm = &NoteFormModel{}
		m.form = newNoteForm(m.noteForm)
		m.previousState = m.state
		m.state = StateAddNote
		return m.form.Init(), true

	case notes.PublishDraftMsg:
		return m.publishDraft(msg.Item), true

	case notes.DeleteNoteMsg:
		m.confirm(fmt.Sprintf("Delete %q?", msg.Item.Title), m.deleteNote(msg.Item, msg.Visibility))
		return nil, true
	}
	return nil, false
}

func (m *Model) confirm(prompt string, run tea.Cmd) {
	m.pending = &pendingAction{prompt: prompt, run: run}
	m.previousState = m.state
	m.state = StateConfirm
}

func (m Model) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Confirm):
		var cmd tea.Cmd
		if m.pending != nil {
			cmd = m.pending.run
		}
		m.pending = nil
		m.state = m.previousState
		return m, cmd
	case key.Matches(keyMsg, m.keys.Cancel):
		m.pending = nil
		m.state = m.previousState
		m.status = apperrors.ErrCancelled.Error()
	}
	return m, nil
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd, huh.FormState) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = m.previousState
		return m, nil, huh.StateAborted
	}
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	if m.form.State != huh.StateNormal {
		m.state = m.previousState
	}
	return m, cmd, m.form.State
}

func (m Model) updateHabitForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd, state := m.updateForm(msg)
	if state == huh.StateCompleted {
		return m, tea.Batch(cmd, m.createHabit(m.habitForm.definition()))
	}
	return m, cmd
}

func (m Model) updateNoteForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd, state := m.updateForm(msg)
	if state == huh.StateCompleted {
		return m, tea.Batch(cmd, m.createNote(*m.noteForm))
	}
	return m, cmd
}
