// Package tui is the interactive dashboard: today's checklist, the week,
// a month calendar and the note collections.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/tally/internal/constants"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/projection"
	"github.com/julianstephens/tally/internal/store"
	"github.com/julianstephens/tally/internal/tui/components/checklist"
	"github.com/julianstephens/tally/internal/tui/components/notes"
	"github.com/julianstephens/tally/internal/utils"
)

type SessionState int

const (
	StateToday SessionState = iota
	StateWeek
	StateCalendar
	StateNotes
	StateAddHabit
	StateAddNote
	StateConfirm
)

// tabCount is the number of tabbed states; the rest are overlays.
const tabCount = 4

var tabTitles = [tabCount]string{"Today", "Week", "Calendar", "Notes"}

// Deps are the stores the dashboard reads and mutates.
type Deps struct {
	Habits  *store.HabitStore
	Content *store.ContentStore
	Clock   utils.Clock
	// Saved runs after every successful sync or change, e.g. to write the offline cache.
	Saved func()
}

type HabitFormModel struct {
	Name        string
	Description string
	Color       string
}

type NoteFormModel struct {
	Title   string
	Body    string
	Private bool
	Draft   bool
}

// pendingAction is a destructive action awaiting y/n.
type pendingAction struct {
	prompt string
	run    tea.Cmd
}

type Model struct {
	ctx           context.Context
	deps          Deps
	state         SessionState
	previousState SessionState
	keys          KeyMap
	help          help.Model
	checklist     checklist.Model
	notes         notes.Model
	month         projection.YearMonth
	form          *huh.Form
	habitForm     *HabitFormModel
	noteForm      *NoteFormModel
	pending       *pendingAction
	status        string
	err           error
	loading       int
	quitting      bool
	width         int
	height        int
}

func NewModel(ctx context.Context, deps Deps) Model {
	if deps.Saved == nil {
		deps.Saved = func() {}
	}
	m := Model{
		ctx:       ctx,
		deps:      deps,
		state:     StateToday,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		checklist: checklist.New(0, 0),
		notes:     notes.New(0, 0),
		month:     projection.MonthOf(deps.Clock.Time()),
		loading:   2,
	}
	m.refreshViews()
	return m
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Refresh, m.keys.Quit, m.keys.Help}
	switch m.state {
	case StateToday:
		ck := checklist.DefaultKeyMap()
		keys = append(keys, ck.Toggle, ck.Add)
	case StateCalendar:
		keys = append(keys, m.keys.PrevMonth, m.keys.NextMonth)
	case StateNotes:
		nk := notes.DefaultKeyMap()
		keys = append(keys, nk.New, nk.Publish)
	case StateConfirm:
		keys = []key.Binding{m.keys.Confirm, m.keys.Cancel}
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Refresh, m.keys.Quit, m.keys.Help}

	var actions []key.Binding
	switch m.state {
	case StateToday:
		ck := checklist.DefaultKeyMap()
		actions = []key.Binding{ck.Toggle, ck.Add, ck.Archive, ck.Delete}
	case StateCalendar:
		actions = []key.Binding{m.keys.PrevMonth, m.keys.NextMonth, m.keys.ThisMonth}
	case StateNotes:
		nk := notes.DefaultKeyMap()
		actions = []key.Binding{nk.New, nk.Publish, nk.Delete}
	}
	return [][]key.Binding{global, actions}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.syncHabits(), m.syncContent())
}

// refreshViews copies the store state into the list components.
func (m *Model) refreshViews() {
	m.checklist.SetItems(m.deps.Habits.TodaysChecklist())
	m.notes.SetContent(m.deps.Content.Public(), m.deps.Content.Private(), m.deps.Content.Drafts())
}

func newHabitForm(fm *HabitFormModel) *huh.Form {
	colors := make([]huh.Option[string], 0, len(constants.HabitColors))
	for _, hex := range constants.HabitColors {
		colors = append(colors, huh.NewOption(hex, hex))
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Habit Name").
				CharLimit(constants.MaxHabitNameLen).
				Value(&fm.Name),
			huh.NewInput().
				Title("Description").
				CharLimit(constants.MaxHabitDescriptionLen).
				Value(&fm.Description),
			huh.NewSelect[string]().
				Title("Color").
				Options(colors...).
				Value(&fm.Color),
		),
	).WithTheme(huh.ThemeDracula())
}

func newNoteForm(fm *NoteFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Value(&fm.Title),
			huh.NewText().
				Title("Body").
				Lines(6).
				Value(&fm.Body),
			huh.NewConfirm().
				Title("Private?").
				Value(&fm.Private),
			huh.NewConfirm().
				Title("Save as draft?").
				Value(&fm.Draft),
		),
	).WithTheme(huh.ThemeDracula())
}

func (fm HabitFormModel) definition() models.HabitDefinition {
	return models.HabitDefinition{Name: fm.Name, Description: fm.Description, Color: fm.Color}
}
